package stores

import (
	"context"
	"fmt"
	"os"
	"whiteboard/core"
	"whiteboard/stores/aws"
	"whiteboard/stores/filesystem"
	"whiteboard/stores/memory"
	"whiteboard/stores/sqlite"

	"github.com/sirupsen/logrus"
)

// GetStore builds the BoardStore selected by STORAGE_TYPE: memory (default),
// filesystem, sqlite or s3.
func GetStore(ctx context.Context) (core.BoardStore, error) {
	storageType := os.Getenv("STORAGE_TYPE")
	var (
		store core.BoardStore
		err   error
	)

	storageField := logrus.Fields{
		"storageType": storageType,
	}

	switch storageType {
	case "filesystem":
		basePath := os.Getenv("LOCAL_STORAGE_PATH")
		if basePath == "" {
			basePath = "./data" // Default path
		}
		storageField["basePath"] = basePath
		store, err = filesystem.NewStore(basePath)
	case "sqlite":
		dataSourceName := os.Getenv("DATA_SOURCE_NAME")
		if dataSourceName == "" {
			dataSourceName = "whiteboard.db" // Default filename
		}
		storageField["dataSourceName"] = dataSourceName
		store, err = sqlite.NewStore(dataSourceName)
	case "s3":
		bucketName := os.Getenv("S3_BUCKET_NAME")
		if bucketName == "" {
			return nil, fmt.Errorf("S3_BUCKET_NAME environment variable must be set for s3 storage type")
		}
		storageField["bucketName"] = bucketName
		store, err = aws.NewStore(ctx, bucketName)
	case "", "memory":
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	default:
		return nil, fmt.Errorf("unknown STORAGE_TYPE %q", storageType)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s storage: %w", storageType, err)
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store, nil
}
