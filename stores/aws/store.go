package aws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"time"
	"whiteboard/core"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

// objectAPI is the subset of the S3 client used by the store.
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type s3Store struct {
	s3Client objectAPI
	bucket   string
}

// NewStore creates a new S3-based store using the default AWS credential chain.
func NewStore(ctx context.Context, bucketName string) (*s3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS SDK config: %w", err)
	}
	return newStore(s3.NewFromConfig(cfg), bucketName), nil
}

func newStore(client objectAPI, bucketName string) *s3Store {
	return &s3Store{s3Client: client, bucket: bucketName}
}

// boardKey returns <user>/<id>; both parts must be plain names.
func boardKey(userID, id string) (string, error) {
	if err := core.ValidateID(userID); err != nil {
		return "", fmt.Errorf("user: %w", err)
	}
	if err := core.ValidateID(id); err != nil {
		return "", err
	}
	return path.Join(userID, id), nil
}

func (s *s3Store) List(ctx context.Context, userID string) ([]*core.Board, error) {
	if err := core.ValidateID(userID); err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}
	log := logrus.WithField("user_id", userID)

	boards := []*core.Board{}
	paginator := s3.NewListObjectsV2Paginator(s.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(userID + "/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to list boards")
			return nil, fmt.Errorf("list boards for user %s: %w", userID, err)
		}
		for _, object := range page.Contents {
			board, err := s.read(ctx, aws.ToString(object.Key))
			if err != nil {
				log.WithError(err).Warnf("Failed to read board object %s, skipping", aws.ToString(object.Key))
				continue
			}
			board.UserID = userID
			boards = append(boards, board.Meta())
		}
	}
	sort.Slice(boards, func(i, j int) bool {
		return boards[i].UpdatedAt.After(boards[j].UpdatedAt)
	})

	log.Infof("Listed %d boards", len(boards))
	return boards, nil
}

func (s *s3Store) Get(ctx context.Context, userID, id string) (*core.Board, error) {
	key, err := boardKey(userID, id)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "board_id": id, "key": key})

	board, err := s.read(ctx, key)
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			log.Warn("Board object not found")
			return nil, core.NotFound(userID, id)
		}
		log.WithError(err).Error("Failed to get board")
		return nil, fmt.Errorf("get board %s: %w", id, err)
	}
	board.UserID = userID
	log.Info("Board retrieved successfully")
	return board, nil
}

func (s *s3Store) Save(ctx context.Context, board *core.Board) error {
	key, err := boardKey(board.UserID, board.ID)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"user_id": board.UserID, "board_id": board.ID, "key": key})

	now := time.Now()
	board.CreatedAt = now
	if existing, err := s.read(ctx, key); err == nil {
		board.CreatedAt = existing.CreatedAt
	}
	board.UpdatedAt = now

	data, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		log.WithError(err).Error("Failed to save board")
		return fmt.Errorf("save board %s: %w", board.ID, err)
	}
	log.WithField("data_length", len(board.Data)).Info("Board saved successfully")
	return nil
}

func (s *s3Store) Delete(ctx context.Context, userID, id string) error {
	key, err := boardKey(userID, id)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "board_id": id, "key": key})

	// DeleteObject succeeds for missing keys, so check first.
	_, err = s.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *s3types.NotFound
		if errors.As(err, &nf) {
			log.Warn("Board object not found for deletion")
			return core.NotFound(userID, id)
		}
		return fmt.Errorf("head board %s: %w", id, err)
	}

	_, err = s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.WithError(err).Error("Failed to delete board")
		return fmt.Errorf("delete board %s: %w", id, err)
	}
	log.Info("Board deleted successfully")
	return nil
}

func (s *s3Store) read(ctx context.Context, key string) (*core.Board, error) {
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read board data: %w", err)
	}
	var board core.Board
	if err := json.Unmarshal(data, &board); err != nil {
		return nil, fmt.Errorf("unmarshal board data: %w", err)
	}
	return &board, nil
}
