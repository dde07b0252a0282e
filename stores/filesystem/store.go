package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"whiteboard/core"

	"github.com/sirupsen/logrus"
)

const boardExt = ".json"

type fsStore struct {
	basePath string
}

// NewStore creates a new filesystem-based store rooted at basePath.
func NewStore(basePath string) (*fsStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	return &fsStore{basePath: basePath}, nil
}

func (s *fsStore) userPath(userID string) (string, error) {
	if err := core.ValidateID(userID); err != nil {
		return "", fmt.Errorf("user: %w", err)
	}
	return filepath.Join(s.basePath, userID), nil
}

// boardPath returns <base>/<user>/<id>.json after checking that neither part escapes the base.
func (s *fsStore) boardPath(userID, id string) (string, error) {
	userPath, err := s.userPath(userID)
	if err != nil {
		return "", err
	}
	if err := core.ValidateID(id); err != nil {
		return "", err
	}
	return filepath.Join(userPath, id+boardExt), nil
}

func (s *fsStore) List(ctx context.Context, userID string) ([]*core.Board, error) {
	userPath, err := s.userPath(userID)
	if err != nil {
		return nil, err
	}
	log := logrus.WithField("user_id", userID).WithField("path", userPath)

	files, err := os.ReadDir(userPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("User directory does not exist, returning empty list.")
			return []*core.Board{}, nil
		}
		log.WithError(err).Error("Failed to read user directory")
		return nil, err
	}

	boards := make([]*core.Board, 0, len(files))
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), boardExt) {
			continue
		}
		board, err := s.read(filepath.Join(userPath, file.Name()))
		if err != nil {
			log.WithError(err).Warnf("Failed to read board file %s, skipping", file.Name())
			continue
		}
		board.UserID = userID
		boards = append(boards, board.Meta())
	}
	sort.Slice(boards, func(i, j int) bool {
		return boards[i].UpdatedAt.After(boards[j].UpdatedAt)
	})

	log.Infof("Listed %d boards", len(boards))
	return boards, nil
}

func (s *fsStore) Get(ctx context.Context, userID, id string) (*core.Board, error) {
	filePath, err := s.boardPath(userID, id)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "board_id": id, "path": filePath})

	board, err := s.read(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("Board file not found")
			return nil, core.NotFound(userID, id)
		}
		log.WithError(err).Error("Failed to read board file")
		return nil, err
	}
	board.UserID = userID

	log.Info("Board retrieved successfully")
	return board, nil
}

func (s *fsStore) Save(ctx context.Context, board *core.Board) error {
	filePath, err := s.boardPath(board.UserID, board.ID)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"user_id": board.UserID, "board_id": board.ID, "path": filePath})

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		log.WithError(err).Error("Failed to create user directory")
		return err
	}

	now := time.Now()
	board.CreatedAt = now
	if existing, err := s.read(filePath); err == nil {
		board.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warn("Existing board file unreadable, overwriting")
	}
	board.UpdatedAt = now

	data, err := json.Marshal(board)
	if err != nil {
		log.WithError(err).Error("Failed to marshal board for saving")
		return err
	}

	// Write to a temp file and rename it into place.
	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".board-*")
	if err != nil {
		log.WithError(err).Error("Failed to create temp file")
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		log.WithError(err).Error("Failed to write board file")
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		os.Remove(tmp.Name())
		log.WithError(err).Error("Failed to replace board file")
		return err
	}

	log.WithField("data_length", len(board.Data)).Info("Board saved successfully")
	return nil
}

func (s *fsStore) Delete(ctx context.Context, userID, id string) error {
	filePath, err := s.boardPath(userID, id)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "board_id": id, "path": filePath})

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("Board file not found for deletion")
			return core.NotFound(userID, id)
		}
		log.WithError(err).Error("Failed to delete board file")
		return err
	}

	log.Info("Board deleted successfully")
	return nil
}

func (s *fsStore) read(filePath string) (*core.Board, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var board core.Board
	if err := json.Unmarshal(data, &board); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", filepath.Base(filePath), err)
	}
	return &board, nil
}
