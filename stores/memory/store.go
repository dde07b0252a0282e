package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
	"whiteboard/core"

	"github.com/sirupsen/logrus"
)

// memStore implements BoardStore in process memory. Boards are lost on restart.
type memStore struct {
	mu sync.RWMutex
	// boards is keyed by userID, then by board ID.
	boards map[string]map[string]*core.Board
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{boards: make(map[string]map[string]*core.Board)}
}

// List returns metadata for all boards owned by a user, most recently updated first.
func (s *memStore) List(ctx context.Context, userID string) ([]*core.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userBoards := s.boards[userID]
	boards := make([]*core.Board, 0, len(userBoards))
	for _, board := range userBoards {
		boards = append(boards, board.Meta())
	}
	sort.Slice(boards, func(i, j int) bool {
		return boards[i].UpdatedAt.After(boards[j].UpdatedAt)
	})

	logrus.WithField("user_id", userID).Infof("Listed %d boards", len(boards))
	return boards, nil
}

// Get returns a copy of a single board, ensuring it belongs to the user.
func (s *memStore) Get(ctx context.Context, userID, id string) (*core.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := logrus.WithFields(logrus.Fields{"user_id": userID, "board_id": id})

	board, ok := s.boards[userID][id]
	if !ok {
		log.Warn("Board not found for user")
		return nil, core.NotFound(userID, id)
	}

	log.Info("Board retrieved successfully")
	cp := *board
	cp.Data = append([]byte(nil), board.Data...)
	return &cp, nil
}

// Save creates or updates a board for a user.
func (s *memStore) Save(ctx context.Context, board *core.Board) error {
	if board.UserID == "" {
		return fmt.Errorf("UserID cannot be empty")
	}
	if err := core.ValidateID(board.ID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := logrus.WithFields(logrus.Fields{"user_id": board.UserID, "board_id": board.ID})

	userBoards, ok := s.boards[board.UserID]
	if !ok {
		userBoards = make(map[string]*core.Board)
		s.boards[board.UserID] = userBoards
	}

	now := time.Now()
	if existing, exists := userBoards[board.ID]; exists {
		board.CreatedAt = existing.CreatedAt
	} else {
		board.CreatedAt = now
	}
	board.UpdatedAt = now

	stored := *board
	stored.Data = append([]byte(nil), board.Data...)
	userBoards[board.ID] = &stored
	log.WithField("data_length", len(board.Data)).Info("Board saved successfully")
	return nil
}

// Delete removes a board, ensuring it belongs to the user.
func (s *memStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logrus.WithFields(logrus.Fields{"user_id": userID, "board_id": id})

	if _, ok := s.boards[userID][id]; !ok {
		log.Warn("Board not found for deletion")
		return core.NotFound(userID, id)
	}

	delete(s.boards[userID], id)
	log.Info("Board deleted successfully")
	return nil
}
