package core

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"
)

// ErrBoardNotFound is returned (wrapped) by stores when a board does not exist for a user.
var ErrBoardNotFound = errors.New("board not found")

type (
	// Board is the metadata and encoded snapshot of a user-saved whiteboard.
	Board struct {
		ID        string    `json:"id"`
		UserID    string    `json:"-"` // Not exposed in JSON responses, used internally.
		Name      string    `json:"name"`
		Thumbnail string    `json:"thumbnail,omitempty"`
		Data      []byte    `json:"data,omitempty"` // Encoded Snapshot, not included in list views.
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// BoardStore defines the persistence layer for user-owned boards.
	// All operations are scoped to a specific user.
	BoardStore interface {
		// List returns metadata for all boards owned by a user, without Data.
		List(ctx context.Context, userID string) ([]*Board, error)

		// Get returns a single board by its ID, ensuring it belongs to the user.
		Get(ctx context.Context, userID, id string) (*Board, error)

		// Save creates or updates a board for a user, preserving CreatedAt on update.
		Save(ctx context.Context, board *Board) error

		// Delete removes a board, ensuring it belongs to the user.
		Delete(ctx context.Context, userID, id string) error
	}
)

// ValidateID rejects ids that could escape a user's namespace in path based stores.
func ValidateID(id string) error {
	if id == "" || id == "." || id == ".." {
		return fmt.Errorf("invalid id %q: must not be empty or a dot directory", id)
	}
	if path.Base(id) != id {
		return fmt.Errorf("invalid id %q: must not be a path", id)
	}
	return nil
}

// NotFound wraps ErrBoardNotFound with the board and user.
func NotFound(userID, id string) error {
	return fmt.Errorf("board with id %s for user %s: %w", id, userID, ErrBoardNotFound)
}

// Meta returns a copy of the board without its data, as used in list views.
func (b *Board) Meta() *Board {
	return &Board{
		ID:        b.ID,
		UserID:    b.UserID,
		Name:      b.Name,
		Thumbnail: b.Thumbnail,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
