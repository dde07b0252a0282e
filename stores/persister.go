package stores

import (
	"context"
	"errors"
	"fmt"
	"whiteboard/core"
	"whiteboard/export"

	"github.com/sirupsen/logrus"
)

// Persister saves session snapshots into a BoardStore under a fixed user and board.
type Persister struct {
	store   core.BoardStore
	userID  string
	boardID string
	name    string
}

// NewPersister returns a Persister for one board. An empty name defaults to the board id.
func NewPersister(store core.BoardStore, userID, boardID, name string) *Persister {
	if name == "" {
		name = boardID
	}
	return &Persister{store: store, userID: userID, boardID: boardID, name: name}
}

// Save encodes the snapshot, attaches a best effort thumbnail and stores the board.
func (p *Persister) Save(ctx context.Context, snapshot core.Snapshot) error {
	data, err := core.EncodeSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	log := logrus.WithFields(logrus.Fields{"user_id": p.userID, "board_id": p.boardID})
	thumbnail, err := export.Thumbnail(snapshot)
	if err != nil && !errors.Is(err, export.ErrNothingToExport) {
		log.WithError(err).Warn("Failed to render thumbnail")
	}

	return p.store.Save(ctx, &core.Board{
		ID:        p.boardID,
		UserID:    p.userID,
		Name:      p.name,
		Thumbnail: thumbnail,
		Data:      data,
	})
}
