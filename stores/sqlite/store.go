package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"whiteboard/core"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

const boardTableStmt = `
CREATE TABLE IF NOT EXISTS boards (
	id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	thumbnail TEXT NOT NULL DEFAULT '',
	data BLOB,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (user_id, id)
);`

// NewStore opens (or creates) the SQLite database and its boards table.
func NewStore(dataSourceName string) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; SQLite serializes them anyway.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(boardTableStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("create boards table: %w", err)
	}

	return &sqliteStore{db}, nil
}

// Close releases the database handle.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) List(ctx context.Context, userID string) ([]*core.Board, error) {
	log := logrus.WithField("user_id", userID)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, thumbnail, created_at, updated_at FROM boards WHERE user_id = ? ORDER BY updated_at DESC", userID)
	if err != nil {
		log.WithError(err).Error("Failed to list boards")
		return nil, err
	}
	defer rows.Close()

	boards := []*core.Board{}
	for rows.Next() {
		board := core.Board{UserID: userID}
		if err := rows.Scan(&board.ID, &board.Name, &board.Thumbnail, &board.CreatedAt, &board.UpdatedAt); err != nil {
			return nil, err
		}
		boards = append(boards, &board)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	log.Infof("Listed %d boards", len(boards))
	return boards, nil
}

func (s *sqliteStore) Get(ctx context.Context, userID, id string) (*core.Board, error) {
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "board_id": id})
	board := core.Board{UserID: userID, ID: id}
	err := s.db.QueryRowContext(ctx,
		"SELECT name, thumbnail, data, created_at, updated_at FROM boards WHERE user_id = ? AND id = ?", userID, id).
		Scan(&board.Name, &board.Thumbnail, &board.Data, &board.CreatedAt, &board.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("Board not found for user")
			return nil, core.NotFound(userID, id)
		}
		log.WithError(err).Error("Failed to retrieve board")
		return nil, err
	}
	log.Info("Board retrieved successfully")
	return &board, nil
}

func (s *sqliteStore) Save(ctx context.Context, board *core.Board) error {
	if board.UserID == "" {
		return fmt.Errorf("UserID cannot be empty")
	}
	if err := core.ValidateID(board.ID); err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"user_id": board.UserID, "board_id": board.ID})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Rollback on any error

	now := time.Now().UTC()
	var createdAt time.Time
	err = tx.QueryRowContext(ctx, "SELECT created_at FROM boards WHERE user_id = ? AND id = ?", board.UserID, board.ID).Scan(&createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		createdAt = now
		_, err = tx.ExecContext(ctx,
			"INSERT INTO boards (id, user_id, name, thumbnail, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			board.ID, board.UserID, board.Name, board.Thumbnail, board.Data, createdAt, now)
	case err == nil:
		_, err = tx.ExecContext(ctx,
			"UPDATE boards SET name = ?, thumbnail = ?, data = ?, updated_at = ? WHERE user_id = ? AND id = ?",
			board.Name, board.Thumbnail, board.Data, now, board.UserID, board.ID)
	}
	if err != nil {
		log.WithError(err).Error("Failed to save board")
		return err
	}
	if err := tx.Commit(); err != nil {
		log.WithError(err).Error("Failed to commit board")
		return err
	}

	board.CreatedAt = createdAt
	board.UpdatedAt = now
	log.WithField("data_length", len(board.Data)).Info("Board saved successfully")
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, userID, id string) error {
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "board_id": id})
	res, err := s.db.ExecContext(ctx, "DELETE FROM boards WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		log.WithError(err).Error("Failed to delete board")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		log.Warn("Board not found for deletion")
		return core.NotFound(userID, id)
	}
	log.Info("Board deleted successfully")
	return nil
}
