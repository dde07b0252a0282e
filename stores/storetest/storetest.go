// Package storetest holds behaviour checks shared by every BoardStore backend.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"whiteboard/core"
)

// Run exercises a BoardStore. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) core.BoardStore) {
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("SaveAndGet", func(t *testing.T) { testSaveAndGet(t, newStore(t)) })
	t.Run("UpdatePreservesCreatedAt", func(t *testing.T) { testUpdatePreservesCreatedAt(t, newStore(t)) })
	t.Run("ListOmitsData", func(t *testing.T) { testListOmitsData(t, newStore(t)) })
	t.Run("ListEmpty", func(t *testing.T) { testListEmpty(t, newStore(t)) })
	t.Run("UserIsolation", func(t *testing.T) { testUserIsolation(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("RejectsPathIDs", func(t *testing.T) { testRejectsPathIDs(t, newStore(t)) })
	t.Run("ConcurrentSaves", func(t *testing.T) { testConcurrentSaves(t, newStore(t)) })
}

func board(user, id, data string) *core.Board {
	return &core.Board{ID: id, UserID: user, Name: "name-" + id, Thumbnail: "thumb-" + id, Data: []byte(data)}
}

func testGetMissing(t *testing.T, s core.BoardStore) {
	_, err := s.Get(context.Background(), "alice", "nope")
	if !errors.Is(err, core.ErrBoardNotFound) {
		t.Errorf("Get() error = %v, want ErrBoardNotFound", err)
	}
}

func testSaveAndGet(t *testing.T, s core.BoardStore) {
	ctx := context.Background()
	if err := s.Save(ctx, board("alice", "b1", `{"version":1,"elements":[]}`)); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	got, err := s.Get(ctx, "alice", "b1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.ID != "b1" || got.UserID != "alice" || got.Name != "name-b1" || got.Thumbnail != "thumb-b1" {
		t.Errorf("Get() = %+v", got)
	}
	if string(got.Data) != `{"version":1,"elements":[]}` {
		t.Errorf("Data = %s", got.Data)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func testUpdatePreservesCreatedAt(t *testing.T, s core.BoardStore) {
	ctx := context.Background()
	if err := s.Save(ctx, board("alice", "b1", "one")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	first, err := s.Get(ctx, "alice", "b1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	update := board("alice", "b1", "two")
	update.Name = "renamed"
	if err := s.Save(ctx, update); err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}
	second, err := s.Get(ctx, "alice", "b1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed: got %v, want %v", second.CreatedAt, first.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("UpdatedAt not advanced: %v <= %v", second.UpdatedAt, first.UpdatedAt)
	}
	if string(second.Data) != "two" || second.Name != "renamed" {
		t.Errorf("update not applied: %+v", second)
	}
}

func testListOmitsData(t *testing.T, s core.BoardStore) {
	ctx := context.Background()
	for _, id := range []string{"b1", "b2"} {
		if err := s.Save(ctx, board("alice", id, "payload")); err != nil {
			t.Fatalf("Save(%s) failed: %v", id, err)
		}
	}
	list, err := s.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d boards, want 2", len(list))
	}
	for _, b := range list {
		if b.Data != nil {
			t.Errorf("List() included data for %s", b.ID)
		}
		if b.Name != "name-"+b.ID {
			t.Errorf("List() name = %q for %s", b.Name, b.ID)
		}
	}
}

func testListEmpty(t *testing.T, s core.BoardStore) {
	list, err := s.List(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("List() = %v, want empty slice", list)
	}
}

func testUserIsolation(t *testing.T, s core.BoardStore) {
	ctx := context.Background()
	if err := s.Save(ctx, board("alice", "b1", "a")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if _, err := s.Get(ctx, "bob", "b1"); !errors.Is(err, core.ErrBoardNotFound) {
		t.Errorf("bob read alice's board: %v", err)
	}
	if err := s.Delete(ctx, "bob", "b1"); !errors.Is(err, core.ErrBoardNotFound) {
		t.Errorf("bob deleted alice's board: %v", err)
	}
	if list, _ := s.List(ctx, "bob"); len(list) != 0 {
		t.Errorf("bob lists %d boards", len(list))
	}
}

func testDelete(t *testing.T, s core.BoardStore) {
	ctx := context.Background()
	if err := s.Save(ctx, board("alice", "b1", "a")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := s.Delete(ctx, "alice", "b1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := s.Get(ctx, "alice", "b1"); !errors.Is(err, core.ErrBoardNotFound) {
		t.Errorf("Get() after Delete() = %v", err)
	}
	if err := s.Delete(ctx, "alice", "b1"); !errors.Is(err, core.ErrBoardNotFound) {
		t.Errorf("second Delete() = %v, want ErrBoardNotFound", err)
	}
}

func testRejectsPathIDs(t *testing.T, s core.BoardStore) {
	ctx := context.Background()
	for _, id := range []string{"../escape", "a/b", "..", ""} {
		if err := s.Save(ctx, board("alice", id, "x")); err == nil {
			t.Errorf("Save() accepted id %q", id)
		}
	}
}

func testConcurrentSaves(t *testing.T, s core.BoardStore) {
	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.Save(ctx, board("alice", "shared", string(rune('a'+i))))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("concurrent Save() failed: %v", err)
		}
	}
	if _, err := s.Get(ctx, "alice", "shared"); err != nil {
		t.Errorf("Get() after concurrent saves: %v", err)
	}
}
