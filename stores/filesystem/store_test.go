package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"whiteboard/core"
	"whiteboard/stores/storetest"
)

func newTestStore(t *testing.T) *fsStore {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	return store
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.BoardStore { return newTestStore(t) })
}

func TestSave_FileLayout(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(context.Background(), &core.Board{ID: "b1", UserID: "alice", Data: []byte("{}")}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.basePath, "alice", "b1.json")); err != nil {
		t.Errorf("board file missing: %v", err)
	}
}

func TestList_SkipsCorruptFiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.Save(ctx, &core.Board{ID: "good", UserID: "alice"}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	bad := filepath.Join(store.basePath, "alice", "bad.json")
	if err := os.WriteFile(bad, []byte("not json"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(store.basePath, "alice", "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	list, err := store.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != "good" {
		t.Errorf("List() = %+v, want only good", list)
	}
}

func TestGet_RejectsTraversalUser(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get(context.Background(), "..", "b1"); err == nil {
		t.Error("Get() accepted a path user")
	}
}
