package archive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tilespawn.dev/internal/persistence/snapshot"
	"tilespawn.dev/internal/sim/tiles"
)

func TestBackupSave_CopiesFileAndMeta(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "saves", "farm.save.zst")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := []byte("dummy")
	if err := os.WriteFile(src, want, 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	prev := snapshot.FromSaveData("farm", tiles.SaveData{ExistingObjectLocations: map[string][]string{"A": {"1,1"}}})

	dst, err := backupAt(dir, src, prev, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read archived: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("archived content mismatch: got=%q want=%q", string(got), string(want))
	}

	raw, err := os.ReadFile(filepath.Join(filepath.Dir(dst), "meta.json"))
	if err != nil {
		t.Fatalf("expected meta.json to exist: %v", err)
	}
	var meta BackupMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		t.Fatalf("meta: %v", err)
	}
	if meta.SaveID != "farm" || meta.Areas != 1 {
		t.Fatalf("meta=%+v", meta)
	}
}

func TestBackuperWithFileStore(t *testing.T) {
	dir := t.TempDir()
	st := &snapshot.FileStore{
		Path:   filepath.Join(dir, "farm.save.zst"),
		SaveID: "farm",
		Backup: Backuper(dir),
	}
	ctx := context.Background()
	if err := st.PutLocations(ctx, "A", []string{"1,1"}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := st.PutLocations(ctx, "B", []string{"2,2"}); err != nil {
		t.Fatalf("second put: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "archives"))
	if err != nil {
		t.Fatalf("read archives: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("archives=%d want 1", len(entries))
	}
	prev, err := snapshot.ReadSave(filepath.Join(dir, "archives", entries[0].Name(), "farm.save.zst"))
	if err != nil {
		t.Fatalf("read archived save: %v", err)
	}
	if _, ok := prev.SaveData().Locations("B"); ok {
		t.Fatalf("archived save should predate area B")
	}
}

func TestBackupSave_MetaWriteFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "farm.save.zst")
	if err := os.WriteFile(src, []byte("dummy"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	stamp := now.Format("20060102T150405.000000000Z")
	// A directory in place of meta.json makes the write fail.
	if err := os.MkdirAll(filepath.Join(dir, "archives", stamp, "meta.json"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := backupAt(dir, src, snapshot.SaveV1{}, now); err == nil {
		t.Fatalf("expected meta.json write error")
	}
}
