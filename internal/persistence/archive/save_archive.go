package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"tilespawn.dev/internal/persistence/snapshot"
)

type BackupMeta struct {
	SaveID    string `json:"save_id"`
	Source    string `json:"source"`
	Snapshot  string `json:"snapshot"`
	Areas     int    `json:"areas"`
	CreatedAt string `json:"created_at"`
}

// BackupSave copies savePath into `dataDir/archives/<stamp>/` next to a
// meta.json describing the copied save. It returns the archived path.
func BackupSave(dataDir, savePath string, prev snapshot.SaveV1) (string, error) {
	return backupAt(dataDir, savePath, prev, time.Now().UTC())
}

func backupAt(dataDir, savePath string, prev snapshot.SaveV1, now time.Time) (string, error) {
	stamp := now.Format("20060102T150405.000000000Z")
	archiveDir := filepath.Join(dataDir, "archives", stamp)
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", err
	}

	dst := filepath.Join(archiveDir, filepath.Base(savePath))
	if err := copyFile(savePath, dst); err != nil {
		return "", fmt.Errorf("copy %s: %w", filepath.Base(savePath), err)
	}

	meta := BackupMeta{
		SaveID:    prev.Header.SaveID,
		Source:    savePath,
		Snapshot:  filepath.Base(dst),
		Areas:     len(prev.ExistingObjectLocations),
		CreatedAt: now.Format(time.RFC3339Nano),
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("meta.json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(archiveDir, "meta.json"), b, 0o644); err != nil {
		return "", fmt.Errorf("meta.json: %w", err)
	}
	return dst, nil
}

// Backuper adapts BackupSave to snapshot.FileStore.Backup.
func Backuper(dataDir string) func(string, snapshot.SaveV1) error {
	return func(path string, prev snapshot.SaveV1) error {
		_, err := BackupSave(dataDir, path, prev)
		return err
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
