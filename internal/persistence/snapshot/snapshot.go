package snapshot

import (
	"bufio"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"tilespawn.dev/internal/sim/tiles"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	SaveID  string `json:"save_id"`
	Areas   int    `json:"areas"`
}

type SaveV1 struct {
	Header Header `json:"header"`

	ExistingObjectLocations map[string][]string `json:"existing_object_locations"`
}

func FromSaveData(saveID string, s tiles.SaveData) SaveV1 {
	cp := s.Clone()
	return SaveV1{
		Header: Header{
			Version: Version,
			SaveID:  saveID,
			Areas:   len(cp.ExistingObjectLocations),
		},
		ExistingObjectLocations: cp.ExistingObjectLocations,
	}
}

func (s SaveV1) SaveData() tiles.SaveData {
	return tiles.SaveData{ExistingObjectLocations: s.ExistingObjectLocations}.Clone()
}

// WriteSave writes a zstd stream holding one JSON header line followed by a
// gob body.
func WriteSave(path string, save SaveV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := encodeSave(f, save); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func encodeSave(f *os.File, save SaveV1) error {
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, _ := json.Marshal(save.Header)
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&save); err != nil {
		_ = enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func ReadSave(path string) (SaveV1, error) {
	var save SaveV1
	f, err := os.Open(path)
	if err != nil {
		return save, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return save, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	line, err := br.ReadBytes('\n')
	if err != nil {
		return save, fmt.Errorf("read header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return save, fmt.Errorf("header: %w", err)
	}
	if h.Version != Version {
		return save, fmt.Errorf("unsupported save version %d", h.Version)
	}

	if err := gob.NewDecoder(br).Decode(&save); err != nil {
		return save, fmt.Errorf("gob decode: %w", err)
	}
	return save, nil
}

// FileStore keeps SaveData in a single snapshot file. Backup, when set, runs
// against the current file before it is replaced.
type FileStore struct {
	Path   string
	SaveID string
	Backup func(path string, prev SaveV1) error

	mu sync.Mutex
}

func (s *FileStore) Load(ctx context.Context) (tiles.SaveData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *FileStore) loadLocked() (tiles.SaveData, error) {
	save, err := ReadSave(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return tiles.SaveData{ExistingObjectLocations: map[string][]string{}}, nil
		}
		return tiles.SaveData{}, err
	}
	return save.SaveData(), nil
}

// PutLocations replaces the recorded locations of one area.
func (s *FileStore) PutLocations(ctx context.Context, areaID string, locs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.loadLocked()
	if err != nil {
		return err
	}
	if s.Backup != nil {
		if _, statErr := os.Stat(s.Path); statErr == nil {
			if err := s.Backup(s.Path, FromSaveData(s.SaveID, cur)); err != nil {
				return fmt.Errorf("backup save: %w", err)
			}
		}
	}
	if cur.ExistingObjectLocations == nil {
		cur.ExistingObjectLocations = map[string][]string{}
	}
	cur.ExistingObjectLocations[areaID] = append([]string{}, locs...)
	return WriteSave(s.Path, FromSaveData(s.SaveID, cur))
}

func (s *FileStore) Close() error { return nil }
