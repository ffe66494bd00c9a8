package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// BuildEntry is one journal line: the outcome of building one area's tile list.
type BuildEntry struct {
	Time      string   `json:"time"`
	AreaID    string   `json:"area_id"`
	MapName   string   `json:"map_name"`
	Kind      string   `json:"kind"`
	Tiles     int      `json:"tiles"`
	Picked    [][2]int `json:"picked,omitempty"`
	ErrorCode string   `json:"error_code,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// journalFile is the open zstd stream for one UTC hour.
type journalFile struct {
	hour string
	f    *os.File
	zw   *zstd.Encoder
	bw   *bufio.Writer
}

func openJournalFile(path, hour string) (*journalFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &journalFile{hour: hour, f: f, zw: zw, bw: bufio.NewWriterSize(zw, 64*1024)}, nil
}

func (j *journalFile) close() error {
	flushErr := j.bw.Flush()
	zErr := j.zw.Close()
	fErr := j.f.Close()
	for _, err := range []error{flushErr, zErr, fErr} {
		if err != nil {
			return err
		}
	}
	return nil
}

// BuildLogger journals build results as zstd JSONL under <dataDir>/builds,
// one file per UTC hour: builds-YYYY-MM-DD-HH.jsonl.zst.
type BuildLogger struct {
	dir string
	now func() time.Time

	mu  sync.Mutex
	cur *journalFile
}

func NewBuildLogger(dataDir string) *BuildLogger {
	return &BuildLogger{dir: filepath.Join(dataDir, "builds"), now: time.Now}
}

func (l *BuildLogger) WriteBuild(e BuildEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	if e.Time == "" {
		e.Time = now.Format(time.RFC3339Nano)
	}
	line, err := json.Marshal(e)
	if err != nil {
		return err
	}

	hour := now.Format("2006-01-02-15")
	if l.cur == nil || l.cur.hour != hour {
		if err := l.closeLocked(); err != nil {
			return err
		}
		if err := os.MkdirAll(l.dir, 0o755); err != nil {
			return err
		}
		jf, err := openJournalFile(filepath.Join(l.dir, "builds-"+hour+".jsonl.zst"), hour)
		if err != nil {
			return err
		}
		l.cur = jf
	}

	line = append(line, '\n')
	if _, err := l.cur.bw.Write(line); err != nil {
		return err
	}
	return l.cur.bw.Flush()
}

func (l *BuildLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *BuildLogger) closeLocked() error {
	if l.cur == nil {
		return nil
	}
	err := l.cur.close()
	l.cur = nil
	return err
}

// ReadBuilds decodes every entry of one journal file.
func ReadBuilds(path string) ([]BuildEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []BuildEntry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e BuildEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return out, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}
