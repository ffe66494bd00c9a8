package savedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	persistlog "tilespawn.dev/internal/persistence/log"
	"tilespawn.dev/internal/sim/tiles"
)

// Store keeps per-area existing object locations and an index of build
// results in a single SQLite file. Location writes are synchronous; build
// rows go through a buffered writer goroutine and may be dropped under load.
type Store struct {
	db *sql.DB

	ch   chan persistlog.BuildEntry
	wg   sync.WaitGroup
	once sync.Once

	// guards closed and sends on ch against Close
	mu     sync.RWMutex
	closed bool
}

func OpenSQLite(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db: db,
		ch: make(chan persistlog.BuildEntry, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS existing_object_locations (
			area_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			location TEXT NOT NULL,
			PRIMARY KEY (area_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS recorded_areas (
			area_id TEXT PRIMARY KEY,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS builds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			time TEXT NOT NULL,
			area_id TEXT NOT NULL,
			map_name TEXT NOT NULL,
			kind TEXT NOT NULL,
			tiles INTEGER NOT NULL,
			error_code TEXT,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_builds_area ON builds(area_id, id);`,
		`INSERT OR IGNORE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// Load returns every recorded area. An area recorded with no locations maps
// to an empty, non-nil list so it is still reported as present.
func (s *Store) Load(ctx context.Context) (tiles.SaveData, error) {
	out := tiles.SaveData{ExistingObjectLocations: map[string][]string{}}

	rows, err := s.db.QueryContext(ctx, `SELECT area_id FROM recorded_areas`)
	if err != nil {
		return out, err
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return out, err
		}
		out.ExistingObjectLocations[id] = []string{}
	}
	if err := rows.Close(); err != nil {
		return out, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT area_id, location FROM existing_object_locations ORDER BY area_id, seq`)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, loc string
		if err := rows.Scan(&id, &loc); err != nil {
			return out, err
		}
		out.ExistingObjectLocations[id] = append(out.ExistingObjectLocations[id], loc)
	}
	return out, rows.Err()
}

// PutLocations replaces the stored locations of one area.
func (s *Store) PutLocations(ctx context.Context, areaID string, locs []string) error {
	if areaID == "" {
		return fmt.Errorf("empty area id")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM existing_object_locations WHERE area_id=?`, areaID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO recorded_areas(area_id,recorded_at) VALUES(?,?)`,
		areaID, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO existing_object_locations(area_id,seq,location) VALUES(?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, loc := range locs {
		if _, err := stmt.ExecContext(ctx, areaID, i, loc); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) WriteBuild(e persistlog.BuildEntry) error {
	if s == nil {
		return nil
	}
	if e.Time == "" {
		e.Time = time.Now().UTC().Format(time.RFC3339Nano)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil
	}
	select {
	case s.ch <- e:
	default:
		// Dropped; the JSONL journal remains the source of truth.
	}
	return nil
}

func (s *Store) loop() {
	ctx := context.Background()
	insertBuild, _ := s.db.Prepare(`INSERT INTO builds(time,area_id,map_name,kind,tiles,error_code,raw_json) VALUES(?,?,?,?,?,?,?)`)
	defer func() {
		if insertBuild != nil {
			_ = insertBuild.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 256
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for e := range s.ch {
		begin()
		if tx == nil || insertBuild == nil {
			continue
		}
		b, _ := json.Marshal(e)
		var code any
		if e.ErrorCode != "" {
			code = e.ErrorCode
		}
		if _, err := tx.Stmt(insertBuild).Exec(e.Time, e.AreaID, e.MapName, e.Kind, e.Tiles, code, string(b)); err != nil {
			rollback()
			continue
		}
		opCount++
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait || len(s.ch) == 0 {
			commit()
		}
	}
	commit()
}
