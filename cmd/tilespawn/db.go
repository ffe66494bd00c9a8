package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	persistlog "tilespawn.dev/internal/persistence/log"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	areaID := fs.String("area", "", "area_id filter (builds)")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	q := "builds"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}
	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "save.sqlite")
	}
	if *limit <= 0 {
		*limit = 20
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	enc := json.NewEncoder(os.Stdout)
	switch q {
	case "builds":
		var rows *sql.Rows
		if *areaID != "" {
			rows, err = db.Query(`SELECT raw_json FROM builds WHERE area_id=? ORDER BY id DESC LIMIT ?`, *areaID, *limit)
		} else {
			rows, err = db.Query(`SELECT raw_json FROM builds ORDER BY id DESC LIMIT ?`, *limit)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var raw string
			if err := rows.Scan(&raw); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			fmt.Println(raw)
		}
	case "areas":
		rows, err := db.Query(`SELECT r.area_id, r.recorded_at, COUNT(l.location)
			FROM recorded_areas r LEFT JOIN existing_object_locations l ON l.area_id = r.area_id
			GROUP BY r.area_id ORDER BY r.area_id LIMIT ?`, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				AreaID     string `json:"area_id"`
				RecordedAt string `json:"recorded_at"`
				Locations  int    `json:"locations"`
			}
			if err := rows.Scan(&r.AreaID, &r.RecordedAt, &r.Locations); err != nil {
				fmt.Fprintln(os.Stderr, "scan:", err)
				os.Exit(1)
			}
			_ = enc.Encode(r)
		}
	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q)
		os.Exit(2)
	}
}

// journal prints the entries of one build journal file as JSONL.
func journalCmd(args []string) {
	fs := flag.NewFlagSet("journal", flag.ExitOnError)
	errorsOnly := fs.Bool("errors", false, "only entries with an error code")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: tilespawn journal [-errors] <builds-*.jsonl.zst>...")
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, path := range fs.Args() {
		entries, err := persistlog.ReadBuilds(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
			os.Exit(1)
		}
		for _, e := range entries {
			if *errorsOnly && e.ErrorCode == "" {
				continue
			}
			_ = enc.Encode(e)
		}
	}
}
