package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"tilespawn.dev/internal/config"
	"tilespawn.dev/internal/monitor"
	"tilespawn.dev/internal/persistence/archive"
	persistlog "tilespawn.dev/internal/persistence/log"
	"tilespawn.dev/internal/persistence/savedb"
	"tilespawn.dev/internal/persistence/snapshot"
	"tilespawn.dev/internal/sim/maps"
	"tilespawn.dev/internal/sim/tiles"
	"tilespawn.dev/internal/spawn"
)

type commonFlags struct {
	config  *string
	maps    *string
	data    *string
	backend *string
	area    *string
	seed    *int64
}

func addCommon(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config:  fs.String("config", "./configs/spawn_areas.yaml", "spawn area config"),
		maps:    fs.String("maps", "./configs/maps", "map directory"),
		data:    fs.String("data", "./data", "runtime data directory"),
		backend: fs.String("save_backend", "sqlite", "save store: sqlite|snapshot"),
		area:    fs.String("area", "", "unique area id (optional; defaults to all areas)"),
		seed:    fs.Int64("seed", 1, "seed for spawn picks"),
	}
}

type saveStore interface {
	spawn.SaveStore
	Close() error
}

type env struct {
	cfg     config.Config
	reg     *maps.Registry
	store   saveStore
	logger  *logrus.Logger
	proc    *spawn.Process
	closers []func() error
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.logger.WithError(err).Warn("close")
		}
	}
}

func openStore(backend, dataDir string) (saveStore, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "sqlite":
		st, err := savedb.OpenSQLite(filepath.Join(dataDir, "index", "save.sqlite"))
		if err != nil {
			return nil, err
		}
		return st, nil
	case "snapshot":
		return &snapshot.FileStore{
			Path:   filepath.Join(dataDir, "saves", "save.snap.zst"),
			SaveID: "default",
			Backup: archive.Backuper(dataDir),
		}, nil
	default:
		return nil, fmt.Errorf("unknown save backend %q", backend)
	}
}

// openEnv loads config and maps and opens the save store. Load failures exit 1.
func openEnv(f commonFlags, journal bool) *env {
	logger := monitor.NewLogger(os.Stderr)

	cfg, err := config.Load(*f.config)
	if err != nil {
		logger.WithError(err).Error("load config")
		os.Exit(1)
	}
	reg, err := maps.LoadDir(*f.maps)
	if err != nil {
		logger.WithError(err).Error("load maps")
		os.Exit(1)
	}
	st, err := openStore(*f.backend, *f.data)
	if err != nil {
		logger.WithError(err).Error("open save store")
		os.Exit(1)
	}

	e := &env{cfg: cfg, reg: reg, store: st, logger: logger}
	e.closers = append(e.closers, st.Close)

	proc := &spawn.Process{
		Registry:          reg,
		Store:             st,
		Monitor:           monitor.New(logger),
		QuarryTileIndices: cfg.QuarryTileIndices,
		CustomTileIndices: cfg.CustomTileIndices,
		Seed:              *f.seed,
	}
	if journal {
		bl := persistlog.NewBuildLogger(*f.data)
		e.closers = append(e.closers, bl.Close)
		proc.Journals = append(proc.Journals, bl)
		if w, ok := st.(spawn.BuildWriter); ok {
			proc.Journals = append(proc.Journals, w)
		}
	}
	e.proc = proc

	logger.WithFields(logrus.Fields{
		"areas":   len(cfg.Areas),
		"maps":    len(reg.Names()),
		"backend": *f.backend,
	}).Debug("loaded")
	return e
}

func (e *env) areas(id string) []tiles.SpawnArea {
	if strings.TrimSpace(id) == "" {
		return e.cfg.SpawnAreas()
	}
	a, ok := e.cfg.AreaByID(id)
	if !ok {
		e.logger.WithField("area", id).Error("unknown area")
		e.Close()
		os.Exit(2)
	}
	return []tiles.SpawnArea{a}
}

func (e *env) loadSave(ctx context.Context) tiles.SaveData {
	save, err := e.store.Load(ctx)
	if err != nil {
		e.logger.WithError(err).Error("load save data")
		e.Close()
		os.Exit(1)
	}
	return save
}
