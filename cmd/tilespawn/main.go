package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tilespawn.dev/internal/protocol"
	"tilespawn.dev/internal/spawn"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "build":
			buildCmd(os.Args[2:])
			return
		case "record":
			recordCmd(os.Args[2:])
			return
		case "save":
			saveCmd(os.Args[2:])
			return
		case "pick":
			pickCmd(os.Args[2:])
			return
		case "db":
			dbCmd(os.Args[2:])
			return
		case "journal":
			journalCmd(os.Args[2:])
			return
		}
	}
	buildCmd(os.Args[1:])
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func emit(enc *json.Encoder, v any) {
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, "write:", err)
		os.Exit(1)
	}
}

// build: one TILE_LIST line per area.
func buildCmd(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	f := addCommon(fs)
	record := fs.Bool("record", true, "record existing object locations before building")
	_ = fs.Parse(args)

	ctx, cancel := signalContext()
	defer cancel()

	e := openEnv(f, true)
	defer e.Close()

	areas := e.areas(*f.area)
	save := e.loadSave(ctx)
	if *record {
		for _, a := range areas {
			if _, err := e.proc.RecordExisting(ctx, a, &save); err != nil {
				e.logger.WithError(err).WithField("area", a.UniqueAreaID).Error("record existing objects")
			}
		}
	}

	msgs, err := e.proc.Run(ctx, areas, save)
	enc := json.NewEncoder(os.Stdout)
	for _, m := range msgs {
		emit(enc, m)
	}
	if err != nil {
		e.logger.WithError(err).Warn("run interrupted")
	}
}

func recordCmd(args []string) {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	f := addCommon(fs)
	_ = fs.Parse(args)

	ctx, cancel := signalContext()
	defer cancel()

	e := openEnv(f, false)
	defer e.Close()

	save := e.loadSave(ctx)
	recorded, failed := 0, 0
	for _, a := range e.areas(*f.area) {
		ok, err := e.proc.RecordExisting(ctx, a, &save)
		if err != nil {
			failed++
			e.logger.WithError(err).WithField("area", a.UniqueAreaID).Error("record existing objects")
			continue
		}
		if ok {
			recorded++
			locs, _ := save.Locations(a.UniqueAreaID)
			fmt.Printf("recorded area=%q locations=%d\n", a.UniqueAreaID, len(locs))
		}
	}
	fmt.Printf("record ok: recorded=%d failed=%d\n", recorded, failed)
}

func saveCmd(args []string) {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	f := addCommon(fs)
	_ = fs.Parse(args)

	ctx, cancel := signalContext()
	defer cancel()

	e := openEnv(f, false)
	defer e.Close()

	save := e.loadSave(ctx)
	emit(json.NewEncoder(os.Stdout), protocol.NewSaveDump(save.ExistingObjectLocations))
}

// pick: like build, but -n overrides each area's spawn count.
func pickCmd(args []string) {
	fs := flag.NewFlagSet("pick", flag.ExitOnError)
	f := addCommon(fs)
	n := fs.Int("n", 0, "spawn count override (optional)")
	_ = fs.Parse(args)
	if *n < 0 {
		fmt.Fprintln(os.Stderr, "bad -n")
		os.Exit(2)
	}

	ctx, cancel := signalContext()
	defer cancel()

	e := openEnv(f, false)
	defer e.Close()

	areas := e.areas(*f.area)
	if *n > 0 {
		for i := range areas {
			areas[i].SpawnCount = *n
		}
	}
	msgs, err := e.proc.Run(ctx, areas, e.loadSave(ctx))
	enc := json.NewEncoder(os.Stdout)
	for _, m := range msgs {
		emit(enc, struct {
			AreaID    string   `json:"area_id"`
			Seed      int64    `json:"seed"`
			Picked    [][2]int `json:"picked"`
			ErrorCode string   `json:"error_code,omitempty"`
		}{m.AreaID, spawn.AreaSeed(*f.seed, m.AreaID), m.Picked, m.ErrorCode})
	}
	if err != nil {
		e.logger.WithError(err).Warn("run interrupted")
	}
}
