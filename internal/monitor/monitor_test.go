package monitor

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"tilespawn.dev/internal/sim/tiles"
)

func TestMonitorLogLevelsAndArea(t *testing.T) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.TraceLevel)
	m := New(l).WithArea("Farm 1")

	m.Log("hello", tiles.LevelInfo)
	m.Log("careful", tiles.LevelWarn)
	m.Log("bad", tiles.LevelAlert)

	if len(hook.Entries) != 3 {
		t.Fatalf("entries=%d want 3", len(hook.Entries))
	}
	want := []logrus.Level{logrus.InfoLevel, logrus.WarnLevel, logrus.ErrorLevel}
	for i, e := range hook.Entries {
		if e.Level != want[i] {
			t.Fatalf("entry %d level=%s want %s", i, e.Level, want[i])
		}
		if e.Data["area"] != "Farm 1" {
			t.Fatalf("entry %d area=%v", i, e.Data["area"])
		}
	}
}

func TestMonitorRespectsLoggerLevel(t *testing.T) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.InfoLevel)
	New(l).Log("noise", tiles.LevelDebug)
	if len(hook.Entries) != 0 {
		t.Fatalf("debug entry should be filtered at info level")
	}
}

func TestMonitorFeedsBuilderDiagnostics(t *testing.T) {
	l, hook := test.NewNullLogger()
	area := tiles.SpawnArea{UniqueAreaID: "Stumps", Kind: tiles.KindLargeObject, FindExistingObjectLocations: true}
	b := tiles.NewBuilder(emptyLookup{}, New(l).WithArea(area.UniqueAreaID))
	if _, err := b.Build(area, tiles.SaveData{}, nil, nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(hook.Entries) != 2 || hook.LastEntry().Level != logrus.InfoLevel {
		t.Fatalf("entries=%d, want 2 info diagnostics", len(hook.Entries))
	}
}

type emptyLookup struct{}

func (emptyLookup) TilesByIndex(tiles.SpawnArea, []int) (tiles.Set, error) { return tiles.NewSet(), nil }
func (emptyLookup) TilesByProperty(tiles.SpawnArea, string) (tiles.Set, error) {
	return tiles.NewSet(), nil
}
func (emptyLookup) TilesByRangeString(tiles.SpawnArea, string) (tiles.Set, error) {
	return tiles.NewSet(), nil
}

func TestMonitorAlertField(t *testing.T) {
	l, hook := test.NewNullLogger()
	New(l).Log("report this", tiles.LevelAlert)
	if e := hook.LastEntry(); e == nil || e.Data["alert"] != true {
		t.Fatalf("alert entry missing alert field: %+v", e)
	}
}
