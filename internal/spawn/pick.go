package spawn

import (
	"hash/fnv"
	"sort"

	"tilespawn.dev/internal/sim/tiles"
)

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func hash2(seed int64, x, y int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// AreaSeed derives a per-area seed so areas sharing a run seed pick
// independently.
func AreaSeed(seed int64, areaID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(areaID))
	return int64(mix64(uint64(seed) ^ h.Sum64()))
}

// Pick chooses up to n distinct tiles from candidates that are not in
// occupied. The same inputs always give the same picks, in pick order.
func Pick(candidates []tiles.Coord, n int, seed int64, occupied tiles.Set) []tiles.Coord {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}
	type keyed struct {
		c tiles.Coord
		k uint64
	}
	seen := tiles.NewSet()
	pool := make([]keyed, 0, len(candidates))
	for _, c := range candidates {
		if occupied.Has(c) || seen.Has(c) {
			continue
		}
		seen.Add(c)
		pool = append(pool, keyed{c: c, k: hash2(seed, c.X, c.Y)})
	}
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].k != pool[j].k {
			return pool[i].k < pool[j].k
		}
		if pool[i].c.X != pool[j].c.X {
			return pool[i].c.X < pool[j].c.X
		}
		return pool[i].c.Y < pool[j].c.Y
	})
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]tiles.Coord, 0, n)
	for _, p := range pool[:n] {
		out = append(out, p.c)
	}
	return out
}
