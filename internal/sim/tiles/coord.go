package tiles

import "sort"

// Coord identifies one tile in a map grid.
type Coord struct {
	X int
	Y int
}

// Set is a coordinate set. The zero value is not usable; use NewSet.
type Set map[Coord]struct{}

func NewSet(coords ...Coord) Set {
	s := make(Set, len(coords))
	for _, c := range coords {
		s[c] = struct{}{}
	}
	return s
}

func (s Set) Add(c Coord) { s[c] = struct{}{} }

func (s Set) Has(c Coord) bool {
	_, ok := s[c]
	return ok
}

func (s Set) Len() int { return len(s) }

// Union adds every coordinate of other to s.
func (s Set) Union(other Set) {
	for c := range other {
		s[c] = struct{}{}
	}
}

// Except removes every coordinate of other from s.
func (s Set) Except(other Set) {
	if len(s) == 0 {
		return
	}
	for c := range other {
		delete(s, c)
	}
}

// Sorted returns the coordinates ordered by X, then Y.
func (s Set) Sorted() []Coord {
	out := make([]Coord, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}
