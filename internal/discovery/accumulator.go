package discovery

import "github.com/jonathan/competitor-discovery/internal/types"

// initialCapacity bounds the up-front allocation; max comes from callers.
const initialCapacity = 16

// accumulator collects evidence up to a fixed maximum, optionally skipping
// exact (source, text) repeats.
type accumulator struct {
	max   int
	items []types.UpdateEvidence
	seen  map[string]bool // nil when duplicates are allowed
}

func newAccumulator(max int, dedupe bool) *accumulator {
	acc := &accumulator{max: max, items: make([]types.UpdateEvidence, 0, min(max, initialCapacity))}
	if dedupe {
		acc.seen = make(map[string]bool)
	}
	return acc
}

// add appends e unless acc is full or e is a repeat, and reports whether acc is now full.
func (a *accumulator) add(e types.UpdateEvidence) bool {
	if a.full() {
		return true
	}
	if a.seen != nil {
		if a.seen[e.Key()] {
			return false
		}
		a.seen[e.Key()] = true
	}
	a.items = append(a.items, e)
	return a.full()
}

// addItems adds each text with the same source and reports whether acc is full.
func (a *accumulator) addItems(source string, texts []string) bool {
	for _, text := range texts {
		if a.add(types.UpdateEvidence{Source: source, Text: text}) {
			return true
		}
	}
	return a.full()
}

func (a *accumulator) full() bool { return len(a.items) >= a.max }

func (a *accumulator) count() int { return len(a.items) }
