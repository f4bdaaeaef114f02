// Package perft counts the leaf nodes of the legal move tree. It drives the
// quintmg generator the way a search would: snapshot, make, recurse, restore.
package perft

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"quint-chess/quintmg"
)

// ErrDepth is returned for negative depths.
var ErrDepth = errors.New("perft: depth must be >= 0")

// Count returns the number of legal move sequences of length depth. Depth 0
// counts the position itself. p is left as it was.
func Count(p *quintmg.Position, depth int) (uint64, error) {
	if depth < 0 {
		return 0, fmt.Errorf("%w: %d", ErrDepth, depth)
	}
	return count(p, depth), nil
}

func count(p *quintmg.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var ml quintmg.MoveList
	p.GenerateMovesInto(&ml)
	var nodes uint64
	for i := 0; i < ml.Len(); i++ {
		snap := p.CopyBoard()
		if p.MakeMove(ml.At(i)) {
			if depth == 1 {
				nodes++
			} else {
				nodes += count(p, depth-1)
			}
		}
		*p = snap
	}
	return nodes
}

// Divide returns the subtree count below every legal root move, keyed by the
// move's UCI string. Depth 0 yields an empty map.
func Divide(p *quintmg.Position, depth int) (map[string]uint64, error) {
	if depth < 0 {
		return nil, fmt.Errorf("%w: %d", ErrDepth, depth)
	}
	div := make(map[string]uint64)
	if depth == 0 {
		return div, nil
	}
	legal := p.LegalMoves()
	for _, m := range legal.Slice() {
		snap := p.CopyBoard()
		p.MakeMove(m)
		div[m.String()] = count(p, depth-1)
		*p = snap
	}
	return div, nil
}

// ParallelDivide is Divide with the root moves fanned out over at most
// workers goroutines (0 selects GOMAXPROCS). Each goroutine owns its own copy
// of the position; only the lookup table is shared. Cancelling ctx stops
// work that has not started yet.
func ParallelDivide(ctx context.Context, p *quintmg.Position, depth, workers int) (map[string]uint64, error) {
	if depth < 0 {
		return nil, fmt.Errorf("%w: %d", ErrDepth, depth)
	}
	div := make(map[string]uint64)
	if depth == 0 {
		return div, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	root := p.CopyBoard()
	legal := root.LegalMoves()

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, m := range legal.Slice() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			child := root
			child.MakeMove(m)
			n := count(&child, depth-1)
			mu.Lock()
			div[m.String()] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return div, nil
}

// Entry is one line of a divide listing.
type Entry struct {
	Move  string `json:"move"`
	Nodes uint64 `json:"nodes"`
}

// Sorted orders a divide map by move string for stable output.
func Sorted(div map[string]uint64) []Entry {
	keys := make([]string, 0, len(div))
	for k := range div {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{Move: k, Nodes: div[k]}
	}
	return out
}

// Total sums a divide map.
func Total(div map[string]uint64) uint64 {
	var n uint64
	for _, v := range div {
		n += v
	}
	return n
}
