// Package verify cross-checks perft divides against independent move
// generators. A mismatch on a root move narrows a generator bug down to one
// subtree; repeat one ply deeper from that move to find it.
package verify

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// ErrUnknownReference is returned by ByName.
var ErrUnknownReference = errors.New("verify: unknown reference generator")

// Reference is a move generator able to produce a perft divide for a FEN.
type Reference interface {
	Name() string
	Divide(fen string, depth int) (map[string]uint64, error)
}

// References lists every available generator, in ByName order.
func References() []Reference {
	return []Reference{Dragontooth{}, Goose{}, Corentings{}}
}

// Names returns the names accepted by ByName.
func Names() []string {
	refs := References()
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name()
	}
	return names
}

// ByName looks a generator up by its Name, case-insensitively.
func ByName(name string) (Reference, error) {
	for _, r := range References() {
		if strings.EqualFold(r.Name(), name) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownReference, name, strings.Join(Names(), ", "))
}

// Mismatch is a root move whose counts differ or which only one side
// generated.
type Mismatch struct {
	Move   string
	Ours   uint64
	Theirs uint64
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: ours %d theirs %d", m.Move, m.Ours, m.Theirs)
}

// Compare returns every root move whose counts differ, sorted by move.
func Compare(ours, theirs map[string]uint64) []Mismatch {
	keys := make([]string, 0, len(ours)+len(theirs))
	for k := range ours {
		keys = append(keys, k)
	}
	for k := range theirs {
		if _, ok := ours[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var out []Mismatch
	for _, k := range keys {
		a, inOurs := ours[k]
		b, inTheirs := theirs[k]
		if a != b || inOurs != inTheirs {
			out = append(out, Mismatch{Move: k, Ours: a, Theirs: b})
		}
	}
	return out
}
