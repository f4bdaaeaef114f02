package quintmg

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMoveNotFound = errors.New("quintmg: move not generated in this position")
	ErrIllegalMove  = errors.New("quintmg: move leaves own king in check")
)

// ParseUCIMove resolves a long-algebraic string ("e2e4", "e7e8q") against the
// moves generated for the current position. A promotion needs its letter;
// "e7e8" never matches a promotion.
func (p *Position) ParseUCIMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return NullMove, fmt.Errorf("%w: %q", ErrMoveNotFound, s)
	}
	var ml MoveList
	p.generateInto(&ml)
	for i := 0; i < ml.count; i++ {
		m := ml.moves[i]
		if m.String() != s {
			continue
		}
		snap := *p
		ok := p.MakeMove(m)
		*p = snap
		if !ok {
			return NullMove, fmt.Errorf("%w: %s", ErrIllegalMove, s)
		}
		return m, nil
	}
	return NullMove, fmt.Errorf("%w: %q", ErrMoveNotFound, s)
}

// PlayUCIMove parses s and applies it.
func (p *Position) PlayUCIMove(s string) (Move, error) {
	m, err := p.ParseUCIMove(s)
	if err != nil {
		return NullMove, err
	}
	p.MakeMove(m)
	return m, nil
}
