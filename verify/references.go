package verify

import (
	"fmt"
	"strings"

	goose "github.com/Oliverans/GooseEngineMG/goosemg"
	"github.com/corentings/chess/v2"
	dt "github.com/dylhunn/dragontoothmg"

	"quint-chess/fen"
)

// canonical parses s with our own reader and re-encodes it with all six
// fields, so a bad FEN is reported as an error instead of reaching a
// reference parser that panics or guesses.
func canonical(s string) (string, error) {
	p, err := fen.NewPosition(nil, s)
	if err != nil {
		return "", err
	}
	return fen.Encode(p), nil
}

// Dragontooth uses github.com/dylhunn/dragontoothmg, a legal-only generator.
type Dragontooth struct{}

func (Dragontooth) Name() string { return "dragontooth" }

func (Dragontooth) Divide(s string, depth int) (map[string]uint64, error) {
	s, err := canonical(s)
	if err != nil {
		return nil, err
	}
	div := make(map[string]uint64)
	if depth <= 0 {
		return div, nil
	}
	b := dt.ParseFen(s)
	for _, m := range b.GenerateLegalMoves() {
		undo := b.Apply(m)
		div[m.String()] = dragontoothCount(&b, depth-1)
		undo()
	}
	return div, nil
}

func dragontoothCount(b *dt.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var n uint64
	for _, m := range moves {
		undo := b.Apply(m)
		n += dragontoothCount(b, depth-1)
		undo()
	}
	return n
}

// Goose uses the make/unmake generator of github.com/Oliverans/GooseEngineMG.
type Goose struct{}

func (Goose) Name() string { return "goose" }

func (Goose) Divide(s string, depth int) (map[string]uint64, error) {
	s, err := canonical(s)
	if err != nil {
		return nil, err
	}
	b, err := goose.ParseFEN(s)
	if err != nil {
		return nil, fmt.Errorf("goose: %w", err)
	}
	div := make(map[string]uint64)
	for m, n := range goose.PerftDivide(b, depth) {
		div[m.String()] = n
	}
	return div, nil
}

// Corentings uses github.com/corentings/chess/v2, which copies an immutable
// position per move. Slow; keep depths small.
type Corentings struct{}

func (Corentings) Name() string { return "corentings" }

func (Corentings) Divide(s string, depth int) (map[string]uint64, error) {
	s, err := canonical(s)
	if err != nil {
		return nil, err
	}
	opt, err := chess.FEN(s)
	if err != nil {
		return nil, fmt.Errorf("corentings: %w", err)
	}
	pos := chess.NewGame(opt).Position()
	div := make(map[string]uint64)
	if depth <= 0 {
		return div, nil
	}
	moves := pos.ValidMoves()
	for i := range moves {
		m := &moves[i]
		key := strings.ToLower(chess.UCINotation{}.Encode(pos, m))
		div[key] = corentingsCount(pos.Update(m), depth-1)
	}
	return div, nil
}

func corentingsCount(pos *chess.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := pos.ValidMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var n uint64
	for i := range moves {
		n += corentingsCount(pos.Update(&moves[i]), depth-1)
	}
	return n
}
