package quintmg_test

import (
	"testing"
	"unsafe"

	"golang.org/x/exp/slices"

	"quint-chess/fen"
	"quint-chess/quintmg"
)

// walk visits every position reachable within depth and calls check after
// each legal move.
func walk(t *testing.T, p *quintmg.Position, depth int, check func(before, after *quintmg.Position, m quintmg.Move)) {
	t.Helper()
	if depth == 0 {
		return
	}
	p.GenerateMoves()
	ml := p.MoveList()
	for _, m := range ml.Slice() {
		snap := p.CopyBoard()
		if p.MakeMove(m) {
			check(&snap, p, m)
			walk(t, p, depth-1, check)
		}
		*p = snap
	}
}

func TestInvariantsPreserved(t *testing.T) {
	for _, s := range []string{fen.StartPos, kiwipete, "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1"} {
		p := mustPosition(t, s)
		if err := p.Validate(); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		depth := 3
		if testing.Short() {
			depth = 2
		}
		walk(t, p, depth, func(before, after *quintmg.Position, m quintmg.Move) {
			if err := after.Validate(); err != nil {
				t.Fatalf("after %s from %s: %v", m, fen.Encode(before), err)
			}
			if after.Turn() != before.Turn().Other() {
				t.Fatalf("after %s: turn did not flip", m)
			}
			if after.CastlingRights()&^before.CastlingRights() != 0 {
				t.Fatalf("after %s: castling right re-set (%s -> %s)", m, before.CastlingRights(), after.CastlingRights())
			}
			ep := after.EnPassantSquare()
			if m.Kind() == quintmg.DoublePawnPush {
				if want := quintmg.Square((int(m.From()) + int(m.To())) / 2); ep != want {
					t.Fatalf("after %s: en passant %s want %s", m, ep, want)
				}
			} else if ep != quintmg.NoSquare {
				t.Fatalf("after %s: en passant %s not cleared", m, ep)
			}
		})
	}
}

func TestCopyBoardIsIndependent(t *testing.T) {
	p := mustPosition(t, kiwipete)
	before := fen.Encode(p)
	beforePieces := p.Pieces()

	p.GenerateMoves()
	ml := p.MoveList()
	for _, m := range ml.Slice() {
		cp := p.CopyBoard()
		cp.MakeMove(m)
		if got := fen.Encode(p); got != before {
			t.Fatalf("%s on copy changed original: %s", m, got)
		}
		if p.Pieces() != beforePieces {
			t.Fatalf("%s on copy changed original layout", m)
		}
	}
}

func TestSnapshotKeepsItsMoveList(t *testing.T) {
	p := mustPosition(t, fen.StartPos)
	p.GenerateMoves()
	want := p.MoveList()

	cp := p.CopyBoard()
	if !cp.TryMove(mustMove(t, &cp, "e2e4")) {
		t.Fatalf("e2e4 rejected")
	}
	cp.GenerateMoves()
	got := p.MoveList()
	if !slices.Equal(got.Strings(), want.Strings()) {
		t.Fatalf("GenerateMoves on a copy changed the original list: %v", got.Strings())
	}
	if size := unsafe.Sizeof(*p); size > 256 {
		t.Fatalf("Position is %d bytes; snapshots should not carry a move list", size)
	}
}

func TestGenerateMovesIntoMatchesGenerateMoves(t *testing.T) {
	p := mustPosition(t, kiwipete)
	p.GenerateMoves()
	want := p.MoveList()
	var ml quintmg.MoveList
	p.GenerateMovesInto(&ml)
	p.GenerateMovesInto(&ml)
	if !slices.Equal(ml.Strings(), want.Strings()) {
		t.Fatalf("got %v want %v", ml.Strings(), want.Strings())
	}
}

func TestTryMoveRejectsSelfCheck(t *testing.T) {
	// The e2 bishop is pinned against e1 by the e8 rook.
	p := mustPosition(t, "4r1k1/8/8/8/8/8/4B3/4K3 w - - 0 1")
	before := fen.Encode(p)
	p.GenerateMoves()
	ml := p.MoveList()
	var rejected int
	for _, m := range ml.Slice() {
		if m.Piece() != quintmg.Bishop {
			continue
		}
		if p.TryMove(m) {
			t.Fatalf("pinned bishop move %s accepted", m)
		}
		rejected++
		if got := fen.Encode(p); got != before {
			t.Fatalf("rejected %s left position changed: %s", m, got)
		}
	}
	if rejected == 0 {
		t.Fatalf("no bishop moves generated; pseudo-legal generation should list them")
	}
}

func TestCastlingGeneration(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		moves []string // played before generating
		want  []string
		never []string
	}{
		{"white both sides", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", nil, []string{"e1g1", "e1c1"}, nil},
		{"black both sides", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", nil, []string{"e8g8", "e8c8"}, nil},

		{"white rook moved", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
			[]string{"h1h2", "a8b8", "h2h1", "b8a8"}, []string{"e1c1"}, []string{"e1g1"}},
		{"white f1 occupied", "r3k2r/8/8/8/8/8/8/R3KB1R w KQkq - 0 1", nil, []string{"e1c1"}, []string{"e1g1"}},
		{"white g1 occupied", "r3k2r/8/8/8/8/8/8/R3K1NR w KQkq - 0 1", nil, []string{"e1c1"}, []string{"e1g1"}},
		{"white b1 occupied", "r3k2r/8/8/8/8/8/8/RN2K2R w KQkq - 0 1", nil, []string{"e1g1"}, []string{"e1c1"}},
		{"white in check", "4k3/8/8/8/8/8/4r3/R3K2R w KQ - 0 1", nil, nil, []string{"e1g1", "e1c1"}},
		{"white f1 attacked", "4kr2/8/8/8/8/8/8/R3K2R w KQ - 0 1", nil, []string{"e1c1"}, []string{"e1g1"}},
		{"white g1 attacked", "4k1r1/8/8/8/8/8/8/R3K2R w KQ - 0 1", nil, []string{"e1c1"}, []string{"e1g1"}},
		{"white b1 attacked only", "1r2k3/8/8/8/8/8/8/R3K2R w KQ - 0 1", nil, []string{"e1c1", "e1g1"}, nil},

		{"black rook moved", "r3k2r/8/8/8/8/8/8/4K3 b kq - 0 1",
			[]string{"h8h7", "e1e2", "h7h8", "e2e1"}, []string{"e8c8"}, []string{"e8g8"}},
		{"black g8 occupied", "r3k1nr/8/8/8/8/8/8/4K3 b kq - 0 1", nil, []string{"e8c8"}, []string{"e8g8"}},
		{"black in check", "r3k2r/8/8/8/8/8/8/4R1K1 b kq - 0 1", nil, nil, []string{"e8g8", "e8c8"}},
		{"black f8 attacked", "r3k2r/8/8/8/8/8/8/4KR2 b kq - 0 1", nil, []string{"e8c8"}, []string{"e8g8"}},
		{"black d8 attacked", "r3k2r/8/8/8/8/8/8/3RK3 b kq - 0 1", nil, []string{"e8g8"}, []string{"e8c8"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := mustPosition(t, tc.fen)
			for _, s := range tc.moves {
				if _, err := p.PlayUCIMove(s); err != nil {
					t.Fatalf("play %s: %v", s, err)
				}
			}
			p.GenerateMoves()
			ml := p.MoveList()
			got := ml.Strings()
			for _, s := range tc.want {
				if !contains(got, s) {
					t.Errorf("%s missing from %v", s, got)
				}
			}
			for _, s := range tc.never {
				if contains(got, s) {
					t.Errorf("%s generated, want rejected", s)
				}
			}
		})
	}
}

func TestCastlingMovesRook(t *testing.T) {
	tests := []struct {
		fen, move        string
		rookFrom, rookTo quintmg.Square
		king             quintmg.Square
		rook             quintmg.Piece
	}{
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", quintmg.H1, quintmg.F1, quintmg.G1, quintmg.WhiteRook},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1c1", quintmg.A1, quintmg.D1, quintmg.C1, quintmg.WhiteRook},
		{"r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8g8", quintmg.H8, quintmg.F8, quintmg.G8, quintmg.BlackRook},
		{"r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8c8", quintmg.A8, quintmg.D8, quintmg.C8, quintmg.BlackRook},
	}
	for _, tc := range tests {
		t.Run(tc.move, func(t *testing.T) {
			p := mustPosition(t, tc.fen)
			m := mustMove(t, p, tc.move)
			if !m.IsCastle() {
				t.Fatalf("%s kind %v, want castle", tc.move, m.Kind())
			}
			mover := p.Turn()
			if !p.MakeMove(m) {
				t.Fatalf("%s illegal", tc.move)
			}
			if p.PieceAt(tc.rookFrom) != quintmg.NoPiece || p.PieceAt(tc.rookTo) != tc.rook {
				t.Fatalf("rook not relocated %s -> %s", tc.rookFrom, tc.rookTo)
			}
			if p.PieceAt(tc.king).Kind() != quintmg.King {
				t.Fatalf("king not on %s", tc.king)
			}
			var own quintmg.CastlingRights = quintmg.CastlingWhiteK | quintmg.CastlingWhiteQ
			if mover == quintmg.Black {
				own = quintmg.CastlingBlackK | quintmg.CastlingBlackQ
			}
			if p.CastlingRights()&own != 0 {
				t.Fatalf("rights %s still held after castling", p.CastlingRights())
			}
			if err := p.Validate(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestCastlingRightsUpdates(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		moves []string
		want  quintmg.CastlingRights
	}{
		{"king move", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", []string{"e1f1"},
			quintmg.CastlingBlackK | quintmg.CastlingBlackQ},
		{"a1 rook move", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", []string{"a1b1"},
			quintmg.CastlingWhiteK | quintmg.CastlingBlackK | quintmg.CastlingBlackQ},
		{"h8 rook move", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", []string{"h8g8"},
			quintmg.CastlingWhiteK | quintmg.CastlingWhiteQ | quintmg.CastlingBlackQ},
		{"rook captured in corner", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", []string{"a1a8"},
			quintmg.CastlingWhiteK | quintmg.CastlingBlackK},
		{"unrelated move", "r3k2r/8/8/8/8/8/P7/R3K2R w KQkq - 0 1", []string{"a2a3"},
			quintmg.AllCastling},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := mustPosition(t, tc.fen)
			for _, s := range tc.moves {
				if _, err := p.PlayUCIMove(s); err != nil {
					t.Fatalf("play %s: %v", s, err)
				}
			}
			if got := p.CastlingRights(); got != tc.want {
				t.Fatalf("rights: got %s want %s", got, tc.want)
			}
		})
	}
}

func TestEnPassant(t *testing.T) {
	p := mustPosition(t, "4k3/8/8/8/3p4/8/4P3/4K3 w - - 0 1")
	e3 := quintmg.NewSquare(4, 2)
	e4 := quintmg.NewSquare(4, 3)
	d4 := quintmg.NewSquare(3, 3)

	m := mustMove(t, p, "e2e4")
	if m.Kind() != quintmg.DoublePawnPush {
		t.Fatalf("e2e4 kind %v want double push", m.Kind())
	}
	p.MakeMove(m)
	if p.EnPassantSquare() != e3 {
		t.Fatalf("en passant square %s want e3", p.EnPassantSquare())
	}

	t.Run("capture removes the pawn behind the target", func(t *testing.T) {
		q := p.CopyBoard()
		ep := mustMove(t, &q, "d4e3")
		if ep.Kind() != quintmg.EnPassant {
			t.Fatalf("d4e3 kind %v want en passant", ep.Kind())
		}
		if !q.MakeMove(ep) {
			t.Fatalf("d4e3 illegal")
		}
		if q.PieceAt(e4) != quintmg.NoPiece {
			t.Fatalf("captured pawn still on e4")
		}
		if q.PieceAt(e3) != quintmg.BlackPawn || q.PieceAt(d4) != quintmg.NoPiece {
			t.Fatalf("capturing pawn not on e3")
		}
		if q.EnPassantSquare() != quintmg.NoSquare {
			t.Fatalf("en passant square survived the capture")
		}
		if err := q.Validate(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("window closes after one ply", func(t *testing.T) {
		q := p.CopyBoard()
		for _, s := range []string{"e8d8", "e1d1"} {
			if _, err := q.PlayUCIMove(s); err != nil {
				t.Fatalf("play %s: %v", s, err)
			}
			if q.EnPassantSquare() != quintmg.NoSquare {
				t.Fatalf("after %s en passant square %s", s, q.EnPassantSquare())
			}
		}
		q.GenerateMoves()
		ml := q.MoveList()
		for _, m := range ml.Slice() {
			if m.Kind() == quintmg.EnPassant {
				t.Fatalf("%s generated after the window closed", m)
			}
		}
	})
}

func TestEnPassantEmittedOnce(t *testing.T) {
	// Two white pawns can take on d6; each gets exactly one en-passant move.
	p := mustPosition(t, "4k3/8/8/2PpP3/8/8/8/4K3 w - d6 0 1")
	p.GenerateMoves()
	ml := p.MoveList()
	var eps []string
	for _, m := range ml.Slice() {
		if m.Kind() == quintmg.EnPassant {
			eps = append(eps, m.String())
		}
	}
	if len(eps) != 2 || !contains(eps, "c5d6") || !contains(eps, "e5d6") {
		t.Fatalf("en passant moves %v want [c5d6 e5d6]", eps)
	}
}

func TestPromotionCompleteness(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		from   quintmg.Square
		quiet  int
		captur int
	}{
		{"white push", "4k3/1P6/8/8/8/8/8/4K3 w - - 0 1", quintmg.NewSquare(1, 6), 4, 0},
		{"white push and capture", "n3k3/1P6/8/8/8/8/8/4K3 w - - 0 1", quintmg.NewSquare(1, 6), 4, 4},
		{"white capture only", "nn2k3/1P6/8/8/8/8/8/4K3 w - - 0 1", quintmg.NewSquare(1, 6), 0, 4},
		{"black push and capture", "4k3/8/8/8/8/8/6p1/4K2R b - - 0 1", quintmg.NewSquare(6, 1), 4, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := mustPosition(t, tc.fen)
			p.GenerateMoves()
			ml := p.MoveList()
			var quiet, capture int
			seen := map[quintmg.PieceKind]int{}
			for _, m := range ml.Slice() {
				if m.From() != tc.from {
					continue
				}
				if !m.IsPromotion() {
					t.Fatalf("%s (%v) reaches the last rank without promoting", m, m.Kind())
				}
				seen[m.PromotionKind()]++
				if m.IsCapture() {
					capture++
				} else {
					quiet++
				}
			}
			if quiet != tc.quiet || capture != tc.captur {
				t.Fatalf("got %d pushes %d captures want %d %d", quiet, capture, tc.quiet, tc.captur)
			}
			per := (tc.quiet + tc.captur) / 4
			for _, k := range []quintmg.PieceKind{quintmg.Knight, quintmg.Bishop, quintmg.Rook, quintmg.Queen} {
				if seen[k] != per {
					t.Errorf("promotion to %c: %d moves want %d", k.Letter(), seen[k], per)
				}
			}
		})
	}
}

func TestPromotionReplacesPawn(t *testing.T) {
	p := mustPosition(t, "n3k3/1P6/8/8/8/8/8/4K3 w - - 0 1")
	if _, err := p.PlayUCIMove("b7a8n"); err != nil {
		t.Fatal(err)
	}
	if got := p.PieceAt(quintmg.A8); got != quintmg.WhiteKnight {
		t.Fatalf("a8 holds %c want N", got.Char())
	}
	if p.PieceBitboard(quintmg.WhitePawn) != 0 || p.PieceBitboard(quintmg.BlackKnight) != 0 {
		t.Fatalf("pawn or captured knight left behind")
	}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestMoveCounters(t *testing.T) {
	p := mustPosition(t, fen.StartPos)
	steps := []struct {
		move     string
		halfmove int
		fullmove int
	}{
		{"g1f3", 1, 1},
		{"g8f6", 2, 2},
		{"e2e4", 0, 2},
		{"f6e4", 0, 3},
		{"b1c3", 1, 3},
	}
	for _, s := range steps {
		if _, err := p.PlayUCIMove(s.move); err != nil {
			t.Fatalf("play %s: %v", s.move, err)
		}
		if p.HalfmoveClock() != s.halfmove || p.FullmoveNumber() != s.fullmove {
			t.Fatalf("after %s: counters %d %d want %d %d", s.move,
				p.HalfmoveClock(), p.FullmoveNumber(), s.halfmove, s.fullmove)
		}
	}
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
