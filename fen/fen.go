// Package fen converts between Forsyth-Edwards Notation and quintmg
// positions. It is the validation boundary for custom layouts: anything it
// accepts satisfies the structural invariants of quintmg.Position.
package fen

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"quint-chess/quintmg"
)

// StartPos is the FEN string for the standard initial chess position.
const StartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrFieldCount = errors.New("fen: need at least 4 fields")
	ErrRankCount  = errors.New("fen: placement must have 8 ranks")
	ErrRankWidth  = errors.New("fen: rank does not have 8 files")
	ErrPiece      = errors.New("fen: unrecognized piece character")
	ErrSide       = errors.New("fen: side to move must be 'w' or 'b'")
	ErrCastling   = errors.New("fen: invalid castling field")
	ErrEnPassant  = errors.New("fen: invalid en passant square")
	ErrCounter    = errors.New("fen: move counter is not a non-negative number")
	ErrPieceCount = errors.New("fen: too many pieces for one side")
	ErrKingCount  = errors.New("fen: more than one king for one side")
	ErrPawnRank   = errors.New("fen: pawn on the first or last rank")
)

// Parse reads a FEN string into a layout. The halfmove clock and fullmove
// number are optional and default to 0 and 1.
func Parse(s string) (quintmg.Layout, error) {
	var l quintmg.Layout
	fields := strings.Fields(s)
	if len(fields) < 4 {
		return l, fmt.Errorf("%w: got %d", ErrFieldCount, len(fields))
	}

	// 1. Piece placement
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return l, fmt.Errorf("%w: got %d", ErrRankCount, len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			ch := rankStr[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			pc := quintmg.PieceFromChar(ch)
			if pc == quintmg.NoPiece {
				return l, fmt.Errorf("%w: %q", ErrPiece, ch)
			}
			if file >= 8 {
				return l, fmt.Errorf("%w: rank %d", ErrRankWidth, rank+1)
			}
			l.Pieces[pc] |= 1 << uint(quintmg.NewSquare(file, rank))
			file++
		}
		if file != 8 {
			return l, fmt.Errorf("%w: rank %d", ErrRankWidth, rank+1)
		}
	}
	if err := checkMaterial(&l); err != nil {
		return l, err
	}

	// 2. Side to move
	switch fields[1] {
	case "w":
		l.Turn = quintmg.White
	case "b":
		l.Turn = quintmg.Black
	default:
		return l, fmt.Errorf("%w: %q", ErrSide, fields[1])
	}

	// 3. Castling rights
	if fields[2] != "-" {
		for j := 0; j < len(fields[2]); j++ {
			var cr quintmg.CastlingRights
			switch fields[2][j] {
			case 'K':
				cr = quintmg.CastlingWhiteK
			case 'Q':
				cr = quintmg.CastlingWhiteQ
			case 'k':
				cr = quintmg.CastlingBlackK
			case 'q':
				cr = quintmg.CastlingBlackQ
			default:
				return l, fmt.Errorf("%w: %q", ErrCastling, fields[2])
			}
			if l.Castling&cr != 0 {
				return l, fmt.Errorf("%w: %q", ErrCastling, fields[2])
			}
			l.Castling |= cr
		}
	}

	// 4. En passant target square
	ep, err := quintmg.ParseSquare(fields[3])
	if err != nil {
		return l, fmt.Errorf("%w: %q", ErrEnPassant, fields[3])
	}
	if ep != quintmg.NoSquare {
		want := 5
		if l.Turn == quintmg.Black {
			want = 2
		}
		if ep.Rank() != want {
			return l, fmt.Errorf("%w: %s with %s to move", ErrEnPassant, ep, l.Turn)
		}
	}
	l.EnPassant = ep

	// 5-6. Counters
	l.FullmoveNumber = 1
	if len(fields) > 4 {
		if l.HalfmoveClock, err = parseCounter(fields[4]); err != nil {
			return l, err
		}
	}
	if len(fields) > 5 {
		if l.FullmoveNumber, err = parseCounter(fields[5]); err != nil {
			return l, err
		}
		if l.FullmoveNumber == 0 {
			l.FullmoveNumber = 1
		}
	}
	return l, nil
}

// checkMaterial rejects placements no game can reach. Layouts that pass keep
// every move list within quintmg.MaxMoves.
func checkMaterial(l *quintmg.Layout) error {
	const backRanks = 0xff000000000000ff
	for _, c := range []quintmg.Color{quintmg.White, quintmg.Black} {
		var all uint64
		for k := quintmg.Pawn; k < quintmg.NoPieceKind; k++ {
			all |= l.Pieces[quintmg.MakePiece(k, c)]
		}
		if n := bits.OnesCount64(all); n > 16 {
			return fmt.Errorf("%w: %s has %d", ErrPieceCount, c, n)
		}
		pawns := l.Pieces[quintmg.MakePiece(quintmg.Pawn, c)]
		if n := bits.OnesCount64(pawns); n > 8 {
			return fmt.Errorf("%w: %s has %d pawns", ErrPieceCount, c, n)
		}
		if pawns&backRanks != 0 {
			return fmt.Errorf("%w: %s", ErrPawnRank, quintmg.Square(bits.TrailingZeros64(pawns&backRanks)))
		}
		if n := bits.OnesCount64(l.Pieces[quintmg.MakePiece(quintmg.King, c)]); n > 1 {
			return fmt.Errorf("%w: %s has %d", ErrKingCount, c, n)
		}
	}
	return nil
}

func parseCounter(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrCounter, s)
	}
	return n, nil
}

// NewPosition parses s and builds a position on lut (nil selects the
// default table).
func NewPosition(lut *quintmg.LookupTable, s string) (*quintmg.Position, error) {
	l, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return quintmg.NewPosition(lut, l), nil
}

// Encode produces the FEN string of the position's current state.
func Encode(p *quintmg.Position) string {
	var sb strings.Builder
	board := p.Pieces()

	// 1. Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := board[quintmg.NewSquare(file, rank)]
			if pc == quintmg.NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte('0' + byte(empty))
				empty = 0
			}
			sb.WriteByte(pc.Char())
		}
		if empty > 0 {
			sb.WriteByte('0' + byte(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// 2. Side to move
	if p.Turn() == quintmg.White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}

	// 3-4. Castling rights and en passant square
	sb.WriteString(p.CastlingRights().String())
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassantSquare().String())

	// 5-6. Counters
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfmoveClock()))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullmoveNumber()))
	return sb.String()
}
