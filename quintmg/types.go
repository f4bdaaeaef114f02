package quintmg

import (
	"errors"
	"math/bits"
)

// Color is the side owning a piece or having the move.
type Color uint8

const (
	White Color = 0
	Black Color = 1
	// NoColor only appears on null moves; a real position never has it to move.
	NoColor Color = 2
)

// Other returns the opposing side.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// PieceKind is a colorless piece type.
type PieceKind uint8

const (
	Pawn PieceKind = iota
	Rook
	Knight
	Bishop
	Queen
	King
	NoPieceKind
)

var kindLetters = [...]byte{'p', 'r', 'n', 'b', 'q', 'k', '?'}

// Letter returns the lowercase FEN/UCI letter of the kind.
func (k PieceKind) Letter() byte { return kindLetters[min(int(k), int(NoPieceKind))] }

// Piece is a colored piece code. It doubles as the index of the piece's
// bitboard: kind*2 + color, so White pieces are even and Black pieces odd.
type Piece uint8

const (
	WhitePawn   = Piece(Pawn)<<1 | Piece(White)
	BlackPawn   = Piece(Pawn)<<1 | Piece(Black)
	WhiteRook   = Piece(Rook)<<1 | Piece(White)
	BlackRook   = Piece(Rook)<<1 | Piece(Black)
	WhiteKnight = Piece(Knight)<<1 | Piece(White)
	BlackKnight = Piece(Knight)<<1 | Piece(Black)
	WhiteBishop = Piece(Bishop)<<1 | Piece(White)
	BlackBishop = Piece(Bishop)<<1 | Piece(Black)
	WhiteQueen  = Piece(Queen)<<1 | Piece(White)
	BlackQueen  = Piece(Queen)<<1 | Piece(Black)
	WhiteKing   = Piece(King)<<1 | Piece(White)
	BlackKing   = Piece(King)<<1 | Piece(Black)

	NoPiece Piece = 12
)

// MakePiece combines a kind and a color.
func MakePiece(k PieceKind, c Color) Piece { return Piece(k)<<1 | Piece(c) }

// Kind returns the colorless kind, NoPieceKind for NoPiece.
func (p Piece) Kind() PieceKind {
	if p >= NoPiece {
		return NoPieceKind
	}
	return PieceKind(p >> 1)
}

// Color returns the owner, NoColor for NoPiece.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p & 1)
}

// Char returns the FEN character: uppercase for White, lowercase for Black, '.' for NoPiece.
func (p Piece) Char() byte {
	if p >= NoPiece {
		return '.'
	}
	ch := p.Kind().Letter()
	if p.Color() == White {
		ch -= 'a' - 'A'
	}
	return ch
}

// PieceFromChar is the inverse of Char. Unknown characters map to NoPiece.
func PieceFromChar(ch byte) Piece {
	c := White
	if ch >= 'a' && ch <= 'z' {
		c = Black
		ch -= 'a' - 'A'
	}
	switch ch {
	case 'P':
		return MakePiece(Pawn, c)
	case 'R':
		return MakePiece(Rook, c)
	case 'N':
		return MakePiece(Knight, c)
	case 'B':
		return MakePiece(Bishop, c)
	case 'Q':
		return MakePiece(Queen, c)
	case 'K':
		return MakePiece(King, c)
	}
	return NoPiece
}

// CastlingRights holds the four independent castling flags.
type CastlingRights uint8

const (
	// White king-side (short) castling
	CastlingWhiteK CastlingRights = 1 << iota
	// White queen-side (long) castling
	CastlingWhiteQ
	// Black king-side castling
	CastlingBlackK
	// Black queen-side castling
	CastlingBlackQ

	NoCastling  CastlingRights = 0
	AllCastling                = CastlingWhiteK | CastlingWhiteQ | CastlingBlackK | CastlingBlackQ
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr&AllCastling == 0 {
		return "-"
	}
	s := make([]byte, 0, 4)
	for i, ch := range []byte("KQkq") {
		if cr&(1<<i) != 0 {
			s = append(s, ch)
		}
	}
	return string(s)
}

// Square is a board index, rank-major: 0 = a1, 7 = h1, 63 = h8.
type Square int8

// NoSquare marks the absence of a square (no en-passant target).
const NoSquare Square = -1

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
)

const (
	A8 Square = iota + 56
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)

// ErrBadSquare is returned by ParseSquare for anything but "a1".."h8".
var ErrBadSquare = errors.New("quintmg: invalid square")

// NewSquare builds a square from 0-based file and rank.
func NewSquare(file, rank int) Square { return Square(rank*8 + file) }

// File returns 0 (a) .. 7 (h).
func (s Square) File() int { return int(s) & 7 }

// Rank returns 0 (rank 1) .. 7 (rank 8).
func (s Square) Rank() int { return int(s) >> 3 }

// String returns the algebraic name, "-" for NoSquare.
func (s Square) String() string {
	if s < 0 || s > 63 {
		return "-"
	}
	return string([]byte{'a' + byte(s.File()), '1' + byte(s.Rank())})
}

// ParseSquare converts "e4" style coordinates. "-" yields NoSquare.
func ParseSquare(str string) (Square, error) {
	if str == "-" {
		return NoSquare, nil
	}
	if len(str) != 2 || str[0] < 'a' || str[0] > 'h' || str[1] < '1' || str[1] > '8' {
		return NoSquare, ErrBadSquare
	}
	return NewSquare(int(str[0]-'a'), int(str[1]-'1')), nil
}

// Bitboards is one side's per-kind occupancy, handy for evaluators and encoders.
type Bitboards struct {
	Pawns   uint64
	Rooks   uint64
	Knights uint64
	Bishops uint64
	Queens  uint64
	Kings   uint64
	All     uint64
}

// ==========================
// Bitboard helpers
// ==========================

// popLSB removes and returns the least significant set bit from the mask.
func popLSB(mask *uint64) Square {
	idx := bits.TrailingZeros64(*mask)
	*mask &= *mask - 1
	return Square(idx)
}
