package quintmg

import (
	"errors"
	"fmt"
	"math/bits"
)

// Layout is everything needed to build a custom Position: the twelve piece
// bitboards indexed by Piece, plus the game-state fields. It is the contract
// a FEN parser fills in. Overlapping pieces are not rejected here.
type Layout struct {
	Pieces         [12]uint64
	Castling       CastlingRights
	EnPassant      Square
	Turn           Color
	HalfmoveClock  int
	FullmoveNumber int
}

// StartingLayout is the standard initial position.
func StartingLayout() Layout {
	var l Layout
	l.Pieces[WhitePawn] = 0x000000000000FF00
	l.Pieces[WhiteRook] = 0x0000000000000081
	l.Pieces[WhiteKnight] = 0x0000000000000042
	l.Pieces[WhiteBishop] = 0x0000000000000024
	l.Pieces[WhiteQueen] = 0x0000000000000008
	l.Pieces[WhiteKing] = 0x0000000000000010
	l.Pieces[BlackPawn] = 0x00FF000000000000
	l.Pieces[BlackRook] = 0x8100000000000000
	l.Pieces[BlackKnight] = 0x4200000000000000
	l.Pieces[BlackBishop] = 0x2400000000000000
	l.Pieces[BlackQueen] = 0x0800000000000000
	l.Pieces[BlackKing] = 0x1000000000000000
	l.Castling = AllCastling
	l.EnPassant = NoSquare
	l.Turn = White
	l.FullmoveNumber = 1
	return l
}

// Position is a mutable chess position. It is a small fixed-size value:
// copying it (CopyBoard or plain assignment) yields an independent snapshot,
// which is how callers undo MakeMove. Only the *LookupTable and the last
// generated move list are shared, and neither is written after it is built.
type Position struct {
	lut *LookupTable

	// Piece bitboards indexed by Piece (kind*2 + color)
	pieces [12]uint64

	// Derived from pieces by updateAggregates; never written anywhere else.
	allWhitePieces uint64
	allBlackPieces uint64
	allPieces      uint64
	emptySquares   uint64

	turn           Color
	castlingRights CastlingRights
	enPassantSq    Square

	// Halfmove clock (half-moves since last capture or pawn move, for the 50-move rule)
	halfmoveClock int
	// Fullmove number (starts at 1, incremented after Black's move)
	fullmoveNumber int

	// Output of the last GenerateMoves call. GenerateMoves installs a fresh
	// list instead of refilling this one, so snapshots never see it change.
	moves *MoveList
}

// NewStartingPosition returns the standard initial position. A nil table
// selects DefaultLookupTable.
func NewStartingPosition(lut *LookupTable) *Position {
	return NewPosition(lut, StartingLayout())
}

// NewPosition builds a position from a custom layout. A nil table selects
// DefaultLookupTable.
func NewPosition(lut *LookupTable, l Layout) *Position {
	if lut == nil {
		lut = DefaultLookupTable()
	}
	p := &Position{
		lut:            lut,
		pieces:         l.Pieces,
		turn:           l.Turn,
		castlingRights: l.Castling & AllCastling,
		enPassantSq:    l.EnPassant,
		halfmoveClock:  l.HalfmoveClock,
		fullmoveNumber: l.FullmoveNumber,
	}
	if p.fullmoveNumber < 1 {
		p.fullmoveNumber = 1
	}
	p.updateAggregates()
	return p
}

// updateAggregates recomputes the four derived sets from the piece
// bitboards. Every mutation of pieces must end here.
func (p *Position) updateAggregates() {
	p.allWhitePieces = p.pieces[WhitePawn] | p.pieces[WhiteRook] | p.pieces[WhiteKnight] |
		p.pieces[WhiteBishop] | p.pieces[WhiteQueen] | p.pieces[WhiteKing]
	p.allBlackPieces = p.pieces[BlackPawn] | p.pieces[BlackRook] | p.pieces[BlackKnight] |
		p.pieces[BlackBishop] | p.pieces[BlackQueen] | p.pieces[BlackKing]
	p.allPieces = p.allWhitePieces | p.allBlackPieces
	p.emptySquares = ^p.allPieces
}

// CopyBoard returns an independent copy for speculative search. Restore by
// assigning it back: *p = snapshot.
func (p *Position) CopyBoard() Position { return *p }

// Layout returns the construction data of the current position.
func (p *Position) Layout() Layout {
	return Layout{
		Pieces:         p.pieces,
		Castling:       p.castlingRights,
		EnPassant:      p.enPassantSq,
		Turn:           p.turn,
		HalfmoveClock:  p.halfmoveClock,
		FullmoveNumber: p.fullmoveNumber,
	}
}

// LookupTable returns the shared table this position reads.
func (p *Position) LookupTable() *LookupTable { return p.lut }

// Turn reports which side is to play.
func (p *Position) Turn() Color { return p.turn }

// CastlingRights returns the remaining castling flags.
func (p *Position) CastlingRights() CastlingRights { return p.castlingRights }

// EnPassantSquare returns the square skipped by the last double push, or NoSquare.
func (p *Position) EnPassantSquare() Square { return p.enPassantSq }

// HalfmoveClock returns the 50-move-rule counter.
func (p *Position) HalfmoveClock() int { return p.halfmoveClock }

// FullmoveNumber returns the full move counter.
func (p *Position) FullmoveNumber() int { return p.fullmoveNumber }

// PieceBitboard returns the occupancy of one colored piece.
func (p *Position) PieceBitboard(pc Piece) uint64 { return p.pieces[pc] }

// AllWhitePieces returns the union of the six White bitboards.
func (p *Position) AllWhitePieces() uint64 { return p.allWhitePieces }

// AllBlackPieces returns the union of the six Black bitboards.
func (p *Position) AllBlackPieces() uint64 { return p.allBlackPieces }

// AllPieces returns every occupied square.
func (p *Position) AllPieces() uint64 { return p.allPieces }

// EmptySquares is the complement of AllPieces.
func (p *Position) EmptySquares() uint64 { return p.emptySquares }

func (p *Position) colorPieces(c Color) uint64 {
	if c == White {
		return p.allWhitePieces
	}
	return p.allBlackPieces
}

// Bitboards returns the per-kind bitboards for the requested side.
func (p *Position) Bitboards(c Color) Bitboards {
	return Bitboards{
		Pawns:   p.pieces[MakePiece(Pawn, c)],
		Rooks:   p.pieces[MakePiece(Rook, c)],
		Knights: p.pieces[MakePiece(Knight, c)],
		Bishops: p.pieces[MakePiece(Bishop, c)],
		Queens:  p.pieces[MakePiece(Queen, c)],
		Kings:   p.pieces[MakePiece(King, c)],
		All:     p.colorPieces(c),
	}
}

// PieceAt returns the piece on a square, NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	bit := p.lut.pieceMask[sq]
	if p.allPieces&bit == 0 {
		return NoPiece
	}
	for pc := Piece(0); pc < NoPiece; pc++ {
		if p.pieces[pc]&bit != 0 {
			return pc
		}
	}
	return NoPiece
}

// Pieces maps every square to its occupant, for renderers and encoders.
func (p *Position) Pieces() [64]Piece {
	var out [64]Piece
	for i := range out {
		out[i] = NoPiece
	}
	for pc := Piece(0); pc < NoPiece; pc++ {
		for bb := p.pieces[pc]; bb != 0; {
			out[popLSB(&bb)] = pc
		}
	}
	return out
}

// kingSquare returns c's king square, NoSquare when the layout has none.
func (p *Position) kingSquare(c Color) Square {
	kings := p.pieces[MakePiece(King, c)]
	if kings == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(kings))
}

var (
	ErrAggregateMismatch = errors.New("quintmg: derived bitboards out of sync")
	ErrOverlappingPieces = errors.New("quintmg: square occupied by two pieces")
	ErrBadEnPassant      = errors.New("quintmg: en-passant square not on rank 3 or 6")
	ErrBadTurn           = errors.New("quintmg: side to move is neither white nor black")
)

// Validate checks the structural invariants: derived sets match their
// recomputation, no square holds two pieces, the en-passant square sits on a
// skip rank and the side to move is a real color.
func (p *Position) Validate() error {
	want := *p
	want.updateAggregates()
	if want.allWhitePieces != p.allWhitePieces || want.allBlackPieces != p.allBlackPieces ||
		want.allPieces != p.allPieces || want.emptySquares != p.emptySquares {
		return ErrAggregateMismatch
	}
	var seen uint64
	for pc := Piece(0); pc < NoPiece; pc++ {
		if overlap := seen & p.pieces[pc]; overlap != 0 {
			return fmt.Errorf("%w: %s", ErrOverlappingPieces, Square(bits.TrailingZeros64(overlap)))
		}
		seen |= p.pieces[pc]
	}
	if ep := p.enPassantSq; ep != NoSquare && ep.Rank() != 2 && ep.Rank() != 5 {
		return fmt.Errorf("%w: %s", ErrBadEnPassant, ep)
	}
	if p.turn != White && p.turn != Black {
		return ErrBadTurn
	}
	return nil
}
