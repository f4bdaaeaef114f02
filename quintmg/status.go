package quintmg

// IsSquareAttacked reports whether any piece of color by attacks sq under the
// current occupancy. Nothing is cached: each attacker kind is looked up in
// reverse from sq, which stays correct whatever order the bitboards were
// mutated in.
func (p *Position) IsSquareAttacked(by Color, sq Square) bool {
	lut := p.lut
	occ := p.allPieces
	if lut.PawnAttacks(by.Other(), sq)&p.pieces[MakePiece(Pawn, by)] != 0 {
		return true
	}
	if lut.KnightAttacks(sq)&p.pieces[MakePiece(Knight, by)] != 0 {
		return true
	}
	if lut.KingAttacks(sq)&p.pieces[MakePiece(King, by)] != 0 {
		return true
	}
	queens := p.pieces[MakePiece(Queen, by)]
	if lut.BishopAttacks(sq, occ)&(p.pieces[MakePiece(Bishop, by)]|queens) != 0 {
		return true
	}
	return lut.RookAttacks(sq, occ)&(p.pieces[MakePiece(Rook, by)]|queens) != 0
}

// AttacksToSquare returns every piece of either color attacking sq: pawns,
// knights, kings, bishops and queens on diagonals, rooks and queens on lines.
func (p *Position) AttacksToSquare(sq Square) uint64 {
	lut := p.lut
	occ := p.allPieces
	queens := p.pieces[WhiteQueen] | p.pieces[BlackQueen]
	return lut.PawnAttacks(Black, sq)&p.pieces[WhitePawn] |
		lut.PawnAttacks(White, sq)&p.pieces[BlackPawn] |
		lut.KnightAttacks(sq)&(p.pieces[WhiteKnight]|p.pieces[BlackKnight]) |
		lut.KingAttacks(sq)&(p.pieces[WhiteKing]|p.pieces[BlackKing]) |
		lut.BishopAttacks(sq, occ)&(p.pieces[WhiteBishop]|p.pieces[BlackBishop]|queens) |
		lut.RookAttacks(sq, occ)&(p.pieces[WhiteRook]|p.pieces[BlackRook]|queens)
}

// InCheck reports whether c's king is attacked. A side without a king is
// never in check.
func (p *Position) InCheck(c Color) bool {
	ksq := p.kingSquare(c)
	if ksq == NoSquare {
		return false
	}
	return p.IsSquareAttacked(c.Other(), ksq)
}

// IsCheck reports whether the side to move is in check.
func (p *Position) IsCheck() bool { return p.InCheck(p.turn) }

// HasLegalMoves generates on a scratch copy, so the internal move list is
// left as it was.
func (p *Position) HasLegalMoves() bool {
	var ml MoveList
	p.generateInto(&ml)
	for i := 0; i < ml.count; i++ {
		snap := *p
		ok := p.MakeMove(ml.moves[i])
		*p = snap
		if ok {
			return true
		}
	}
	return false
}

// LegalMoves returns the pseudo-legal moves that survive the self-check test,
// in generation order. The internal move list is not touched.
func (p *Position) LegalMoves() MoveList {
	var pseudo, legal MoveList
	p.generateInto(&pseudo)
	for i := 0; i < pseudo.count; i++ {
		snap := *p
		if p.MakeMove(pseudo.moves[i]) {
			legal.add(pseudo.moves[i])
		}
		*p = snap
	}
	return legal
}

// IsCheckmate: in check with no legal escape.
func (p *Position) IsCheckmate() bool { return p.IsCheck() && !p.HasLegalMoves() }

// IsStalemate: not in check and no legal move.
func (p *Position) IsStalemate() bool { return !p.IsCheck() && !p.HasLegalMoves() }
