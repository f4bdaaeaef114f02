package quintmg

// castleRule describes one of the four castling moves. The same table drives
// generation and the rook relocation in MakeMove.
type castleRule struct {
	right    CastlingRights
	color    Color
	kind     MoveKind
	king     Square
	kingTo   Square
	rookFrom Square
	rookTo   Square
	// between must be empty; safe must not be attacked (start, transit, destination).
	between uint64
	safe    [3]Square
}

var castleRules = [4]castleRule{
	{CastlingWhiteK, White, KingCastle, E1, G1, H1, F1, 0x0000000000000060, [3]Square{E1, F1, G1}},
	{CastlingWhiteQ, White, QueenCastle, E1, C1, A1, D1, 0x000000000000000E, [3]Square{E1, D1, C1}},
	{CastlingBlackK, Black, KingCastle, E8, G8, H8, F8, 0x6000000000000000, [3]Square{E8, F8, G8}},
	{CastlingBlackQ, Black, QueenCastle, E8, C8, A8, D8, 0x0E00000000000000, [3]Square{E8, D8, C8}},
}

// castleRuleFor returns the rule matching a castling move.
func castleRuleFor(c Color, kind MoveKind) *castleRule {
	for i := range castleRules {
		if castleRules[i].color == c && castleRules[i].kind == kind {
			return &castleRules[i]
		}
	}
	panic("quintmg: no castling rule for " + c.String() + " " + kind.String())
}

// ==========================
// Generation
// ==========================

// GenerateMoves replaces the internal move list with every pseudo-legal move
// for the side to move. Moves that leave the mover's king attacked are still
// listed; MakeMove reports them as illegal.
func (p *Position) GenerateMoves() {
	ml := new(MoveList)
	p.generateInto(ml)
	p.moves = ml
}

// GenerateMovesInto clears ml and fills it like GenerateMoves, leaving the
// internal list alone. Recursive callers keep one list per ply with it.
func (p *Position) GenerateMovesInto(ml *MoveList) {
	ml.clear()
	p.generateInto(ml)
}

// MoveList returns a copy of the list filled by the last GenerateMoves call,
// or an empty list if it was never called.
func (p *Position) MoveList() MoveList {
	if p.moves == nil {
		return MoveList{}
	}
	return *p.moves
}

func (p *Position) generateInto(ml *MoveList) {
	us := p.turn
	for k := King; k > Pawn; k-- {
		p.pieceMoves(ml, k, us)
	}
	p.pawnMoves(ml, us)
	p.castleMoves(ml, us)
}

// pieceMoves emits quiet moves and captures for every piece of kind k.
func (p *Position) pieceMoves(ml *MoveList, k PieceKind, us Color) {
	them := p.colorPieces(us.Other())
	for bb := p.pieces[MakePiece(k, us)]; bb != 0; {
		from := popLSB(&bb)
		att := p.lut.Attacks(k, us, from, p.allPieces)
		for quiet := att & p.emptySquares; quiet != 0; {
			ml.add(NewMove(from, popLSB(&quiet), Quiet, k, us))
		}
		for capt := att & them; capt != 0; {
			ml.add(NewMove(from, popLSB(&capt), Capture, k, us))
		}
	}
}

// pawnMoves takes quiet targets from the push generator and captures from
// the attack generator. Landing on the far rank fans out into four
// promotions.
func (p *Position) pawnMoves(ml *MoveList, us Color) {
	them := p.colorPieces(us.Other())
	farRank := p.lut.rankMask[7]
	if us == Black {
		farRank = p.lut.rankMask[0]
	}
	for bb := p.pieces[MakePiece(Pawn, us)]; bb != 0; {
		from := popLSB(&bb)

		for push := p.lut.PawnPushes(us, from, p.emptySquares); push != 0; {
			to := popLSB(&push)
			switch {
			case p.lut.pieceMask[to]&farRank != 0:
				addPromotions(ml, from, to, us, false)
			case to-from == 16 || from-to == 16:
				ml.add(NewMove(from, to, DoublePawnPush, Pawn, us))
			default:
				ml.add(NewMove(from, to, Quiet, Pawn, us))
			}
		}

		att := p.lut.PawnAttacks(us, from)
		for capt := att & them; capt != 0; {
			to := popLSB(&capt)
			if p.lut.pieceMask[to]&farRank != 0 {
				addPromotions(ml, from, to, us, true)
				continue
			}
			ml.add(NewMove(from, to, Capture, Pawn, us))
		}

		if ep := p.enPassantSq; ep != NoSquare && att&p.lut.pieceMask[ep] != 0 {
			ml.add(NewMove(from, ep, EnPassant, Pawn, us))
		}
	}
}

func addPromotions(ml *MoveList, from, to Square, us Color, capture bool) {
	for _, k := range promotionOrder {
		ml.add(NewMove(from, to, promotionKind(k, capture), Pawn, us))
	}
}

// castleMoves emits a king move tagged KingCastle or QueenCastle for every
// right still held whose rook is home, whose between squares are empty and
// whose king path is not attacked.
func (p *Position) castleMoves(ml *MoveList, us Color) {
	them := us.Other()
	rook := p.pieces[MakePiece(Rook, us)]
	king := p.pieces[MakePiece(King, us)]
	for i := range castleRules {
		r := &castleRules[i]
		if r.color != us || p.castlingRights&r.right == 0 {
			continue
		}
		if king&p.lut.pieceMask[r.king] == 0 || rook&p.lut.pieceMask[r.rookFrom] == 0 {
			continue
		}
		if p.allPieces&r.between != 0 {
			continue
		}
		if p.IsSquareAttacked(them, r.safe[0]) || p.IsSquareAttacked(them, r.safe[1]) ||
			p.IsSquareAttacked(them, r.safe[2]) {
			continue
		}
		ml.add(NewMove(r.king, r.kingTo, r.kind, King, us))
	}
}
