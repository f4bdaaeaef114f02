package quintmg

// cornerRights maps a rook's home corner to the castling right it carries.
var cornerRights = [64]CastlingRights{
	A1: CastlingWhiteQ,
	H1: CastlingWhiteK,
	A8: CastlingBlackQ,
	H8: CastlingBlackK,
}

// MakeMove applies m in place and reports whether it was legal, that is
// whether the mover's king is not attacked afterwards. The position is
// mutated either way: callers snapshot before the call and restore on false.
//
//	snap := p.CopyBoard()
//	if !p.MakeMove(m) {
//		*p = snap
//	}
//
// m must come from GenerateMoves on this exact position.
func (p *Position) MakeMove(m Move) bool {
	us := p.turn
	them := us.Other()
	from, to := m.From(), m.To()
	kind := m.Kind()
	fromBB := p.lut.pieceMask[from]
	toBB := p.lut.pieceMask[to]
	moved := MakePiece(m.Piece(), us)

	p.enPassantSq = NoSquare

	if kind == Capture || kind >= KnightPromotionCapture {
		for k := Pawn; k < NoPieceKind; k++ {
			pc := MakePiece(k, them)
			if p.pieces[pc]&toBB != 0 {
				p.pieces[pc] &^= toBB
				break
			}
		}
		p.castlingRights &^= cornerRights[to]
	}

	p.pieces[moved] ^= fromBB | toBB

	switch kind {
	case Quiet, Capture:
	case DoublePawnPush:
		p.enPassantSq = (from + to) / 2
	case KingCastle, QueenCastle:
		r := castleRuleFor(us, kind)
		p.pieces[MakePiece(Rook, us)] ^= p.lut.pieceMask[r.rookFrom] | p.lut.pieceMask[r.rookTo]
	case EnPassant:
		behind := to - 8
		if us == Black {
			behind = to + 8
		}
		p.pieces[MakePiece(Pawn, them)] &^= p.lut.pieceMask[behind]
	default:
		if !m.IsPromotion() {
			panic("quintmg: unknown move kind " + kind.String())
		}
		p.pieces[moved] &^= toBB
		p.pieces[MakePiece(m.PromotionKind(), us)] |= toBB
	}

	if m.Piece() == King {
		if us == White {
			p.castlingRights &^= CastlingWhiteK | CastlingWhiteQ
		} else {
			p.castlingRights &^= CastlingBlackK | CastlingBlackQ
		}
	}
	p.castlingRights &^= cornerRights[from]

	if m.Piece() == Pawn || m.IsCapture() {
		p.halfmoveClock = 0
	} else {
		p.halfmoveClock++
	}
	if us == Black {
		p.fullmoveNumber++
	}

	p.updateAggregates()
	p.turn = them

	return !p.InCheck(us)
}

// TryMove applies m only if it is legal and reports whether it did. The
// position is unchanged on false.
func (p *Position) TryMove(m Move) bool {
	snap := *p
	if p.MakeMove(m) {
		return true
	}
	*p = snap
	return false
}
