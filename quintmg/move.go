package quintmg

// MoveKind tags what a move does beyond relocating a piece.
type MoveKind uint8

const (
	Quiet MoveKind = iota
	DoublePawnPush
	KingCastle
	QueenCastle
	Capture
	EnPassant
	KnightPromotion
	BishopPromotion
	RookPromotion
	QueenPromotion
	KnightPromotionCapture
	BishopPromotionCapture
	RookPromotionCapture
	QueenPromotionCapture
)

var moveKindNames = [...]string{
	"quiet", "double-push", "king-castle", "queen-castle", "capture", "ep-capture",
	"n-promo", "b-promo", "r-promo", "q-promo",
	"n-promo-capture", "b-promo-capture", "r-promo-capture", "q-promo-capture",
}

func (k MoveKind) String() string {
	if int(k) < len(moveKindNames) {
		return moveKindNames[k]
	}
	return "invalid"
}

// promotionOrder is the emission order for the four promotion moves.
var promotionOrder = [4]PieceKind{Knight, Bishop, Rook, Queen}

// promotionKind maps a promotion piece to its quiet tag; add 4 for the capture tag.
func promotionKind(k PieceKind, capture bool) MoveKind {
	var mk MoveKind
	switch k {
	case Knight:
		mk = KnightPromotion
	case Bishop:
		mk = BishopPromotion
	case Rook:
		mk = RookPromotion
	default:
		mk = QueenPromotion
	}
	if capture {
		mk += 4
	}
	return mk
}

// Move encodes one ply in a 32-bit value.
type Move uint32

// Bitfield layout within Move (from LSB to MSB)
const (
	moveFromShift  = 0  // 6 bits
	moveToShift    = 6  // 6 bits
	moveKindShift  = 12 // 4 bits
	movePieceShift = 16 // 3 bits
	moveColorShift = 19 // 2 bits
)

// NullMove carries no piece and no color; it never comes out of generation.
var NullMove = NewMove(A1, A1, Quiet, NoPieceKind, NoColor)

// NewMove constructs a Move value from components.
func NewMove(from, to Square, kind MoveKind, piece PieceKind, color Color) Move {
	return Move(uint32(from&0x3F)<<moveFromShift |
		uint32(to&0x3F)<<moveToShift |
		uint32(kind&0xF)<<moveKindShift |
		uint32(piece&0x7)<<movePieceShift |
		uint32(color&0x3)<<moveColorShift)
}

// From returns the source square of the move.
func (m Move) From() Square { return Square((uint32(m) >> moveFromShift) & 0x3F) }

// To returns the destination square of the move.
func (m Move) To() Square { return Square((uint32(m) >> moveToShift) & 0x3F) }

// Kind returns the move-kind tag.
func (m Move) Kind() MoveKind { return MoveKind((uint32(m) >> moveKindShift) & 0xF) }

// Piece returns the kind of the moving piece.
func (m Move) Piece() PieceKind { return PieceKind((uint32(m) >> movePieceShift) & 0x7) }

// Color returns the side making the move.
func (m Move) Color() Color { return Color((uint32(m) >> moveColorShift) & 0x3) }

// IsCapture reports captures, en-passant and promotion-captures included.
func (m Move) IsCapture() bool {
	k := m.Kind()
	return k == Capture || k == EnPassant || k >= KnightPromotionCapture
}

// IsPromotion reports any of the eight promotion tags.
func (m Move) IsPromotion() bool { return m.Kind() >= KnightPromotion }

// IsCastle reports king- or queen-side castling.
func (m Move) IsCastle() bool {
	k := m.Kind()
	return k == KingCastle || k == QueenCastle
}

// PromotionKind returns the piece a pawn becomes, NoPieceKind otherwise.
func (m Move) PromotionKind() PieceKind {
	k := m.Kind()
	if k < KnightPromotion {
		return NoPieceKind
	}
	if k >= KnightPromotionCapture {
		k -= 4
	}
	return promotionOrder[k-KnightPromotion]
}

// String produces the UCI long-algebraic form (e.g. "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NullMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if pk := m.PromotionKind(); pk != NoPieceKind {
		s += string(pk.Letter())
	}
	return s
}

// MaxMoves bounds the pseudo-legal moves of any layout with at most 16
// pieces and one king per side (nine queens give the worst case, 323).
const MaxMoves = 384

// MoveList is a fixed-capacity list that can live on the stack.
type MoveList struct {
	moves [MaxMoves]Move
	count int
}

// add drops moves past MaxMoves. Only layouts that fen.Parse would reject
// can get there.
func (ml *MoveList) add(m Move) {
	if ml.count == len(ml.moves) {
		return
	}
	ml.moves[ml.count] = m
	ml.count++
}

func (ml *MoveList) clear() { ml.count = 0 }

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int { return ml.count }

// At returns the move at index i.
func (ml *MoveList) At(i int) Move { return ml.moves[i] }

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move { return ml.moves[:ml.count] }

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Strings returns the UCI form of every move, in list order.
func (ml *MoveList) Strings() []string {
	out := make([]string, ml.count)
	for i := 0; i < ml.count; i++ {
		out[i] = ml.moves[i].String()
	}
	return out
}
