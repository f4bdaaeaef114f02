package quintmg

import (
	"math/bits"
	"sync"
)

// LookupTable holds the immutable masks every Position reads during attack
// generation. Build it once with NewLookupTable and share the pointer; it is
// never written after construction, so concurrent readers are fine.
type LookupTable struct {
	pieceMask [64]uint64

	fileMask  [8]uint64
	rankMask  [8]uint64
	clearFile [8]uint64
	clearRank [8]uint64

	// diagonalMask[(rank-file)&15], antiDiagonalMask[(rank+file)^7]; index 8 is empty in both.
	diagonalMask     [16]uint64
	antiDiagonalMask [16]uint64

	// firstRankAttack[occupancy*8+file] is the 8-bit attack set of a slider on
	// that file of a single rank, blockers included.
	firstRankAttack [256 * 8]uint8
}

var (
	defaultTable     *LookupTable
	defaultTableOnce sync.Once
)

// DefaultLookupTable returns a process-wide table, built on first use.
func DefaultLookupTable() *LookupTable {
	defaultTableOnce.Do(func() { defaultTable = NewLookupTable() })
	return defaultTable
}

// NewLookupTable precomputes all masks.
func NewLookupTable() *LookupTable {
	lut := &LookupTable{}

	for i := 0; i < 8; i++ {
		lut.fileMask[i] = 0x0101010101010101 << uint(i)
		lut.rankMask[i] = 0xFF << uint(8*i)
		lut.clearFile[i] = ^lut.fileMask[i]
		lut.clearRank[i] = ^lut.rankMask[i]
	}

	for sq := 0; sq < 64; sq++ {
		bit := uint64(1) << uint(sq)
		lut.pieceMask[sq] = bit
		s := Square(sq)
		lut.diagonalMask[diagonalIndex(s)] |= bit
		lut.antiDiagonalMask[antiDiagonalIndex(s)] |= bit
	}

	for occ := 0; occ < 256; occ++ {
		for file := 0; file < 8; file++ {
			var att uint8
			for f := file + 1; f < 8; f++ {
				att |= 1 << uint(f)
				if occ&(1<<uint(f)) != 0 {
					break
				}
			}
			for f := file - 1; f >= 0; f-- {
				att |= 1 << uint(f)
				if occ&(1<<uint(f)) != 0 {
					break
				}
			}
			lut.firstRankAttack[occ*8+file] = att
		}
	}

	return lut
}

func diagonalIndex(s Square) int     { return (s.Rank() - s.File()) & 15 }
func antiDiagonalIndex(s Square) int { return (s.Rank() + s.File()) ^ 7 }

// PieceMask returns the single-bit mask of sq.
func (lut *LookupTable) PieceMask(sq Square) uint64 { return lut.pieceMask[sq] }

// FileMask returns all squares of file f (0 = a).
func (lut *LookupTable) FileMask(f int) uint64 { return lut.fileMask[f] }

// RankMask returns all squares of rank r (0 = rank 1).
func (lut *LookupTable) RankMask(r int) uint64 { return lut.rankMask[r] }

// ClearFile is the complement of FileMask.
func (lut *LookupTable) ClearFile(f int) uint64 { return lut.clearFile[f] }

// ClearRank is the complement of RankMask.
func (lut *LookupTable) ClearRank(r int) uint64 { return lut.clearRank[r] }

// DiagonalMask returns the a1-h8 direction diagonal through sq.
func (lut *LookupTable) DiagonalMask(sq Square) uint64 { return lut.diagonalMask[diagonalIndex(sq)] }

// AntiDiagonalMask returns the h1-a8 direction diagonal through sq.
func (lut *LookupTable) AntiDiagonalMask(sq Square) uint64 {
	return lut.antiDiagonalMask[antiDiagonalIndex(sq)]
}

// FirstRankAttack returns the attack pattern of a slider on file within a
// single rank whose occupancy is occ.
func (lut *LookupTable) FirstRankAttack(occ uint8, file int) uint8 {
	return lut.firstRankAttack[int(occ)*8+file]
}

// ==========================
// Non-sliding attacks
// ==========================

// KingAttacks shifts the king bit one step in every direction, clipping the
// a- and h-files first so nothing wraps to the other side of the board.
func (lut *LookupTable) KingAttacks(sq Square) uint64 {
	king := lut.pieceMask[sq]
	clipA := king & lut.clearFile[0]
	clipH := king & lut.clearFile[7]

	return clipA>>1 | clipH<<1 | king<<8 | king>>8 |
		clipA<<7 | clipA>>9 | clipH<<9 | clipH>>7
}

// KnightAttacks jumps by ±6, ±10, ±15 and ±17; the two-file jumps also clip b/g.
func (lut *LookupTable) KnightAttacks(sq Square) uint64 {
	knight := lut.pieceMask[sq]
	clipA := knight & lut.clearFile[0]
	clipH := knight & lut.clearFile[7]
	clipAB := clipA & lut.clearFile[1]
	clipGH := clipH & lut.clearFile[6]

	return clipA<<15 | clipH<<17 | clipA>>17 | clipH>>15 |
		clipGH<<10 | clipGH>>6 | clipAB<<6 | clipAB>>10
}

// PawnAttacks returns the two diagonal capture squares of a pawn of color c.
func (lut *LookupTable) PawnAttacks(c Color, sq Square) uint64 {
	pawn := lut.pieceMask[sq]
	clipA := pawn & lut.clearFile[0]
	clipH := pawn & lut.clearFile[7]
	if c == White {
		return clipA<<7 | clipH<<9
	}
	return clipA>>9 | clipH>>7
}

// PawnPushes returns the single and double push targets of a pawn of color c
// given the empty squares. The double push needs both steps empty.
func (lut *LookupTable) PawnPushes(c Color, sq Square, empty uint64) uint64 {
	pawn := lut.pieceMask[sq]
	if c == White {
		one := (pawn << 8) & empty
		two := ((one & lut.rankMask[2]) << 8) & empty
		return one | two
	}
	one := (pawn >> 8) & empty
	two := ((one & lut.rankMask[5]) >> 8) & empty
	return one | two
}

// ==========================
// Sliding attacks
// ==========================

// lineAttacks is the occupancy-reversal (hyperbola quintessence) step for a
// single line through the slider. line must be a file, diagonal or
// anti-diagonal: byte reversal mirrors ranks, which keeps those lines
// ordered but would scramble a rank.
func lineAttacks(occ, line, slider uint64) uint64 {
	forward := (occ | slider) & line
	reverse := bits.ReverseBytes64(forward)
	forward -= slider << 1
	reverse -= bits.ReverseBytes64(slider) << 1
	forward ^= bits.ReverseBytes64(reverse)
	return forward & line
}

// FileAttacks returns the vertical slider attacks from sq.
func (lut *LookupTable) FileAttacks(sq Square, occ uint64) uint64 {
	return lineAttacks(occ, lut.fileMask[sq.File()], lut.pieceMask[sq])
}

// DiagonalAttacks returns the a1-h8 direction slider attacks from sq.
func (lut *LookupTable) DiagonalAttacks(sq Square, occ uint64) uint64 {
	return lineAttacks(occ, lut.diagonalMask[diagonalIndex(sq)], lut.pieceMask[sq])
}

// AntiDiagonalAttacks returns the h1-a8 direction slider attacks from sq.
func (lut *LookupTable) AntiDiagonalAttacks(sq Square, occ uint64) uint64 {
	return lineAttacks(occ, lut.antiDiagonalMask[antiDiagonalIndex(sq)], lut.pieceMask[sq])
}

// RankAttacks uses the first-rank table: the rank's occupancy byte is shifted
// down to rank 1, looked up, and the result shifted back.
func (lut *LookupTable) RankAttacks(sq Square, occ uint64) uint64 {
	shift := uint(sq.Rank() * 8)
	rankOcc := uint8(occ >> shift)
	return uint64(lut.firstRankAttack[int(rankOcc)*8+sq.File()]) << shift
}

// BishopAttacks returns diagonal and anti-diagonal attacks.
func (lut *LookupTable) BishopAttacks(sq Square, occ uint64) uint64 {
	return lut.DiagonalAttacks(sq, occ) | lut.AntiDiagonalAttacks(sq, occ)
}

// RookAttacks returns file and rank attacks.
func (lut *LookupTable) RookAttacks(sq Square, occ uint64) uint64 {
	return lut.FileAttacks(sq, occ) | lut.RankAttacks(sq, occ)
}

// QueenAttacks is the union of rook and bishop attacks.
func (lut *LookupTable) QueenAttacks(sq Square, occ uint64) uint64 {
	return lut.BishopAttacks(sq, occ) | lut.RookAttacks(sq, occ)
}

// attackFunc computes a piece's attack set from a square for an occupancy.
type attackFunc func(lut *LookupTable, c Color, sq Square, occ uint64) uint64

// attackers is indexed by PieceKind so one generation loop serves every kind.
var attackers = [NoPieceKind]attackFunc{
	Pawn:   func(lut *LookupTable, c Color, sq Square, _ uint64) uint64 { return lut.PawnAttacks(c, sq) },
	Rook:   func(lut *LookupTable, _ Color, sq Square, occ uint64) uint64 { return lut.RookAttacks(sq, occ) },
	Knight: func(lut *LookupTable, _ Color, sq Square, _ uint64) uint64 { return lut.KnightAttacks(sq) },
	Bishop: func(lut *LookupTable, _ Color, sq Square, occ uint64) uint64 { return lut.BishopAttacks(sq, occ) },
	Queen:  func(lut *LookupTable, _ Color, sq Square, occ uint64) uint64 { return lut.QueenAttacks(sq, occ) },
	King:   func(lut *LookupTable, _ Color, sq Square, _ uint64) uint64 { return lut.KingAttacks(sq) },
}

// Attacks dispatches on kind. Pawns attack diagonally for color c.
func (lut *LookupTable) Attacks(k PieceKind, c Color, sq Square, occ uint64) uint64 {
	return attackers[k](lut, c, sq, occ)
}
