package engine

import (
	"github.com/hailam/chessplay/internal/board"
)

// correctionHistoryLimit caps each table's stored value. Stockfish's
// correction history uses the same ±1024 limit and a bonus clamp of
// limit/4 per update, so a single search result can never swing the
// adjustment by more than a quarter of its range.
const correctionHistoryLimit = 1024

// correctionHistorySize is the number of buckets each table is keyed into,
// via the low bits of the relevant pawn/non-pawn key.
const correctionHistorySize = 16384

// CorrectionHistory adjusts static evaluation based on search results. It
// keeps the pawn structure and each side's non-pawn material/placement as
// separate signals rather than one combined-position table, since a wrong
// eval is usually attributable to one or the other, not the whole position.
type CorrectionHistory struct {
	pawnCorrHist    [2][correctionHistorySize]int16 // indexed by side to move, keyed by PawnKey
	nonPawnCorrHist [2][2][correctionHistorySize]int16 // [side to move][piece color], keyed by NonPawnKey[color]
}

// NewCorrectionHistory creates a new correction history table.
func NewCorrectionHistory() *CorrectionHistory {
	return &CorrectionHistory{}
}

// Get returns the correction to add to the static evaluation of pos: half
// the sum of the pawn-structure term and each color's non-pawn term.
func (ch *CorrectionHistory) Get(pos *board.Position) int {
	stm := pos.SideToMove
	pawnCorr := int(ch.pawnCorrHist[stm][pos.PawnKey%correctionHistorySize])
	nonPawnCorr := int(ch.nonPawnCorrHist[stm][board.White][pos.NonPawnKey[board.White]%correctionHistorySize])
	nonPawnCorr += int(ch.nonPawnCorrHist[stm][board.Black][pos.NonPawnKey[board.Black]%correctionHistorySize])
	return (pawnCorr + nonPawnCorr) / 2
}

// Update records a correction based on the difference between the search
// result and the raw static evaluation, using a gravity update toward a
// depth-scaled, clamped bonus (Stockfish's update_correction_history).
func (ch *CorrectionHistory) Update(pos *board.Position, searchScore, staticEval, depth int) {
	if depth < 1 {
		return
	}

	diff := searchScore - staticEval
	bonus := diff * depth / 8
	bonus = clampCorrection(bonus, correctionHistoryLimit/4)

	stm := pos.SideToMove
	updateCorrEntry(&ch.pawnCorrHist[stm][pos.PawnKey%correctionHistorySize], bonus)
	updateCorrEntry(&ch.nonPawnCorrHist[stm][board.White][pos.NonPawnKey[board.White]%correctionHistorySize], bonus)
	updateCorrEntry(&ch.nonPawnCorrHist[stm][board.Black][pos.NonPawnKey[board.Black]%correctionHistorySize], bonus)
}

func updateCorrEntry(e *int16, bonus int) {
	old := int(*e)
	newVal := old + bonus - old*abs(bonus)/correctionHistoryLimit
	*e = int16(clampCorrection(newVal, correctionHistoryLimit))
}

func clampCorrection(v, limit int) int {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

// Clear resets all correction values.
func (ch *CorrectionHistory) Clear() {
	for c := 0; c < 2; c++ {
		for i := range ch.pawnCorrHist[c] {
			ch.pawnCorrHist[c][i] = 0
		}
		for side := 0; side < 2; side++ {
			for i := range ch.nonPawnCorrHist[c][side] {
				ch.nonPawnCorrHist[c][side][i] = 0
			}
		}
	}
}
