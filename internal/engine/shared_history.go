package engine

// SharedHistory is a butterfly history table shared read/write across all
// Lazy-SMP workers, complementing each worker's own local history table.
// Stockfish-family engines tolerate the resulting data races on this table
// the same way they tolerate torn transposition-table reads: a stale or
// torn score is just a worse heuristic, never a correctness bug.
type SharedHistory struct {
	scores [64][64]int32
}

// NewSharedHistory creates an empty shared history table.
func NewSharedHistory() *SharedHistory {
	return &SharedHistory{}
}

// Get returns the shared history score for a from/to square pair.
func (sh *SharedHistory) Get(from, to int) int {
	return int(sh.scores[from][to])
}

// Update adds bonus to the shared history score for a from/to square pair,
// saturating and rescaling the same way the per-worker history table does.
func (sh *SharedHistory) Update(from, to, bonus int) {
	sh.scores[from][to] += int32(bonus)
	if sh.scores[from][to] > 400000 {
		for i := range sh.scores {
			for j := range sh.scores[i] {
				sh.scores[i][j] /= 2
			}
		}
	}
}

// Clear resets the shared history table for a new game.
func (sh *SharedHistory) Clear() {
	for i := range sh.scores {
		for j := range sh.scores[i] {
			sh.scores[i][j] = 0
		}
	}
}
