package engine

import (
	"math/bits"
	"sync"

	"github.com/hailam/chessplay/internal/board"
)

// TTBound is the kind of bound a stored score represents.
type TTBound uint8

const (
	BoundNone  TTBound = iota
	BoundExact         // PV node, score is exact
	BoundLower         // fail-high, score is a lower bound
	BoundUpper         // fail-low, score is an upper bound
)

const ttMaxAge = 32

// ttEntry is the packed 10-byte transposition record: key16 (2), score (2),
// staticEval (2), move (2), depth (1), agePvBound (1).
type ttEntry struct {
	key16      uint16
	score      int16
	staticEval int16
	move       board.Move
	depth      uint8
	agePvBound uint8 // bits 0-1: bound, bit 2: pv, bits 3-7: age
}

func (e ttEntry) bound() TTBound { return TTBound(e.agePvBound & 0x3) }
func (e ttEntry) pv() bool       { return e.agePvBound&0x4 != 0 }
func (e ttEntry) age() uint8     { return e.agePvBound >> 3 }

func packAgePvBound(age uint8, pv bool, bound TTBound) uint8 {
	v := uint8(bound) & 0x3
	if pv {
		v |= 0x4
	}
	v |= (age % ttMaxAge) << 3
	return v
}

// ttBucket holds 3 entries plus 2 bytes of padding, totalling 32 bytes —
// the unit the table is indexed at, so a probe checks 3 slots before
// falling back to the worst one.
type ttBucket struct {
	entries [3]ttEntry
	_       [2]byte
}

// TranspositionTable is the shared, lock-free (best-effort) hash table.
// Torn reads on a 10-byte entry are possible under concurrent writers from
// other Lazy-SMP workers; a key16 mismatch simply discards the hit, so a
// torn read behaves like an ordinary cache miss rather than corrupting
// position state.
type TranspositionTable struct {
	buckets []ttBucket
	mu      sync.Mutex // guards Clear and NewSearch; probe/store are lock-free
	age     uint8
}

// NewTranspositionTable creates a table sized to approximately sizeMB
// megabytes, rounded down to a bucket count that divides evenly.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	bucketSize := uint64(32)
	numBuckets := (uint64(sizeMB) * 1024 * 1024) / bucketSize
	if numBuckets == 0 {
		numBuckets = 1
	}
	return &TranspositionTable{buckets: make([]ttBucket, numBuckets)}
}

// bucketIndex maps a 64-bit key onto [0, len(buckets)) via a 128-bit
// multiply-shift, avoiding the power-of-2 size restriction a mask-based
// index would impose.
func (tt *TranspositionTable) bucketIndex(key uint64) uint64 {
	hi, _ := bits.Mul64(key, uint64(len(tt.buckets)))
	return hi
}

// ProbeResult is what Probe hands back to the caller on a hit.
type ProbeResult struct {
	Move       board.Move
	Score      int
	StaticEval int
	Depth      int
	Bound      TTBound
	PV         bool
}

// Probe looks up key16 := low 16 bits of key within its bucket. Returns
// the matching entry (ply-adjusted score) and true on a hit.
func (tt *TranspositionTable) Probe(key uint64, ply int) (ProbeResult, bool) {
	bucket := &tt.buckets[tt.bucketIndex(key)]
	key16 := uint16(key)

	for i := range bucket.entries {
		e := bucket.entries[i]
		if e.bound() != BoundNone && e.key16 == key16 {
			return ProbeResult{
				Move:       e.move,
				Score:      AdjustScoreFromTT(int(e.score), ply),
				StaticEval: int(e.staticEval),
				Depth:      int(e.depth),
				Bound:      e.bound(),
				PV:         e.pv(),
			}, true
		}
	}
	return ProbeResult{}, false
}

// ageDistance returns how many generations old entryAge is relative to
// the table's current age, wrapping modulo ttMaxAge.
func (tt *TranspositionTable) ageDistance(entryAge uint8) int {
	return int((ttMaxAge + tt.age - entryAge) % ttMaxAge)
}

// Store writes a search result into key's bucket, picking the lowest
// quality slot to evict when no slot already matches key16. Mate/TB
// scores must already be ply-adjusted to subsearch-root-relative via
// AdjustScoreToTT before calling Store.
func (tt *TranspositionTable) Store(key uint64, depth int, score, staticEval int, bound TTBound, move board.Move, pv bool) {
	bucket := &tt.buckets[tt.bucketIndex(key)]
	key16 := uint16(key)

	worst := 0
	worstQuality := 1 << 30
	for i := range bucket.entries {
		e := &bucket.entries[i]

		if e.bound() == BoundNone || e.key16 == key16 {
			if move != board.NoMove || e.key16 != key16 {
				tt.writeEntry(e, key16, depth, score, staticEval, bound, move, pv)
				return
			}
			ageDist := tt.ageDistance(e.age())
			if bound == BoundExact || ageDist > 0 || depth+4+boolInt(pv)*2 > int(e.depth) {
				tt.writeEntry(e, key16, depth, score, staticEval, bound, move, pv)
			}
			return
		}

		quality := int(e.depth) - 8*tt.ageDistance(e.age())
		if quality < worstQuality {
			worstQuality = quality
			worst = i
		}
	}

	tt.writeEntry(&bucket.entries[worst], key16, depth, score, staticEval, bound, move, pv)
}

func (tt *TranspositionTable) writeEntry(e *ttEntry, key16 uint16, depth, score, staticEval int, bound TTBound, move board.Move, pv bool) {
	e.key16 = key16
	e.score = int16(score)
	e.staticEval = int16(staticEval)
	if move != board.NoMove {
		e.move = move
	}
	e.depth = uint8(depth)
	e.agePvBound = packAgePvBound(tt.age, pv, bound)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// NewSearch advances the table's age counter (mod ttMaxAge) for a new search.
func (tt *TranspositionTable) NewSearch() {
	tt.mu.Lock()
	tt.age = (tt.age + 1) % ttMaxAge
	tt.mu.Unlock()
}

// Clear zeroes every bucket and resets the age while holding the table
// mutex; the whole table is cleared on the calling goroutine.
func (tt *TranspositionTable) Clear() {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	for i := range tt.buckets {
		tt.buckets[i] = ttBucket{}
	}
	tt.age = 0
}

// ClearRange zeroes buckets [lo, hi), clipped to the table size, without
// taking the mutex, so disjoint ranges can be cleared concurrently.
func (tt *TranspositionTable) ClearRange(lo, hi int) {
	for i := lo; i < hi && i < len(tt.buckets); i++ {
		tt.buckets[i] = ttBucket{}
	}
}

// HashFull samples the first 1000 buckets and reports the permille whose
// first entry is occupied at the current age.
func (tt *TranspositionTable) HashFull() int {
	sampleSize := 1000
	if sampleSize > len(tt.buckets) {
		sampleSize = len(tt.buckets)
	}
	if sampleSize == 0 {
		return 0
	}

	used := 0
	for i := 0; i < sampleSize; i++ {
		e := tt.buckets[i].entries[0]
		if e.bound() != BoundNone && e.age() == tt.age {
			used++
		}
	}
	return (used * 1000) / sampleSize
}

// Size returns the number of buckets (not entries) in the table.
func (tt *TranspositionTable) Size() uint64 {
	return uint64(len(tt.buckets))
}

// AdjustScoreFromTT converts a stored mate/TB score back to the current
// search's ply-relative frame.
func AdjustScoreFromTT(score int, ply int) int {
	if score == ScoreNone {
		return ScoreNone
	}
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT converts a mate/TB score at the current ply into the
// subsearch-root-relative frame the table stores.
func AdjustScoreToTT(score int, ply int) int {
	if score == ScoreNone {
		return ScoreNone
	}
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
