package engine

import (
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chessplay/internal/board"
)

// runPool launches the full worker set against pos, each searching up to
// maxDepth and streaming its per-iteration results onto resultCh. It returns
// immediately; callers wait on the returned group (typically from a
// goroutine that then closes resultCh). A worker never returns an error —
// the group is used for its WaitGroup-with-panic-propagation semantics, not
// for error handling.
func (e *Engine) runPool(pos *board.Position, maxDepth int, resultCh chan<- WorkerResult) *errgroup.Group {
	g := new(errgroup.Group)
	for i := 0; i < len(e.workers); i++ {
		workerID := i
		g.Go(func() error {
			e.workerSearch(workerID, pos, maxDepth, resultCh)
			return nil
		})
	}
	return g
}

// selectBestThread implements Lazy-SMP vote-based best-thread selection over
// each worker's own last-completed iteration: vote[move] += (score -
// minScore + 9) * completedDepth, and the move with the highest vote wins.
// Mate scores dominate outright (shortest mate for us, or longest survival
// against a forced mate, beats any non-mate result). Workers that never
// completed an iteration (Move == NoMove) are ignored. Returns false if no
// worker produced a usable result.
func selectBestThread(results []WorkerResult) (WorkerResult, bool) {
	var candidates []WorkerResult
	for _, r := range results {
		if r.Move != board.NoMove {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return WorkerResult{}, false
	}

	if mate, ok := bestMateResult(candidates); ok {
		return mate, true
	}

	minScore := candidates[0].Score
	for _, r := range candidates {
		if r.Score < minScore {
			minScore = r.Score
		}
	}

	type tally struct {
		votes int
		best  WorkerResult
	}
	votes := make(map[board.Move]*tally)
	for _, r := range candidates {
		t, ok := votes[r.Move]
		if !ok {
			t = &tally{best: r}
			votes[r.Move] = t
		} else if r.Depth > t.best.Depth {
			t.best = r
		}
		t.votes += (r.Score - minScore + 9) * r.Depth
	}

	var winner *tally
	for _, t := range votes {
		if winner == nil || t.votes > winner.votes {
			winner = t
		}
	}

	return winner.best, true
}

// bestMateResult returns the most favorable mate-scored candidate, if any.
func bestMateResult(candidates []WorkerResult) (WorkerResult, bool) {
	var best WorkerResult
	found := false
	for _, r := range candidates {
		if !isMateScore(r.Score) {
			continue
		}
		if !found || betterMateScore(r.Score, best.Score) {
			best = r
			found = true
		}
	}
	return best, found
}

func isMateScore(score int) bool {
	return score > MateScore-100 || score < -MateScore+100
}

// betterMateScore reports whether mate score a is preferable to mate score b:
// a faster mate for us, or a longer survival against being mated.
func betterMateScore(a, b int) bool {
	if a > 0 && b <= 0 {
		return true
	}
	if a <= 0 && b > 0 {
		return false
	}
	return a > b
}
