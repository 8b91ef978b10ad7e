package board

// Cuckoo table for upcoming-repetition detection. A reversible move (one
// piece sliding between two squares with nothing else changing) hashes to
// one of two candidate slots; if the key for "the position three plies
// ago XOR a reversible move" is found here, that move could recreate an
// earlier position. Populated once at init time and never mutated after
// (concurrent lookups from every worker are safe).
var (
	cuckooKeys  [8192]uint64
	cuckooMoves [8192]Move
)

func cuckooH1(key uint64) int {
	return int(key & 0x1FFF)
}

func cuckooH2(key uint64) int {
	return int((key >> 16) & 0x1FFF)
}

func init() {
	// Keys come from the Zobrist tables, and this file's init runs before
	// zobrist.go's; initZobrist is deterministic, so its later call
	// reproduces the same keys.
	initZobrist()
	initCuckoo()
}

func initCuckoo() {
	count := 0

	for _, pt := range [5]PieceType{Knight, Bishop, Rook, Queen, King} {
		for _, c := range [2]Color{White, Black} {
			for s1 := A1; s1 <= H8; s1++ {
				for s2 := s1 + 1; s2 <= H8; s2++ {
					if pieceAttacksEmpty(pt, s1)&SquareBB(s2) == 0 {
						continue
					}

					move := NewMove(s1, s2)
					key := zobristPiece[c][pt][s1] ^ zobristPiece[c][pt][s2] ^ zobristSideToMove

					slot := cuckooH1(key)
					for {
						cuckooKeys[slot], key = key, cuckooKeys[slot]
						cuckooMoves[slot], move = move, cuckooMoves[slot]

						if move == NoMove {
							break
						}

						if slot == cuckooH1(key) {
							slot = cuckooH2(key)
						} else {
							slot = cuckooH1(key)
						}
					}

					count++
				}
			}
		}
	}

	if count != 3668 {
		panic("cuckoo table: expected 3668 reversible piece moves, got a different count")
	}
}

func pieceAttacksEmpty(pt PieceType, sq Square) Bitboard {
	switch pt {
	case Knight:
		return KnightAttacks(sq)
	case Bishop:
		return BishopAttacks(sq, 0)
	case Rook:
		return RookAttacks(sq, 0)
	case Queen:
		return QueenAttacks(sq, 0)
	case King:
		return KingAttacks(sq)
	}
	return 0
}

// hasUpcomingRepetition reports whether, from the current position, some
// reversible move reaches a key that appeared earlier in history — see
// spec for the cuckoo walk. history holds ancestor hashes, most recent
// last; ply is the current search ply (history entries beyond it belong
// to the game before the search root).
// HasUpcomingRepetition is the exported form of hasUpcomingRepetition, for
// callers outside the board package (the search's cuckoo-based draw check).
func HasUpcomingRepetition(p *Position, history []uint64, ply int) bool {
	return p.hasUpcomingRepetition(history, ply)
}

func (p *Position) hasUpcomingRepetition(history []uint64, ply int) bool {
	end := p.HalfMoveClock
	if len(history) < end {
		end = len(history)
	}
	if end < 3 {
		return false
	}

	originalKey := p.Hash
	occ := p.AllOccupied

	for i := 3; i <= end; i += 2 {
		otherKey := originalKey ^ history[len(history)-i]

		slot := cuckooH1(otherKey)
		if cuckooKeys[slot] != otherKey {
			slot = cuckooH2(otherKey)
			if cuckooKeys[slot] != otherKey {
				continue
			}
		}

		move := cuckooMoves[slot]
		from, to := move.From(), move.To()

		if Between(from, to)&occ != 0 {
			continue
		}

		if ply > i {
			return true
		}

		// Before the search root: a repetition needs one more match
		// further back (it already occurred in the game once).
		piece := p.PieceAt(from)
		if piece == NoPiece {
			piece = p.PieceAt(to)
		}
		if piece != NoPiece && piece.Color() == p.SideToMove.Other() {
			continue
		}
		earlier := history[len(history)-i]
		for j := i + 4; j <= end; j += 2 {
			if history[len(history)-j] == earlier {
				return true
			}
		}
	}

	return false
}
