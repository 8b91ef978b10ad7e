package board

// seeValue holds the piece values used specifically by static exchange
// evaluation — distinct from the general-purpose PieceValue table used
// by move ordering/eval, matching the weighting the engine was tuned
// against.
var seeValue = [7]int{100, 370, 390, 610, 1210, 0, 0}

// SeeGe performs static exchange evaluation on a capture or quiet move,
// returning true iff the net material swap on m.To() is >= threshold.
// Only normal moves participate (promotions, castling and en passant
// never enter SEE pruning decisions); those fall back to a trivial
// threshold comparison against a no-op swap.
func (p *Position) SeeGe(m Move, threshold int) bool {
	if m.IsPromotion() || m.IsCastling() || m.IsEnPassant() {
		return 0 >= threshold
	}

	from, to := m.From(), m.To()

	target := p.PieceAt(to)
	swap := seeValue[target.Type()] - threshold
	if swap < 0 {
		return false
	}

	attacker := p.PieceAt(from)
	swap = seeValue[attacker.Type()] - swap
	if swap <= 0 {
		return true
	}

	occupied := p.AllOccupied &^ SquareBB(from) &^ SquareBB(to)
	stm := p.SideToMove
	attackers := p.AttackersTo(to, occupied)
	res := 1

	for {
		stm = stm.Other()
		attackers &= occupied

		stmAttackers := attackers & p.Occupied[stm]
		if stmAttackers == 0 {
			break
		}

		if p.Pinners[stm.Other()]&occupied != 0 {
			stmAttackers &^= p.BlockersForKing[stm]
			if stmAttackers == 0 {
				break
			}
		}

		res ^= 1

		if bb := stmAttackers & p.Pieces[stm][Pawn]; bb != 0 {
			if swap = seeValue[Pawn] - swap; swap < res {
				break
			}
			occupied &^= SquareBB(bb.LSB())
			attackers |= BishopAttacks(to, occupied) & (p.Pieces[White][Bishop] | p.Pieces[Black][Bishop] | p.Pieces[White][Queen] | p.Pieces[Black][Queen])
		} else if bb := stmAttackers & p.Pieces[stm][Knight]; bb != 0 {
			if swap = seeValue[Knight] - swap; swap < res {
				break
			}
			occupied &^= SquareBB(bb.LSB())
		} else if bb := stmAttackers & p.Pieces[stm][Bishop]; bb != 0 {
			if swap = seeValue[Bishop] - swap; swap < res {
				break
			}
			occupied &^= SquareBB(bb.LSB())
			attackers |= BishopAttacks(to, occupied) & (p.Pieces[White][Bishop] | p.Pieces[Black][Bishop] | p.Pieces[White][Queen] | p.Pieces[Black][Queen])
		} else if bb := stmAttackers & p.Pieces[stm][Rook]; bb != 0 {
			if swap = seeValue[Rook] - swap; swap < res {
				break
			}
			occupied &^= SquareBB(bb.LSB())
			attackers |= RookAttacks(to, occupied) & (p.Pieces[White][Rook] | p.Pieces[Black][Rook] | p.Pieces[White][Queen] | p.Pieces[Black][Queen])
		} else if bb := stmAttackers & p.Pieces[stm][Queen]; bb != 0 {
			if swap = seeValue[Queen] - swap; swap < res {
				break
			}
			occupied &^= SquareBB(bb.LSB())
			attackers |= (BishopAttacks(to, occupied) & (p.Pieces[White][Bishop] | p.Pieces[Black][Bishop] | p.Pieces[White][Queen] | p.Pieces[Black][Queen])) |
				(RookAttacks(to, occupied) & (p.Pieces[White][Rook] | p.Pieces[Black][Rook] | p.Pieces[White][Queen] | p.Pieces[Black][Queen]))
		} else {
			// King recapture: legal only if the opponent has no remaining
			// attacker on the square.
			if attackers&^p.Occupied[stm] != 0 {
				return res^1 == 1
			}
			return res == 1
		}
	}

	return res == 1
}
