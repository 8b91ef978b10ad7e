package board

import "fmt"

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	if c == White {
		if kingSide {
			return cr&WhiteKingSideCastle != 0
		}
		return cr&WhiteQueenSideCastle != 0
	}
	if kingSide {
		return cr&BlackKingSideCastle != 0
	}
	return cr&BlackQueenSideCastle != 0
}

// Position represents a complete chess position. It is small enough
// (a few hundred bytes) to pass by value: search descends by copying a
// parent into a preallocated child slot and mutating the child, rather
// than mutating in place and unwinding through an undo stack. There is
// no UnmakeMove — the parent is never touched.
type Position struct {
	// Piece bitboards: [Color][PieceType]
	Pieces [2][6]Bitboard

	// Occupancy bitboards (cached for efficiency)
	Occupied    [2]Bitboard // All pieces of each color
	AllOccupied Bitboard    // All pieces on the board

	// Game state
	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // Target square for en passant, NoSquare if none
	HalfMoveClock  int    // Moves since last pawn move or capture (for 50-move rule)
	FullMoveNumber int    // Full move counter, starts at 1

	// Zobrist hashes
	Hash          uint64    // Full position hash (pieces, side, castling, ep)
	PawnKey       uint64    // Hash restricted to pawns of both colors
	NonPawnKey    [2]uint64 // Hash restricted to non-pawn pieces, per color

	// King positions (cached for check detection)
	KingSquare [2]Square

	// Checkers bitboard (pieces giving check, side to move) and pin state for both kings
	Checkers        Bitboard
	BlockersForKing [2]Bitboard // lone pieces of either color between each king and an enemy slider
	Pinners         [2]Bitboard // enemy sliders with exactly one piece between them and each king
}

// DebugMoveValidation enables the extra move checks and logging in callers
// that consult it (the UCI layer). Off by default.
var DebugMoveValidation bool

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, _ := ParseFEN(StartFEN)
	return pos
}

// Copy creates a deep copy of the position. Search should prefer DoMove
// into a preallocated slot over this; Copy exists for callers (UCI
// "position" command, root setup) that need an independent position.
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)

	if p.AllOccupied&bb == 0 {
		return NoPiece
	}

	var c Color
	if p.Occupied[White]&bb != 0 {
		c = White
	} else {
		c = Black
	}

	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return NewPiece(pt, c)
		}
	}

	return NoPiece
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.AllOccupied&SquareBB(sq) == 0
}

// setPiece places a piece on a square (does not update hash).
func (p *Position) setPiece(piece Piece, sq Square) {
	if piece == NoPiece {
		return
	}
	c := piece.Color()
	pt := piece.Type()
	bb := SquareBB(sq)

	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb

	if pt == King {
		p.KingSquare[c] = sq
	}
}

// removePiece removes a piece from a square (does not update hash).
func (p *Position) removePiece(sq Square) Piece {
	piece := p.PieceAt(sq)
	if piece == NoPiece {
		return NoPiece
	}

	c := piece.Color()
	pt := piece.Type()
	bb := SquareBB(sq)

	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb

	return piece
}

// movePiece moves a piece from one square to another (does not update hash).
func (p *Position) movePiece(from, to Square) {
	piece := p.PieceAt(from)
	if piece == NoPiece {
		return
	}

	c := piece.Color()
	pt := piece.Type()
	fromBB := SquareBB(from)
	toBB := SquareBB(to)
	moveBB := fromBB | toBB

	p.Pieces[c][pt] ^= moveBB
	p.Occupied[c] ^= moveBB
	p.AllOccupied ^= moveBB

	if pt == King {
		p.KingSquare[c] = to
	}
}

// updateOccupied recalculates occupancy bitboards from piece bitboards.
func (p *Position) updateOccupied() {
	p.Occupied[White] = Empty
	p.Occupied[Black] = Empty

	for pt := Pawn; pt <= King; pt++ {
		p.Occupied[White] |= p.Pieces[White][pt]
		p.Occupied[Black] |= p.Pieces[Black][pt]
	}

	p.AllOccupied = p.Occupied[White] | p.Occupied[Black]
}

// findKings locates and caches the king positions.
func (p *Position) findKings() {
	p.KingSquare[White] = p.Pieces[White][King].LSB()
	p.KingSquare[Black] = p.Pieces[Black][King].LSB()
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	s := "\n"
	for rank := 7; rank >= 0; rank-- {
		s += fmt.Sprintf("%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			piece := p.PieceAt(sq)
			if piece == NoPiece {
				s += ". "
			} else {
				s += piece.String() + " "
			}
		}
		s += "\n"
	}
	s += "\n   a b c d e f g h\n\n"
	s += fmt.Sprintf("Side to move: %s\n", p.SideToMove)
	s += fmt.Sprintf("Castling: %s\n", p.CastlingRights)
	s += fmt.Sprintf("En passant: %s\n", p.EnPassant)
	s += fmt.Sprintf("Half-move clock: %d\n", p.HalfMoveClock)
	s += fmt.Sprintf("Full move: %d\n", p.FullMoveNumber)
	s += fmt.Sprintf("Hash: %016x\n", p.Hash)
	return s
}

// Clear resets the position to an empty board.
func (p *Position) Clear() {
	*p = Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
	p.KingSquare[White] = NoSquare
	p.KingSquare[Black] = NoSquare
}

// Validate checks if the position is structurally sane.
func (p *Position) Validate() error {
	if p.Pieces[White][King].PopCount() != 1 {
		return fmt.Errorf("white must have exactly one king")
	}
	if p.Pieces[Black][King].PopCount() != 1 {
		return fmt.Errorf("black must have exactly one king")
	}
	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return fmt.Errorf("pawns cannot be on rank 1 or 8")
	}
	return nil
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	return p.Checkers != 0
}

// Material returns the material balance (positive favors white).
func (p *Position) Material() int {
	score := 0
	for pt := Pawn; pt < King; pt++ {
		score += p.Pieces[White][pt].PopCount() * PieceValue[pt]
		score -= p.Pieces[Black][pt].PopCount() * PieceValue[pt]
	}
	return score
}

// updateAttacksToKings recomputes Checkers, BlockersForKing and Pinners
// for both kings from scratch. Called after every DoMove/DoNullMove and
// after loading a FEN. Uses the standard x-ray sniper technique: a
// sniper's full-board attack that hits our king through exactly one
// piece, of either color, makes that piece a blocker and the sniper a
// pinner; ComputePinned keeps only the side to move's own blockers.
func (p *Position) updateAttacksToKings() {
	for _, us := range [2]Color{White, Black} {
		them := us.Other()
		ksq := p.KingSquare[us]
		if ksq == NoSquare {
			continue
		}

		var blockers, pinners Bitboard

		snipers := RookAttacks(ksq, 0) & (p.Pieces[them][Rook] | p.Pieces[them][Queen])
		snipers |= BishopAttacks(ksq, 0) & (p.Pieces[them][Bishop] | p.Pieces[them][Queen])
		for snipers != 0 {
			sq := snipers.PopLSB()
			between := Between(sq, ksq) &^ SquareBB(sq) &^ SquareBB(ksq)
			occ := between & p.AllOccupied
			if occ.PopCount() == 1 {
				blockers |= occ
				pinners |= SquareBB(sq)
			}
		}

		p.BlockersForKing[us] = blockers
		p.Pinners[us] = pinners
	}

	us := p.SideToMove
	kingBB := p.Pieces[us][King]
	if kingBB == 0 {
		p.Checkers = 0
		return
	}
	p.Checkers = p.AttackersByColor(kingBB.LSB(), us.Other(), p.AllOccupied)
}

// ComputePinned returns pieces of the side to move pinned to its own king.
func (p *Position) ComputePinned() Bitboard {
	return p.BlockersForKing[p.SideToMove] & p.Occupied[p.SideToMove]
}

// updateKey rebuilds Hash, PawnKey and NonPawnKey from scratch. Used
// after loading a FEN, where incremental XOR bookkeeping has no prior
// state to build on.
func (p *Position) updateKey() {
	p.Hash = p.ComputeHash()
	p.PawnKey = p.ComputePawnKey()
	p.NonPawnKey[White] = p.computeNonPawnKey(White)
	p.NonPawnKey[Black] = p.computeNonPawnKey(Black)
}

func (p *Position) computeNonPawnKey(c Color) uint64 {
	var key uint64
	for pt := Knight; pt <= King; pt++ {
		bb := p.Pieces[c][pt]
		for bb != 0 {
			sq := bb.PopLSB()
			key ^= zobristPiece[c][pt][sq]
		}
	}
	return key
}

// keyAfter returns an approximation of the Zobrist key the position would
// have after making m, without mutating anything. It accounts for the side
// to move, the old en-passant square, a capture and the moving or promoted
// piece; castling-rights changes, the castling rook and a new en-passant
// square are not included.
func (p *Position) keyAfter(m Move) uint64 {
	us := p.SideToMove
	from, to := m.From(), m.To()
	piece := p.PieceAt(from)
	if piece == NoPiece {
		return p.Hash
	}
	pt := piece.Type()

	key := p.Hash ^ zobristSideToMove
	if p.EnPassant != NoSquare {
		key ^= zobristEnPassant[p.EnPassant.File()]
	}

	if captured := p.PieceAt(to); captured != NoPiece && !m.IsCastling() {
		key ^= zobristPiece[captured.Color()][captured.Type()][to]
	} else if m.IsEnPassant() {
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		key ^= zobristPiece[us.Other()][Pawn][capSq]
	}

	key ^= zobristPiece[us][pt][from]
	if m.IsPromotion() {
		key ^= zobristPiece[us][m.Promotion()][to]
	} else {
		key ^= zobristPiece[us][pt][to]
	}

	return key
}

// KeyWith50mr folds the halfmove clock into the TT probe key so that
// entries implicitly remember how close they were to the 50-move draw.
func (p *Position) KeyWith50mr() uint64 {
	return p.Hash ^ zobrist50mr[p.HalfMoveClock&127]
}

// NullMoveUndo stores state for unmake of a null move. Null moves are
// cheap enough (side flip, ep clear) that an explicit undo is simpler
// than a full copy.
type NullMoveUndo struct {
	EnPassant       Square
	Hash            uint64
	Checkers        Bitboard
	BlockersForKing [2]Bitboard
	Pinners         [2]Bitboard
}

// DoNullMove passes the turn without moving a piece. Used by null-move
// pruning.
func (p *Position) DoNullMove() NullMoveUndo {
	undo := NullMoveUndo{
		EnPassant:       p.EnPassant,
		Hash:            p.Hash,
		Checkers:        p.Checkers,
		BlockersForKing: p.BlockersForKing,
		Pinners:         p.Pinners,
	}

	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare
	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= zobristSideToMove
	p.HalfMoveClock++

	p.updateAttacksToKings()

	return undo
}

// UndoNullMove restores the state saved by DoNullMove.
func (p *Position) UndoNullMove(undo NullMoveUndo) {
	p.EnPassant = undo.EnPassant
	p.Hash = undo.Hash
	p.Checkers = undo.Checkers
	p.BlockersForKing = undo.BlockersForKing
	p.Pinners = undo.Pinners
	p.SideToMove = p.SideToMove.Other()
	p.HalfMoveClock--
}

// hasNonPawns returns true iff c has any piece other than king/pawns.
func (p *Position) hasNonPawns(c Color) bool {
	return p.Pieces[c][Knight]|p.Pieces[c][Bishop]|p.Pieces[c][Rook]|p.Pieces[c][Queen] != 0
}

// HasNonPawnMaterial is the side-to-move convenience form of hasNonPawns,
// used by null-move pruning to avoid zugzwang-prone pure pawn endgames.
func (p *Position) HasNonPawnMaterial() bool {
	return p.hasNonPawns(p.SideToMove)
}

// is50mrDraw reports whether the halfmove clock alone forces a draw: the
// clock must have reached 100 plies and, if the side to move is in
// check, it must still have a legal reply (mate trumps the 50-move rule).
func (p *Position) is50mrDraw() bool {
	if p.HalfMoveClock < 100 {
		return false
	}
	if p.InCheck() {
		return p.HasLegalMoves()
	}
	return true
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	wKnights := p.Pieces[White][Knight].PopCount()
	wBishops := p.Pieces[White][Bishop].PopCount()
	bKnights := p.Pieces[Black][Knight].PopCount()
	bBishops := p.Pieces[Black][Bishop].PopCount()

	if wKnights+wBishops+bKnights+bBishops == 0 {
		return true
	}
	if wKnights+wBishops <= 1 && bKnights+bBishops == 0 {
		return true
	}
	if bKnights+bBishops <= 1 && wKnights+wBishops == 0 {
		return true
	}

	return false
}
