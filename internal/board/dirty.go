package board

// DirtyKind classifies the shape of a DirtyPieces record, telling the
// NNUE accumulator how many sub/add pairs it needs to apply.
type DirtyKind uint8

const (
	DirtyNormal   DirtyKind = iota // one sub, one add
	DirtyCapture                   // two sub, one add
	DirtyCastling                  // two sub, two add
)

// PieceSquare names a single (piece, square) feature touched by a move.
type PieceSquare struct {
	Piece Piece
	Sq    Square
}

// DirtyPieces describes what changed on the board for a single DoMove,
// in terms the NNUE accumulator can replay without re-deriving it from
// two board snapshots. Produced directly by Position.DoMove.
type DirtyPieces struct {
	Sub      [2]PieceSquare
	Add      [2]PieceSquare
	SubCount int
	AddCount int
	Kind     DirtyKind
}

func (d *DirtyPieces) sub(p Piece, sq Square) {
	d.Sub[d.SubCount] = PieceSquare{p, sq}
	d.SubCount++
}

func (d *DirtyPieces) add(p Piece, sq Square) {
	d.Add[d.AddCount] = PieceSquare{p, sq}
	d.AddCount++
}
