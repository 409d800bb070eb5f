package engine

import (
	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/nnue"
)

// DirtyPiece tracks a single feature removal or addition for incremental
// accumulator updates. Unlike HalfKP-style nets, this network's features
// don't depend on king placement, so every piece move (including king
// moves) is expressible as exactly one removal plus one addition.
type DirtyPiece struct {
	PieceType board.PieceType
	Square    board.Square
	IsWhite   bool
	Added     bool // false = removed from Square, true = added at Square
}

// MaxDirtyPieces is the maximum number of feature changes per move:
// a normal move or promotion is 2, a capture or en passant capture adds 1,
// and castling (king and rook) is 4.
const MaxDirtyPieces = 4

// DirtyState tracks the feature changes a move produces, computed before
// MakeMove while the position still reflects the pre-move state.
type DirtyState struct {
	Pieces   [MaxDirtyPieces]DirtyPiece
	Count    int
	Computed bool
}

func (d *DirtyState) add(pt board.PieceType, sq board.Square, isWhite, added bool) {
	d.Pieces[d.Count] = DirtyPiece{PieceType: pt, Square: sq, IsWhite: isWhite, Added: added}
	d.Count++
}

// computeDirtyPieces computes the feature changes a move produces.
// Must be called BEFORE MakeMove while the position still has the
// pre-move state. Returns false only when NNUE is inactive or the from
// square is empty: this architecture has no king-relative features, so
// every move (including castling and king moves) can be applied
// incrementally.
func (w *Worker) computeDirtyPieces(m board.Move) bool {
	if !w.useNNUE || w.nnueAcc == nil {
		return false
	}

	d := &w.dirtyState
	d.Count = 0
	d.Computed = false

	pos := w.pos
	from := m.From()
	to := m.To()
	movingPiece := pos.PieceAt(from)
	if movingPiece == board.NoPiece {
		return false
	}

	us := movingPiece.Color()
	isWhite := us == board.White
	pt := movingPiece.Type()

	if m.IsEnPassant() {
		var capturedSq board.Square
		if isWhite {
			capturedSq = to - 8
		} else {
			capturedSq = to + 8
		}
		d.add(board.Pawn, capturedSq, !isWhite, false)
	} else if captured := pos.PieceAt(to); captured != board.NoPiece {
		d.add(captured.Type(), to, captured.Color() == board.White, false)
	}

	if m.IsCastling() {
		d.add(board.King, from, isWhite, false)
		d.add(board.King, to, isWhite, true)

		rookFrom, rookTo := castlingRookSquares(from, to)
		d.add(board.Rook, rookFrom, isWhite, false)
		d.add(board.Rook, rookTo, isWhite, true)
		d.Computed = true
		return true
	}

	d.add(pt, from, isWhite, false)
	if m.IsPromotion() {
		d.add(m.Promotion(), to, isWhite, true)
	} else {
		d.add(pt, to, isWhite, true)
	}

	d.Computed = true
	return true
}

// castlingRookSquares returns the rook's from/to squares for a castling
// move identified by the king's from/to squares.
func castlingRookSquares(kingFrom, kingTo board.Square) (from, to board.Square) {
	switch kingTo {
	case board.G1:
		return board.H1, board.F1
	case board.C1:
		return board.A1, board.D1
	case board.G8:
		return board.H8, board.F8
	case board.C8:
		return board.A8, board.D8
	default:
		return kingFrom, kingTo
	}
}

// simpleEval returns the absolute material advantage, used for deciding
// whether an evaluation call is "simple" enough to skip NNUE in favor of
// the classical evaluator during razoring-adjacent pruning checks.
func (w *Worker) simpleEval() int {
	pos := w.pos
	score := 0
	pieceValues := [6]int{100, 320, 330, 500, 900, 0}

	for pt := board.Pawn; pt <= board.Queen; pt++ {
		whitePieces := popCount64(uint64(pos.Pieces[board.White][pt]))
		blackPieces := popCount64(uint64(pos.Pieces[board.Black][pt]))
		score += (whitePieces - blackPieces) * pieceValues[pt]
	}

	if pos.SideToMove == board.Black {
		score = -score
	}
	return absInt(score)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func popCount64(x uint64) int {
	count := 0
	for x != 0 {
		x &= x - 1
		count++
	}
	return count
}

// nnuePush saves accumulator state before making a move and applies the
// dirty-piece deltas computed by computeDirtyPieces. Push() copies the
// parent accumulator; if no dirty state was computed (null move, or the
// caller skipped it) the accumulator is marked stale and recomputed
// lazily by nnueEvaluate.
func (w *Worker) nnuePush() {
	if !w.useNNUE || w.nnueAcc == nil {
		return
	}
	w.nnueAcc.Push()
	acc := w.nnueAcc.Current()

	if !w.dirtyState.Computed {
		acc.Computed = false
		return
	}

	for i := 0; i < w.dirtyState.Count; i++ {
		dp := &w.dirtyState.Pieces[i]
		if dp.Added {
			nnue.AddPiece(acc, w.nnueNet, dp.PieceType, dp.Square, dp.IsWhite)
		} else {
			nnue.RemovePiece(acc, w.nnueNet, dp.PieceType, dp.Square, dp.IsWhite)
		}
	}
}

// nnuePop restores accumulator state after unmaking a move.
func (w *Worker) nnuePop() {
	if w.useNNUE && w.nnueAcc != nil {
		w.nnueAcc.Pop()
	}
}

// nnueEvaluate runs the network over the current accumulator, refreshing
// it from scratch first if incremental updates were skipped, then layers
// the same optimism and fifty-move dampening the classical path's callers
// expect from evaluate().
func (w *Worker) nnueEvaluate() int {
	if w.nnueNet == nil || w.nnueAcc == nil {
		return EvaluateWithPawnTable(w.pos, w.pawnTable)
	}

	acc := w.nnueAcc.Current()
	if !acc.Computed {
		acc.ComputeFull(w.pos, w.nnueNet)
	}

	sideToMove := 0
	if w.pos.SideToMove == board.Black {
		sideToMove = 1
	}

	score := nnue.Evaluate(acc, w.pos.SideToMove, w.nnueNet)

	optimism := w.optimism[sideToMove]
	pawnCount := popCount64(uint64(w.pos.Pieces[board.White][board.Pawn])) +
		popCount64(uint64(w.pos.Pieces[board.Black][board.Pawn]))
	material := 534*pawnCount + nonPawnMaterial(w.pos)
	score += optimism * (7191 + material) / 77871

	rule50 := int(w.pos.HalfMoveClock)
	score -= score * rule50 / 199

	return score
}

// nonPawnMaterial calculates the total material value excluding pawns,
// used for optimism scaling in NNUE evaluation.
func nonPawnMaterial(pos *board.Position) int {
	pieceValues := [6]int{0, 320, 330, 500, 900, 0}
	total := 0
	for c := 0; c < 2; c++ {
		for pt := board.Knight; pt <= board.Queen; pt++ {
			total += popCount64(uint64(pos.Pieces[c][pt])) * pieceValues[pt]
		}
	}
	return total
}

// resetNNUEAccumulators marks accumulators as needing recomputation.
func (w *Worker) resetNNUEAccumulators() {
	if w.nnueAcc != nil {
		w.nnueAcc.Reset()
	}
}
