// Package nnue implements a perspective-based, incrementally updatable
// neural network evaluator: two accumulators (one per side's viewpoint),
// a single quantised hidden layer, and a clipped-ReLU output dot product.
// It replaces the teacher's sfnnue package (kept in the tree under
// /sfnnue as reference) with the simpler single-hidden-layer architecture
// this engine's weight files actually use.
package nnue

import "github.com/hailam/chessplay/internal/board"

// Network architecture constants.
const (
	HiddenSize = 128
	Scale      = 400
	QA         = 255
	QB         = 64

	numPieceTypes = 6 // Pawn..King
	numSquares    = 64
	numFeatures   = 2 * numPieceTypes * numSquares // 768

	// MaxNonMate bounds every NNUE output so it can never be confused with
	// a mate-distance score. Must stay below engine.MateThreshold (9800);
	// the two packages don't import each other, so this is kept in sync by
	// hand rather than shared.
	MaxNonMate = 9799
)

// clamp restricts x to [lo, hi].
func clamp(x, lo, hi int32) int32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Evaluator owns a loaded network plus the accumulator stack a search
// thread pushes and pops as it walks the tree.
type Evaluator struct {
	net   *Network
	stack *AccumulatorStack
}

// NewEvaluator loads weightsFile, or seeds a deterministic random network
// when weightsFile is empty (used by tests that don't ship a weight blob).
func NewEvaluator(weightsFile string) (*Evaluator, error) {
	net := NewNetwork()

	if weightsFile != "" {
		if err := net.LoadWeights(weightsFile); err != nil {
			return nil, err
		}
	} else {
		net.InitRandom(12345)
	}

	return &Evaluator{
		net:   net,
		stack: NewAccumulatorStack(),
	}, nil
}

// Evaluate returns the network's evaluation of the position currently
// reflected in the accumulator, in centipawns from sideToMove's view.
// The caller must have already refreshed or incrementally updated the
// current accumulator (via Refresh or AddPiece/RemovePiece).
func (e *Evaluator) Evaluate(sideToMove board.Color) int {
	return Evaluate(e.stack.Current(), sideToMove, e.net)
}

// Refresh recomputes the current accumulator from scratch for pos.
func (e *Evaluator) Refresh(pos *board.Position) {
	e.stack.Current().ComputeFull(pos, e.net)
}

// Push duplicates the current accumulator onto the stack (call before MakeMove).
func (e *Evaluator) Push() { e.stack.Push() }

// Pop discards the top accumulator (call after UnmakeMove).
func (e *Evaluator) Pop() { e.stack.Pop() }

// Reset clears the accumulator stack for a new game.
func (e *Evaluator) Reset() { e.stack.Reset() }

// AddPiece updates the current accumulator for a piece appearing at square.
func (e *Evaluator) AddPiece(pieceType board.PieceType, sq board.Square, isWhite bool) {
	AddPiece(e.stack.Current(), e.net, pieceType, sq, isWhite)
}

// RemovePiece updates the current accumulator for a piece leaving square.
func (e *Evaluator) RemovePiece(pieceType board.PieceType, sq board.Square, isWhite bool) {
	RemovePiece(e.stack.Current(), e.net, pieceType, sq, isWhite)
}
