package nnue

import "github.com/hailam/chessplay/internal/board"

// Accumulator holds one ply's perspective vectors: white's and black's
// running sum of feature weights. Both always equal the sum of
// feature_weights for every piece on the board, indexed from each side's
// own perspective.
type Accumulator struct {
	White    [HiddenSize]int16
	Black    [HiddenSize]int16
	Computed bool
}

// AddPiece adds a piece's feature weights to both perspectives of acc,
// mirroring the opponent index vertically (square XOR 56) per §4.1.
func AddPiece(acc *Accumulator, net *Network, pieceType board.PieceType, sq board.Square, isWhite bool) {
	whiteIdx := featureIndex(pieceType, sq, isWhite, true)
	blackIdx := featureIndex(pieceType, sq, isWhite, false)

	wf := &net.FeatureWeights[whiteIdx]
	bf := &net.FeatureWeights[blackIdx]
	for i := 0; i < HiddenSize; i++ {
		acc.White[i] += wf[i]
		acc.Black[i] += bf[i]
	}
}

// RemovePiece is the exact inverse of AddPiece for identical arguments.
func RemovePiece(acc *Accumulator, net *Network, pieceType board.PieceType, sq board.Square, isWhite bool) {
	whiteIdx := featureIndex(pieceType, sq, isWhite, true)
	blackIdx := featureIndex(pieceType, sq, isWhite, false)

	wf := &net.FeatureWeights[whiteIdx]
	bf := &net.FeatureWeights[blackIdx]
	for i := 0; i < HiddenSize; i++ {
		acc.White[i] -= wf[i]
		acc.Black[i] -= bf[i]
	}
}

// ComputeFull recomputes acc from scratch for pos: bias plus every piece
// currently on the board. Used on refresh and whenever an incremental
// chain would be more expensive to validate than to redo.
func (acc *Accumulator) ComputeFull(pos *board.Position, net *Network) {
	copy(acc.White[:], net.FeatureBias[:])
	copy(acc.Black[:], net.FeatureBias[:])

	for color := board.White; color <= board.Black; color++ {
		isWhite := color == board.White
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Pieces[color][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				AddPiece(acc, net, pt, sq, isWhite)
			}
		}
	}

	acc.Computed = true
}

// AccumulatorStack is a per-ply stack of accumulators a worker pushes
// before MakeMove and pops after UnmakeMove, the same shape as the main
// search's recursion.
type AccumulatorStack struct {
	stack [maxStackPly]Accumulator
	top   int
}

// maxStackPly bounds the stack independently of internal/engine's own
// MaxPly constant, since this package must not import internal/engine.
const maxStackPly = 256

// NewAccumulatorStack returns an empty stack ready for a fresh search.
func NewAccumulatorStack() *AccumulatorStack {
	return &AccumulatorStack{}
}

// Push copies the current accumulator onto the next slot, the starting
// point for incremental AddPiece/RemovePiece calls at the new ply.
func (s *AccumulatorStack) Push() {
	if s.top < len(s.stack)-1 {
		s.stack[s.top+1] = s.stack[s.top]
		s.top++
	}
}

// Pop discards the top accumulator, returning to the parent ply's state.
func (s *AccumulatorStack) Pop() {
	if s.top > 0 {
		s.top--
	}
}

// Current returns the accumulator for the ply currently being searched.
func (s *AccumulatorStack) Current() *Accumulator {
	return &s.stack[s.top]
}

// Reset clears the stack for a new game.
func (s *AccumulatorStack) Reset() {
	s.top = 0
	s.stack[0] = Accumulator{}
}
