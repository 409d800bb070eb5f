package nnue

import "github.com/hailam/chessplay/internal/board"

// Network holds the read-only, process-wide NNUE weights: one feature
// vector per (color, piece type, square) and a two-way output weight
// pairing one side (us/them) of the accumulator to the scalar output.
type Network struct {
	FeatureWeights [numFeatures][HiddenSize]int16
	FeatureBias    [HiddenSize]int16
	OutputWeights  [2][HiddenSize]int16
	OutputBias     int16
}

// NewNetwork returns a zero-valued network; callers must LoadWeights or
// InitRandom before use.
func NewNetwork() *Network {
	return &Network{}
}

// featureIndex returns the feature slot for a piece of pieceType at sq,
// as seen from perspective (true = white's perspective). pieceIsWhite is
// the color of the piece itself. A piece of the perspective's own color
// uses 64*piece+square; an opponent piece uses 64*(6+piece) plus the
// vertically mirrored square (square XOR 56), computed here.
func featureIndex(pieceType board.PieceType, sq board.Square, pieceIsWhite, perspectiveIsWhite bool) int {
	pt := int(pieceType)
	if pieceIsWhite == perspectiveIsWhite {
		return pt*numSquares + int(sq)
	}
	return (numPieceTypes+pt)*numSquares + int(sq.Mirror())
}

// Evaluate computes the scalar network output for acc from sideToMove's
// perspective, matching the spec's fused clipped-ReLU dot product:
//
//	out = Σ clamp(us,0,QA)² · w0  +  Σ clamp(them,0,QA)² · w1
//	out = out/QA + bias
//	out = out·SCALE/(QA·QB)
func Evaluate(acc *Accumulator, sideToMove board.Color, net *Network) int {
	var us, them *[HiddenSize]int16
	if sideToMove == board.White {
		us, them = &acc.White, &acc.Black
	} else {
		us, them = &acc.Black, &acc.White
	}

	var sum int64
	for i := 0; i < HiddenSize; i++ {
		u := int64(clamp(int32(us[i]), 0, QA))
		sum += u * u * int64(net.OutputWeights[0][i])
	}
	for i := 0; i < HiddenSize; i++ {
		t := int64(clamp(int32(them[i]), 0, QA))
		sum += t * t * int64(net.OutputWeights[1][i])
	}

	out := sum/int64(QA) + int64(net.OutputBias)
	out = out * Scale / int64(QA*QB)

	if out > MaxNonMate {
		out = MaxNonMate
	} else if out < -MaxNonMate {
		out = -MaxNonMate
	}

	return int(out)
}

// InitRandom seeds deterministic pseudo-random weights, for tests and
// other call sites that have no weight file to load.
func (n *Network) InitRandom(seed int64) {
	state := uint64(seed)
	next := func() int16 {
		state = state*6364136223846793005 + 1442695040888963407
		return int16((state >> 48) & 0xFF) - 128
	}

	for i := 0; i < numFeatures; i++ {
		for j := 0; j < HiddenSize; j++ {
			n.FeatureWeights[i][j] = next() >> 3
		}
	}
	for i := 0; i < HiddenSize; i++ {
		n.FeatureBias[i] = next() >> 2
	}
	for i := 0; i < HiddenSize; i++ {
		n.OutputWeights[0][i] = next() >> 3
		n.OutputWeights[1][i] = next() >> 3
	}
	n.OutputBias = next()
}
