package engine

// Search tuning switches and margins. Every pruning/extension technique in
// worker.go is gated by one of the Enable flags below so a technique can be
// turned off for debugging without touching the search code itself, the
// same "named, independently toggled heuristic" layout Stockfish's
// search.cpp uses.
const (
	EnableThreatExt      = true
	EnableHindsightDepth = true
	EnableRFP            = true
	EnableRazoring       = true
	EnableNMP            = true
	EnableProbcut        = true
	EnableMulticut       = true
	EnableFutilityPruning = true
	EnableSingularExt    = true
	EnableSEEPruning     = true
	EnableLMP            = true
	EnableHistoryPruning = true
)

const (
	// threatExtensionMinDepth is the shallowest depth at which a detected
	// hanging-piece/attacked-major-piece threat extends the search by a ply.
	threatExtensionMinDepth = 5
	// threatExtensionThreshold is the minimum material value (centipawns) a
	// hanging piece must have to count as a "serious" threat.
	threatExtensionThreshold = RookValue

	// probcutDepth/multicutDepth are the minimum depths at which the
	// respective shallow-search pruning techniques engage.
	probcutDepth  = 5
	multicutDepth = 8
	// multicutMoves caps how many root-ordered moves the multicut probe
	// samples; multicutRequired is how many of them must fail high before
	// the whole node is pruned.
	multicutMoves    = 6
	multicutRequired = 3

	// lazyEvalMargin bounds the cheap material-only eval used to skip a full
	// (NNUE or classical) evaluation at quiescence entry.
	lazyEvalMargin = 400

	// historyPruningThreshold: quiet moves at shallow depth with a history
	// score below this are skipped entirely (history pruning).
	historyPruningThreshold = -2000
)

// lmpThreshold is indexed by remaining depth (Late Move Pruning): at depth d
// once movesSearched reaches lmpThreshold[d], remaining quiet moves are
// skipped without search.
var lmpThreshold = [8]int{0, 5, 7, 11, 17, 25, 35, 47}

// abs returns the absolute value of an int, used throughout worker.go's
// margin arithmetic. Distinct from absInt (nnue_bridge.go), which predates
// this file and is kept for the NNUE accumulator math it already serves.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
