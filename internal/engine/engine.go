package engine

import (
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/book"
	"github.com/hailam/chessplay/internal/nnue"
	"github.com/hailam/chessplay/internal/stats"
	"github.com/hailam/chessplay/internal/tablebase"
)

// NumWorkers is the number of parallel search workers (matches CPU cores).
var NumWorkers = runtime.GOMAXPROCS(0)

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = no limit)
	Nodes    uint64        // Maximum nodes (0 = no limit)
	MoveTime time.Duration // Time for this move (0 = no limit)
	Infinite bool          // Search until stopped
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // depth 3, 500ms
	Medium                   // depth 7, 1s
	Hard                     // Maximum strength (depth 40), 3s
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 3, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 7, MoveTime: 1 * time.Second},
	Hard:   {Depth: 40, MoveTime: 3 * time.Second}, // Max strength (time-limited)
}

// Engine is the chess AI engine.
type Engine struct {
	// Workers for parallel search
	workers       []*Worker
	pawnTable     *PawnTable
	tt            *TranspositionTable
	sharedHistory *SharedHistory // Shared history for Lazy SMP
	stopFlag      atomic.Bool

	difficulty Difficulty
	book       *book.Book
	tablebase  tablebase.Prober
	tbCache    *tablebase.BadgerCachedProber // non-nil when EnableCachedLichessTablebase is active, closed by Close

	// Position history for repetition detection
	rootPosHashes []uint64

	// NNUE evaluation
	useNNUE bool
	nnueNet *nnue.Network // Shared network (immutable after load)

	// Statistics exporter: publishes a merged snapshot of every worker's
	// counters at a fixed rate for an out-of-process observer (see
	// internal/stats and cmd/chessplay-stats).
	statsExporter  *stats.Exporter
	curRootMoveIdx atomic.Uint32

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine with the given transposition table size in MB.
func NewEngine(ttSizeMB int) *Engine {
	tt := NewTranspositionTable(ttSizeMB)
	sharedHistory := NewSharedHistory()

	e := &Engine{
		tt:            tt,
		pawnTable:     NewPawnTable(1),
		sharedHistory: sharedHistory,
		difficulty:    Medium,
		workers:       make([]*Worker, NumWorkers),
	}

	log.Printf("[Engine] Creating %d workers (GOMAXPROCS=%d)", NumWorkers, runtime.GOMAXPROCS(0))

	// Create workers, each with its own pawn table for thread safety
	for i := 0; i < NumWorkers; i++ {
		workerPawnTable := NewPawnTable(1) // 1MB per worker
		e.workers[i] = NewWorker(i, tt, workerPawnTable, sharedHistory, &e.stopFlag)
	}

	e.statsExporter = stats.NewExporter(25, e)
	e.statsExporter.Start()

	return e
}

// Aggregate implements stats.Source by summing every worker's counters.
// Called from the exporter's background goroutine, never from a search.
func (e *Engine) Aggregate() stats.Counters {
	var total stats.Counters
	for _, w := range e.workers {
		total.Add(w.Stats.Snapshot())
	}
	return total
}

// CurrentRootMoveIndex implements stats.Source.
func (e *Engine) CurrentRootMoveIndex() uint32 {
	return e.curRootMoveIdx.Load()
}

// StatsRecord returns the exported record external consumers attach to.
func (e *Engine) StatsRecord() *stats.ExportedRecord {
	return e.statsExporter.Record()
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
}

// LoadBook loads an opening book from a Polyglot file.
func (e *Engine) LoadBook(filename string) error {
	b, err := book.LoadPolyglot(filename)
	if err != nil {
		return err
	}
	e.book = b
	return nil
}

// SetBook sets the opening book.
func (e *Engine) SetBook(b *book.Book) {
	e.book = b
}

// HasBook returns true if an opening book is loaded.
func (e *Engine) HasBook() bool {
	return e.book != nil
}

// SetTablebase sets the tablebase prober.
func (e *Engine) SetTablebase(tb tablebase.Prober) {
	e.tablebase = tb
}

// EnableLichessTablebase enables Lichess online tablebase lookups.
func (e *Engine) EnableLichessTablebase() {
	e.tablebase = tablebase.NewLichessProber()
}

// EnableCachedLichessTablebase enables Lichess online tablebase lookups
// wrapped in a BadgerDB-backed cache at cacheDir, so probe results survive
// across engine restarts instead of being re-fetched from the network.
func (e *Engine) EnableCachedLichessTablebase(cacheDir string) error {
	cached, err := tablebase.NewBadgerCachedProber(tablebase.NewLichessProber(), cacheDir)
	if err != nil {
		return err
	}
	e.tablebase = cached
	e.tbCache = cached
	return nil
}

// HasTablebase returns true if a tablebase is available.
func (e *Engine) HasTablebase() bool {
	return e.tablebase != nil && e.tablebase.Available()
}

// SetPositionHistory sets the position history for repetition detection.
// This should be called before Search() with hashes from the game's move history.
func (e *Engine) SetPositionHistory(hashes []uint64) {
	e.rootPosHashes = make([]uint64, len(hashes))
	copy(e.rootPosHashes, hashes)

	// Set for all workers
	for _, w := range e.workers {
		w.SetRootHistory(hashes)
	}
}

// Search finds the best move for the given position.
func (e *Engine) Search(pos *board.Position) board.Move {
	limits := DifficultySettings[e.difficulty]
	return e.SearchWithLimits(pos, limits)
}

// SearchWithLimits finds the best move with specific search limits.
// Uses Lazy SMP with multiple workers searching in parallel.
func (e *Engine) SearchWithLimits(pos *board.Position, limits SearchLimits) board.Move {
	log.Printf("[Search] Received position with SideToMove=%v", pos.SideToMove)

	// Try opening book first
	if e.book != nil {
		if move, ok := e.book.Probe(pos); ok {
			return move
		}
	}
	log.Printf("[Search] After book probe SideToMove=%v", pos.SideToMove)

	// Try tablebase for endgames
	if e.tablebase != nil && e.tablebase.Available() {
		pieceCount := tablebase.CountPieces(pos)
		if pieceCount <= e.tablebase.MaxPieces() {
			result := e.tablebase.ProbeRoot(pos)
			if result.Found && result.Move != board.NoMove {
				return result.Move
			}
		}
	}
	log.Printf("[Search] After tablebase probe SideToMove=%v", pos.SideToMove)

	// Only one legal move: play it without spending any search time.
	if legal := pos.GenerateLegalMoves(); legal.Len() == 1 {
		singleMoveStart := time.Now()
		move := legal.Get(0)
		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth: 1,
				Score: e.Evaluate(pos),
				Nodes: 1,
				Time:  time.Since(singleMoveStart),
				PV:    []board.Move{move},
			})
		}
		return move
	}

	// Reset for new search
	e.stopFlag.Store(false)
	e.tt.NewSearch()

	// Log evaluation mode
	if e.useNNUE && e.nnueNet != nil {
		log.Printf("[Engine] Starting search with NNUE evaluation")
	} else {
		log.Printf("[Engine] Starting search with Classical evaluation")
	}

	// Reset all workers
	for _, w := range e.workers {
		w.Reset()
	}

	startTime := time.Now()
	var bestMove board.Move
	var bestScore int
	var bestPV []board.Move
	var bestDepth int

	// Determine maximum depth
	maxDepth := MaxPly
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	// Determine deadline
	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = startTime.Add(limits.MoveTime)
	}

	// Create result channel
	resultCh := make(chan WorkerResult, NumWorkers*maxDepth)

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < NumWorkers; i++ {
		wg.Add(1)
		go e.workerSearch(i, pos, maxDepth, resultCh, &wg)
	}

	// Collect results in a separate goroutine
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(resultCh)
		close(done)
	}()

	// Track nodes across all workers
	var totalNodes uint64

	// Process results
resultLoop:
	for {
		select {
		case result, ok := <-resultCh:
			if !ok {
				break resultLoop
			}

			// Update total nodes
			totalNodes += result.Nodes

			// Update best result if this is deeper or same depth with better score
			if result.Move != board.NoMove {
				if result.Depth > bestDepth ||
					(result.Depth == bestDepth && result.Score > bestScore) {
					bestMove = result.Move
					bestScore = result.Score
					bestPV = result.PV
					bestDepth = result.Depth

					// Report info
					if e.OnInfo != nil {
						elapsed := time.Since(startTime)
						e.OnInfo(SearchInfo{
							Depth:    bestDepth,
							Score:    bestScore,
							Nodes:    e.getTotalNodes(),
							Time:     elapsed,
							PV:       bestPV,
							HashFull: e.tt.HashFull(),
						})
					}

					// Early termination: found mate
					if bestScore > MateScore-100 || bestScore < -MateScore+100 {
						e.stopFlag.Store(true)
						break resultLoop
					}
				}
			}

			// Check time limit
			if !deadline.IsZero() && time.Now().After(deadline) {
				e.stopFlag.Store(true)
				break resultLoop
			}

		case <-done:
			break resultLoop
		}
	}

	// Ensure all workers are stopped
	e.stopFlag.Store(true)

	// Wait for workers to finish
	<-done

	return bestMove
}

// SearchWithUCILimits finds the best move using UCI time controls.
// Supports wtime/btime/winc/binc for proper tournament time management.
func (e *Engine) SearchWithUCILimits(pos *board.Position, limits UCILimits, ply int) board.Move {
	// Try opening book first
	if e.book != nil {
		if move, ok := e.book.Probe(pos); ok {
			return move
		}
	}

	// Try tablebase for endgames
	if e.tablebase != nil && e.tablebase.Available() {
		pieceCount := tablebase.CountPieces(pos)
		if pieceCount <= e.tablebase.MaxPieces() {
			result := e.tablebase.ProbeRoot(pos)
			if result.Found && result.Move != board.NoMove {
				return result.Move
			}
		}
	}

	// Only one legal move: play it without spending any search time.
	if legal := pos.GenerateLegalMoves(); legal.Len() == 1 {
		singleMoveStart := time.Now()
		move := legal.Get(0)
		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth: 1,
				Score: e.Evaluate(pos),
				Nodes: 1,
				Time:  time.Since(singleMoveStart),
				PV:    []board.Move{move},
			})
		}
		return move
	}

	// Initialize time manager
	tm := NewTimeManager()
	tm.Init(limits, pos.SideToMove, ply)

	// Reset for new search
	e.stopFlag.Store(false)
	e.tt.NewSearch()

	// Reset all workers
	for _, w := range e.workers {
		w.Reset()
	}

	startTime := time.Now()
	var bestMove board.Move
	var bestScore int
	var bestPV []board.Move
	var bestDepth int
	var lastBestMove board.Move
	var stabilityCount int
	var instabilityCount int

	// Determine maximum depth
	maxDepth := MaxPly
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	// Create result channel
	resultCh := make(chan WorkerResult, NumWorkers*maxDepth)

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < NumWorkers; i++ {
		wg.Add(1)
		go e.workerSearch(i, pos, maxDepth, resultCh, &wg)
	}

	// Collect results in a separate goroutine
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(resultCh)
		close(done)
	}()

	// Process results
resultLoop:
	for {
		select {
		case result, ok := <-resultCh:
			if !ok {
				break resultLoop
			}

			// Update best result if this is deeper or same depth with better score
			if result.Move != board.NoMove {
				if result.Depth > bestDepth ||
					(result.Depth == bestDepth && result.Score > bestScore) {

					// Track move stability
					if result.Depth > bestDepth {
						if result.Move == lastBestMove {
							stabilityCount++
							instabilityCount = 0
						} else {
							instabilityCount++
							stabilityCount = 0
						}
						lastBestMove = result.Move
					}

					bestMove = result.Move
					bestScore = result.Score
					bestPV = result.PV
					bestDepth = result.Depth

					// Report info
					if e.OnInfo != nil {
						elapsed := time.Since(startTime)
						e.OnInfo(SearchInfo{
							Depth:    bestDepth,
							Score:    bestScore,
							Nodes:    e.getTotalNodes(),
							Time:     elapsed,
							PV:       bestPV,
							HashFull: e.tt.HashFull(),
						})
					}

					// Early termination: found mate
					if bestScore > MateScore-100 || bestScore < -MateScore+100 {
						e.stopFlag.Store(true)
						break resultLoop
					}

					// Time management: check if we should stop based on stability
					if tm.PastOptimum() {
						if stabilityCount >= 4 {
							// Move is very stable, stop early
							e.stopFlag.Store(true)
							break resultLoop
						}
					}
				}
			}

			// Check time limit
			if tm.ShouldStop() {
				e.stopFlag.Store(true)
				break resultLoop
			}

			// Node limit check
			if limits.Nodes > 0 && e.getTotalNodes() >= limits.Nodes {
				e.stopFlag.Store(true)
				break resultLoop
			}

		case <-done:
			break resultLoop
		}
	}

	// Ensure all workers are stopped
	e.stopFlag.Store(true)
	<-done

	return bestMove
}

// workerSearch runs iterative deepening search in a worker goroutine.
// Uses depth staggering: workers start at different depths to reduce redundant shallow work.
func (e *Engine) workerSearch(workerID int, pos *board.Position, maxDepth int, resultCh chan<- WorkerResult, wg *sync.WaitGroup) {
	defer wg.Done()

	worker := e.workers[workerID]
	worker.InitSearch(pos)

	var prevScore int

	// Depth staggering: helper workers skip shallow depths
	// Worker 0 (main): starts at depth 1
	// Workers 1-2: start at depth 2
	// Workers 3-5: start at depth 3
	// Workers 6+: start at depth 4
	startDepth := 1
	if workerID >= 6 {
		startDepth = 4
	} else if workerID >= 3 {
		startDepth = 3
	} else if workerID >= 1 {
		startDepth = 2
	}

	for depth := startDepth; depth <= maxDepth; depth++ {
		if e.stopFlag.Load() {
			return
		}

		var move board.Move
		var score int

		if depth >= 5 && prevScore != 0 {
			// Worker-specific diversity offset on the starting window,
			// kept as an enrichment over the base formula to spread Lazy-SMP
			// helper threads across slightly different lines.
			diversity := (workerID % 8) * 3

			addAlpha := 75 + diversity
			addBeta := 75 + diversity
			alpha := prevScore - addAlpha
			beta := prevScore + addBeta

			for retry := 0; ; retry++ {
				move, score = worker.SearchDepth(depth, alpha, beta)

				if e.stopFlag.Load() {
					return
				}

				if score <= alpha {
					if retry >= 3 {
						alpha = -10000
						continue
					}
					alpha -= addAlpha
					beta = (alpha + beta) / 2
					addAlpha += addAlpha/15 + 1
				} else if score >= beta {
					if retry >= 3 {
						beta = 10000
						continue
					}
					beta += addBeta
					alpha = (alpha + beta) / 2
					addBeta += addBeta/15 + 1
				} else {
					break
				}
			}
		} else {
			move, score = worker.SearchDepth(depth, -Infinity, Infinity)
		}

		if e.stopFlag.Load() {
			return
		}

		prevScore = score

		// Send result
		pv := worker.GetPV()
		resultCh <- WorkerResult{
			WorkerID: workerID,
			Depth:    depth,
			Score:    score,
			Move:     move,
			PV:       pv,
			Nodes:    worker.Nodes(),
		}
	}
}

// getTotalNodes returns the total nodes searched by all workers.
func (e *Engine) getTotalNodes() uint64 {
	var total uint64
	for _, w := range e.workers {
		total += w.Nodes()
	}
	return total
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
}

// Close stops the background statistics exporter. Call when the engine is
// being discarded so its goroutine does not outlive it.
func (e *Engine) Close() {
	e.statsExporter.Stop()
	if e.tbCache != nil {
		_ = e.tbCache.Close()
	}
}

// Clear clears the transposition table and other caches.
func (e *Engine) Clear() {
	e.tt.Clear()
	// Clear all worker orderers
	for _, w := range e.workers {
		w.orderer.Clear()
	}
}

// Perft performs a perft test (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}

	return nodes
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos)
}

// LoadNNUE loads the NNUE weight file and wires it into every worker.
func (e *Engine) LoadNNUE(weightsPath string) error {
	log.Printf("[Engine] Loading NNUE weights: %s", weightsPath)

	net := nnue.NewNetwork()
	if err := net.LoadWeights(weightsPath); err != nil {
		log.Printf("[Engine] Failed to load NNUE: %v", err)
		return err
	}
	e.nnueNet = net

	for _, w := range e.workers {
		w.initNNUE(net)
	}

	log.Printf("[Engine] NNUE weights loaded successfully")
	return nil
}

// SetUseNNUE enables or disables NNUE evaluation.
func (e *Engine) SetUseNNUE(use bool) {
	e.useNNUE = use
	for _, w := range e.workers {
		w.useNNUE = use
	}

	if use {
		log.Printf("[Engine] Evaluation mode: NNUE")
	} else {
		log.Printf("[Engine] Evaluation mode: Classical")
	}
}

// UseNNUE returns whether NNUE evaluation is enabled.
func (e *Engine) UseNNUE() bool {
	return e.useNNUE
}

// HasNNUE returns whether NNUE networks are loaded.
func (e *Engine) HasNNUE() bool {
	return e.nnueNet != nil
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-100 {
		mateIn := (MateScore - score + 1) / 2
		return "Mate in " + itoa(mateIn)
	}
	if score < -MateScore+100 {
		mateIn := (MateScore + score + 1) / 2
		return "Mated in " + itoa(mateIn)
	}

	// Convert centipawns to pawns
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / 100
	centipawns := score % 100

	return sign + itoa(pawns) + "." + itoa(centipawns)
}

// Simple integer to string (avoid fmt import)
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	s := ""
	for n > 0 {
		s = string('0'+byte(n%10)) + s
		n /= 10
	}
	return s
}
