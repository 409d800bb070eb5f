// Command chessplay-stats is a standalone consumer of the engine's live
// search statistics. It plays the role of the original engine's
// emit_stats binary: attach to the exported record, block until the
// exporter has published at least once, print the derived ratios.
//
// This module has no OS shared-memory segment to attach to from a
// separate process (see internal/stats doc comment), so the attach step
// is simulated in-process: this binary owns the Engine and only reads it
// back through the same Lock/Revision/Counters surface a cross-process
// reader would use, never touching engine internals directly.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/stats"
)

var (
	fen      = flag.String("fen", "", "FEN to search (defaults to the starting position)")
	moveTime = flag.Duration("movetime", 3*time.Second, "how long to search before reporting")
	depth    = flag.Int("depth", 0, "maximum depth (0 = no limit, bounded by movetime)")
)

func main() {
	flag.Parse()

	pos := board.NewPosition()
	if *fen != "" {
		p, err := board.ParseFEN(*fen)
		if err != nil {
			fmt.Printf("invalid FEN %q: %v\n", *fen, err)
			return
		}
		pos = p
	}

	eng := engine.NewEngine(64)
	defer eng.Close()

	fmt.Println("# * Statistics *")

	done := make(chan struct{})
	go func() {
		defer close(done)
		eng.SearchWithLimits(pos, engine.SearchLimits{
			Depth:    *depth,
			MoveTime: *moveTime,
		})
	}()

	record := eng.StatsRecord()
	var counters stats.Counters
	for {
		record.Lock()
		if record.Revision() > 0 {
			counters = record.Counters()
			record.Unlock()
			break
		}
		record.Unlock()
		time.Sleep(10 * time.Millisecond)
	}

	<-done
	printStatistics(counters)
}

// printStatistics mirrors the original engine's emit_statistics summary
// lines, using DeriveStats for every ratio so a zero denominator prints
// 0 instead of propagating NaN/Inf.
func printStatistics(c stats.Counters) {
	d := stats.DeriveStats(c)

	fmt.Printf("# %d search %d qs: qs/s=%.3f, draws: %.2f%%, standing pat: %.2f%%\n",
		c.Nodes, c.QNodes, d.QNodesPerNode, d.DrawPercent, d.StandingPatPercent)
	fmt.Printf("# %.2f%% tt hit, %.2f tt query/store, %.2f%% syzygy hit\n",
		d.TTHitPercent, d.TTQueryPerStore, d.SyzygyHitPercent)
	fmt.Printf("# avg bco index: %.2f, qs bco index: %.2f, qsearlystop: %.2f%%\n",
		d.AvgMovesCutoffIndex, d.AvgQMovesCutoffIndex, d.QSEarlyStopPercent)
	fmt.Printf("# null move co: %.2f%%, LMR co: %.2f%%, static eval co: %.2f%%\n",
		d.NullMoveCutPercent, d.LMRCutPercent, d.StaticEvalCutPercent)
	fmt.Printf("# avg a/b distance: %.2f/%.2f\n", d.AvgAlphaDistance, d.AvgBetaDistance)
}
