package stats

import (
	"sync"
	"time"
)

// ExportedRecord is the fixed-layout record external consumers read:
// mutex-guarded counters plus a revision counter that only moves forward,
// plus the move currently being searched at the root. This is the
// process's in-memory stand-in for the shared-memory segment the original
// engine maps with shmget/shmat — no third-party library in this module's
// dependency pack models OS shared memory, so the contract (lock, read
// revision, read counters, unlock) is reproduced with a plain mutex between
// goroutines instead of processes.
type ExportedRecord struct {
	mu       sync.Mutex
	revision uint32
	counters Counters
	curMove  uint32
}

// Lock, Unlock, Revision and Counters give an external reader the same
// sequence the original's emit_statistics does: lock, check revision,
// read counters, unlock.
func (r *ExportedRecord) Lock()   { r.mu.Lock() }
func (r *ExportedRecord) Unlock() { r.mu.Unlock() }

// Revision returns the current publish revision without locking; callers
// that need a consistent read should Lock first.
func (r *ExportedRecord) Revision() uint32 { return r.revision }

// Counters returns a copy of the last-published counters. Call under Lock.
func (r *ExportedRecord) Counters() Counters { return r.counters }

// CurMove returns the move index currently being searched at the root.
func (r *ExportedRecord) CurMove() uint32 { return r.curMove }

// Source supplies the live counters and current root move an Exporter
// samples on each tick.
type Source interface {
	// Aggregate returns the sum of every worker's counters at this instant.
	Aggregate() Counters
	// CurrentRootMoveIndex returns the index (1-based) of the move
	// currently being searched at the root, or 0 if not searching.
	CurrentRootMoveIndex() uint32
}

// Exporter publishes a Source's counters into an ExportedRecord at a fixed
// rate on a background goroutine, mirroring state_exporter::handler's
// usleep(1000000/hz) loop.
type Exporter struct {
	hz     int
	source Source
	record *ExportedRecord

	stop chan struct{}
	done chan struct{}

	mu      sync.Mutex
	running bool
}

// NewExporter creates an exporter publishing source's counters hz times a
// second. hz <= 0 defaults to 25, matching the original's default rate.
func NewExporter(hz int, source Source) *Exporter {
	if hz <= 0 {
		hz = 25
	}
	return &Exporter{
		hz:     hz,
		source: source,
		record: &ExportedRecord{},
	}
}

// Record returns the shared record readers should attach to.
func (e *Exporter) Record() *ExportedRecord { return e.record }

// Start begins the background publish loop. Calling Start on an already
// running exporter is a no-op.
func (e *Exporter) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	e.running = true
	e.stop = make(chan struct{})
	e.done = make(chan struct{})

	go e.run(e.stop, e.done)
}

// Stop halts the publish loop and waits for it to exit. Safe to call even
// if Start was never called.
func (e *Exporter) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	stop, done := e.stop, e.done
	e.mu.Unlock()

	close(stop)
	<-done
}

func (e *Exporter) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	period := time.Second / time.Duration(e.hz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			counters := e.source.Aggregate()
			curMove := e.source.CurrentRootMoveIndex()

			e.record.mu.Lock()
			e.record.counters = counters
			e.record.curMove = curMove
			e.record.revision++
			e.record.mu.Unlock()
		}
	}
}

// Derived holds the ratio statistics the original emit_statistics computes
// from the raw counters, for a reader that wants the same summary line
// rather than raw fields.
type Derived struct {
	QNodesPerNode       float64
	DrawPercent         float64
	StandingPatPercent  float64
	TTHitPercent        float64
	TTQueryPerStore     float64
	QTTHitPercent       float64
	SyzygyHitPercent    float64
	AvgMovesCutoffIndex float64
	AvgQMovesCutoffIndex float64
	QSEarlyStopPercent  float64
	NullMoveCutPercent  float64
	LMRCutPercent       float64
	StaticEvalCutPercent float64
	AvgAlphaDistance    float64
	AvgBetaDistance     float64
}

// DeriveStats computes the same ratios the original engine's
// emit_statistics prints, guarding every division against a zero
// denominator rather than propagating NaN/Inf to a caller.
func DeriveStats(c Counters) Derived {
	div := func(n, d uint64) float64 {
		if d == 0 {
			return 0
		}
		return float64(n) / float64(d)
	}

	return Derived{
		QNodesPerNode:        div(c.QNodes, c.Nodes),
		DrawPercent:          div(c.NDraws, c.Nodes) * 100,
		StandingPatPercent:   div(c.NStandingPat, c.QNodes) * 100,
		TTHitPercent:         div(c.TTHit, c.TTQuery) * 100,
		TTQueryPerStore:      div(c.TTQuery, c.TTStore),
		QTTHitPercent:        div(c.QTTHit, c.QTTQuery) * 100,
		SyzygyHitPercent:     div(c.SyzygyQueryHits, c.SyzygyQueries) * 100,
		AvgMovesCutoffIndex:  div(c.NMovesCutoff, c.NMCNodes),
		AvgQMovesCutoffIndex: div(c.NQMovesCutoff, c.NMCQNodes),
		QSEarlyStopPercent:   div(c.NQSEarlyStop, c.QNodes) * 100,
		NullMoveCutPercent:   div(c.NNullMoveHit, c.NNullMove) * 100,
		LMRCutPercent:        div(c.NLMRHit, c.NLMR) * 100,
		StaticEvalCutPercent: div(c.NStaticEvalHit, c.NStaticEval) * 100,
		AvgAlphaDistance:     div(c.AlphaDistance, c.NAlphaDistances),
		AvgBetaDistance:      div(c.BetaDistance, c.NBetaDistances),
	}
}
