// Package stats holds the search counters that feed the statistics
// exporter and defines the exporter itself: a shared record a background
// goroutine publishes at a fixed cadence for an out-of-process observer to
// read. The field set mirrors the original engine's chess_stats structure
// one-for-one so nothing a real consumer expects is missing.
package stats

import "sync/atomic"

// Counters holds every search-event count a worker accumulates. Each field
// is updated with atomic ops from possibly many worker goroutines and
// summed into a single ExportedRecord counters snapshot by the exporter.
type Counters struct {
	Nodes         uint64
	QNodes        uint64
	NStandingPat  uint64
	NDraws        uint64
	NQSEarlyStop  uint64

	AlphaDistance    uint64
	BetaDistance     uint64
	NAlphaDistances  uint64
	NBetaDistances   uint64

	TTQuery   uint64
	TTHit     uint64
	TTStore   uint64
	TTInvalid uint64
	QTTQuery  uint64
	QTTHit    uint64
	QTTStore  uint64

	NNullMove    uint64
	NNullMoveHit uint64

	NLMR    uint64
	NLMRHit uint64

	NStaticEval    uint64
	NStaticEvalHit uint64

	NMovesCutoff  uint64
	NMCNodes      uint64
	NQMovesCutoff uint64
	NMCQNodes     uint64

	SyzygyQueries    uint64
	SyzygyQueryHits  uint64
}

// AddNode increments the node counter. Callers use the typed helpers below
// rather than touching fields directly so every increment site is atomic
// even though Counters is frequently embedded by value in a worker struct.
func (c *Counters) AddNode()  { atomic.AddUint64(&c.Nodes, 1) }
func (c *Counters) AddQNode() { atomic.AddUint64(&c.QNodes, 1) }

func (c *Counters) AddStandingPat() { atomic.AddUint64(&c.NStandingPat, 1) }
func (c *Counters) AddDraw()        { atomic.AddUint64(&c.NDraws, 1) }
func (c *Counters) AddQSEarlyStop() { atomic.AddUint64(&c.NQSEarlyStop, 1) }

func (c *Counters) AddTTQuery()   { atomic.AddUint64(&c.TTQuery, 1) }
func (c *Counters) AddTTHit()     { atomic.AddUint64(&c.TTHit, 1) }
func (c *Counters) AddTTStore()   { atomic.AddUint64(&c.TTStore, 1) }
func (c *Counters) AddTTInvalid() { atomic.AddUint64(&c.TTInvalid, 1) }

func (c *Counters) AddQTTQuery() { atomic.AddUint64(&c.QTTQuery, 1) }
func (c *Counters) AddQTTHit()   { atomic.AddUint64(&c.QTTHit, 1) }
func (c *Counters) AddQTTStore() { atomic.AddUint64(&c.QTTStore, 1) }

func (c *Counters) AddNullMove()    { atomic.AddUint64(&c.NNullMove, 1) }
func (c *Counters) AddNullMoveHit() { atomic.AddUint64(&c.NNullMoveHit, 1) }

func (c *Counters) AddLMR()    { atomic.AddUint64(&c.NLMR, 1) }
func (c *Counters) AddLMRHit() { atomic.AddUint64(&c.NLMRHit, 1) }

func (c *Counters) AddStaticEval()    { atomic.AddUint64(&c.NStaticEval, 1) }
func (c *Counters) AddStaticEvalHit() { atomic.AddUint64(&c.NStaticEvalHit, 1) }

func (c *Counters) AddMoveCutoff(movesTried int) {
	atomic.AddUint64(&c.NMovesCutoff, uint64(movesTried))
	atomic.AddUint64(&c.NMCNodes, 1)
}

func (c *Counters) AddQMoveCutoff(movesTried int) {
	atomic.AddUint64(&c.NQMovesCutoff, uint64(movesTried))
	atomic.AddUint64(&c.NMCQNodes, 1)
}

func (c *Counters) AddSyzygyQuery() { atomic.AddUint64(&c.SyzygyQueries, 1) }
func (c *Counters) AddSyzygyHit()   { atomic.AddUint64(&c.SyzygyQueryHits, 1) }

// Snapshot reads every field with an atomic load and returns a plain copy
// safe to hand to the exporter or print.
func (c *Counters) Snapshot() Counters {
	return Counters{
		Nodes:            atomic.LoadUint64(&c.Nodes),
		QNodes:           atomic.LoadUint64(&c.QNodes),
		NStandingPat:     atomic.LoadUint64(&c.NStandingPat),
		NDraws:           atomic.LoadUint64(&c.NDraws),
		NQSEarlyStop:     atomic.LoadUint64(&c.NQSEarlyStop),
		AlphaDistance:    atomic.LoadUint64(&c.AlphaDistance),
		BetaDistance:     atomic.LoadUint64(&c.BetaDistance),
		NAlphaDistances:  atomic.LoadUint64(&c.NAlphaDistances),
		NBetaDistances:   atomic.LoadUint64(&c.NBetaDistances),
		TTQuery:          atomic.LoadUint64(&c.TTQuery),
		TTHit:            atomic.LoadUint64(&c.TTHit),
		TTStore:          atomic.LoadUint64(&c.TTStore),
		TTInvalid:        atomic.LoadUint64(&c.TTInvalid),
		QTTQuery:         atomic.LoadUint64(&c.QTTQuery),
		QTTHit:           atomic.LoadUint64(&c.QTTHit),
		QTTStore:         atomic.LoadUint64(&c.QTTStore),
		NNullMove:        atomic.LoadUint64(&c.NNullMove),
		NNullMoveHit:     atomic.LoadUint64(&c.NNullMoveHit),
		NLMR:             atomic.LoadUint64(&c.NLMR),
		NLMRHit:          atomic.LoadUint64(&c.NLMRHit),
		NStaticEval:      atomic.LoadUint64(&c.NStaticEval),
		NStaticEvalHit:   atomic.LoadUint64(&c.NStaticEvalHit),
		NMovesCutoff:     atomic.LoadUint64(&c.NMovesCutoff),
		NMCNodes:         atomic.LoadUint64(&c.NMCNodes),
		NQMovesCutoff:    atomic.LoadUint64(&c.NQMovesCutoff),
		NMCQNodes:        atomic.LoadUint64(&c.NMCQNodes),
		SyzygyQueries:    atomic.LoadUint64(&c.SyzygyQueries),
		SyzygyQueryHits:  atomic.LoadUint64(&c.SyzygyQueryHits),
	}
}

// Add merges source into c, field by field — used to fold every worker's
// per-thread counters into one aggregate before publishing.
func (c *Counters) Add(source Counters) {
	c.Nodes += source.Nodes
	c.QNodes += source.QNodes
	c.NStandingPat += source.NStandingPat
	c.NDraws += source.NDraws
	c.NQSEarlyStop += source.NQSEarlyStop
	c.AlphaDistance += source.AlphaDistance
	c.BetaDistance += source.BetaDistance
	c.NAlphaDistances += source.NAlphaDistances
	c.NBetaDistances += source.NBetaDistances
	c.TTQuery += source.TTQuery
	c.TTHit += source.TTHit
	c.TTStore += source.TTStore
	c.TTInvalid += source.TTInvalid
	c.QTTQuery += source.QTTQuery
	c.QTTHit += source.QTTHit
	c.QTTStore += source.QTTStore
	c.NNullMove += source.NNullMove
	c.NNullMoveHit += source.NNullMoveHit
	c.NLMR += source.NLMR
	c.NLMRHit += source.NLMRHit
	c.NStaticEval += source.NStaticEval
	c.NStaticEvalHit += source.NStaticEvalHit
	c.NMovesCutoff += source.NMovesCutoff
	c.NMCNodes += source.NMCNodes
	c.NQMovesCutoff += source.NQMovesCutoff
	c.NMCQNodes += source.NMCQNodes
	c.SyzygyQueries += source.SyzygyQueries
	c.SyzygyQueryHits += source.SyzygyQueryHits
}

// Reset zeroes every field.
func (c *Counters) Reset() {
	*c = Counters{}
}
