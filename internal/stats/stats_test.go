package stats

import (
	"testing"
	"time"
)

type fakeSource struct {
	counters Counters
	curMove  uint32
}

func (f *fakeSource) Aggregate() Counters          { return f.counters }
func (f *fakeSource) CurrentRootMoveIndex() uint32 { return f.curMove }

func TestExporterPublishesRevision(t *testing.T) {
	src := &fakeSource{counters: Counters{Nodes: 42}, curMove: 3}
	exp := NewExporter(200, src)
	exp.Start()
	defer exp.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		exp.Record().Lock()
		rev := exp.Record().Revision()
		nodes := exp.Record().Counters().Nodes
		exp.Record().Unlock()
		if rev > 0 {
			if nodes != 42 {
				t.Fatalf("expected nodes=42, got %d", nodes)
			}
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("exporter never published a revision")
}

func TestCountersAddAggregatesAcrossWorkers(t *testing.T) {
	var total Counters
	total.Add(Counters{Nodes: 10, TTHit: 2})
	total.Add(Counters{Nodes: 5, TTHit: 1})

	if total.Nodes != 15 {
		t.Errorf("expected 15 nodes, got %d", total.Nodes)
	}
	if total.TTHit != 3 {
		t.Errorf("expected 3 tt hits, got %d", total.TTHit)
	}
}

func TestDeriveStatsGuardsZeroDenominator(t *testing.T) {
	d := DeriveStats(Counters{})
	if d.TTHitPercent != 0 || d.QNodesPerNode != 0 {
		t.Errorf("expected zero-valued derived stats on empty counters, got %+v", d)
	}
}

func TestDeriveStatsComputesRatios(t *testing.T) {
	c := Counters{Nodes: 100, QNodes: 50, TTQuery: 40, TTHit: 10}
	d := DeriveStats(c)

	if got, want := d.QNodesPerNode, 0.5; got != want {
		t.Errorf("QNodesPerNode = %v, want %v", got, want)
	}
	if got, want := d.TTHitPercent, 25.0; got != want {
		t.Errorf("TTHitPercent = %v, want %v", got, want)
	}
}
