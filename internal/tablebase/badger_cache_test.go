package tablebase

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

// countingProber counts Probe calls so tests can verify the cache actually
// short-circuits repeat queries instead of always falling through.
type countingProber struct {
	calls  int
	result ProbeResult
}

func (c *countingProber) Probe(pos *board.Position) ProbeResult {
	c.calls++
	return c.result
}

func (c *countingProber) ProbeRoot(pos *board.Position) RootResult {
	return RootResult{Found: false}
}

func (c *countingProber) MaxPieces() int  { return 6 }
func (c *countingProber) Available() bool { return true }

func TestBadgerCachedProberCachesHits(t *testing.T) {
	inner := &countingProber{result: ProbeResult{Found: true, WDL: WDLWin, DTZ: 5}}
	cached, err := NewBadgerCachedProber(inner, t.TempDir())
	if err != nil {
		t.Fatalf("NewBadgerCachedProber: %v", err)
	}
	defer cached.Close()

	pos := board.NewPosition()

	first := cached.Probe(pos)
	if !first.Found || first.WDL != WDLWin || first.DTZ != 5 {
		t.Fatalf("unexpected first probe result: %+v", first)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner probe call, got %d", inner.calls)
	}

	second := cached.Probe(pos)
	if second != first {
		t.Fatalf("cached result %+v differs from original %+v", second, first)
	}
	if inner.calls != 1 {
		t.Fatalf("expected inner probe still called once (cache hit), got %d", inner.calls)
	}
}

func TestBadgerCachedProberSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	inner := &countingProber{result: ProbeResult{Found: true, WDL: WDLDraw}}

	cached, err := NewBadgerCachedProber(inner, dir)
	if err != nil {
		t.Fatalf("NewBadgerCachedProber: %v", err)
	}
	pos := board.NewPosition()
	cached.Probe(pos)
	cached.Close()

	reopened, err := NewBadgerCachedProber(inner, dir)
	if err != nil {
		t.Fatalf("reopen NewBadgerCachedProber: %v", err)
	}
	defer reopened.Close()

	result := reopened.Probe(pos)
	if !result.Found || result.WDL != WDLDraw {
		t.Fatalf("unexpected result after reopen: %+v", result)
	}
	if inner.calls != 1 {
		t.Fatalf("expected the persisted entry to satisfy the probe without calling inner again, got %d calls", inner.calls)
	}
}

func TestBadgerCachedProberDelegatesCapabilities(t *testing.T) {
	inner := &countingProber{}
	cached, err := NewBadgerCachedProber(inner, t.TempDir())
	if err != nil {
		t.Fatalf("NewBadgerCachedProber: %v", err)
	}
	defer cached.Close()

	if cached.MaxPieces() != inner.MaxPieces() {
		t.Errorf("MaxPieces: expected %d, got %d", inner.MaxPieces(), cached.MaxPieces())
	}
	if cached.Available() != inner.Available() {
		t.Errorf("Available: expected %v, got %v", inner.Available(), cached.Available())
	}
}
