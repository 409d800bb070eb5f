package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestApplyGravitySaturates(t *testing.T) {
	var entry int
	for i := 0; i < 1000; i++ {
		applyGravity(&entry, 4000) // bonus clamps to +1023
	}
	if entry <= 0 {
		t.Fatalf("expected positive saturated history score, got %d", entry)
	}
	if entry > historyGravityDivisor {
		t.Fatalf("history score %d exceeds the gravity divisor bound", entry)
	}
}

func TestApplyGravityMalusReducesScore(t *testing.T) {
	entry := 500
	applyGravity(&entry, -400)
	if entry >= 500 {
		t.Fatalf("malus update should lower the score, got %d (was 500)", entry)
	}
}

func TestUpdateHistoryIndexedBySidePieceTypeAndTo(t *testing.T) {
	pos := board.NewPosition()
	mo := NewMoveOrderer()

	m := board.NewMove(board.E2, board.E4)
	mo.UpdateHistory(pos, m, 4, true)

	piece := pos.PieceAt(m.From())
	if mo.history[piece.Color()][piece.Type()][m.To()] == 0 {
		t.Fatal("expected a nonzero history score at [side][pieceType][to]")
	}

	// A move by the same piece type to a different square
	// must not share the same table slot.
	other := board.NewMove(board.D2, board.D4)
	if mo.GetHistoryScore(pos, other) != 0 {
		t.Fatal("history table entries for distinct moves must not alias")
	}
}

func TestGetHistoryScoreForMatchesGetHistoryScore(t *testing.T) {
	pos := board.NewPosition()
	mo := NewMoveOrderer()

	m := board.NewMove(board.G1, board.F3)
	mo.UpdateHistory(pos, m, 3, true)

	piece := pos.PieceAt(m.From())
	direct := mo.GetHistoryScoreFor(piece, m.To())
	viaPos := mo.GetHistoryScore(pos, m)
	if direct != viaPos {
		t.Fatalf("GetHistoryScoreFor (%d) and GetHistoryScore (%d) disagree", direct, viaPos)
	}
}

func TestContinuationHistoryRoundTrips(t *testing.T) {
	mo := NewMoveOrderer()

	prevPiece, prevTo := board.WhiteKnight, board.F3
	piece, to := board.WhitePawn, board.E4

	mo.UpdateContinuationHistory(prevPiece, prevTo, piece, to, 5, 1, true)

	table := mo.GetContinuationHistoryTable(prevPiece, prevTo)
	if table == nil {
		t.Fatal("expected a non-nil continuation history table")
	}
	if table[piece][to] == 0 {
		t.Fatal("expected a nonzero continuation history entry after update")
	}
}

func TestSharedHistoryIsLockFreeAndMonotonicUnderRepeatedBonus(t *testing.T) {
	sh := NewSharedHistory()
	from, to := 12, 28

	prev := sh.Get(from, to)
	for i := 0; i < 5; i++ {
		sh.Update(from, to, 900)
		if got := sh.Get(from, to); got < prev {
			t.Fatalf("shared history decreased under a bonus: %d -> %d", prev, got)
		}
		prev = sh.Get(from, to)
	}

	if sh.Get(from, to) <= 0 {
		t.Fatalf("expected positive shared history after repeated bonus, got %d", sh.Get(from, to))
	}
	if sh.Get(from, to) > historyGravityDivisor {
		t.Fatalf("shared history %d exceeds the gravity divisor bound", sh.Get(from, to))
	}

	// A different square pair must stay untouched.
	if sh.Get(0, 1) != 0 {
		t.Fatal("unrelated shared history slot was modified")
	}
}

func TestLowPlyHistoryOnlyTracksNearRootPlies(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewMove(board.B1, board.C3)

	mo.UpdateLowPlyHistory(m, lowPlyHistorySize, 6, true) // out of range, must be a no-op
	if mo.lowPlyHistory[0][m.To()] != 0 {
		t.Fatal("out-of-range ply must not write into the low-ply history table")
	}

	mo.UpdateLowPlyHistory(m, 0, 6, true)
	if mo.lowPlyHistory[0][m.To()] == 0 {
		t.Fatal("expected a nonzero low-ply history entry at ply 0")
	}
}
