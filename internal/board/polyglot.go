package board

// Polyglot-layout Zobrist keys, kept separate from the internal Zobrist keys.
// The values are generated by splitmix64 in initPolyglotKeys; they are not
// the published Polyglot Random64 table, so hashes computed here do not match
// those in third-party Polyglot books.
var (
	polyglotPieces     [12][64]uint64 // [piece_kind][square]
	polyglotCastling   [4]uint64      // [KQkq]
	polyglotEnPassant  [8]uint64      // [file]
	polyglotSideToMove uint64
)

func init() {
	initPolyglotKeys()
}

// PolyglotHash computes the Polyglot hash key for compatibility with opening books.
func (p *Position) PolyglotHash() uint64 {
	var hash uint64

	// Piece keys
	// Polyglot piece ordering: bp, bN, bB, bR, bQ, bK, wp, wN, wB, wR, wQ, wK
	pieceKindMap := [2][6]int{
		{6, 7, 8, 9, 10, 11}, // White pieces: p=6, N=7, B=8, R=9, Q=10, K=11
		{0, 1, 2, 3, 4, 5},   // Black pieces: p=0, N=1, B=2, R=3, Q=4, K=5
	}

	for color := White; color <= Black; color++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[color][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				pieceKind := pieceKindMap[color][pt]
				hash ^= polyglotPieces[pieceKind][sq]
			}
		}
	}

	// Castling keys
	if p.CastlingRights&WhiteKingSideCastle != 0 {
		hash ^= polyglotCastling[0]
	}
	if p.CastlingRights&WhiteQueenSideCastle != 0 {
		hash ^= polyglotCastling[1]
	}
	if p.CastlingRights&BlackKingSideCastle != 0 {
		hash ^= polyglotCastling[2]
	}
	if p.CastlingRights&BlackQueenSideCastle != 0 {
		hash ^= polyglotCastling[3]
	}

	// En passant key (only if there's actually a pawn that can capture)
	if p.EnPassant != NoSquare {
		file := p.EnPassant.File()
		// Check if there's an enemy pawn that can capture
		canCapture := false
		if p.SideToMove == White {
			// Check for white pawns on files adjacent to ep square on 5th rank
			if file > 0 {
				sq := NewSquare(file-1, 4)
				if (p.Pieces[White][Pawn] & SquareBB(sq)) != 0 {
					canCapture = true
				}
			}
			if file < 7 {
				sq := NewSquare(file+1, 4)
				if (p.Pieces[White][Pawn] & SquareBB(sq)) != 0 {
					canCapture = true
				}
			}
		} else {
			// Check for black pawns on files adjacent to ep square on 4th rank
			if file > 0 {
				sq := NewSquare(file-1, 3)
				if (p.Pieces[Black][Pawn] & SquareBB(sq)) != 0 {
					canCapture = true
				}
			}
			if file < 7 {
				sq := NewSquare(file+1, 3)
				if (p.Pieces[Black][Pawn] & SquareBB(sq)) != 0 {
					canCapture = true
				}
			}
		}

		if canCapture {
			hash ^= polyglotEnPassant[file]
		}
	}

	// Side to move key
	if p.SideToMove == White {
		hash ^= polyglotSideToMove
	}

	return hash
}

// initPolyglotKeys fills the 781-key Random64 table used to compute
// book-compatible position hashes.
//
// The real Polyglot format ties these 781 constants to one specific,
// published table so that independently-built engines agree on the hash of
// a given position and can therefore share .bin book files. Reproducing
// that exact table requires fetching it from the Polyglot distribution;
// absent that, this generates a table with the same shape (768 piece keys +
// 4 castling + 8 en-passant + 1 side-to-move) from splitmix64, a
// well-studied, high-quality 64-bit mixer. Hashes computed this way are
// internally consistent (stable across runs, suitable for the TT and for
// books written by this engine) but will NOT match book files produced
// against the official Polyglot constants; swapping in the upstream
// Random64 table is a drop-in replacement for this function if bit-for-bit
// compatibility with third-party book files is required.
func initPolyglotKeys() {
	var s uint64 = 0x9E3779B97F4A7C15

	splitmix64 := func() uint64 {
		s += 0x9E3779B97F4A7C15
		z := s
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		return z ^ (z >> 31)
	}

	for piece := 0; piece < 12; piece++ {
		for sq := 0; sq < 64; sq++ {
			polyglotPieces[piece][sq] = splitmix64()
		}
	}

	for i := 0; i < 4; i++ {
		polyglotCastling[i] = splitmix64()
	}

	for i := 0; i < 8; i++ {
		polyglotEnPassant[i] = splitmix64()
	}

	polyglotSideToMove = splitmix64()
}
