// Package book implements a Polyglot opening book: a file of 16-byte
// records sorted ascending by position hash, probed by binary search and
// sampled by weighted-random selection.
package book

import (
	"encoding/binary"
	"io"
	"math"
	"math/rand"
	"os"

	"github.com/hailam/chessplay/internal/board"
)

// entrySize is the byte size of one Polyglot record: hash(8) + move(2) +
// weight(2) + learn(4).
const entrySize = 16

// rawEntry is a single on-disk Polyglot record, kept in its packed form so
// the sorted array can be binary-searched directly on Hash.
type rawEntry struct {
	Hash   uint64
	Move   uint16
	Weight uint16
	Learn  uint32
}

// BookEntry is a decoded, book-probe-facing record.
type BookEntry struct {
	Move   board.Move
	Weight uint16
}

// Book is a Polyglot opening book held as a hash-sorted array.
type Book struct {
	entries []rawEntry
}

// New creates an empty book.
func New() *Book {
	return &Book{}
}

// LoadPolyglot loads a Polyglot format opening book from a file.
func LoadPolyglot(filename string) (*Book, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadPolyglotReader(file)
}

// LoadPolyglotReader loads a Polyglot format book from a reader. The file is
// expected to already be sorted ascending by hash, as produced by every
// Polyglot book generator; entries are kept in the order they appear.
func LoadPolyglotReader(r io.Reader) (*Book, error) {
	b := New()

	var buf [entrySize]byte
	for {
		_, err := io.ReadFull(r, buf[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		b.entries = append(b.entries, rawEntry{
			Hash:   binary.BigEndian.Uint64(buf[0:8]),
			Move:   binary.BigEndian.Uint16(buf[8:10]),
			Weight: binary.BigEndian.Uint16(buf[10:12]),
			Learn:  binary.BigEndian.Uint32(buf[12:16]),
		})
	}

	return b, nil
}

// decodePolyglotMove converts a Polyglot move encoding to our Move type.
//
// Bitfield (big-endian value, LSB first): to_file(0-2), to_rank(3-5),
// from_file(6-8), from_rank(9-11), promotion(12-14): 0=none, 1=knight,
// 2=bishop, 3=rook, 4=queen.
func decodePolyglotMove(data uint16) board.Move {
	toFile := data & 7
	toRank := (data >> 3) & 7
	fromFile := (data >> 6) & 7
	fromRank := (data >> 9) & 7
	promo := (data >> 12) & 7

	from := board.NewSquare(int(fromFile), int(fromRank))
	to := board.NewSquare(int(toFile), int(toRank))

	// Polyglot encodes castling as the king capturing its own rook; a king
	// move from e1/e8 onto a1/h1/a8/h8 is normalised to the king's actual
	// landing square.
	if from == board.E1 && to == board.H1 {
		to = board.G1
	} else if from == board.E1 && to == board.A1 {
		to = board.C1
	} else if from == board.E8 && to == board.H8 {
		to = board.G8
	} else if from == board.E8 && to == board.A8 {
		to = board.C8
	}

	if promo > 0 {
		promoTypes := []board.PieceType{0, board.Knight, board.Bishop, board.Rook, board.Queen}
		return board.NewPromotion(from, to, promoTypes[promo])
	}

	return board.NewMove(from, to)
}

// bsearch returns the index of an entry with the given hash, or -1 if none
// matches. Ties are common (multiple moves per position); the returned
// index is any one of them, to be widened by a backward/forward scan.
func (b *Book) bsearch(hash uint64) int {
	lo, hi := 0, len(b.entries)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		h := b.entries[mid].Hash
		switch {
		case h == hash:
			return mid
		case h < hash:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return -1
}

// candidates returns every record matching hash, decoded and legality
// checked against pos, discarding decode/hash collisions.
func (b *Book) candidates(pos *board.Position, hash uint64) []BookEntry {
	mid := b.bsearch(hash)
	if mid < 0 {
		return nil
	}

	lo, hi := mid, mid
	for lo > 0 && b.entries[lo-1].Hash == hash {
		lo--
	}
	for hi < len(b.entries)-1 && b.entries[hi+1].Hash == hash {
		hi++
	}

	var out []BookEntry
	for i := lo; i <= hi; i++ {
		move := verifyAndConvert(pos, decodePolyglotMove(b.entries[i].Move))
		if move == board.NoMove {
			continue
		}
		out = append(out, BookEntry{Move: move, Weight: b.entries[i].Weight})
	}
	return out
}

// Probe looks up a position in the book and returns a move using
// weighted-random selection: for each candidate of weight w, draw u
// uniform in [0, 2^30) and compute key = -log(u+1)/(w+1); the candidate
// with the minimum key wins.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	if b == nil {
		return board.NoMove, false
	}

	candidates := b.candidates(pos, pos.PolyglotHash())
	if len(candidates) == 0 {
		return board.NoMove, false
	}

	best := candidates[0]
	bestKey := math.Inf(1)
	for _, c := range candidates {
		u := float64(rand.Int31n(1 << 30))
		key := -math.Log(u+1) / float64(c.Weight+1)
		if key < bestKey {
			bestKey = key
			best = c
		}
	}

	return best.Move, true
}

// ProbeAll returns all legal book moves for the position, in file order.
func (b *Book) ProbeAll(pos *board.Position) []BookEntry {
	if b == nil {
		return nil
	}
	return b.candidates(pos, pos.PolyglotHash())
}

// verifyAndConvert ensures the move is legal and adjusts flags (castling,
// en passant, double-push) to match the generator's own encoding.
func verifyAndConvert(pos *board.Position, move board.Move) board.Move {
	legalMoves := pos.GenerateLegalMoves()
	from := move.From()
	to := move.To()

	for i := 0; i < legalMoves.Len(); i++ {
		lm := legalMoves.Get(i)
		if lm.From() != from || lm.To() != to {
			continue
		}
		if move.IsPromotion() && lm.IsPromotion() {
			if move.Promotion() == lm.Promotion() {
				return lm
			}
		} else if !move.IsPromotion() && !lm.IsPromotion() {
			return lm
		}
	}

	return board.NoMove
}

// Size returns the number of records in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
