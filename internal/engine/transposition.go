package engine

import (
	"github.com/hailam/chessplay/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTInvalid    TTFlag = iota // empty / never written
	TTExact                    // exact score
	TTLowerBound                // failed high (beta cutoff)
	TTUpperBound                // failed low
)

// MateThreshold is the score magnitude above which a stored value is treated
// as a mate score and rewritten relative to the current ply rather than the
// root, so that the same entry retrieved at a different depth still yields
// the correct mate distance.
const MateThreshold = 9800

// bucketEntries is the number of slots probed per hash bucket. Desktop
// builds use 8; constrained builds (see NewTranspositionTableN) can use 2.
const bucketEntries = 8

// ttEntry is the 16-byte packed, lock-free entry: hash is stored XORed with
// data, so a torn concurrent write is detected by readers as a hash
// mismatch rather than as corrupted data (see Probe).
type ttEntry struct {
	hash uint64
	data uint64
}

type ttBucket struct {
	entries [bucketEntries]ttEntry
}

// TTEntry is the unpacked view of a transposition table entry returned to
// callers.
type TTEntry struct {
	BestMove board.Move
	Score    int16
	Depth    uint8
	Flag     TTFlag
	Age      uint8
	// IsPV always reports false: the spec's 64-bit packed layout (16-bit
	// score + 2-bit flag + 6-bit age + 8-bit depth + 32-bit move) leaves no
	// spare bit to carry a PV marker without breaking the XOR-integrity
	// trick, so callers that ask for it get the conservative answer.
	IsPV bool
}

// TranspositionTable is a fixed-size, bucketed hash table storing search
// bounds and best moves, addressed purely by Zobrist hash. Readers and
// writers race without locks: entries are validated by XOR-unpacking the
// stored hash against the stored data, which is what the XOR-on-store /
// XOR-on-load pattern is for.
type TranspositionTable struct {
	buckets    []ttBucket
	age        uint8
	probeWidth int

	hits   uint64
	probes uint64
}

// NewTranspositionTable creates a transposition table sized in megabytes
// using the default (desktop) bucket width.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	return NewTranspositionTableN(sizeMB, bucketEntries)
}

// NewTranspositionTableN creates a transposition table with an explicit
// number of entries per bucket (2 for memory-constrained builds, 8
// otherwise, per the spec's bucket-width note).
func NewTranspositionTableN(sizeMB int, entriesPerBucket int) *TranspositionTable {
	if entriesPerBucket <= 0 {
		entriesPerBucket = bucketEntries
	}
	bucketSize := uint64(16 * bucketEntries) // 16 bytes/entry; buckets always allocate 8 slots
	numBuckets := (uint64(sizeMB) * 1024 * 1024) / bucketSize
	if numBuckets == 0 {
		numBuckets = 1
	}

	// ttBucket is always 8-wide; a constrained build with entriesPerBucket=2
	// simply probes a 2-entry subset of each 8-wide bucket rather than
	// allocating a differently-shaped bucket type (Go has no const-generic
	// array size here), trading a little unused memory for one bucket type.
	return &TranspositionTable{
		buckets:    make([]ttBucket, numBuckets),
		probeWidth: entriesPerBucket,
	}
}

func packTTData(score int16, flag TTFlag, age uint8, depth uint8, move board.Move) uint64 {
	var d uint64
	d |= uint64(uint16(score))
	d |= uint64(flag&0x3) << 16
	d |= uint64(age&0x3F) << 18
	d |= uint64(depth) << 24
	d |= uint64(uint32(move)) << 32
	return d
}

func unpackTTData(data uint64) (score int16, flag TTFlag, age uint8, depth uint8, move board.Move) {
	score = int16(uint16(data & 0xFFFF))
	flag = TTFlag((data >> 16) & 0x3)
	age = uint8((data >> 18) & 0x3F)
	depth = uint8((data >> 24) & 0xFF)
	move = board.Move(uint32(data >> 32))
	return
}

// Probe looks up a position by hash. A torn or absent entry is reported as
// a miss; a found entry has its age refreshed to the table's current age.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	tt.probes++

	idx := hash % uint64(len(tt.buckets))
	bucket := &tt.buckets[idx]

	width := tt.effectiveWidth()
	for i := 0; i < width; i++ {
		e := &bucket.entries[i]
		if e.data == 0 && e.hash == 0 {
			continue
		}
		if e.hash^e.data != hash {
			continue
		}

		score, flag, _, depth, move := unpackTTData(e.data)
		refreshed := packTTData(score, flag, tt.age, depth, move)
		e.data = refreshed
		e.hash = hash ^ refreshed

		tt.hits++
		return TTEntry{BestMove: move, Score: score, Depth: depth, Flag: flag, Age: tt.age}, true
	}

	return TTEntry{}, false
}

// Store saves a position's search result. isPV is accepted for call-site
// symmetry with engines that track PV status but is not persisted (see
// TTEntry.IsPV).
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, move board.Move, isPV bool) {
	_ = isPV

	idx := hash % uint64(len(tt.buckets))
	bucket := &tt.buckets[idx]
	width := tt.effectiveWidth()

	useIdx := -1
	minDepth := 999
	mdi := -1

	for i := 0; i < width; i++ {
		e := &bucket.entries[i]

		if e.hash^e.data == hash && (e.data != 0 || e.hash != 0) {
			_, _, _, existingDepth, _ := unpackTTData(e.data)
			if int(existingDepth) > depth {
				tt.refreshAge(e, hash)
				return
			}
			if flag != TTExact && int(existingDepth) == depth {
				tt.refreshAge(e, hash)
				return
			}
			useIdx = i
			break
		}

		_, _, existingAge, existingDepth, _ := unpackTTData(e.data)
		if existingAge != tt.age {
			if useIdx == -1 {
				useIdx = i
			}
		} else if int(existingDepth) < minDepth {
			minDepth = int(existingDepth)
			mdi = i
		}
	}

	if useIdx == -1 {
		useIdx = mdi
	}
	if useIdx == -1 {
		useIdx = 0
	}

	newData := packTTData(int16(score), flag, tt.age, uint8(depth), move)
	bucket.entries[useIdx].data = newData
	bucket.entries[useIdx].hash = hash ^ newData
}

func (tt *TranspositionTable) refreshAge(e *ttEntry, hash uint64) {
	score, flag, _, depth, move := unpackTTData(e.data)
	refreshed := packTTData(score, flag, tt.age, depth, move)
	e.data = refreshed
	e.hash = hash ^ refreshed
}

func (tt *TranspositionTable) effectiveWidth() int {
	if tt.probeWidth <= 0 || tt.probeWidth > bucketEntries {
		return bucketEntries
	}
	return tt.probeWidth
}

// NewSearch advances the 6-bit age counter at the start of every iterative
// deepening root call; entries stamped with a stale age are replaced first.
func (tt *TranspositionTable) NewSearch() {
	tt.age = (tt.age + 1) & 0x3F
}

// Clear empties every bucket and resets statistics.
func (tt *TranspositionTable) Clear() {
	for i := range tt.buckets {
		tt.buckets[i] = ttBucket{}
	}
	tt.age = 0
	tt.hits = 0
	tt.probes = 0
}

// HashFull returns the permille (parts per thousand) of sampled buckets
// containing at least one current-age entry.
func (tt *TranspositionTable) HashFull() int {
	sampleSize := 1000
	if sampleSize > len(tt.buckets) {
		sampleSize = len(tt.buckets)
	}
	if sampleSize == 0 {
		return 0
	}

	width := tt.effectiveWidth()
	used := 0
	for i := 0; i < sampleSize; i++ {
		for j := 0; j < width; j++ {
			e := &tt.buckets[i].entries[j]
			if e.hash == 0 && e.data == 0 {
				continue
			}
			_, _, age, _, _ := unpackTTData(e.data)
			if age == tt.age {
				used++
				break
			}
		}
	}

	return (used * 1000) / sampleSize
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Size returns the number of buckets in the table.
func (tt *TranspositionTable) Size() uint64 {
	return uint64(len(tt.buckets))
}

// AdjustScoreFromTT converts a score read from the table back into one
// relative to the current node, reversing AdjustScoreToTT.
func AdjustScoreFromTT(score int, ply int) int {
	if score >= MateThreshold {
		return score - ply
	}
	if score <= -MateThreshold {
		return score + ply
	}
	return score
}

// AdjustScoreToTT converts a node-relative score into one relative to the
// root before storing it, so the same entry read back at a different ply
// still yields the correct mate distance.
func AdjustScoreToTT(score int, ply int) int {
	if score >= MateThreshold {
		return score + ply
	}
	if score <= -MateThreshold {
		return score - ply
	}
	return score
}
