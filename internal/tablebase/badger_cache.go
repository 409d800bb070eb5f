package tablebase

import (
	"encoding/binary"
	"encoding/json"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chessplay/internal/board"
)

// probeKeyPrefix distinguishes WDL/DTZ probe entries from any other key
// that might one day share the same BadgerDB directory.
const probeKeyPrefix = 'p'

// diskProber is the L2 layer: a BadgerDB-backed on-disk cache in front of
// another prober. Unlike CachedProber's in-memory map, its results survive
// process restarts, so a long-lived engine doesn't re-query the Lichess API
// (or re-decompress local Syzygy files) for positions it already saw in a
// previous run. Grounded on internal/storage/storage.go's json.Marshal +
// badger transaction pattern. It implements Prober so CachedProber can wrap
// it exactly like it wraps any other online prober.
type diskProber struct {
	inner Prober
	db    *badger.DB
}

func probeKey(hash uint64) []byte {
	key := make([]byte, 9)
	key[0] = probeKeyPrefix
	binary.BigEndian.PutUint64(key[1:], hash)
	return key
}

// Probe checks the on-disk cache before falling through to the wrapped
// prober. A confirmed "not found" is cached too, so a position known to be
// outside tablebase coverage doesn't keep re-querying a remote API.
func (dp *diskProber) Probe(pos *board.Position) ProbeResult {
	var result ProbeResult
	hit := false

	err := dp.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(probeKey(pos.Hash))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &result); err != nil {
				return err
			}
			hit = true
			return nil
		})
	})
	if err == nil && hit {
		return result
	}

	result = dp.inner.Probe(pos)

	data, err := json.Marshal(result)
	if err == nil {
		_ = dp.db.Update(func(txn *badger.Txn) error {
			return txn.Set(probeKey(pos.Hash), data)
		})
	}

	return result
}

// ProbeRoot is not cached on disk; it depends on the legal move list, not
// just the position hash.
func (dp *diskProber) ProbeRoot(pos *board.Position) RootResult {
	return dp.inner.ProbeRoot(pos)
}

func (dp *diskProber) MaxPieces() int  { return dp.inner.MaxPieces() }
func (dp *diskProber) Available() bool { return dp.inner.Available() }

func (dp *diskProber) Close() error {
	if dp.db == nil {
		return nil
	}
	return dp.db.Close()
}

// memCacheSize bounds the in-memory L1 layer CachedProber keeps in front of
// the disk-backed L2; a probe that misses L1 still has a good chance of
// hitting L2 without ever reaching inner.
const memCacheSize = 100000

// BadgerCachedProber composes CachedProber's in-memory cache (L1, see
// cached.go) in front of a BadgerDB-backed disk cache (L2, diskProber
// above), so repeat probes within a process are served from memory and
// probes from a previous process's run are served from disk instead of
// re-querying the wrapped prober. The two layers share the same hit/miss
// and eviction glue CachedProber already provides for the in-memory-only
// Lichess cache (NewCachedLichessProber) rather than duplicating it here.
type BadgerCachedProber struct {
	l1 *CachedProber
	l2 *diskProber
}

// NewBadgerCachedProber opens (or creates) the on-disk cache at dir and
// wraps inner with it, fronted by an in-memory L1 layer. Root-move probing
// is never cached since RootResult depends on the full legal move list,
// not just the position hash.
func NewBadgerCachedProber(inner Prober, dir string) (*BadgerCachedProber, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	l2 := &diskProber{inner: inner, db: db}
	return &BadgerCachedProber{
		l1: NewCachedProber(l2, memCacheSize),
		l2: l2,
	}, nil
}

// Probe serves from the in-memory L1 cache first, falling through to the
// disk-backed L2 cache (and, on a full miss, the wrapped prober) via
// CachedProber's own Probe logic.
func (bp *BadgerCachedProber) Probe(pos *board.Position) ProbeResult {
	return bp.l1.Probe(pos)
}

// ProbeRoot is not cached at either layer; it depends on the legal move
// list, not just the position hash.
func (bp *BadgerCachedProber) ProbeRoot(pos *board.Position) RootResult {
	return bp.l2.ProbeRoot(pos)
}

func (bp *BadgerCachedProber) MaxPieces() int {
	return bp.l2.MaxPieces()
}

func (bp *BadgerCachedProber) Available() bool {
	return bp.l2.Available()
}

// HitRate returns the in-memory L1 cache's hit rate as a percentage; a low
// rate with a high process uptime suggests memCacheSize is too small for
// the positions this engine actually sees.
func (bp *BadgerCachedProber) HitRate() float64 {
	return bp.l1.HitRate()
}

// Close releases the BadgerDB handle.
func (bp *BadgerCachedProber) Close() error {
	return bp.l2.Close()
}
