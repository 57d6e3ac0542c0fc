// Package statestore provides durable key-value persistence for a pairing
// store: two JSON documents (a pending map and a paired map) read into memory
// and written back atomically. A corrupted or unreadable file is absorbed
// into an empty in-memory view rather than surfaced — an availability-over-
// durability choice that operators must be aware of (a transiently unreadable
// disk silently drops that file's state for the read).
package statestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/turtacn/pairgate/pkg/constants"
	"github.com/turtacn/pairgate/pkg/logger"
)

// Expirable is implemented by pending records, which carry their creation
// time for lazy TTL pruning.
type Expirable interface {
	Timestamp() int64
}

// Store persists one pairing registry's state: a pending map keyed by request
// id and a paired map keyed by entity id. Load prunes expired pending entries
// in memory only; the pruned view reaches disk on the next Persist.
//
// The store itself performs no locking. The owning registry funnels every
// mutating operation through a single serialized critical section and calls
// Load/Persist inside it.
type Store[P Expirable, E any] struct {
	dir        string
	pendingTTL int64 // milliseconds
	log        logger.Logger
}

// New creates a store rooted at dir, holding pending.json and paired.json.
func New[P Expirable, E any](dir string, log logger.Logger) *Store[P, E] {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &Store[P, E]{
		dir:        dir,
		pendingTTL: constants.PendingRequestTTL.Milliseconds(),
		log:        log.WithComponent("statestore"),
	}
}

// Dir returns the directory backing this store.
func (s *Store[P, E]) Dir() string {
	return s.dir
}

// Load reads both documents. Any I/O or parse failure resets that file's
// in-memory view to empty (fail-open to "no state"); pending entries older
// than the TTL at nowMs are dropped from the returned map.
func (s *Store[P, E]) Load(ctx context.Context, nowMs int64) (map[string]P, map[string]E) {
	pending := readMap[P](ctx, s.log, s.pendingPath())
	paired := readMap[E](ctx, s.log, s.pairedPath())

	for id, entry := range pending {
		if nowMs-entry.Timestamp() > s.pendingTTL {
			delete(pending, id)
		}
	}

	return pending, paired
}

// Persist writes both maps back atomically, each via temp-file + rename at
// mode 0600.
func (s *Store[P, E]) Persist(ctx context.Context, pending map[string]P, paired map[string]E) error {
	if err := writeMap(s.pendingPath(), pending); err != nil {
		return err
	}
	return writeMap(s.pairedPath(), paired)
}

func (s *Store[P, E]) pendingPath() string {
	return filepath.Join(s.dir, constants.PendingFileName)
}

func (s *Store[P, E]) pairedPath() string {
	return filepath.Join(s.dir, constants.PairedFileName)
}

// readMap loads a single JSON document into a map. Missing files are normal
// (first run); anything else unreadable is logged and treated as empty.
func readMap[V any](ctx context.Context, log logger.Logger, path string) map[string]V {
	result := make(map[string]V)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn(ctx, "state file unreadable, treating as empty", logger.Fields{
				"path":  path,
				"error": err.Error(),
			})
		}
		return result
	}

	if err := json.Unmarshal(data, &result); err != nil {
		log.Warn(ctx, "state file corrupt, treating as empty", logger.Fields{
			"path":  path,
			"error": err.Error(),
		})
		return make(map[string]V)
	}

	return result
}

func writeMap[V any](path string, m map[string]V) error {
	if m == nil {
		m = make(map[string]V)
	}
	data, err := MarshalState(m)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

//Personal.AI order the ending
