package db

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"

	"sedifex-backend-go/internal/timeutil"
)

// MemoryStore is an in-process DocumentStore used by tests and local runs.
// It mirrors the subset of Firestore behavior the tenancy core relies on:
// merge-upserts, update-requires-existing, and equality/range queries.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]map[string]any)}
}

// Collection returns a reference to the named collection, creating it lazily.
func (s *MemoryStore) Collection(name string) CollectionRef {
	return &memoryCollection{store: s, name: name}
}

// RunTransaction executes fn while holding the store lock. Writes issued
// through the transaction are buffered and applied only when fn returns nil,
// so an aborted transaction leaves no partial state behind.
func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memoryTransaction{store: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commitLocked()
}

func (s *MemoryStore) bucket(name string) map[string]map[string]any {
	bucket, ok := s.collections[name]
	if !ok {
		bucket = make(map[string]map[string]any)
		s.collections[name] = bucket
	}
	return bucket
}

// getLocked never creates the collection bucket; read paths may hold only
// the read lock.
func (s *MemoryStore) getLocked(collection, id string) *memorySnapshot {
	payload, ok := s.collections[collection][id]
	if !ok {
		return &memorySnapshot{id: id}
	}
	return &memorySnapshot{id: id, data: copyDocument(payload)}
}

func (s *MemoryStore) setLocked(collection, id string, data map[string]any, merge bool) {
	bucket := s.bucket(collection)
	existing, ok := bucket[id]
	if merge && ok {
		mergeDocument(existing, copyDocument(data))
		return
	}
	bucket[id] = copyDocument(data)
}

func (s *MemoryStore) updateLocked(collection, id string, data map[string]any) error {
	bucket := s.bucket(collection)
	existing, ok := bucket[id]
	if !ok {
		return fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound)
	}
	mergeDocument(existing, copyDocument(data))
	return nil
}

type memoryCollection struct {
	store *MemoryStore
	name  string
}

func (c *memoryCollection) Doc(id string) DocumentRef {
	return &memoryDocument{store: c.store, collection: c.name, id: id}
}

func (c *memoryCollection) NewDoc() DocumentRef {
	return c.Doc(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func (c *memoryCollection) Where(field, op string, value any) Query {
	return &memoryQuery{
		store:      c.store,
		collection: c.name,
		filters:    []memoryFilter{{field: field, op: op, value: value}},
	}
}

type memoryDocument struct {
	store      *MemoryStore
	collection string
	id         string
}

func (d *memoryDocument) ID() string { return d.id }

func (d *memoryDocument) Get(ctx context.Context) (Snapshot, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()
	return d.store.getLocked(d.collection, d.id), nil
}

func (d *memoryDocument) Set(ctx context.Context, data map[string]any, merge bool) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	d.store.setLocked(d.collection, d.id, data, merge)
	return nil
}

func (d *memoryDocument) Update(ctx context.Context, data map[string]any) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	return d.store.updateLocked(d.collection, d.id, data)
}

type memoryFilter struct {
	field string
	op    string
	value any
}

type memoryQuery struct {
	store      *MemoryStore
	collection string
	filters    []memoryFilter
	limit      int
}

func (q *memoryQuery) Where(field, op string, value any) Query {
	filters := append(append([]memoryFilter(nil), q.filters...), memoryFilter{field: field, op: op, value: value})
	return &memoryQuery{store: q.store, collection: q.collection, filters: filters, limit: q.limit}
}

func (q *memoryQuery) Limit(n int) Query {
	return &memoryQuery{store: q.store, collection: q.collection, filters: q.filters, limit: n}
}

func (q *memoryQuery) Documents(ctx context.Context) ([]Snapshot, error) {
	q.store.mu.RLock()
	defer q.store.mu.RUnlock()

	var results []Snapshot
	for id, payload := range q.store.collections[q.collection] {
		matched, err := matchesFilters(payload, q.filters)
		if err != nil {
			return nil, err
		}
		if matched {
			results = append(results, &memorySnapshot{id: id, data: copyDocument(payload)})
		}
		if q.limit > 0 && len(results) >= q.limit {
			break
		}
	}
	return results, nil
}

// memoryTransaction buffers writes until commit, mirroring the Firestore
// client's transaction semantics: reads observe the committed state, and an
// error returned from the callback discards every buffered write.
type memoryTransaction struct {
	store *MemoryStore
	ops   []memoryTxOp
}

type memoryTxOp struct {
	collection string
	id         string
	data       map[string]any
	merge      bool
	update     bool
}

func (t *memoryTransaction) Get(ref DocumentRef) (Snapshot, error) {
	doc, err := t.memoryRef(ref)
	if err != nil {
		return nil, err
	}
	return t.store.getLocked(doc.collection, doc.id), nil
}

func (t *memoryTransaction) Set(ref DocumentRef, data map[string]any, merge bool) error {
	doc, err := t.memoryRef(ref)
	if err != nil {
		return err
	}
	t.ops = append(t.ops, memoryTxOp{collection: doc.collection, id: doc.id, data: copyDocument(data), merge: merge})
	return nil
}

func (t *memoryTransaction) Update(ref DocumentRef, data map[string]any) error {
	doc, err := t.memoryRef(ref)
	if err != nil {
		return err
	}
	t.ops = append(t.ops, memoryTxOp{collection: doc.collection, id: doc.id, data: copyDocument(data), update: true})
	return nil
}

// commitLocked validates the buffered operations against the state they will
// apply to, then applies them in order, so a failing commit is all-or-nothing.
func (t *memoryTransaction) commitLocked() error {
	willExist := make(map[string]bool)
	for _, op := range t.ops {
		key := op.collection + "/" + op.id
		if op.update {
			_, ok := t.store.collections[op.collection][op.id]
			if !ok && !willExist[key] {
				return fmt.Errorf("update %s: %w", key, ErrNotFound)
			}
			continue
		}
		willExist[key] = true
	}
	for _, op := range t.ops {
		if op.update {
			if err := t.store.updateLocked(op.collection, op.id, op.data); err != nil {
				return err
			}
			continue
		}
		t.store.setLocked(op.collection, op.id, op.data, op.merge)
	}
	return nil
}

func (t *memoryTransaction) memoryRef(ref DocumentRef) (*memoryDocument, error) {
	doc, ok := ref.(*memoryDocument)
	if !ok || doc.store != t.store {
		return nil, fmt.Errorf("transaction reference does not belong to this store")
	}
	return doc, nil
}

type memorySnapshot struct {
	id   string
	data map[string]any
}

func (s *memorySnapshot) ID() string   { return s.id }
func (s *memorySnapshot) Exists() bool { return s.data != nil }

func (s *memorySnapshot) Data() map[string]any {
	if s.data == nil {
		return map[string]any{}
	}
	return copyDocument(s.data)
}

// mergeDocument applies the shallow-recursive merge contract: top-level keys
// overwrite, nested maps merge key-by-key, scalars replace outright.
func mergeDocument(dst, src map[string]any) {
	for key, value := range src {
		srcMap, srcIsMap := value.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			mergeDocument(dstMap, srcMap)
			continue
		}
		dst[key] = value
	}
}

func copyDocument(data map[string]any) map[string]any {
	copied := make(map[string]any, len(data))
	for key, value := range data {
		if nested, ok := value.(map[string]any); ok {
			copied[key] = copyDocument(nested)
			continue
		}
		copied[key] = value
	}
	return copied
}

func matchesFilters(payload map[string]any, filters []memoryFilter) (bool, error) {
	for _, filter := range filters {
		candidate := payload[filter.field]
		cmp, comparable := compareValues(candidate, filter.value)
		switch filter.op {
		case "==":
			if !comparable || cmp != 0 {
				return false, nil
			}
		case ">=":
			if !comparable || cmp < 0 {
				return false, nil
			}
		case "<=":
			if !comparable || cmp > 0 {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported query operator %q", filter.op)
		}
	}
	return true, nil
}

func compareValues(a, b any) (int, bool) {
	if at, ok := a.(timeutil.Timestamp); ok {
		bt, ok := b.(timeutil.Timestamp)
		if !ok {
			return 0, false
		}
		switch {
		case at.ToMillis() < bt.ToMillis():
			return -1, true
		case at.ToMillis() > bt.ToMillis():
			return 1, true
		}
		return 0, true
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}
	af, aOK := toFloat(a)
	bf, bOK := toFloat(b)
	if aOK && bOK {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0, true
		}
		return 0, false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return 0, false
	}
	if a == b {
		return 0, true
	}
	return 0, false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}
