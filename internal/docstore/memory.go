package docstore

import (
	"context"
	"errors"
	"sync"
)

var errCommitConflict = errors.New("commit conflict")

type docKey struct {
	collection string
	id         string
}

type memDoc struct {
	data    []byte // nil marks a deleted document
	version uint64
}

// MemoryStore keeps documents in process memory. Transactions are optimistic:
// every document read inside a transaction is version-checked at commit and the
// transaction is re-run on mismatch. Inserts into a collection that was only
// scanned with Find are not detected as conflicts.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  map[docKey]*memDoc
	clock uint64
	opts  Options
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		docs: make(map[docKey]*memDoc),
		opts: buildOptions(opts),
	}
}

// version returns the current version of key, 0 when it was never written.
// Caller holds the lock.
func (s *MemoryStore) version(k docKey) uint64 {
	if d, ok := s.docs[k]; ok {
		return d.version
	}
	return 0
}

// write stores data under k with a fresh version. Caller holds the write lock.
func (s *MemoryStore) write(k docKey, data []byte) {
	s.clock++
	s.docs[k] = &memDoc{data: data, version: s.clock}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[docKey{collection, id}]
	if !ok || d.data == nil {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Data: append([]byte(nil), d.data...)}, nil
}

func (s *MemoryStore) Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	obj, err := filterObject(filters)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scan(collection, obj, nil)
}

// scan returns live documents in collection matching obj. When seen is non-nil
// the version of every visited document is recorded in it. Caller holds the lock.
func (s *MemoryStore) scan(collection string, obj map[string]interface{}, seen map[docKey]uint64) ([]Document, error) {
	var out []Document
	for k, d := range s.docs {
		if k.collection != collection {
			continue
		}
		if seen != nil {
			if _, ok := seen[k]; !ok {
				seen[k] = d.version
			}
		}
		if d.data == nil {
			continue
		}
		ok, err := matches(d.data, obj)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, Document{ID: k.id, Data: append([]byte(nil), d.data...)})
		}
	}
	sortDocuments(out)
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context, collection string, filters ...Filter) (int64, error) {
	docs, err := s.Find(ctx, collection, filters...)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, doc interface{}) error {
	data, err := encodeObject(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(docKey{collection, id}, data)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := docKey{collection, id}
	d, ok := s.docs[k]
	if !ok || d.data == nil {
		return ErrNotFound
	}
	data, err := applyUpdate(d.data, fields)
	if err != nil {
		return err
	}
	s.write(k, data)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := docKey{collection, id}
	d, ok := s.docs[k]
	if !ok || d.data == nil {
		return ErrNotFound
	}
	s.write(k, nil)
	return nil
}

// RunTransaction runs fn until it commits without conflict or the attempt budget is spent.
func (s *MemoryStore) RunTransaction(ctx context.Context, fn TxFunc) error {
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := &memTx{
			store:  s,
			reads:  make(map[docKey]uint64),
			writes: make(map[docKey][]byte),
		}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		err := s.commit(tx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errCommitConflict) {
			return err
		}
		s.opts.retried(attempt)
	}
	return ErrTxConflict
}

func (s *MemoryStore) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range tx.reads {
		if s.version(k) != v {
			return errCommitConflict
		}
	}
	for k, data := range tx.writes {
		s.write(k, data)
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// memTx buffers writes and records the version of everything it reads.
type memTx struct {
	store  *MemoryStore
	reads  map[docKey]uint64
	writes map[docKey][]byte
}

// lookup returns the document as this transaction sees it.
func (t *memTx) lookup(k docKey) []byte {
	if data, ok := t.writes[k]; ok {
		return data
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	d, ok := t.store.docs[k]
	if _, seen := t.reads[k]; !seen {
		t.reads[k] = t.store.version(k)
	}
	if !ok {
		return nil
	}
	return d.data
}

func (t *memTx) Get(ctx context.Context, collection, id string) (*Document, error) {
	data := t.lookup(docKey{collection, id})
	if data == nil {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Data: append([]byte(nil), data...)}, nil
}

func (t *memTx) Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	obj, err := filterObject(filters)
	if err != nil {
		return nil, err
	}
	t.store.mu.RLock()
	docs, err := t.store.scan(collection, obj, t.reads)
	t.store.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	// Overlay this transaction's own pending writes.
	byID := make(map[string]Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	for k, data := range t.writes {
		if k.collection != collection {
			continue
		}
		delete(byID, k.id)
		if data == nil {
			continue
		}
		ok, err := matches(data, obj)
		if err != nil {
			return nil, err
		}
		if ok {
			byID[k.id] = Document{ID: k.id, Data: append([]byte(nil), data...)}
		}
	}
	out := make([]Document, 0, len(byID))
	for _, d := range byID {
		out = append(out, d)
	}
	sortDocuments(out)
	return out, nil
}

func (t *memTx) Set(ctx context.Context, collection, id string, doc interface{}) error {
	data, err := encodeObject(doc)
	if err != nil {
		return err
	}
	t.writes[docKey{collection, id}] = data
	return nil
}

func (t *memTx) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	k := docKey{collection, id}
	current := t.lookup(k)
	if current == nil {
		return ErrNotFound
	}
	data, err := applyUpdate(current, fields)
	if err != nil {
		return err
	}
	t.writes[k] = data
	return nil
}

func (t *memTx) Delete(ctx context.Context, collection, id string) error {
	k := docKey{collection, id}
	if t.lookup(k) == nil {
		return ErrNotFound
	}
	t.writes[k] = nil
	return nil
}
