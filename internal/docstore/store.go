// Package docstore is a small document database abstraction: named collections
// of JSON objects keyed by string ids, with equality queries, a field-level
// increment primitive and retried multi-document transactions.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrTxConflict is returned when a transaction kept conflicting with
	// concurrent writers until its attempt budget ran out.
	ErrTxConflict = errors.New("transaction conflict: retries exhausted")

	// ErrInvalidField is returned for field names that are not plain identifiers.
	ErrInvalidField = errors.New("invalid field name")

	// ErrNotObject is returned when a document does not encode to a JSON object.
	ErrNotObject = errors.New("document must encode to a JSON object")
)

// Document is a stored JSON object together with its id.
type Document struct {
	ID   string
	Data json.RawMessage
}

// DataTo decodes the document body into v.
func (d *Document) DataTo(v interface{}) error {
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	return nil
}

// Filter is an equality condition on a top-level field.
type Filter struct {
	Field string
	Value interface{}
}

// Where builds an equality filter.
func Where(field string, value interface{}) Filter {
	return Filter{Field: field, Value: value}
}

// Inc is the field-level increment primitive accepted by Update.
// A missing field counts as zero.
type Inc struct {
	By float64
}

// Increment returns an update value that adds n to a numeric field.
func Increment(n float64) Inc {
	return Inc{By: n}
}

// Reader is the read half of a store or transaction.
type Reader interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
}

// Writer is the write half of a store or transaction.
type Writer interface {
	// Set creates or replaces the document.
	Set(ctx context.Context, collection, id string, doc interface{}) error
	// Update merges fields into an existing document. Values of type Inc
	// are applied as increments.
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
}

// Executor is satisfied by both Store and Tx, so repositories can run
// the same code inside or outside a transaction.
type Executor interface {
	Reader
	Writer
}

// Tx is the handle passed to a transaction function. Its writes become
// visible to other callers only when the function returns nil.
type Tx interface {
	Executor
}

// TxFunc is the body of a transaction. It may run more than once.
type TxFunc func(ctx context.Context, tx Tx) error

// Store is a document database.
type Store interface {
	Executor
	Count(ctx context.Context, collection string, filters ...Filter) (int64, error)
	// RunTransaction runs fn with a transactional handle, retrying it on write
	// conflicts. An error returned by fn aborts without retry and discards writes.
	RunTransaction(ctx context.Context, fn TxFunc) error
	Close() error
}

// DefaultMaxAttempts bounds transaction retries when no option overrides it.
const DefaultMaxAttempts = 10

// Options tune store behaviour.
type Options struct {
	MaxAttempts int
	// OnRetry is called after a conflicted attempt, before the next one.
	OnRetry func(attempt int)
}

// Option mutates Options.
type Option func(*Options)

// WithMaxAttempts sets how many times a conflicting transaction runs.
func WithMaxAttempts(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxAttempts = n
		}
	}
}

// WithRetryHook installs a callback observed on every transaction retry.
func WithRetryHook(fn func(attempt int)) Option {
	return func(o *Options) {
		o.OnRetry = fn
	}
}

func buildOptions(opts []Option) Options {
	o := Options{MaxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) retried(attempt int) {
	if o.OnRetry != nil {
		o.OnRetry(attempt)
	}
}

var fieldNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func validateField(field string) error {
	if !fieldNameRegex.MatchString(field) {
		return fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	return nil
}

// encodeObject marshals doc and checks that the result is a JSON object.
func encodeObject(doc interface{}) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return nil, ErrNotObject
	}
	return data, nil
}

// normalize round-trips v through JSON so it compares like a decoded document value.
func normalize(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// filterObject renders filters as a JSON object suitable for containment matching.
func filterObject(filters []Filter) (map[string]interface{}, error) {
	obj := make(map[string]interface{}, len(filters))
	for _, f := range filters {
		if err := validateField(f.Field); err != nil {
			return nil, err
		}
		v, err := normalize(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encode filter %s: %w", f.Field, err)
		}
		obj[f.Field] = v
	}
	return obj, nil
}

// matches reports whether the encoded document satisfies every filter.
func matches(data []byte, filters map[string]interface{}) (bool, error) {
	if len(filters) == 0 {
		return true, nil
	}
	doc := map[string]interface{}{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("decode document: %w", err)
	}
	for field, want := range filters {
		got, ok := doc[field]
		if !ok || !reflect.DeepEqual(got, want) {
			return false, nil
		}
	}
	return true, nil
}

// applyUpdate merges fields into the encoded document.
func applyUpdate(data []byte, fields map[string]interface{}) ([]byte, error) {
	doc := map[string]interface{}{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	for field, value := range fields {
		if err := validateField(field); err != nil {
			return nil, err
		}
		if inc, ok := value.(Inc); ok {
			current := 0.0
			if existing, present := doc[field]; present && existing != nil {
				n, isNum := existing.(float64)
				if !isNum {
					return nil, fmt.Errorf("increment non-numeric field %q", field)
				}
				current = n
			}
			doc[field] = current + inc.By
			continue
		}
		v, err := normalize(value)
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", field, err)
		}
		doc[field] = v
	}
	return json.Marshal(doc)
}

// lessID orders numeric ids numerically and everything else lexically.
func lessID(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

func sortDocuments(docs []Document) {
	sort.Slice(docs, func(i, j int) bool { return lessID(docs[i].ID, docs[j].ID) })
}
