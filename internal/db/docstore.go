package db

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an operation requires a document that does not
// exist (for example DocumentRef.Update on an absent document).
var ErrNotFound = errors.New("document not found")

// Snapshot is a point-in-time view of a document. Data returns a copy, so
// callers may mutate the result freely.
type Snapshot interface {
	ID() string
	Exists() bool
	Data() map[string]any
}

// DocumentRef is a reference to a single document inside a collection.
type DocumentRef interface {
	ID() string
	Get(ctx context.Context) (Snapshot, error)
	// Set writes the document. With merge=true the write is a
	// shallow-recursive merge: top-level keys overwrite, nested map values
	// merge key-by-key, scalars replace outright.
	Set(ctx context.Context, data map[string]any, merge bool) error
	// Update merges fields into an existing document and fails with
	// ErrNotFound when the document is absent.
	Update(ctx context.Context, data map[string]any) error
}

// Query is a lazily-filterable view over a collection. Supported operators
// are "==", ">=" and "<=".
type Query interface {
	Where(field, op string, value any) Query
	Limit(n int) Query
	Documents(ctx context.Context) ([]Snapshot, error)
}

// CollectionRef addresses a named collection of documents keyed by string id.
type CollectionRef interface {
	Doc(id string) DocumentRef
	// NewDoc returns a reference with a freshly generated id.
	NewDoc() DocumentRef
	Where(field, op string, value any) Query
}

// Transaction exposes the document operations available inside
// DocumentStore.RunTransaction.
type Transaction interface {
	Get(ref DocumentRef) (Snapshot, error)
	Set(ref DocumentRef, data map[string]any, merge bool) error
	Update(ref DocumentRef, data map[string]any) error
}

// DocumentStore is the storage contract the tenancy core is written against.
// Production uses the Firestore-backed implementation; tests use the
// in-memory one.
type DocumentStore interface {
	Collection(name string) CollectionRef
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}
