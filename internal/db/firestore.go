package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"sedifex-backend-go/internal/config"
	"sedifex-backend-go/internal/timeutil"
)

// InitFirebase initializes the Firebase Admin SDK and returns the Firestore
// and Auth clients. Credentials are resolved in order: service account file,
// base64-encoded service account JSON, then Application Default Credentials.
func InitFirebase(ctx context.Context, appConfig *config.Config) (*firestore.Client, *auth.Client, error) {
	if appConfig == nil {
		return nil, nil, fmt.Errorf("InitFirebase: appConfig cannot be nil")
	}

	var opts []option.ClientOption
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		opts = append(opts, option.WithCredentialsFile(appConfig.GoogleApplicationCredentials))
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		decoded, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decoded))
	}

	var firebaseConfig *firebase.Config
	if appConfig.FirebaseProjectID != "" {
		firebaseConfig = &firebase.Config{ProjectID: appConfig.FirebaseProjectID}
	}

	app, err := firebase.NewApp(ctx, firebaseConfig, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("app.Firestore: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		fsClient.Close()
		return nil, nil, fmt.Errorf("app.Auth: %w", err)
	}

	return fsClient, authClient, nil
}

// FirestoreStore implements DocumentStore on top of a Firestore client.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore wraps a Firestore client in the DocumentStore contract.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Collection(name string) CollectionRef {
	return &firestoreCollection{ref: s.client.Collection(name)}
}

func (s *FirestoreStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	return s.client.RunTransaction(ctx, func(txCtx context.Context, tx *firestore.Transaction) error {
		return fn(txCtx, &firestoreTransaction{tx: tx})
	})
}

type firestoreCollection struct {
	ref *firestore.CollectionRef
}

func (c *firestoreCollection) Doc(id string) DocumentRef {
	return &firestoreDocument{ref: c.ref.Doc(id)}
}

func (c *firestoreCollection) NewDoc() DocumentRef {
	return &firestoreDocument{ref: c.ref.NewDoc()}
}

func (c *firestoreCollection) Where(field, op string, value any) Query {
	return &firestoreQuery{query: c.ref.Where(field, op, encodeValue(value))}
}

type firestoreDocument struct {
	ref *firestore.DocumentRef
}

func (d *firestoreDocument) ID() string { return d.ref.ID }

func (d *firestoreDocument) Get(ctx context.Context) (Snapshot, error) {
	snap, err := d.ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return &firestoreSnapshot{id: d.ref.ID}, nil
		}
		return nil, fmt.Errorf("failed to get document %q: %w", d.ref.Path, err)
	}
	return newFirestoreSnapshot(snap), nil
}

func (d *firestoreDocument) Set(ctx context.Context, data map[string]any, merge bool) error {
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}
	if _, err := d.ref.Set(ctx, encodeDocument(data), opts...); err != nil {
		return fmt.Errorf("failed to set document %q: %w", d.ref.Path, err)
	}
	return nil
}

func (d *firestoreDocument) Update(ctx context.Context, data map[string]any) error {
	if _, err := d.ref.Update(ctx, toUpdates(data)); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("update %q: %w", d.ref.Path, ErrNotFound)
		}
		return fmt.Errorf("failed to update document %q: %w", d.ref.Path, err)
	}
	return nil
}

type firestoreQuery struct {
	query firestore.Query
}

func (q *firestoreQuery) Where(field, op string, value any) Query {
	return &firestoreQuery{query: q.query.Where(field, op, encodeValue(value))}
}

func (q *firestoreQuery) Limit(n int) Query {
	return &firestoreQuery{query: q.query.Limit(n)}
}

func (q *firestoreQuery) Documents(ctx context.Context) ([]Snapshot, error) {
	iter := q.query.Documents(ctx)
	defer iter.Stop()

	var results []Snapshot
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate query results: %w", err)
		}
		results = append(results, newFirestoreSnapshot(snap))
	}
	return results, nil
}

type firestoreTransaction struct {
	tx *firestore.Transaction
}

func (t *firestoreTransaction) Get(ref DocumentRef) (Snapshot, error) {
	doc, err := t.firestoreRef(ref)
	if err != nil {
		return nil, err
	}
	snap, err := t.tx.Get(doc.ref)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return &firestoreSnapshot{id: doc.ref.ID}, nil
		}
		return nil, fmt.Errorf("failed to get document %q in transaction: %w", doc.ref.Path, err)
	}
	return newFirestoreSnapshot(snap), nil
}

func (t *firestoreTransaction) Set(ref DocumentRef, data map[string]any, merge bool) error {
	doc, err := t.firestoreRef(ref)
	if err != nil {
		return err
	}
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}
	if err := t.tx.Set(doc.ref, encodeDocument(data), opts...); err != nil {
		return fmt.Errorf("failed to set document %q in transaction: %w", doc.ref.Path, err)
	}
	return nil
}

func (t *firestoreTransaction) Update(ref DocumentRef, data map[string]any) error {
	doc, err := t.firestoreRef(ref)
	if err != nil {
		return err
	}
	if err := t.tx.Update(doc.ref, toUpdates(data)); err != nil {
		return fmt.Errorf("failed to update document %q in transaction: %w", doc.ref.Path, err)
	}
	return nil
}

func (t *firestoreTransaction) firestoreRef(ref DocumentRef) (*firestoreDocument, error) {
	doc, ok := ref.(*firestoreDocument)
	if !ok {
		return nil, fmt.Errorf("transaction reference does not belong to this store")
	}
	return doc, nil
}

type firestoreSnapshot struct {
	id   string
	data map[string]any
}

func newFirestoreSnapshot(snap *firestore.DocumentSnapshot) *firestoreSnapshot {
	if !snap.Exists() {
		return &firestoreSnapshot{id: snap.Ref.ID}
	}
	return &firestoreSnapshot{id: snap.Ref.ID, data: decodeDocument(snap.Data())}
}

func (s *firestoreSnapshot) ID() string   { return s.id }
func (s *firestoreSnapshot) Exists() bool { return s.data != nil }

func (s *firestoreSnapshot) Data() map[string]any {
	if s.data == nil {
		return map[string]any{}
	}
	return copyDocument(s.data)
}

// encodeDocument converts timeutil.Timestamp values to time.Time so Firestore
// persists them as native timestamps.
func encodeDocument(data map[string]any) map[string]any {
	encoded := make(map[string]any, len(data))
	for key, value := range data {
		encoded[key] = encodeValue(value)
	}
	return encoded
}

func encodeValue(value any) any {
	switch v := value.(type) {
	case timeutil.Timestamp:
		return v.Time()
	case map[string]any:
		return encodeDocument(v)
	}
	return value
}

// decodeDocument converts Firestore native timestamps back into
// timeutil.Timestamp values.
func decodeDocument(data map[string]any) map[string]any {
	decoded := make(map[string]any, len(data))
	for key, value := range data {
		decoded[key] = decodeValue(value)
	}
	return decoded
}

func decodeValue(value any) any {
	switch v := value.(type) {
	case time.Time:
		return timeutil.FromTime(v)
	case map[string]any:
		return decodeDocument(v)
	}
	return value
}

func toUpdates(data map[string]any) []firestore.Update {
	updates := make([]firestore.Update, 0, len(data))
	for key, value := range data {
		updates = append(updates, firestore.Update{Path: key, Value: encodeValue(value)})
	}
	return updates
}
