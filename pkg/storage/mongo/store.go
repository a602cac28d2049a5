// Package mongo implements storage.Store on MongoDB.
//
// Builds live in the "builds" collection, one document per project, with the
// build serialised as JSON so that arbitrary prop and style values survive
// unchanged. Asset records live in "assets" keyed by asset id.
package mongo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/studio/pkg/asset"
	"github.com/matzehuels/studio/pkg/build"
	"github.com/matzehuels/studio/pkg/storage"
)

// Collection names.
const (
	BuildsCollection = "builds"
	AssetsCollection = "assets"
)

type buildDoc struct {
	ID        string      `bson:"_id"`
	Version   int64       `bson:"version"`
	UpdatedAt time.Time   `bson:"updated_at"`
	Stats     build.Stats `bson:"stats"`
	Data      []byte      `bson:"data,omitempty"`
}

// Store is a MongoDB-backed storage.Store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	owned  bool
}

// Connect dials uri, verifies the connection and prepares indexes.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	s := &Store{client: client, db: client.Database(database), owned: true}
	if err := s.EnsureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// New wraps an existing database. Close does not disconnect its client.
func New(db *mongo.Database) *Store {
	return &Store{client: db.Client(), db: db}
}

// Database returns the underlying database, for GridFS.
func (s *Store) Database() *mongo.Database { return s.db }

// EnsureIndexes creates the asset lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(AssetsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create asset index: %w", err)
	}
	return nil
}

func (s *Store) LoadBuild(ctx context.Context, projectID string) (*build.Build, uint64, error) {
	var doc buildDoc
	err := s.db.Collection(BuildsCollection).FindOne(ctx, bson.D{{Key: "_id", Value: projectID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, 0, fmt.Errorf("project %s: %w", projectID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load project %s: %w", projectID, err)
	}
	b, err := build.ReadJSON(bytes.NewReader(doc.Data))
	if err != nil {
		return nil, 0, fmt.Errorf("decode project %s: %w", projectID, err)
	}
	return b, uint64(doc.Version), nil
}

func (s *Store) SaveBuild(ctx context.Context, projectID string, b *build.Build, expected uint64) (uint64, error) {
	var buf bytes.Buffer
	if err := build.WriteJSON(b, &buf); err != nil {
		return 0, fmt.Errorf("encode project %s: %w", projectID, err)
	}
	next := expected + 1
	doc := buildDoc{
		ID:        projectID,
		Version:   int64(next),
		UpdatedAt: time.Now().UTC(),
		Stats:     b.Stats(),
		Data:      buf.Bytes(),
	}
	coll := s.db.Collection(BuildsCollection)

	if expected == 0 {
		if _, err := coll.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return 0, fmt.Errorf("project %s already exists: %w", projectID, storage.ErrConflict)
			}
			return 0, fmt.Errorf("insert project %s: %w", projectID, err)
		}
		return next, nil
	}

	filter := bson.D{{Key: "_id", Value: projectID}, {Key: "version", Value: int64(expected)}}
	res, err := coll.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return 0, fmt.Errorf("save project %s: %w", projectID, err)
	}
	if res.MatchedCount == 0 {
		return 0, fmt.Errorf("project %s not at version %d: %w", projectID, expected, storage.ErrConflict)
	}
	return next, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]storage.Project, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "data", Value: 0}}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.db.Collection(BuildsCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	var docs []buildDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	out := make([]storage.Project, 0, len(docs))
	for _, d := range docs {
		out = append(out, storage.Project{ID: d.ID, Version: uint64(d.Version), UpdatedAt: d.UpdatedAt, Stats: d.Stats})
	}
	return out, nil
}

func (s *Store) PutAsset(ctx context.Context, a *asset.Asset) error {
	_, err := s.db.Collection(AssetsCollection).ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: a.ID}}, a,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put asset %s: %w", a.Name, err)
	}
	return nil
}

func (s *Store) ListAssets(ctx context.Context, projectID string) ([]asset.Asset, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "name", Value: 1}})
	cursor, err := s.db.Collection(AssetsCollection).Find(ctx, bson.D{{Key: "project_id", Value: projectID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	out := []asset.Asset{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteAsset(ctx context.Context, projectID, name string) error {
	res, err := s.db.Collection(AssetsCollection).DeleteOne(ctx,
		bson.D{{Key: "project_id", Value: projectID}, {Key: "name", Value: name}})
	if err != nil {
		return fmt.Errorf("delete asset %s: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("asset %s: %w", name, storage.ErrNotFound)
	}
	return nil
}

// Close disconnects the client when the store opened it.
func (s *Store) Close(ctx context.Context) error {
	if !s.owned {
		return nil
	}
	return s.client.Disconnect(ctx)
}

var _ storage.Store = (*Store)(nil)
