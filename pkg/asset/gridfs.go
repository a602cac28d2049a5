package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultGridFSBucket is the GridFS bucket name used for assets.
const DefaultGridFSBucket = "assets"

// GridFSBackend stores blobs in a MongoDB GridFS bucket.
type GridFSBackend struct {
	bucket *gridfs.Bucket
}

// NewGridFSBackend opens bucketName in db. An empty name uses
// DefaultGridFSBucket.
func NewGridFSBackend(db *mongo.Database, bucketName string) (*GridFSBackend, error) {
	if bucketName == "" {
		bucketName = DefaultGridFSBucket
	}
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("gridfs: open bucket: %w", err)
	}
	return &GridFSBackend{bucket: bucket}, nil
}

func (b *GridFSBackend) Name() string { return "gridfs" }

func (b *GridFSBackend) Put(ctx context.Context, name string, r io.Reader, size int64, info ObjectInfo) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.bucket.SetWriteDeadline(deadline); err != nil {
			return err
		}
	}
	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: "contentType", Value: info.ContentType},
		{Key: "filename", Value: metadataFilename(info.Filename)},
		{Key: "size", Value: size},
	})
	if _, err := b.bucket.UploadFromStream(name, r, opts); err != nil {
		return fmt.Errorf("gridfs: upload %s: %w", name, err)
	}
	return nil
}

func (b *GridFSBackend) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.bucket.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if _, err := b.bucket.DownloadToStreamByName(name, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("gridfs: download %s: %w", name, err)
	}
	return io.NopCloser(&buf), nil
}

func (b *GridFSBackend) Delete(ctx context.Context, name string) error {
	cursor, err := b.bucket.FindContext(ctx, bson.D{{Key: "filename", Value: name}})
	if err != nil {
		return fmt.Errorf("gridfs: find %s: %w", name, err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var file struct {
			ID any `bson:"_id"`
		}
		if err := cursor.Decode(&file); err != nil {
			return fmt.Errorf("gridfs: decode %s: %w", name, err)
		}
		if err := b.bucket.DeleteContext(ctx, file.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("gridfs: delete %s: %w", name, err)
		}
	}
	return cursor.Err()
}

var _ Backend = (*GridFSBackend)(nil)
