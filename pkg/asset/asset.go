package asset

import (
	"context"
	"errors"
	"io"
	"time"
)

// Type is the kind of an asset.
type Type string

const (
	TypeImage Type = "image"
	TypeFont  Type = "font"
)

// MaxFilesPerRequest is how many files one upload request may carry.
// Further file parts are skipped without error.
const MaxFilesPerRequest = 1

// DefaultMaxSize is the upload limit when none is configured.
const DefaultMaxSize int64 = 10 << 20

// Sentinel errors for asset operations.
var (
	ErrNoFile          = errors.New("request contains no file")
	ErrEmptyFile       = errors.New("your asset seems to be empty")
	ErrTooLarge        = errors.New("asset exceeds maximum size")
	ErrUnsupportedType = errors.New("asset type not supported")
	ErrInvalidID       = errors.New("asset id must be a UUID")
	ErrNotFound        = errors.New("asset not found")
)

// Meta holds type-specific metadata. Image fields and font fields are
// mutually exclusive.
type Meta struct {
	Width  int `json:"width,omitempty" bson:"width,omitempty"`
	Height int `json:"height,omitempty" bson:"height,omitempty"`

	Family string `json:"family,omitempty" bson:"family,omitempty"`
	Style  string `json:"style,omitempty" bson:"style,omitempty"`
	Weight int    `json:"weight,omitempty" bson:"weight,omitempty"`
}

// Asset is the record of one stored file.
type Asset struct {
	ID        string    `json:"id" bson:"_id"`
	ProjectID string    `json:"projectId" bson:"project_id"`
	Name      string    `json:"name" bson:"name"`
	Type      Type      `json:"type" bson:"type"`
	Format    string    `json:"format" bson:"format"`
	Size      int64     `json:"size" bson:"size"`
	Meta      Meta      `json:"meta" bson:"meta"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// ObjectInfo is stored alongside the blob.
type ObjectInfo struct {
	ContentType string
	// Filename is the sanitised name the user uploaded, before it was made
	// unique.
	Filename string
}

// Backend stores asset blobs by name.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Put stores size bytes from r under name.
	Put(ctx context.Context, name string, r io.Reader, size int64, info ObjectInfo) error

	// Open returns the blob. It returns ErrNotFound for unknown names.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes the blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
}
