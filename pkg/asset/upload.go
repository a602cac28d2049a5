package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/studio/pkg/observability"
)

// IDsField is the multipart field carrying one asset id per file.
const IDsField = "ids"

// multipartOverhead bounds the non-file parts of an upload request.
const multipartOverhead = 1 << 20

// Uploader accepts asset uploads and writes them to a backend.
type Uploader struct {
	backend Backend
	maxSize int64
	logger  *log.Logger
	now     func() time.Time
}

// UploaderOption configures an Uploader.
type UploaderOption func(*Uploader)

// WithMaxSize sets the per-file size limit in bytes.
func WithMaxSize(n int64) UploaderOption {
	return func(u *Uploader) {
		if n > 0 {
			u.maxSize = n
		}
	}
}

// WithLogger sets the uploader logger.
func WithLogger(l *log.Logger) UploaderOption {
	return func(u *Uploader) {
		if l != nil {
			u.logger = l
		}
	}
}

// NewUploader creates an uploader writing to backend.
func NewUploader(backend Backend, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		backend: backend,
		maxSize: DefaultMaxSize,
		logger:  log.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Backend returns the backend the uploader writes to.
func (u *Uploader) Backend() Backend { return u.backend }

// MaxSize returns the per-file size limit.
func (u *Uploader) MaxSize() int64 { return u.maxSize }

// Upload reads a multipart request holding one file and an optional ids
// field. The first file part is stored; later ones are ignored. When an id
// is supplied it must be a UUID and becomes the asset id.
func (u *Uploader) Upload(ctx context.Context, projectID string, r *http.Request) (*Asset, error) {
	start := time.Now()
	a, err := u.upload(ctx, projectID, r)

	var size int64
	assetType := ""
	if a != nil {
		size, assetType = a.Size, string(a.Type)
	}
	observability.Asset().OnUpload(ctx, u.backend.Name(), assetType, size, time.Since(start), err)
	if err != nil {
		u.logger.Warn("upload failed", "project", projectID, "backend", u.backend.Name(), "err", err)
		return nil, err
	}
	u.logger.Info("asset uploaded", "project", projectID, "name", a.Name, "type", a.Type, "size", a.Size)
	return a, nil
}

func (u *Uploader) upload(ctx context.Context, projectID string, r *http.Request) (*Asset, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, u.maxSize*MaxFilesPerRequest+multipartOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("read multipart: %w", err)
	}

	var (
		stored *Asset
		ids    []string
		files  int
	)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			u.discard(ctx, stored)
			return nil, fmt.Errorf("read part: %w", err)
		}

		switch {
		case part.FileName() != "":
			files++
			if files > MaxFilesPerRequest {
				u.logger.Debug("ignoring extra file", "filename", part.FileName())
				part.Close()
				continue
			}
			stored, err = u.storePart(ctx, projectID, part)
			part.Close()
			if err != nil {
				return nil, err
			}
		case part.FormName() == IDsField:
			value, err := io.ReadAll(io.LimitReader(part, 64))
			part.Close()
			if err != nil {
				u.discard(ctx, stored)
				return nil, fmt.Errorf("read ids: %w", err)
			}
			ids = append(ids, string(value))
		default:
			part.Close()
		}
	}

	if stored == nil {
		return nil, ErrNoFile
	}
	if len(ids) > 0 {
		id, err := uuid.Parse(ids[0])
		if err != nil {
			u.discard(ctx, stored)
			return nil, fmt.Errorf("%w: %q", ErrInvalidID, ids[0])
		}
		stored.ID = id.String()
	}
	return stored, nil
}

func (u *Uploader) storePart(ctx context.Context, projectID string, part *multipart.Part) (*Asset, error) {
	data, err := io.ReadAll(io.LimitReader(part, u.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > u.maxSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, part.FileName(), u.maxSize)
	}

	filename := SanitizeKey(part.FileName())
	detected, err := Detect(data, part.Header.Get("Content-Type"), filename)
	if err != nil {
		return nil, err
	}

	name := UniqueFilename(filename)
	info := ObjectInfo{ContentType: detected.ContentType, Filename: filename}
	if err := u.backend.Put(ctx, name, bytes.NewReader(data), int64(len(data)), info); err != nil {
		return nil, fmt.Errorf("cannot upload file %s: %w", name, err)
	}

	return &Asset{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      name,
		Type:      detected.Type,
		Format:    detected.Format,
		Size:      int64(len(data)),
		Meta:      detected.Meta,
		CreatedAt: u.now().UTC(),
	}, nil
}

// discard removes a blob written earlier in a request that then failed.
func (u *Uploader) discard(ctx context.Context, a *Asset) {
	if a == nil {
		return
	}
	if err := u.backend.Delete(ctx, a.Name); err != nil {
		u.logger.Warn("cleanup failed", "name", a.Name, "err", err)
	}
}

// Delete removes a stored blob by name.
func (u *Uploader) Delete(ctx context.Context, name string) error {
	err := u.backend.Delete(ctx, name)
	observability.Asset().OnDelete(ctx, u.backend.Name(), name, err)
	return err
}
