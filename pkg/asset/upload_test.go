package asset

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type filePart struct {
	name        string
	contentType string
	data        []byte
}

func uploadRequest(t *testing.T, ids []string, files ...filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, id := range ids {
		if err := w.WriteField(IDsField, id); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(f.data)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodPost, "/assets", &body)
	r.Header.Set("Content-Type", w.FormDataContentType())
	return r
}

func newFSUploader(t *testing.T, opts ...UploaderOption) (*Uploader, *FSBackend) {
	t.Helper()
	backend, err := NewFSBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSBackend: %v", err)
	}
	return NewUploader(backend, opts...), backend
}

func TestUploadImage(t *testing.T) {
	up, backend := newFSUploader(t)
	id := uuid.NewString()
	data := pngBytes(t, 4, 5)

	a, err := up.Upload(context.Background(), "p1", uploadRequest(t, []string{id}, filePart{"My Logo.png", "image/png", data}))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if a.ID != id {
		t.Errorf("ID = %q, want %q", a.ID, id)
	}
	if a.ProjectID != "p1" || a.Type != TypeImage || a.Format != "png" {
		t.Errorf("asset = %+v", a)
	}
	if a.Size != int64(len(data)) {
		t.Errorf("Size = %d, want %d", a.Size, len(data))
	}
	if a.Meta.Width != 4 || a.Meta.Height != 5 {
		t.Errorf("Meta = %+v, want 4x5", a.Meta)
	}
	if !strings.HasPrefix(a.Name, "my-logo_") || !strings.HasSuffix(a.Name, ".png") {
		t.Errorf("Name = %q, want my-logo_<suffix>.png", a.Name)
	}

	rc, err := backend.Open(context.Background(), a.Name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	stored, _ := io.ReadAll(rc)
	if !bytes.Equal(stored, data) {
		t.Error("stored blob differs from upload")
	}
}

func TestUploadGeneratesIDWithoutIDsField(t *testing.T) {
	up, _ := newFSUploader(t)
	a, err := up.Upload(context.Background(), "p1", uploadRequest(t, nil, filePart{"f.woff2", "font/woff2", woff2Bytes()}))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := uuid.Parse(a.ID); err != nil {
		t.Errorf("ID = %q is not a UUID", a.ID)
	}
	if a.Type != TypeFont {
		t.Errorf("Type = %s, want font", a.Type)
	}
}

func TestUploadIgnoresExtraFiles(t *testing.T) {
	up, backend := newFSUploader(t)
	_, err := up.Upload(context.Background(), "p1", uploadRequest(t, nil,
		filePart{"a.png", "image/png", pngBytes(t, 1, 1)},
		filePart{"b.png", "image/png", pngBytes(t, 1, 1)},
	))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	entries, _ := os.ReadDir(backend.Dir())
	if len(entries) != 1 {
		t.Errorf("stored %d files, want 1", len(entries))
	}
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		files []filePart
		want  error
	}{
		{"no file", []string{uuid.NewString()}, nil, ErrNoFile},
		{"empty file", nil, []filePart{{"a.png", "image/png", nil}}, ErrEmptyFile},
		{"too large", nil, []filePart{{"a.png", "image/png", bytes.Repeat([]byte{1}, 129)}}, ErrTooLarge},
		{"unsupported", nil, []filePart{{"a.txt", "text/plain", []byte("hello")}}, ErrUnsupportedType},
		{"bad id", []string{"nope"}, []filePart{{"f.woff2", "font/woff2", woff2Bytes()}}, ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, backend := newFSUploader(t, WithMaxSize(128))
			_, err := up.Upload(context.Background(), "p1", uploadRequest(t, tt.ids, tt.files...))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Upload error = %v, want %v", err, tt.want)
			}
			entries, _ := os.ReadDir(backend.Dir())
			if len(entries) != 0 {
				t.Errorf("failed upload left %d files behind", len(entries))
			}
		})
	}
}

func TestUploaderDelete(t *testing.T) {
	up, backend := newFSUploader(t)
	a, err := up.Upload(context.Background(), "p1", uploadRequest(t, nil, filePart{"a.png", "image/png", pngBytes(t, 1, 1)}))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := up.Delete(context.Background(), a.Name); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(backend.Dir(), a.Name)); !os.IsNotExist(err) {
		t.Error("blob still on disk after Delete")
	}
	if err := up.Delete(context.Background(), a.Name); err != nil {
		t.Errorf("second Delete = %v, want nil", err)
	}
	if _, err := backend.Open(context.Background(), a.Name); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open deleted = %v, want ErrNotFound", err)
	}
}
