// Package asset handles uploaded project files: images and fonts.
//
// An [Uploader] reads one file from a multipart request, checks it, gives it
// a sanitised unique name, sniffs what it is and writes it through a
// [Backend]. The returned [Asset] carries the metadata the editor needs
// (image dimensions, font family, style and weight).
//
// # Backends
//
//   - [FSBackend]: files on local disk
//   - [S3Backend]: any S3-compatible object store
//   - [GridFSBackend]: MongoDB GridFS, next to the project documents
//
// # Usage
//
//	backend, err := asset.NewS3Backend(ctx, asset.S3Config{
//	    Endpoint: "https://s3.example.com",
//	    Region:   "auto",
//	    Bucket:   "assets",
//	})
//	up := asset.NewUploader(backend, asset.WithMaxSize(5<<20))
//	a, err := up.Upload(ctx, projectID, r)
package asset
