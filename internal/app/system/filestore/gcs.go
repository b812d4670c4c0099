package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS stores files as objects in a Google Cloud Storage bucket under an
// optional prefix.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS connects to bucket. credentialsFile may be empty to use the
// ambient application default credentials.
func NewGCS(ctx context.Context, bucket, prefix, credentialsFile string) (*GCS, error) {
	if bucket == "" {
		return nil, errors.New("filestore: gcs bucket is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("filestore: gcs credentials %s: %w", credentialsFile, err)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("filestore: create gcs client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

// Close releases the underlying client.
func (g *GCS) Close() error { return g.client.Close() }

func (g *GCS) object(name string) (*storage.ObjectHandle, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return g.client.Bucket(g.bucket).Object(path.Join(g.prefix, name)), nil
}

// Put uploads r to name. The object is only created if it does not exist.
func (g *GCS) Put(ctx context.Context, name string, r io.Reader, opts *PutOptions) error {
	obj, err := g.object(name)
	if err != nil {
		return err
	}
	w := obj.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	if opts != nil && opts.ContentType != "" {
		w.ContentType = opts.ContentType
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", name, err)
	}
	return nil
}

// Open returns a reader for name.
func (g *GCS) Open(ctx context.Context, name string) (io.ReadCloser, Info, error) {
	obj, err := g.object(name)
	if err != nil {
		return nil, Info{}, err
	}
	rd, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, Info{}, ErrNotExist
		}
		return nil, Info{}, err
	}
	return rd, Info{
		Name:        name,
		Size:        rd.Attrs.Size,
		ContentType: rd.Attrs.ContentType,
		ModTime:     rd.Attrs.LastModified,
	}, nil
}

// Delete removes name.
func (g *GCS) Delete(ctx context.Context, name string) error {
	obj, err := g.object(name)
	if err != nil {
		return err
	}
	if err := obj.Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return ErrNotExist
		}
		return err
	}
	return nil
}
