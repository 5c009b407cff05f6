package storage

import "context"

// Object is the durable result of a successful upload. Key doubles as the
// public id used for deletion.
type Object struct {
	URL string
	Key string
}

// MediaStore is the gateway to the external object store. Upload with an
// empty localPath is a no-op returning (nil, nil); a nil Object with a nil
// error therefore means "nothing to upload", while any error means the
// upload failed and the local temp file was already removed.
type MediaStore interface {
	Upload(ctx context.Context, localPath string) (*Object, error)
	Delete(ctx context.Context, ref string) bool
}
