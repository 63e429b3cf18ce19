package interfaces

import "context"

// BlobStore persists binary payloads (uploaded images) and hands back a
// stable reference path. Content records only ever store the reference.
type BlobStore interface {
	Put(ctx context.Context, name string, payload []byte) (string, error)
	Delete(ctx context.Context, ref string) error
}
