package settings

import "context"

// Repository persists settings keyed by their unique setting key.
// FindByKey returns (nil, nil) when absent; Save upserts.
type Repository interface {
	FindByKey(ctx context.Context, key string) (*Setting, error)
	ListAll(ctx context.Context) ([]Setting, error)
	Save(ctx context.Context, setting Setting) error
}
