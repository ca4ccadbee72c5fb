package rawdata

import "context"

type Repository interface {
	Latest(ctx context.Context, entityType, entityKey string) (Payload, bool, error)
}
