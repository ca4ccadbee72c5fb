package series

import (
	"context"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
)

// Repository describes series persistence needs from use cases.
type Repository interface {
	Insert(ctx context.Context, item Series) error
	InsertBatch(ctx context.Context, items []Series) error
	Get(ctx context.Context, id string) (Series, bool, error)
	Update(ctx context.Context, id string, mutate func(Series) (Series, error)) (Series, bool, error)
	Delete(ctx context.Context, id string) (crud.DeleteResult, bool, error)
	DeleteBatch(ctx context.Context, ids []string) ([]crud.DeleteResult, error)
	List(ctx context.Context, filter Filter, page crud.Page) ([]Series, error)
}
