package match

import (
	"context"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
)

// Repository describes match persistence needs from use cases.
type Repository interface {
	Insert(ctx context.Context, item Match) error
	InsertBatch(ctx context.Context, items []Match) error
	Get(ctx context.Context, id string) (Match, bool, error)
	Update(ctx context.Context, id string, mutate func(Match) (Match, error)) (Match, bool, error)
	Delete(ctx context.Context, id string) (crud.DeleteResult, bool, error)
	DeleteBatch(ctx context.Context, ids []string) ([]crud.DeleteResult, error)
	List(ctx context.Context, filter Filter, page crud.Page) ([]Match, error)
}
