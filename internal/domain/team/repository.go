package team

import (
	"context"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
)

// Repository describes team persistence needs from use cases.
type Repository interface {
	Insert(ctx context.Context, item Team) error
	InsertBatch(ctx context.Context, items []Team) error
	Get(ctx context.Context, id string) (Team, bool, error)
	Update(ctx context.Context, id string, mutate func(Team) (Team, error)) (Team, bool, error)
	Delete(ctx context.Context, id string) (crud.DeleteResult, bool, error)
	DeleteBatch(ctx context.Context, ids []string) ([]crud.DeleteResult, error)
	List(ctx context.Context, filter Filter, page crud.Page) ([]Team, error)
}
