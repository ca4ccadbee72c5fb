package player

import (
	"context"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
)

// Repository describes player persistence needs from use cases.
type Repository interface {
	Insert(ctx context.Context, item Player) error
	InsertBatch(ctx context.Context, items []Player) error
	Get(ctx context.Context, id string) (Player, bool, error)
	Update(ctx context.Context, id string, mutate func(Player) (Player, error)) (Player, bool, error)
	Delete(ctx context.Context, id string) (crud.DeleteResult, bool, error)
	DeleteBatch(ctx context.Context, ids []string) ([]crud.DeleteResult, error)
	List(ctx context.Context, filter Filter, page crud.Page) ([]Player, error)
}
