package playerstats

import (
	"context"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
)

// Repository describes player match stat persistence needs from use cases.
// Insert fails when the referenced player or match does not exist.
type Repository interface {
	Insert(ctx context.Context, item Stat) error
	InsertBatch(ctx context.Context, items []Stat) error
	Get(ctx context.Context, id string) (Stat, bool, error)
	Update(ctx context.Context, id string, mutate func(Stat) (Stat, error)) (Stat, bool, error)
	Delete(ctx context.Context, id string) (crud.DeleteResult, bool, error)
	DeleteBatch(ctx context.Context, ids []string) ([]crud.DeleteResult, error)
	List(ctx context.Context, filter Filter, page crud.Page) ([]Stat, error)
}
