package venue

import (
	"context"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
)

// Repository describes venue persistence needs from use cases.
type Repository interface {
	Insert(ctx context.Context, item Venue) error
	InsertBatch(ctx context.Context, items []Venue) error
	Get(ctx context.Context, id string) (Venue, bool, error)
	Update(ctx context.Context, id string, mutate func(Venue) (Venue, error)) (Venue, bool, error)
	Delete(ctx context.Context, id string) (crud.DeleteResult, bool, error)
	DeleteBatch(ctx context.Context, ids []string) ([]crud.DeleteResult, error)
	List(ctx context.Context, filter Filter, page crud.Page) ([]Venue, error)
}
