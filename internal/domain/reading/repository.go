package reading

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists sensor readings. CreateBatch is all-or-nothing.
type Repository interface {
	Create(ctx context.Context, reading *Reading) error
	CreateBatch(ctx context.Context, readings []*Reading) error
	GetByID(ctx context.Context, readingID uuid.UUID) (*Reading, error)
	List(ctx context.Context, offset, limit int) ([]*Reading, error)
	Update(ctx context.Context, readingID uuid.UUID, changes Changes) (*Reading, error)
	Delete(ctx context.Context, readingID uuid.UUID) error
}
