package contract

import (
	"context"

	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MaterialRepository interface {
	Create(ctx context.Context, material *entity.TrainingMaterial) error
	Update(ctx context.Context, material *entity.TrainingMaterial) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByPersonaIdUnscoped(ctx context.Context, personaId uuid.UUID) error // Hard delete all
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TrainingMaterial, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TrainingMaterial, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
