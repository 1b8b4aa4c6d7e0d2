package contract

import (
	"context"

	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PersonaRepository interface {
	Create(ctx context.Context, persona *entity.Persona) error
	Update(ctx context.Context, persona *entity.Persona) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Persona, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Persona, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
