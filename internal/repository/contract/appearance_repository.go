package contract

import (
	"context"

	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AppearanceRepository interface {
	Create(ctx context.Context, appearance *entity.PersonaAppearance) error
	DeleteAllByPersonaId(ctx context.Context, personaId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PersonaAppearance, error)
}
