package contract

import (
	"context"

	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/repository/specification"

	"github.com/google/uuid"
)

type EmotionRepository interface {
	Create(ctx context.Context, analysis *entity.EmotionAnalysis) error
	DeleteAllByPersonaId(ctx context.Context, personaId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EmotionAnalysis, error)
}
