package contract

import (
	"context"
	"time"

	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	Update(ctx context.Context, session *entity.Session) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)
	// EndAllActiveByUserId marks every active session of a user as ended in a
	// single statement. Returns the number of rows swept.
	EndAllActiveByUserId(ctx context.Context, userId uuid.UUID, endedAt time.Time) (int64, error)
	DeleteAllByPersonaId(ctx context.Context, personaId uuid.UUID) error
}
