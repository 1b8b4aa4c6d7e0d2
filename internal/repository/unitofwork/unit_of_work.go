package unitofwork

import (
	"context"

	"neuraconnect-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	PersonaRepository() contract.PersonaRepository
	SessionRepository() contract.SessionRepository
	MaterialRepository() contract.MaterialRepository
	AppearanceRepository() contract.AppearanceRepository
	EmotionRepository() contract.EmotionRepository
}
