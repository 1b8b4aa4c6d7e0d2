package implementation

import (
	"context"
	"errors"
	"time"

	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/mapper"
	"neuraconnect-be/internal/model"
	"neuraconnect-be/internal/repository/contract"
	"neuraconnect-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *SessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *entity.Session) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *SessionRepositoryImpl) Update(ctx context.Context, session *entity.Session) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *SessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	var m model.Session
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	var models []*model.Session
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

// EndAllActiveByUserId is the stale-session sweep. It runs as one conditional
// UPDATE so two concurrent sweeps cannot double-end the same row.
func (r *SessionRepositoryImpl) EndAllActiveByUserId(ctx context.Context, userId uuid.UUID, endedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("user_id = ? AND status = ?", userId, string(entity.SessionStatusActive)).
		Updates(map[string]interface{}{
			"status":   string(entity.SessionStatusEnded),
			"ended_at": endedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *SessionRepositoryImpl) DeleteAllByPersonaId(ctx context.Context, personaId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("persona_id = ?", personaId).Delete(&model.Session{}).Error
}
