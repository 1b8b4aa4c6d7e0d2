package service

import (
	"context"
	"encoding/json"
	"time"

	"neuraconnect-be/internal/dto"
	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/pkg/apperror"
	"neuraconnect-be/internal/pkg/logger"
	"neuraconnect-be/internal/repository/specification"
	"neuraconnect-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IPersonaService interface {
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ListPersonaResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreatePersonaRequest) (*dto.CreatePersonaResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowPersonaResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdatePersonaRequest) (*dto.UpdatePersonaResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Deploy(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DeployPersonaResponse, error)
	AddMaterial(ctx context.Context, userId uuid.UUID, req *dto.AddMaterialRequest) (*dto.AddMaterialResponse, error)
	ListMaterials(ctx context.Context, userId uuid.UUID, personaId uuid.UUID) ([]*dto.MaterialResponse, error)
	AddAppearance(ctx context.Context, userId uuid.UUID, req *dto.AddAppearanceRequest) (*dto.AddAppearanceResponse, error)
	AddEmotion(ctx context.Context, userId uuid.UUID, req *dto.AddEmotionRequest) (*dto.AddEmotionResponse, error)
	ListEmotions(ctx context.Context, userId uuid.UUID, personaId uuid.UUID) ([]*dto.EmotionResponse, error)
}

type personaService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	log              logger.ILogger
}

func NewPersonaService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	log logger.ILogger,
) IPersonaService {
	return &personaService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		log:              log,
	}
}

// findOwned loads a persona only when the requesting user owns it.
func (c *personaService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.Persona, error) {
	persona, err := uow.PersonaRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserId: userId},
	)
	if err != nil {
		return nil, err
	}
	if persona == nil {
		return nil, apperror.New(apperror.KindNotFound, "persona not found")
	}
	return persona, nil
}

func (c *personaService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ListPersonaResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	personas, err := uow.PersonaRepository().FindAll(ctx,
		specification.OwnedBy{UserId: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ListPersonaResponse, 0, len(personas))
	for _, persona := range personas {
		result = append(result, &dto.ListPersonaResponse{
			Id:        persona.Id,
			Name:      persona.Name,
			VoiceId:   persona.VoiceId,
			Status:    string(persona.Status),
			CreatedAt: persona.CreatedAt,
		})
	}
	return result, nil
}

func (c *personaService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreatePersonaRequest) (*dto.CreatePersonaResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	persona := &entity.Persona{
		Id:          uuid.New(),
		UserId:      userId,
		Name:        req.Name,
		Description: req.Description,
		Personality: req.Personality,
		VoiceId:     req.VoiceId,
		Skills:      req.Skills,
		Topics:      req.Topics,
		Status:      entity.PersonaStatusDraft,
		CreatedAt:   time.Now(),
	}

	if err := uow.PersonaRepository().Create(ctx, persona); err != nil {
		return nil, err
	}

	return &dto.CreatePersonaResponse{Id: persona.Id}, nil
}

func (c *personaService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowPersonaResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	persona, err := c.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	return &dto.ShowPersonaResponse{
		Id:          persona.Id,
		Name:        persona.Name,
		Description: persona.Description,
		Personality: persona.Personality,
		VoiceId:     persona.VoiceId,
		Skills:      persona.Skills,
		Topics:      persona.Topics,
		Status:      string(persona.Status),
		CreatedAt:   persona.CreatedAt,
		UpdatedAt:   persona.UpdatedAt,
	}, nil
}

func (c *personaService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdatePersonaRequest) (*dto.UpdatePersonaResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	persona, err := c.findOwned(ctx, uow, userId, req.Id)
	if err != nil {
		return nil, err
	}

	persona.Name = req.Name
	persona.Description = req.Description
	persona.Personality = req.Personality
	persona.VoiceId = req.VoiceId
	persona.Skills = req.Skills
	persona.Topics = req.Topics
	now := time.Now()
	persona.UpdatedAt = &now

	if err := uow.PersonaRepository().Update(ctx, persona); err != nil {
		return nil, err
	}

	return &dto.UpdatePersonaResponse{Id: persona.Id}, nil
}

// Delete removes the persona and every dependent row in one transaction:
// materials, appearances, emotion analyses, sessions, then the persona
// itself. A failure at any step rolls everything back.
func (c *personaService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	persona, err := c.findOwned(ctx, uow, userId, id)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MaterialRepository().DeleteAllByPersonaIdUnscoped(ctx, persona.Id); err != nil {
		return err
	}
	if err := uow.AppearanceRepository().DeleteAllByPersonaId(ctx, persona.Id); err != nil {
		return err
	}
	if err := uow.EmotionRepository().DeleteAllByPersonaId(ctx, persona.Id); err != nil {
		return err
	}
	if err := uow.SessionRepository().DeleteAllByPersonaId(ctx, persona.Id); err != nil {
		return err
	}
	if err := uow.PersonaRepository().Delete(ctx, persona.Id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	c.log.Info("persona", "persona and dependents deleted", map[string]interface{}{
		"persona_id": persona.Id.String(),
	})
	return nil
}

func (c *personaService) Deploy(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DeployPersonaResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	persona, err := c.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	if persona.Status == entity.PersonaStatusDraft {
		pending, err := uow.MaterialRepository().Count(ctx,
			specification.ByPersonaID{PersonaId: persona.Id},
			specification.Filter("status", string(entity.MaterialStatusPending)),
		)
		if err != nil {
			return nil, err
		}
		if pending > 0 {
			return nil, apperror.New(apperror.KindConflict, "persona still has unprocessed training materials")
		}
	}

	persona.Status = entity.PersonaStatusDeployed
	now := time.Now()
	persona.UpdatedAt = &now

	if err := uow.PersonaRepository().Update(ctx, persona); err != nil {
		return nil, err
	}

	return &dto.DeployPersonaResponse{
		Id:     persona.Id,
		Status: string(persona.Status),
	}, nil
}

func (c *personaService) AddMaterial(ctx context.Context, userId uuid.UUID, req *dto.AddMaterialRequest) (*dto.AddMaterialResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	persona, err := c.findOwned(ctx, uow, userId, req.PersonaId)
	if err != nil {
		return nil, err
	}

	material := &entity.TrainingMaterial{
		Id:          uuid.New(),
		PersonaId:   persona.Id,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		StoragePath: req.StoragePath,
		SizeBytes:   req.SizeBytes,
		Status:      entity.MaterialStatusPending,
		CreatedAt:   time.Now(),
	}

	if err := uow.MaterialRepository().Create(ctx, material); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(dto.ProcessMaterialMessage{
		MaterialId: material.Id,
		PersonaId:  persona.Id,
	})
	if err != nil {
		return nil, err
	}
	if err := c.publisherService.Publish(ctx, payload); err != nil {
		c.log.Error("persona", "failed to queue material for processing", map[string]interface{}{
			"material_id": material.Id.String(),
			"error":       err.Error(),
		})
	}

	return &dto.AddMaterialResponse{Id: material.Id}, nil
}

func (c *personaService) ListMaterials(ctx context.Context, userId uuid.UUID, personaId uuid.UUID) ([]*dto.MaterialResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	persona, err := c.findOwned(ctx, uow, userId, personaId)
	if err != nil {
		return nil, err
	}

	materials, err := uow.MaterialRepository().FindAll(ctx,
		specification.ByPersonaID{PersonaId: persona.Id},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.MaterialResponse, 0, len(materials))
	for _, material := range materials {
		result = append(result, &dto.MaterialResponse{
			Id:          material.Id,
			FileName:    material.FileName,
			ContentType: material.ContentType,
			SizeBytes:   material.SizeBytes,
			Status:      string(material.Status),
			CreatedAt:   material.CreatedAt,
		})
	}
	return result, nil
}

func (c *personaService) AddAppearance(ctx context.Context, userId uuid.UUID, req *dto.AddAppearanceRequest) (*dto.AddAppearanceResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	persona, err := c.findOwned(ctx, uow, userId, req.PersonaId)
	if err != nil {
		return nil, err
	}

	appearance := &entity.PersonaAppearance{
		Id:          uuid.New(),
		PersonaId:   persona.Id,
		ImagePath:   req.ImagePath,
		ContentType: req.ContentType,
		CreatedAt:   time.Now(),
	}

	if err := uow.AppearanceRepository().Create(ctx, appearance); err != nil {
		return nil, err
	}

	return &dto.AddAppearanceResponse{Id: appearance.Id}, nil
}

// AddEmotion records one analysis result against a persona, optionally tied to
// the session the footage came from.
func (c *personaService) AddEmotion(ctx context.Context, userId uuid.UUID, req *dto.AddEmotionRequest) (*dto.AddEmotionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	persona, err := c.findOwned(ctx, uow, userId, req.PersonaId)
	if err != nil {
		return nil, err
	}

	analysis := &entity.EmotionAnalysis{
		Id:         uuid.New(),
		PersonaId:  persona.Id,
		SessionId:  req.SessionId,
		Emotion:    req.Emotion,
		Confidence: req.Confidence,
		RawResult:  req.RawResult,
		CreatedAt:  time.Now(),
	}

	if err := uow.EmotionRepository().Create(ctx, analysis); err != nil {
		return nil, err
	}

	return &dto.AddEmotionResponse{Id: analysis.Id}, nil
}

func (c *personaService) ListEmotions(ctx context.Context, userId uuid.UUID, personaId uuid.UUID) ([]*dto.EmotionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	persona, err := c.findOwned(ctx, uow, userId, personaId)
	if err != nil {
		return nil, err
	}

	analyses, err := uow.EmotionRepository().FindAll(ctx,
		specification.ByPersonaID{PersonaId: persona.Id},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.EmotionResponse, 0, len(analyses))
	for _, analysis := range analyses {
		result = append(result, &dto.EmotionResponse{
			Id:         analysis.Id,
			SessionId:  analysis.SessionId,
			Emotion:    analysis.Emotion,
			Confidence: analysis.Confidence,
			CreatedAt:  analysis.CreatedAt,
		})
	}
	return result, nil
}
