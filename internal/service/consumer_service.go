package service

import (
	"context"
	"encoding/json"
	"time"

	"neuraconnect-be/internal/dto"
	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/pkg/logger"
	"neuraconnect-be/internal/repository/specification"
	"neuraconnect-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the material-processing topic: each message marks
// one uploaded training material processed and, when every material of a
// draft persona is processed, promotes the persona to ready.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		log:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ProcessMaterialMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "failed to unmarshal material message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	material, err := uow.MaterialRepository().FindOne(ctx, specification.ByID{ID: payload.MaterialId})
	if err != nil {
		cs.log.Error("consumer", "failed to load material", map[string]interface{}{
			"material_id": payload.MaterialId.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}
	if material == nil {
		// Deleted before processing ran, nothing left to do.
		msg.Ack()
		return
	}

	material.Status = entity.MaterialStatusProcessed
	now := time.Now()
	material.UpdatedAt = &now
	if err := uow.MaterialRepository().Update(ctx, material); err != nil {
		cs.log.Error("consumer", "failed to mark material processed", map[string]interface{}{
			"material_id": payload.MaterialId.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	if err := cs.maybePromotePersona(ctx, uow, payload); err != nil {
		cs.log.Warn("consumer", "persona promotion check failed", map[string]interface{}{
			"persona_id": payload.PersonaId.String(),
			"error":      err.Error(),
		})
	}

	msg.Ack()
}

func (cs *consumerService) maybePromotePersona(ctx context.Context, uow unitofwork.UnitOfWork, payload dto.ProcessMaterialMessage) error {
	pending, err := uow.MaterialRepository().Count(ctx,
		specification.ByPersonaID{PersonaId: payload.PersonaId},
		specification.Filter("status", string(entity.MaterialStatusPending)),
	)
	if err != nil {
		return err
	}
	if pending > 0 {
		return nil
	}

	persona, err := uow.PersonaRepository().FindOne(ctx, specification.ByID{ID: payload.PersonaId})
	if err != nil || persona == nil {
		return err
	}
	if persona.Status != entity.PersonaStatusDraft {
		return nil
	}

	persona.Status = entity.PersonaStatusReady
	if err := uow.PersonaRepository().Update(ctx, persona); err != nil {
		return err
	}

	cs.log.Info("consumer", "persona promoted to ready", map[string]interface{}{
		"persona_id": persona.Id.String(),
	})
	return nil
}
