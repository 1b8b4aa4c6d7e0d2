package service

import (
	"context"
	"encoding/json"
	"testing"

	"neuraconnect-be/internal/dto"
	"neuraconnect-be/internal/entity"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsumer(uow *fakeUow) *consumerService {
	return &consumerService{
		topicName:  "material.process",
		uowFactory: &fakeUowFactory{uow: uow},
		log:        nopLogger{},
	}
}

func materialMessage(t *testing.T, materialId, personaId uuid.UUID) *message.Message {
	payload, err := json.Marshal(dto.ProcessMaterialMessage{
		MaterialId: materialId,
		PersonaId:  personaId,
	})
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func isAcked(msg *message.Message) bool {
	select {
	case <-msg.Acked():
		return true
	default:
		return false
	}
}

func isNacked(msg *message.Message) bool {
	select {
	case <-msg.Nacked():
		return true
	default:
		return false
	}
}

func TestConsumerProcessMessage(t *testing.T) {
	t.Run("marks the material processed and promotes the drained draft", func(t *testing.T) {
		persona := &entity.Persona{Id: uuid.New(), Status: entity.PersonaStatusDraft}
		material := &entity.TrainingMaterial{
			Id:        uuid.New(),
			PersonaId: persona.Id,
			Status:    entity.MaterialStatusPending,
		}
		uow := &fakeUow{
			personas:  &fakePersonaRepo{findOneResult: persona},
			materials: &fakeMaterialRepo{findOneResult: material},
		}
		cs := newTestConsumer(uow)

		msg := materialMessage(t, material.Id, persona.Id)
		cs.processMessage(context.Background(), msg)

		assert.True(t, isAcked(msg))
		require.Len(t, uow.materials.updated, 1)
		assert.Equal(t, entity.MaterialStatusProcessed, uow.materials.updated[0].Status)
		require.Len(t, uow.personas.updated, 1)
		assert.Equal(t, entity.PersonaStatusReady, uow.personas.updated[0].Status)
	})

	t.Run("leaves the persona a draft while materials are still pending", func(t *testing.T) {
		persona := &entity.Persona{Id: uuid.New(), Status: entity.PersonaStatusDraft}
		material := &entity.TrainingMaterial{Id: uuid.New(), PersonaId: persona.Id}
		uow := &fakeUow{
			personas:  &fakePersonaRepo{findOneResult: persona},
			materials: &fakeMaterialRepo{findOneResult: material, pendingCount: 1},
		}
		cs := newTestConsumer(uow)

		msg := materialMessage(t, material.Id, persona.Id)
		cs.processMessage(context.Background(), msg)

		assert.True(t, isAcked(msg))
		assert.Empty(t, uow.personas.updated)
	})

	t.Run("does not touch a persona that is no longer a draft", func(t *testing.T) {
		persona := &entity.Persona{Id: uuid.New(), Status: entity.PersonaStatusDeployed}
		material := &entity.TrainingMaterial{Id: uuid.New(), PersonaId: persona.Id}
		uow := &fakeUow{
			personas:  &fakePersonaRepo{findOneResult: persona},
			materials: &fakeMaterialRepo{findOneResult: material},
		}
		cs := newTestConsumer(uow)

		cs.processMessage(context.Background(), materialMessage(t, material.Id, persona.Id))
		assert.Empty(t, uow.personas.updated)
	})

	t.Run("acks malformed payloads instead of retrying them forever", func(t *testing.T) {
		uow := &fakeUow{materials: &fakeMaterialRepo{}}
		cs := newTestConsumer(uow)

		msg := message.NewMessage(watermill.NewUUID(), []byte("not json"))
		cs.processMessage(context.Background(), msg)

		assert.True(t, isAcked(msg))
		assert.False(t, isNacked(msg))
		assert.Empty(t, uow.materials.updated)
	})

	t.Run("acks messages for materials that were deleted in the meantime", func(t *testing.T) {
		uow := &fakeUow{materials: &fakeMaterialRepo{}}
		cs := newTestConsumer(uow)

		msg := materialMessage(t, uuid.New(), uuid.New())
		cs.processMessage(context.Background(), msg)

		assert.True(t, isAcked(msg))
	})
}
