package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"neuraconnect-be/internal/dto"
	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/pkg/apperror"
	"neuraconnect-be/internal/pkg/logger"
	"neuraconnect-be/internal/realtime"
	"neuraconnect-be/internal/repository/memory"
	"neuraconnect-be/internal/repository/specification"
	"neuraconnect-be/internal/repository/unitofwork"
	"neuraconnect-be/pkg/events"
	pktNats "neuraconnect-be/pkg/nats"
	"neuraconnect-be/pkg/translate"

	"github.com/google/uuid"
)

type ISessionService interface {
	StartCall(ctx context.Context, userId uuid.UUID, req *dto.StartCallRequest) (*dto.StartCallResponse, error)
	EndCall(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.EndCallResponse, error)
	History(ctx context.Context, userId uuid.UUID) ([]*dto.SessionRecordResponse, error)
	HandleClientFrame(userId uuid.UUID, data []byte)
	HandleUserSignedOut(ctx context.Context, event events.Event) error
}

type sessionService struct {
	uowFactory      unitofwork.RepositoryFactory
	registry        *memory.CallRegistry
	sink            realtime.Sink
	translator      translate.Translator
	eventPublisher  *pktNats.Publisher
	log             logger.ILogger
	defaultLanguage string
	newPeer         func() realtime.Peer
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	registry *memory.CallRegistry,
	sink realtime.Sink,
	translator translate.Translator,
	signaler realtime.Signaler,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	defaultLanguage string,
	maxAttempts int,
) ISessionService {
	return &sessionService{
		uowFactory:      uowFactory,
		registry:        registry,
		sink:            sink,
		translator:      translator,
		eventPublisher:  eventPublisher,
		log:             log,
		defaultLanguage: defaultLanguage,
		newPeer: func() realtime.Peer {
			return realtime.NewWebRTCManager(signaler, log, maxAttempts)
		},
	}
}

// StartCall loads the persona, builds one coordinator for the call, and runs
// its start sequence. The live call goes into the registry only after the
// connection is up.
func (s *sessionService) StartCall(ctx context.Context, userId uuid.UUID, req *dto.StartCallRequest) (*dto.StartCallResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	persona, err := uow.PersonaRepository().FindOne(ctx,
		specification.ByID{ID: req.PersonaId},
		specification.OwnedBy{UserId: userId},
	)
	if err != nil {
		return nil, err
	}
	if persona == nil {
		return nil, apperror.New(apperror.KindNotFound, "persona not found")
	}
	if persona.Status != entity.PersonaStatusDeployed {
		return nil, apperror.New(apperror.KindConflict, "persona is not deployed")
	}

	language := req.Language
	if language == "" {
		language = s.defaultLanguage
	}

	// Tear down any call this instance still tracks for the user. The DB-side
	// sweep happens transactionally when the new record is created.
	for _, stale := range s.registry.FindByUser(userId) {
		if err := stale.Shutdown(ctx); err != nil {
			s.log.Warn("session", "failed to shut down stale call", map[string]interface{}{
				"session_id": stale.SessionId().String(),
				"error":      err.Error(),
			})
		}
		s.registry.Delete(stale.SessionId())
	}

	dispatcher := realtime.NewDispatcher(s.sink, s.translator, s.log, userId, language, s.defaultLanguage)
	coordinator := realtime.NewCoordinator(
		s.newPeer(),
		s,
		dispatcher,
		s.sink,
		s.log,
		userId,
		persona.Id,
		language,
		realtime.ConnectParams{
			Voice:        persona.VoiceId,
			Instructions: buildInstructions(persona),
		},
	)

	if err := coordinator.Start(ctx); err != nil {
		return nil, err
	}

	s.registry.Save(coordinator)

	// The coordinator holds the record it created; no re-read that could fail
	// after the call is already live.
	sess := coordinator.Session()
	return &dto.StartCallResponse{
		SessionId:      sess.Id,
		ConversationId: sess.ConversationId,
		StartedAt:      sess.StartedAt,
	}, nil
}

func (s *sessionService) EndCall(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.EndCallResponse, error) {
	if call, ok := s.registry.Get(sessionId); ok {
		if call.UserId() != userId {
			return nil, apperror.New(apperror.KindPermission, "session belongs to another user")
		}
		if err := call.Shutdown(ctx); err != nil {
			s.log.Warn("session", "call shutdown reported error", map[string]interface{}{
				"session_id": sessionId.String(),
				"error":      err.Error(),
			})
		}
		s.registry.Delete(sessionId)
	} else {
		// Not live on this instance; check ownership on the record itself
		// before ending it.
		uow := s.uowFactory.NewUnitOfWork(ctx)
		sess, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
		if err != nil {
			return nil, err
		}
		if sess == nil {
			return nil, apperror.New(apperror.KindNotFound, "session not found")
		}
		if sess.UserId != userId {
			return nil, apperror.New(apperror.KindPermission, "session belongs to another user")
		}
		if err := s.End(ctx, sessionId, time.Now()); err != nil {
			return nil, apperror.Wrap(apperror.KindBookkeeping, "failed to end session record", err)
		}
	}

	s.publishSessionEnded(ctx, sessionId, userId, "user_request")

	now := time.Now()
	return &dto.EndCallResponse{
		SessionId: sessionId,
		EndedAt:   now,
	}, nil
}

func (s *sessionService) History(ctx context.Context, userId uuid.UUID) ([]*dto.SessionRecordResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.FilterBy{Field: "user_id", Value: userId},
		specification.OrderBy{Field: "started_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.SessionRecordResponse, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, &dto.SessionRecordResponse{
			Id:             sess.Id,
			ConversationId: sess.ConversationId,
			PersonaId:      sess.PersonaId,
			Status:         string(sess.Status),
			Language:       sess.Language,
			StartedAt:      sess.StartedAt,
			EndedAt:        sess.EndedAt,
		})
	}
	return result, nil
}

// clientFrame is what the browser sends over the call socket.
type clientFrame struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Samples []float32 `json:"samples"`
}

// HandleClientFrame routes browser frames into the user's live call. Frames
// for users with no live call are dropped.
func (s *sessionService) HandleClientFrame(userId uuid.UUID, data []byte) {
	var frame clientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.log.Warn("session", "dropping malformed client frame", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return
	}

	calls := s.registry.FindByUser(userId)
	if len(calls) == 0 {
		return
	}
	call, ok := calls[0].(*realtime.Coordinator)
	if !ok {
		return
	}

	var err error
	switch frame.Type {
	case "text":
		err = call.SendText(frame.Text)
	case "audio":
		err = call.SendAudio(frame.Samples)
	default:
		return
	}

	if err != nil {
		s.log.Warn("session", "client frame send failed", map[string]interface{}{
			"user_id": userId.String(),
			"type":    frame.Type,
			"error":   err.Error(),
		})
		s.sink.Send(userId, realtime.OutboundEvent{
			Type: realtime.OutboundError,
			Data: map[string]string{"message": "message could not be delivered to the persona"},
		})
	}
}

// HandleUserSignedOut ends every call the signed-out user has, live or stale.
// Wired to the NATS user.signed_out subject.
func (s *sessionService) HandleUserSignedOut(ctx context.Context, event events.Event) error {
	raw, ok := event.Payload()["user_id"].(string)
	if !ok {
		s.log.Warn("session", "sign-out event without user_id", nil)
		return nil
	}
	userId, err := uuid.Parse(raw)
	if err != nil {
		s.log.Warn("session", "sign-out event with invalid user_id", map[string]interface{}{
			"user_id": raw,
		})
		return nil
	}

	for _, call := range s.registry.FindByUser(userId) {
		sessionId := call.SessionId()
		if err := call.Shutdown(ctx); err != nil {
			s.log.Warn("session", "failed to shut down call on sign-out", map[string]interface{}{
				"session_id": sessionId.String(),
				"error":      err.Error(),
			})
		}
		s.registry.Delete(sessionId)
		s.publishSessionEnded(ctx, sessionId, userId, "sign_out")
	}

	if _, err := s.SweepActive(ctx, userId, time.Now()); err != nil {
		return err
	}
	return nil
}

func (s *sessionService) publishSessionEnded(ctx context.Context, sessionId, userId uuid.UUID, reason string) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewSessionEnded(sessionId, userId, reason)); err != nil {
		s.log.Warn("session", "failed to publish session ended event", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
	}
}

// Recorder implementation. The coordinator drives these.

// Create ends any active sessions and inserts the new record in a single
// transaction, so two rapid starts cannot leave two active rows.
func (s *sessionService) Create(ctx context.Context, userId, personaId uuid.UUID, language string) (*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if _, err := uow.SessionRepository().EndAllActiveByUserId(ctx, userId, time.Now()); err != nil {
		return nil, err
	}

	sess := &entity.Session{
		Id:             uuid.New(),
		ConversationId: fmt.Sprintf("conv_%s", strings.ReplaceAll(uuid.New().String(), "-", "")),
		PersonaId:      personaId,
		UserId:         userId,
		Status:         entity.SessionStatusActive,
		Language:       language,
		StartedAt:      time.Now(),
	}
	if err := uow.SessionRepository().Create(ctx, sess); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *sessionService) End(ctx context.Context, sessionId uuid.UUID, endedAt time.Time) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if sess == nil {
		return apperror.New(apperror.KindNotFound, "session not found")
	}
	if sess.Status == entity.SessionStatusEnded {
		return nil
	}

	sess.Status = entity.SessionStatusEnded
	sess.EndedAt = &endedAt
	return uow.SessionRepository().Update(ctx, sess)
}

func (s *sessionService) SweepActive(ctx context.Context, userId uuid.UUID, endedAt time.Time) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SessionRepository().EndAllActiveByUserId(ctx, userId, endedAt)
}

// buildInstructions assembles the system prompt the realtime endpoint speaks
// from, out of the persona's authored profile.
func buildInstructions(persona *entity.Persona) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.", persona.Name)
	if persona.Personality != "" {
		fmt.Fprintf(&b, " Personality: %s.", persona.Personality)
	}
	if len(persona.Skills) > 0 {
		fmt.Fprintf(&b, " You are skilled in: %s.", strings.Join(persona.Skills, ", "))
	}
	if len(persona.Topics) > 0 {
		fmt.Fprintf(&b, " You enjoy talking about: %s.", strings.Join(persona.Topics, ", "))
	}
	return b.String()
}
