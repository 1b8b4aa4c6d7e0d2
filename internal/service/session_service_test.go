package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"neuraconnect-be/internal/dto"
	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/pkg/apperror"
	"neuraconnect-be/internal/realtime"
	"neuraconnect-be/internal/repository/contract"
	"neuraconnect-be/internal/repository/memory"
	"neuraconnect-be/internal/repository/specification"
	"neuraconnect-be/internal/repository/unitofwork"
	"neuraconnect-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type nopSink struct{}

func (nopSink) Send(uuid.UUID, realtime.OutboundEvent) {}

type fakeSessionRepo struct {
	mu            sync.Mutex
	findOneResult *entity.Session
	created       []*entity.Session
	updated       []*entity.Session
	sweptUsers    []uuid.UUID
	sweepCount    int64
}

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, session)
	return nil
}

func (r *fakeSessionRepo) Update(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, session)
	return nil
}

func (r *fakeSessionRepo) FindOne(context.Context, ...specification.Specification) (*entity.Session, error) {
	return r.findOneResult, nil
}

func (r *fakeSessionRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.Session, error) {
	return nil, nil
}

func (r *fakeSessionRepo) EndAllActiveByUserId(_ context.Context, userId uuid.UUID, _ time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweptUsers = append(r.sweptUsers, userId)
	return r.sweepCount, nil
}

func (r *fakeSessionRepo) DeleteAllByPersonaId(context.Context, uuid.UUID) error {
	return nil
}

type fakeUow struct {
	sessions    *fakeSessionRepo
	users       *fakeUserRepo
	personas    *fakePersonaRepo
	materials   *fakeMaterialRepo
	appearances *fakeAppearanceRepo
	emotions    *fakeEmotionRepo
	begins      int
	commits     int
	rollbacks   int
}

func (u *fakeUow) Begin(context.Context) error { u.begins++; return nil }
func (u *fakeUow) Commit() error               { u.commits++; return nil }
func (u *fakeUow) Rollback() error             { u.rollbacks++; return nil }

func (u *fakeUow) UserRepository() contract.UserRepository             { return u.users }
func (u *fakeUow) PersonaRepository() contract.PersonaRepository       { return u.personas }
func (u *fakeUow) SessionRepository() contract.SessionRepository       { return u.sessions }
func (u *fakeUow) MaterialRepository() contract.MaterialRepository     { return u.materials }
func (u *fakeUow) AppearanceRepository() contract.AppearanceRepository { return u.appearances }
func (u *fakeUow) EmotionRepository() contract.EmotionRepository       { return u.emotions }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type stubLiveCall struct {
	sessionId uuid.UUID
	userId    uuid.UUID
	shutdowns int
}

func (c *stubLiveCall) SessionId() uuid.UUID { return c.sessionId }
func (c *stubLiveCall) UserId() uuid.UUID    { return c.userId }
func (c *stubLiveCall) Shutdown(context.Context) error {
	c.shutdowns++
	return nil
}

type quietPeer struct{}

func (quietPeer) Connect(context.Context, realtime.ConnectParams) error { return nil }
func (quietPeer) SendText(string) error                                 { return nil }
func (quietPeer) SendAudio([]float32) error                             { return nil }
func (quietPeer) OnMessage(func([]byte))                                {}
func (quietPeer) Close() error                                          { return nil }

func newTestSessionService(repo *fakeSessionRepo, registry *memory.CallRegistry) *sessionService {
	return &sessionService{
		uowFactory:      &fakeUowFactory{uow: &fakeUow{sessions: repo}},
		registry:        registry,
		sink:            nopSink{},
		log:             nopLogger{},
		defaultLanguage: "en",
		newPeer:         func() realtime.Peer { return quietPeer{} },
	}
}

func TestStartCall(t *testing.T) {
	userId := uuid.New()
	persona := &entity.Persona{
		Id:     uuid.New(),
		UserId: userId,
		Name:   "Ava",
		Status: entity.PersonaStatusDeployed,
	}

	t.Run("responds with the record the coordinator created", func(t *testing.T) {
		repo := &fakeSessionRepo{}
		registry := memory.NewCallRegistry()
		svc := newTestSessionService(repo, registry)
		svc.uowFactory.(*fakeUowFactory).uow.personas = &fakePersonaRepo{findOneResult: persona}

		resp, err := svc.StartCall(context.Background(), userId, &dto.StartCallRequest{PersonaId: persona.Id})
		require.NoError(t, err)

		require.Len(t, repo.created, 1)
		created := repo.created[0]
		assert.Equal(t, created.Id, resp.SessionId)
		assert.Equal(t, created.ConversationId, resp.ConversationId)
		assert.Equal(t, created.StartedAt, resp.StartedAt)

		// The live call is registered under the same session id.
		call, found := registry.Get(created.Id)
		require.True(t, found)
		assert.Equal(t, userId, call.UserId())
	})

	t.Run("rejects personas that are not deployed", func(t *testing.T) {
		draft := &entity.Persona{Id: uuid.New(), UserId: userId, Status: entity.PersonaStatusDraft}
		repo := &fakeSessionRepo{}
		svc := newTestSessionService(repo, memory.NewCallRegistry())
		svc.uowFactory.(*fakeUowFactory).uow.personas = &fakePersonaRepo{findOneResult: draft}

		_, err := svc.StartCall(context.Background(), userId, &dto.StartCallRequest{PersonaId: draft.Id})
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindConflict))
		assert.Empty(t, repo.created)
	})
}

func TestEndCallOwnership(t *testing.T) {
	owner := uuid.New()
	attacker := uuid.New()

	t.Run("a live call of another user cannot be ended", func(t *testing.T) {
		registry := memory.NewCallRegistry()
		call := &stubLiveCall{sessionId: uuid.New(), userId: owner}
		registry.Save(call)
		svc := newTestSessionService(&fakeSessionRepo{}, registry)

		_, err := svc.EndCall(context.Background(), attacker, call.sessionId)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindPermission))
		assert.Zero(t, call.shutdowns)
	})

	t.Run("a recorded session of another user cannot be ended", func(t *testing.T) {
		victim := &entity.Session{Id: uuid.New(), UserId: owner, Status: entity.SessionStatusActive}
		repo := &fakeSessionRepo{findOneResult: victim}
		svc := newTestSessionService(repo, memory.NewCallRegistry())

		_, err := svc.EndCall(context.Background(), attacker, victim.Id)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindPermission))
		assert.Empty(t, repo.updated)
	})

	t.Run("the owner ends a session that is not live on this instance", func(t *testing.T) {
		sess := &entity.Session{Id: uuid.New(), UserId: owner, Status: entity.SessionStatusActive}
		repo := &fakeSessionRepo{findOneResult: sess}
		svc := newTestSessionService(repo, memory.NewCallRegistry())

		resp, err := svc.EndCall(context.Background(), owner, sess.Id)
		require.NoError(t, err)
		assert.Equal(t, sess.Id, resp.SessionId)
		require.Len(t, repo.updated, 1)
		assert.Equal(t, entity.SessionStatusEnded, repo.updated[0].Status)
	})

	t.Run("an unknown session is not found", func(t *testing.T) {
		svc := newTestSessionService(&fakeSessionRepo{}, memory.NewCallRegistry())

		_, err := svc.EndCall(context.Background(), owner, uuid.New())
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})
}

func TestHandleUserSignedOut(t *testing.T) {
	t.Run("shuts down every live call and sweeps the records", func(t *testing.T) {
		repo := &fakeSessionRepo{}
		registry := memory.NewCallRegistry()
		userId := uuid.New()

		mine := &stubLiveCall{sessionId: uuid.New(), userId: userId}
		other := &stubLiveCall{sessionId: uuid.New(), userId: uuid.New()}
		registry.Save(mine)
		registry.Save(other)

		svc := newTestSessionService(repo, registry)

		err := svc.HandleUserSignedOut(context.Background(), events.NewUserSignedOut(userId))
		require.NoError(t, err)

		assert.Equal(t, 1, mine.shutdowns)
		assert.Zero(t, other.shutdowns)

		_, found := registry.Get(mine.sessionId)
		assert.False(t, found)
		_, found = registry.Get(other.sessionId)
		assert.True(t, found)

		require.Len(t, repo.sweptUsers, 1)
		assert.Equal(t, userId, repo.sweptUsers[0])
	})

	t.Run("sweeps records even when no call is live on this instance", func(t *testing.T) {
		repo := &fakeSessionRepo{sweepCount: 2}
		svc := newTestSessionService(repo, memory.NewCallRegistry())

		err := svc.HandleUserSignedOut(context.Background(), events.NewUserSignedOut(uuid.New()))
		require.NoError(t, err)
		assert.Len(t, repo.sweptUsers, 1)
	})

	t.Run("ignores events without a usable user id", func(t *testing.T) {
		repo := &fakeSessionRepo{}
		svc := newTestSessionService(repo, memory.NewCallRegistry())

		err := svc.HandleUserSignedOut(context.Background(), events.BaseEvent{
			Type: events.TypeUserSignedOut,
			Data: map[string]interface{}{"user_id": "not-a-uuid"},
		})
		require.NoError(t, err)
		assert.Empty(t, repo.sweptUsers)

		err = svc.HandleUserSignedOut(context.Background(), events.BaseEvent{
			Type: events.TypeUserSignedOut,
			Data: map[string]interface{}{},
		})
		require.NoError(t, err)
		assert.Empty(t, repo.sweptUsers)
	})
}

func TestHandleClientFrame(t *testing.T) {
	t.Run("malformed frames are dropped without panicking", func(t *testing.T) {
		svc := newTestSessionService(&fakeSessionRepo{}, memory.NewCallRegistry())

		assert.NotPanics(t, func() {
			svc.HandleClientFrame(uuid.New(), []byte(`not json`))
			svc.HandleClientFrame(uuid.New(), nil)
		})
	})

	t.Run("frames for users without a live call are dropped", func(t *testing.T) {
		svc := newTestSessionService(&fakeSessionRepo{}, memory.NewCallRegistry())

		assert.NotPanics(t, func() {
			svc.HandleClientFrame(uuid.New(), []byte(`{"type":"text","text":"hello"}`))
		})
	})
}

func TestRecorderCreate(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := newTestSessionService(repo, memory.NewCallRegistry())
	userId := uuid.New()
	personaId := uuid.New()

	sess, err := svc.Create(context.Background(), userId, personaId, "es")
	require.NoError(t, err)

	// The sweep and the insert share one transaction.
	uow := svc.uowFactory.(*fakeUowFactory).uow
	assert.Equal(t, 1, uow.begins)
	assert.Equal(t, 1, uow.commits)
	require.Len(t, repo.sweptUsers, 1)
	assert.Equal(t, userId, repo.sweptUsers[0])

	require.Len(t, repo.created, 1)
	assert.Equal(t, sess, repo.created[0])
	assert.Equal(t, entity.SessionStatusActive, sess.Status)
	assert.Equal(t, personaId, sess.PersonaId)
	assert.Equal(t, "es", sess.Language)
	assert.True(t, len(sess.ConversationId) > len("conv_"))
	assert.Contains(t, sess.ConversationId, "conv_")
}

func TestRecorderEnd(t *testing.T) {
	t.Run("marks an active session ended", func(t *testing.T) {
		active := &entity.Session{Id: uuid.New(), Status: entity.SessionStatusActive}
		repo := &fakeSessionRepo{findOneResult: active}
		svc := newTestSessionService(repo, memory.NewCallRegistry())

		endedAt := time.Now()
		require.NoError(t, svc.End(context.Background(), active.Id, endedAt))

		require.Len(t, repo.updated, 1)
		assert.Equal(t, entity.SessionStatusEnded, repo.updated[0].Status)
		require.NotNil(t, repo.updated[0].EndedAt)
		assert.Equal(t, endedAt, *repo.updated[0].EndedAt)
	})

	t.Run("already ended sessions are left alone", func(t *testing.T) {
		ended := &entity.Session{Id: uuid.New(), Status: entity.SessionStatusEnded}
		repo := &fakeSessionRepo{findOneResult: ended}
		svc := newTestSessionService(repo, memory.NewCallRegistry())

		require.NoError(t, svc.End(context.Background(), ended.Id, time.Now()))
		assert.Empty(t, repo.updated)
	})

	t.Run("missing sessions are reported", func(t *testing.T) {
		repo := &fakeSessionRepo{}
		svc := newTestSessionService(repo, memory.NewCallRegistry())

		err := svc.End(context.Background(), uuid.New(), time.Now())
		assert.Error(t, err)
	})
}

func TestBuildInstructions(t *testing.T) {
	persona := &entity.Persona{
		Name:        "Ava",
		Personality: "warm and curious",
		Skills:      []string{"history", "music"},
		Topics:      []string{"travel"},
	}

	got := buildInstructions(persona)
	assert.Contains(t, got, "You are Ava.")
	assert.Contains(t, got, "warm and curious")
	assert.Contains(t, got, "history, music")
	assert.Contains(t, got, "travel")

	minimal := buildInstructions(&entity.Persona{Name: "Bo"})
	assert.Equal(t, "You are Bo.", minimal)
}
