package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePeer struct {
	mu         sync.Mutex
	connectErr error
	connects   int
	closes     int
	sentTexts  []string
	sentAudio  int
	onMessage  func([]byte)
}

func (p *fakePeer) Connect(context.Context, ConnectParams) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connects++
	return p.connectErr
}

func (p *fakePeer) SendText(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sentTexts = append(p.sentTexts, text)
	return nil
}

func (p *fakePeer) SendAudio([]float32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sentAudio++
	return nil
}

func (p *fakePeer) OnMessage(fn func([]byte)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onMessage = fn
}

func (p *fakePeer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closes++
	return nil
}

func (p *fakePeer) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

type fakeRecorder struct {
	mu        sync.Mutex
	createErr error
	created   []*entity.Session
	ended     []uuid.UUID
	sweeps    int
}

func (r *fakeRecorder) Create(_ context.Context, userId, personaId uuid.UUID, language string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	sess := &entity.Session{
		Id:        uuid.New(),
		PersonaId: personaId,
		UserId:    userId,
		Status:    entity.SessionStatusActive,
		Language:  language,
		StartedAt: time.Now(),
	}
	r.created = append(r.created, sess)
	return sess, nil
}

func (r *fakeRecorder) End(_ context.Context, sessionId uuid.UUID, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, sessionId)
	return nil
}

func (r *fakeRecorder) SweepActive(context.Context, uuid.UUID, time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweeps++
	return 0, nil
}

func newTestCoordinator(peer *fakePeer, recorder *fakeRecorder, sink *fakeSink) *Coordinator {
	userId := uuid.New()
	dispatcher := NewDispatcher(sink, nil, nopLogger{}, userId, "en", "en")
	return NewCoordinator(peer, recorder, dispatcher, sink, nopLogger{}, userId, uuid.New(), "en", ConnectParams{Voice: "alloy"})
}

func TestCoordinatorStart(t *testing.T) {
	t.Run("happy path reaches active", func(t *testing.T) {
		peer := &fakePeer{}
		recorder := &fakeRecorder{}
		c := newTestCoordinator(peer, recorder, &fakeSink{})

		require.NoError(t, c.Start(context.Background()))
		assert.Equal(t, StateActive, c.State())
		assert.Equal(t, 1, peer.connects)
		require.Len(t, recorder.created, 1)
		assert.Equal(t, recorder.created[0].Id, c.SessionId())
		assert.Equal(t, 1, recorder.sweeps)
	})

	t.Run("is a no-op when already active", func(t *testing.T) {
		peer := &fakePeer{}
		recorder := &fakeRecorder{}
		c := newTestCoordinator(peer, recorder, &fakeSink{})

		require.NoError(t, c.Start(context.Background()))
		require.NoError(t, c.Start(context.Background()))

		assert.Equal(t, 1, peer.connects)
		assert.Len(t, recorder.created, 1)
	})

	t.Run("connect failure releases everything and returns to idle", func(t *testing.T) {
		peer := &fakePeer{connectErr: apperror.New(apperror.KindConnection, "sdp exchange HTTP error 500")}
		recorder := &fakeRecorder{}
		c := newTestCoordinator(peer, recorder, &fakeSink{})

		err := c.Start(context.Background())
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindConnection))
		assert.Equal(t, StateIdle, c.State())
		assert.GreaterOrEqual(t, peer.closeCount(), 1)
		// The record created for the aborted call is marked ended.
		require.Len(t, recorder.created, 1)
		assert.Contains(t, recorder.ended, recorder.created[0].Id)
		assert.Equal(t, uuid.Nil, c.SessionId())
	})

	t.Run("record creation failure aborts before connecting", func(t *testing.T) {
		peer := &fakePeer{}
		recorder := &fakeRecorder{createErr: assert.AnError}
		c := newTestCoordinator(peer, recorder, &fakeSink{})

		err := c.Start(context.Background())
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindBookkeeping))
		assert.Equal(t, StateIdle, c.State())
		assert.Zero(t, peer.connects)
	})
}

func TestCoordinatorEnd(t *testing.T) {
	t.Run("marks the record ended and notifies", func(t *testing.T) {
		peer := &fakePeer{}
		recorder := &fakeRecorder{}
		sink := &fakeSink{}
		c := newTestCoordinator(peer, recorder, sink)

		require.NoError(t, c.Start(context.Background()))
		require.NoError(t, c.End(context.Background()))

		assert.Equal(t, StateEnded, c.State())
		assert.Contains(t, recorder.ended, recorder.created[0].Id)
		assert.Len(t, sink.byType(OutboundCallEnded), 1)
	})

	t.Run("is idempotent", func(t *testing.T) {
		peer := &fakePeer{}
		recorder := &fakeRecorder{}
		sink := &fakeSink{}
		c := newTestCoordinator(peer, recorder, sink)

		require.NoError(t, c.Start(context.Background()))
		require.NoError(t, c.End(context.Background()))
		require.NoError(t, c.End(context.Background()))
		require.NoError(t, c.End(context.Background()))

		assert.Len(t, recorder.ended, 1)
		assert.Len(t, sink.byType(OutboundCallEnded), 1)
	})

	t.Run("tolerates a coordinator that never started", func(t *testing.T) {
		peer := &fakePeer{}
		recorder := &fakeRecorder{}
		c := newTestCoordinator(peer, recorder, &fakeSink{})

		require.NoError(t, c.End(context.Background()))
		assert.Equal(t, StateEnded, c.State())
		assert.Empty(t, recorder.ended)
	})
}

func TestCoordinatorSend(t *testing.T) {
	t.Run("rejects sends before the call is active", func(t *testing.T) {
		c := newTestCoordinator(&fakePeer{}, &fakeRecorder{}, &fakeSink{})

		assert.ErrorIs(t, c.SendText("hello"), ErrDataChannelNotReady)
		assert.ErrorIs(t, c.SendAudio([]float32{0.1}), ErrDataChannelNotReady)
	})

	t.Run("forwards sends while active", func(t *testing.T) {
		peer := &fakePeer{}
		c := newTestCoordinator(peer, &fakeRecorder{}, &fakeSink{})

		require.NoError(t, c.Start(context.Background()))
		require.NoError(t, c.SendText("hello"))
		require.NoError(t, c.SendAudio([]float32{0.1}))

		assert.Equal(t, []string{"hello"}, peer.sentTexts)
		assert.Equal(t, 1, peer.sentAudio)
	})

	t.Run("rejects sends after the call ended", func(t *testing.T) {
		peer := &fakePeer{}
		c := newTestCoordinator(peer, &fakeRecorder{}, &fakeSink{})

		require.NoError(t, c.Start(context.Background()))
		require.NoError(t, c.End(context.Background()))

		assert.ErrorIs(t, c.SendText("hello"), ErrDataChannelNotReady)
	})
}
