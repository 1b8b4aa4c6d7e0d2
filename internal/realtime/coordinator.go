package realtime

import (
	"context"
	"sync"
	"time"

	"neuraconnect-be/internal/entity"
	"neuraconnect-be/internal/pkg/apperror"
	"neuraconnect-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// State is the coordinator lifecycle: idle, initializing, active, ended.
type State string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateActive       State = "active"
	StateEnded        State = "ended"
)

// Recorder is the session bookkeeping boundary. The session service
// implements it on top of the unit of work.
type Recorder interface {
	Create(ctx context.Context, userId, personaId uuid.UUID, language string) (*entity.Session, error)
	End(ctx context.Context, sessionId uuid.UUID, endedAt time.Time) error
	SweepActive(ctx context.Context, userId uuid.UUID, endedAt time.Time) (int64, error)
}

// Coordinator sequences one call from media setup through teardown. One
// instance per call; never reused.
type Coordinator struct {
	peer       Peer
	recorder   Recorder
	dispatcher *Dispatcher
	sink       Sink
	log        logger.ILogger

	userId    uuid.UUID
	personaId uuid.UUID
	language  string
	params    ConnectParams

	mu    sync.Mutex
	state State
	sess  *entity.Session
}

func NewCoordinator(peer Peer, recorder Recorder, dispatcher *Dispatcher, sink Sink, log logger.ILogger, userId, personaId uuid.UUID, language string, params ConnectParams) *Coordinator {
	return &Coordinator{
		peer:       peer,
		recorder:   recorder,
		dispatcher: dispatcher,
		sink:       sink,
		log:        log,
		userId:     userId,
		personaId:  personaId,
		language:   language,
		params:     params,
		state:      StateIdle,
	}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionId is zero until Start has created the record.
func (c *Coordinator) SessionId() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return uuid.Nil
	}
	return c.sess.Id
}

// Session returns the record Start created, nil before that.
func (c *Coordinator) Session() *entity.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

func (c *Coordinator) UserId() uuid.UUID {
	return c.userId
}

// Start sweeps stale sessions, creates the session record, and connects the
// peer, strictly in that order. Any failure runs full cleanup, returns the
// coordinator to idle, and surfaces the error. Calling Start while already
// initializing or active is a no-op.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return nil
	}
	c.state = StateInitializing
	c.mu.Unlock()

	if _, err := c.recorder.SweepActive(ctx, c.userId, time.Now()); err != nil {
		// Best effort. A failed sweep must not block the new call.
		c.log.Warn("coordinator", "stale session sweep failed", map[string]interface{}{
			"user_id": c.userId.String(),
			"error":   err.Error(),
		})
	}

	sess, err := c.recorder.Create(ctx, c.userId, c.personaId, c.language)
	if err != nil {
		c.failStart(ctx)
		return apperror.Wrap(apperror.KindBookkeeping, "failed to create session record", err)
	}

	c.mu.Lock()
	c.sess = sess
	c.mu.Unlock()

	c.peer.OnMessage(c.dispatcher.HandleRaw)

	if err := c.peer.Connect(ctx, c.params); err != nil {
		c.failStart(ctx)
		return err
	}

	c.mu.Lock()
	c.state = StateActive
	c.mu.Unlock()

	c.log.Info("coordinator", "call started", map[string]interface{}{
		"session_id": sess.Id.String(),
		"persona_id": c.personaId.String(),
	})
	return nil
}

// failStart releases everything a partial Start acquired and returns the
// coordinator to idle so the caller can retry from scratch.
func (c *Coordinator) failStart(ctx context.Context) {
	if err := c.peer.Close(); err != nil {
		c.log.Warn("coordinator", "peer close during failed start", map[string]interface{}{
			"error": err.Error(),
		})
	}

	c.mu.Lock()
	sess := c.sess
	c.sess = nil
	c.state = StateIdle
	c.mu.Unlock()

	if sess != nil {
		if err := c.recorder.End(ctx, sess.Id, time.Now()); err != nil {
			c.log.Warn("coordinator", "failed to end session record after aborted start", map[string]interface{}{
				"session_id": sess.Id.String(),
				"error":      err.Error(),
			})
		}
	}
}

// End releases the connection first and does bookkeeping second. Bookkeeping
// failures are logged and relayed as a notification but never block resource
// release. Safe to call repeatedly or on a coordinator that never started.
func (c *Coordinator) End(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateEnded {
		c.mu.Unlock()
		return nil
	}
	c.state = StateEnded
	sess := c.sess
	c.mu.Unlock()

	if err := c.peer.Close(); err != nil {
		c.log.Warn("coordinator", "peer close failed during end", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if sess != nil {
		if err := c.recorder.End(ctx, sess.Id, time.Now()); err != nil {
			c.log.Error("coordinator", "failed to mark session ended", map[string]interface{}{
				"session_id": sess.Id.String(),
				"error":      err.Error(),
			})
			c.sink.Send(c.userId, OutboundEvent{
				Type: OutboundNotification,
				Data: map[string]string{"message": "call ended, but saving the call record failed"},
			})
		}
	}

	if _, err := c.recorder.SweepActive(ctx, c.userId, time.Now()); err != nil {
		c.log.Warn("coordinator", "stale session sweep failed during end", map[string]interface{}{
			"user_id": c.userId.String(),
			"error":   err.Error(),
		})
	}

	c.sink.Send(c.userId, OutboundEvent{Type: OutboundCallEnded})
	return nil
}

// Shutdown satisfies the live-call registry handle.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	return c.End(ctx)
}

// SendText forwards a typed message into the conversation.
func (c *Coordinator) SendText(text string) error {
	if c.State() != StateActive {
		return ErrDataChannelNotReady
	}
	return c.peer.SendText(text)
}

// SendAudio forwards one frame of microphone samples.
func (c *Coordinator) SendAudio(samples []float32) error {
	if c.State() != StateActive {
		return ErrDataChannelNotReady
	}
	return c.peer.SendAudio(samples)
}
