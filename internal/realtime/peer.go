package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"neuraconnect-be/internal/pkg/apperror"
	"neuraconnect-be/internal/pkg/logger"

	"github.com/pion/webrtc/v4"
)

// ErrDataChannelNotReady is returned when a send is attempted before the data
// channel reaches the open state. Messages are dropped, not queued.
var ErrDataChannelNotReady = apperror.New(apperror.KindNotReady, "data channel is not open")

// ConnectParams carries the persona-derived slice of the session request.
type ConnectParams struct {
	Voice        string
	Instructions string
}

// Peer is one call's connection to the realtime endpoint. Exactly one peer
// connection and one ordered data channel exist per call; neither is shared.
type Peer interface {
	Connect(ctx context.Context, params ConnectParams) error
	SendText(text string) error
	SendAudio(samples []float32) error
	OnMessage(fn func([]byte))
	Close() error
}

// WebRTCManager is the pion-backed Peer implementation.
type WebRTCManager struct {
	api         Signaler
	log         logger.ILogger
	maxAttempts int
	backoffBase time.Duration

	mu        sync.Mutex
	pc        *webrtc.PeerConnection
	dc        *webrtc.DataChannel
	dcOpen    bool
	closed    bool
	onMessage func([]byte)
	onTrack   func(*webrtc.TrackRemote, *webrtc.RTPReceiver)
}

func NewWebRTCManager(api Signaler, log logger.ILogger, maxAttempts int) *WebRTCManager {
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	return &WebRTCManager{
		api:         api,
		log:         log,
		maxAttempts: maxAttempts,
		backoffBase: 500 * time.Millisecond,
	}
}

// OnMessage registers the inbound frame callback. Must be called before
// Connect.
func (m *WebRTCManager) OnMessage(fn func([]byte)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onMessage = fn
}

// OnRemoteTrack registers the remote media callback so the caller can route
// persona audio to playback.
func (m *WebRTCManager) OnRemoteTrack(fn func(*webrtc.TrackRemote, *webrtc.RTPReceiver)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTrack = fn
}

// Connect runs the full setup, retrying transient failures up to the attempt
// bound. Every failed attempt tears its partial state down before the next
// one starts, so a failed Connect never leaves a half-open connection.
func (m *WebRTCManager) Connect(ctx context.Context, params ConnectParams) error {
	return withRetry(ctx, m.maxAttempts, m.backoffBase, func(ctx context.Context) error {
		err := m.connectOnce(ctx, params)
		if err != nil {
			m.teardown()
			m.log.Warn("peer", "connection attempt failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return err
	})
}

func (m *WebRTCManager) connectOnce(ctx context.Context, params ConnectParams) error {
	token, err := m.api.MintToken(ctx, SessionConfig{
		Voice:        params.Voice,
		Instructions: params.Instructions,
	})
	if err != nil {
		return err
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return apperror.Wrap(apperror.KindConnection, "failed to create peer connection", err)
	}

	m.mu.Lock()
	m.pc = pc
	m.closed = false
	onTrack := m.onTrack
	m.mu.Unlock()

	if onTrack != nil {
		pc.OnTrack(onTrack)
	}

	audioTrack, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"audio", "microphone",
	)
	if err != nil {
		return apperror.Wrap(apperror.KindConnection, "failed to create local audio track", err)
	}
	if _, err := pc.AddTrack(audioTrack); err != nil {
		return apperror.Wrap(apperror.KindConnection, "failed to attach local audio track", err)
	}

	ordered := true
	dc, err := pc.CreateDataChannel("oai-events", &webrtc.DataChannelInit{Ordered: &ordered})
	if err != nil {
		return apperror.Wrap(apperror.KindConnection, "failed to create data channel", err)
	}

	dc.OnOpen(func() {
		m.mu.Lock()
		m.dcOpen = true
		m.mu.Unlock()
	})
	dc.OnClose(func() {
		m.mu.Lock()
		m.dcOpen = false
		m.mu.Unlock()
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		m.mu.Lock()
		handler := m.onMessage
		m.mu.Unlock()
		if handler != nil {
			handler(msg.Data)
		}
	})

	m.mu.Lock()
	m.dc = dc
	m.mu.Unlock()

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return apperror.Wrap(apperror.KindConnection, "failed to create offer", err)
	}

	gathered := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(offer); err != nil {
		return apperror.Wrap(apperror.KindConnection, "failed to set local description", err)
	}

	select {
	case <-gathered:
	case <-ctx.Done():
		return apperror.Wrap(apperror.KindConnection, "ice gathering interrupted", ctx.Err())
	}

	answer, err := m.api.ExchangeSDP(ctx, token, pc.LocalDescription().SDP)
	if err != nil {
		return err
	}

	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answer,
	}); err != nil {
		return apperror.Wrap(apperror.KindConnection, "failed to set remote description", err)
	}

	return nil
}

// SendText wraps the text as a conversation item followed by a response
// request, matching the endpoint's event protocol.
func (m *WebRTCManager) SendText(text string) error {
	item := map[string]interface{}{
		"type": "conversation.item.create",
		"item": map[string]interface{}{
			"type": "message",
			"role": "user",
			"content": []map[string]string{
				{"type": "input_text", "text": text},
			},
		},
	}
	if err := m.sendJSON(item); err != nil {
		return err
	}
	return m.sendJSON(map[string]interface{}{"type": "response.create"})
}

// SendAudio appends one frame of microphone audio to the remote input buffer.
func (m *WebRTCManager) SendAudio(samples []float32) error {
	return m.sendJSON(map[string]interface{}{
		"type":  "input_audio_buffer.append",
		"audio": EncodeBase64PCM16(samples),
	})
}

func (m *WebRTCManager) sendJSON(event map[string]interface{}) error {
	m.mu.Lock()
	dc := m.dc
	open := m.dcOpen
	m.mu.Unlock()

	if dc == nil || !open {
		return ErrDataChannelNotReady
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, "failed to marshal data channel event", err)
	}
	if err := dc.SendText(string(payload)); err != nil {
		return apperror.Wrap(apperror.KindConnection, "data channel send failed", err)
	}
	return nil
}

// Close releases the data channel and peer connection. Safe to call from any
// path, any number of times.
func (m *WebRTCManager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.teardown()
	return nil
}

func (m *WebRTCManager) teardown() {
	m.mu.Lock()
	dc := m.dc
	pc := m.pc
	m.dc = nil
	m.pc = nil
	m.dcOpen = false
	m.mu.Unlock()

	if dc != nil {
		if err := dc.Close(); err != nil {
			m.log.Warn("peer", "data channel close failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	if pc != nil {
		if err := pc.Close(); err != nil {
			m.log.Warn("peer", "peer connection close failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
