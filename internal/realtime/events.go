package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"neuraconnect-be/internal/pkg/logger"
	"neuraconnect-be/pkg/translate"

	"github.com/google/uuid"
)

// Inbound data-channel event types.
const (
	eventAudioDelta = "response.audio.delta"
	eventAudioDone  = "response.audio.done"
	eventText       = "response.text"
	eventError      = "error"
)

// Outbound websocket event types relayed to the user's browser.
const (
	OutboundSpeaking     = "speaking"
	OutboundTranscript   = "transcript"
	OutboundCallEnded    = "call.ended"
	OutboundNotification = "notification"
	OutboundError        = "error"
)

// OutboundEvent is the envelope pushed to browser sockets.
type OutboundEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Sink delivers outbound events to every socket a user has open. The
// websocket hub satisfies it.
type Sink interface {
	Send(userId uuid.UUID, event OutboundEvent)
}

type inboundEvent struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Dispatcher decodes inbound data-channel frames and turns them into
// user-observable events. Malformed frames are dropped, never fatal.
type Dispatcher struct {
	sink            Sink
	translator      translate.Translator
	log             logger.ILogger
	userId          uuid.UUID
	language        string
	defaultLanguage string

	mu       sync.Mutex
	speaking bool
}

func NewDispatcher(sink Sink, translator translate.Translator, log logger.ILogger, userId uuid.UUID, language, defaultLanguage string) *Dispatcher {
	return &Dispatcher{
		sink:            sink,
		translator:      translator,
		log:             log,
		userId:          userId,
		language:        language,
		defaultLanguage: defaultLanguage,
	}
}

// Speaking reports whether the persona is currently emitting audio.
func (d *Dispatcher) Speaking() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.speaking
}

func (d *Dispatcher) setSpeaking(speaking bool) {
	d.mu.Lock()
	d.speaking = speaking
	d.mu.Unlock()
	d.sink.Send(d.userId, OutboundEvent{
		Type: OutboundSpeaking,
		Data: map[string]bool{"speaking": speaking},
	})
}

// HandleRaw is wired as the data channel's message callback.
func (d *Dispatcher) HandleRaw(data []byte) {
	var ev inboundEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		d.log.Warn("dispatcher", "dropping malformed data channel frame", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	switch ev.Type {
	case eventAudioDelta:
		d.setSpeaking(true)
	case eventAudioDone:
		d.setSpeaking(false)
	case eventText:
		d.handleText(ev.Text)
	case eventError:
		message := "the persona hit an error"
		if ev.Error != nil && ev.Error.Message != "" {
			message = ev.Error.Message
		}
		d.log.Error("dispatcher", "realtime endpoint reported an error", map[string]interface{}{
			"message": message,
		})
		d.sink.Send(d.userId, OutboundEvent{
			Type: OutboundError,
			Data: map[string]string{"message": message},
		})
	default:
		// Unknown event types are expected; the endpoint emits more than we consume.
	}
}

func (d *Dispatcher) handleText(text string) {
	if text == "" {
		return
	}

	display := text
	if d.language != d.defaultLanguage && d.translator != nil {
		translated, err := d.translator.Translate(context.Background(), text, d.language)
		if err != nil {
			d.log.Warn("dispatcher", "translation failed, falling back to original text", map[string]interface{}{
				"error":    err.Error(),
				"language": d.language,
			})
		} else {
			display = translated
		}
	}

	d.sink.Send(d.userId, OutboundEvent{
		Type: OutboundTranscript,
		Data: map[string]string{"text": display},
	})
}
