package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"

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

type fakeSink struct {
	mu     sync.Mutex
	events []OutboundEvent
}

func (s *fakeSink) Send(_ uuid.UUID, event OutboundEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *fakeSink) byType(eventType string) []OutboundEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []OutboundEvent
	for _, ev := range s.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

type fakeTranslator struct {
	result string
	err    error
	calls  int
}

func (f *fakeTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

func newTestDispatcher(sink Sink, translator *fakeTranslator, language string) *Dispatcher {
	if translator == nil {
		return NewDispatcher(sink, nil, nopLogger{}, uuid.New(), language, "en")
	}
	return NewDispatcher(sink, translator, nopLogger{}, uuid.New(), language, "en")
}

func TestDispatcherSpeakingState(t *testing.T) {
	sink := &fakeSink{}
	d := newTestDispatcher(sink, nil, "en")

	d.HandleRaw([]byte(`{"type":"response.audio.delta"}`))
	assert.True(t, d.Speaking())

	d.HandleRaw([]byte(`{"type":"response.audio.done"}`))
	assert.False(t, d.Speaking())

	speaking := sink.byType(OutboundSpeaking)
	require.Len(t, speaking, 2)
	assert.Equal(t, map[string]bool{"speaking": true}, speaking[0].Data)
	assert.Equal(t, map[string]bool{"speaking": false}, speaking[1].Data)
}

func TestDispatcherMalformedFrames(t *testing.T) {
	sink := &fakeSink{}
	d := newTestDispatcher(sink, nil, "en")

	d.HandleRaw([]byte(`{"type":"response.audio.delta"}`))
	require.True(t, d.Speaking())

	assert.NotPanics(t, func() {
		d.HandleRaw([]byte(`this is not json`))
		d.HandleRaw(nil)
		d.HandleRaw([]byte(`{"type":`))
	})

	// Garbage must never flip the speaking state.
	assert.True(t, d.Speaking())
	assert.Len(t, sink.byType(OutboundSpeaking), 1)
}

func TestDispatcherTranscript(t *testing.T) {
	t.Run("default language skips translation", func(t *testing.T) {
		sink := &fakeSink{}
		translator := &fakeTranslator{result: "translated"}
		d := newTestDispatcher(sink, translator, "en")

		d.HandleRaw([]byte(`{"type":"response.text","text":"hello"}`))

		events := sink.byType(OutboundTranscript)
		require.Len(t, events, 1)
		assert.Equal(t, map[string]string{"text": "hello"}, events[0].Data)
		assert.Zero(t, translator.calls)
	})

	t.Run("non default language is translated", func(t *testing.T) {
		sink := &fakeSink{}
		translator := &fakeTranslator{result: "hola"}
		d := newTestDispatcher(sink, translator, "es")

		d.HandleRaw([]byte(`{"type":"response.text","text":"hello"}`))

		events := sink.byType(OutboundTranscript)
		require.Len(t, events, 1)
		assert.Equal(t, map[string]string{"text": "hola"}, events[0].Data)
	})

	t.Run("translation failure falls back to original text", func(t *testing.T) {
		sink := &fakeSink{}
		translator := &fakeTranslator{err: errors.New("translator down")}
		d := newTestDispatcher(sink, translator, "es")

		d.HandleRaw([]byte(`{"type":"response.text","text":"hello"}`))

		events := sink.byType(OutboundTranscript)
		require.Len(t, events, 1)
		assert.Equal(t, map[string]string{"text": "hello"}, events[0].Data)
	})

	t.Run("empty text is dropped", func(t *testing.T) {
		sink := &fakeSink{}
		d := newTestDispatcher(sink, nil, "en")

		d.HandleRaw([]byte(`{"type":"response.text"}`))

		assert.Empty(t, sink.byType(OutboundTranscript))
	})
}

func TestDispatcherErrorEvents(t *testing.T) {
	sink := &fakeSink{}
	d := newTestDispatcher(sink, nil, "en")

	d.HandleRaw([]byte(`{"type":"error","error":{"message":"rate limited"}}`))

	events := sink.byType(OutboundError)
	require.Len(t, events, 1)
	assert.Equal(t, map[string]string{"message": "rate limited"}, events[0].Data)
	// Errors surface to the user but never end the session by themselves.
	assert.False(t, d.Speaking())
}
