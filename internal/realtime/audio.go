package realtime

import (
	"encoding/base64"
	"encoding/binary"
	"math"
)

// SampleRate is the fixed capture rate the realtime endpoint expects.
const SampleRate = 24000

// EncodePCM16 converts float32 samples in [-1, 1] to little-endian 16-bit
// PCM. Out-of-range samples are clamped, not wrapped.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * math.MaxInt16)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// EncodeBase64PCM16 frames samples for an input_audio_buffer.append event.
func EncodeBase64PCM16(samples []float32) string {
	return base64.StdEncoding.EncodeToString(EncodePCM16(samples))
}
