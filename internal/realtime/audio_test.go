package realtime

import (
	"encoding/base64"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePCM16(t *testing.T) {
	t.Run("encodes samples as little endian int16", func(t *testing.T) {
		out := EncodePCM16([]float32{0, 0.5, -0.5})
		require.Len(t, out, 6)

		half := float32(0.5)
		assert.Equal(t, int16(0), int16(binary.LittleEndian.Uint16(out[0:2])))
		assert.Equal(t, int16(half*math.MaxInt16), int16(binary.LittleEndian.Uint16(out[2:4])))
		assert.Equal(t, int16(-half*math.MaxInt16), int16(binary.LittleEndian.Uint16(out[4:6])))
	})

	t.Run("clamps out of range samples", func(t *testing.T) {
		out := EncodePCM16([]float32{2.0, -3.5})

		assert.Equal(t, int16(math.MaxInt16), int16(binary.LittleEndian.Uint16(out[0:2])))
		assert.Equal(t, int16(-math.MaxInt16), int16(binary.LittleEndian.Uint16(out[2:4])))
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Empty(t, EncodePCM16(nil))
	})
}

func TestEncodeBase64PCM16(t *testing.T) {
	samples := []float32{0.25, -0.25, 1.0}
	encoded := EncodeBase64PCM16(samples)

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, EncodePCM16(samples), decoded)
}
