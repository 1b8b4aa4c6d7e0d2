package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientTranslate(t *testing.T) {
	t.Run("returns the translated text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

			var req translateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "hello", req.Text)
			assert.Equal(t, "es", req.TargetLanguage)

			json.NewEncoder(w).Encode(translateResponse{TranslatedText: "hola"})
		}))
		defer srv.Close()

		client := NewClient(Config{Endpoint: srv.URL, APIKey: "key"})
		out, err := client.Translate(context.Background(), "hello", "es")
		require.NoError(t, err)
		assert.Equal(t, "hola", out)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		client := NewClient(Config{Endpoint: srv.URL})
		_, err := client.Translate(context.Background(), "hello", "es")
		assert.Error(t, err)
	})
}
