package openai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kinship/internal/infrastructure/config"
)

func TestNewEmbedder(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EmbedderConfig
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			cfg:  config.EmbedderConfig{APIKey: "test-key"},
		},
		{
			name: "valid config with model and base url",
			cfg: config.EmbedderConfig{
				APIKey:  "test-key",
				Model:   "text-embedding-ada-002",
				BaseURL: "http://localhost:9999/v1",
			},
		},
		{
			name:    "missing API key",
			cfg:     config.EmbedderConfig{},
			wantErr: true,
			errMsg:  "API key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder, err := NewEmbedder(tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, embedder)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, embedder)
		})
	}
}

func TestVectorSize(t *testing.T) {
	assert.Equal(t, 1536, VectorSize)
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

func newEmbeddingServer(t *testing.T, reverse bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embeddingRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		data := make([]map[string]any, 0, len(req.Input))
		for i := range req.Input {
			data = append(data, map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float32{float32(i), float32(len(req.Input[i]))},
			})
		}
		if reverse {
			for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
				data[i], data[j] = data[j], data[i]
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
}

func TestEmbedBatch(t *testing.T) {
	for _, reverse := range []bool{false, true} {
		server := newEmbeddingServer(t, reverse)
		defer server.Close()

		embedder, err := NewEmbedder(config.EmbedderConfig{APIKey: "test-key", BaseURL: server.URL + "/v1"})
		require.NoError(t, err)

		got, err := embedder.EmbedBatch(t.Context(), []string{"a", "bbb"})
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{0, 1}, {1, 3}}, got)
	}
}

func TestEmbed(t *testing.T) {
	server := newEmbeddingServer(t, false)
	defer server.Close()

	embedder, err := NewEmbedder(config.EmbedderConfig{APIKey: "test-key", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	got, err := embedder.Embed(t.Context(), "Ada")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 3}, got)

	empty, err := embedder.EmbedBatch(t.Context(), nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestEmbedServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	embedder, err := NewEmbedder(config.EmbedderConfig{APIKey: "test-key", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	_, err = embedder.Embed(t.Context(), "Ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating embeddings")
}
