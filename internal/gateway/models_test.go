package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankitni/charchat/internal/chaterr"
	"github.com/ankitni/charchat/internal/gateway"
)

func TestCatalog(t *testing.T) {
	models := gateway.Catalog()
	require.Len(t, models, 6)

	ids := make(map[string]bool, len(models))
	for _, m := range models {
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.Cost)
		ids[m.ID] = true
	}
	assert.True(t, ids[gateway.DefaultModel], "default model must be in the catalog")
}

func TestModels_FetchesRemoteListing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{"id": "deepseek/deepseek-chat", "object": "model"}, {"id": "openai/gpt-4o", "object": "model"}]}`))
	})

	models, err := c.Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "deepseek/deepseek-chat", models[0].ID)
}

func TestModels_EmptyKeyIsValidation(t *testing.T) {
	c := gateway.New(gateway.Config{BaseURL: "http://127.0.0.1:0/v1"})
	_, err := c.Models(context.Background())
	assert.True(t, chaterr.IsValidation(err), "got %v", err)
}

func TestValidateKey(t *testing.T) {
	accepted := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": []}`))
	})
	assert.True(t, accepted.ValidateKey(context.Background()))

	rejected := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "auth_error"}}`))
	})
	assert.False(t, rejected.ValidateKey(context.Background()))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	noKey := gateway.New(gateway.Config{BaseURL: srv.URL + "/v1"})
	assert.False(t, noKey.ValidateKey(context.Background()))
}
