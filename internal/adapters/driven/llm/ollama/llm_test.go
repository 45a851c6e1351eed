package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

type fakePromptStore struct {
	prompts map[string]string
}

func (f *fakePromptStore) Load(name string) (string, error) {
	return f.prompts[name], nil
}

func TestRewriteQuery_UsesCustomPrompt(t *testing.T) {
	var prompts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompts = append(prompts, req.Prompt)

		require.NoError(t, json.NewEncoder(w).Encode(generateResponse{Response: "rewritten"}))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{BaseURL: server.URL})
	require.NoError(t, err)
	svc.SetPromptStore(&fakePromptStore{prompts: map[string]string{
		driven.PromptQueryRewrite: "Expand with synonyms: %s",
	}})

	out, err := svc.RewriteQuery(context.Background(), "vacation policy")
	require.NoError(t, err)
	assert.Equal(t, "rewritten", out)

	require.Len(t, prompts, 1)
	assert.Equal(t, "Expand with synonyms: vacation policy", prompts[0])
}

func TestRewriteQuery_DefaultPromptWithoutStore(t *testing.T) {
	var prompts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompts = append(prompts, req.Prompt)

		require.NoError(t, json.NewEncoder(w).Encode(generateResponse{Response: "q"}))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.RewriteQuery(context.Background(), "vacation policy")
	require.NoError(t, err)

	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "search query")
	assert.Contains(t, prompts[0], "vacation policy")
}
