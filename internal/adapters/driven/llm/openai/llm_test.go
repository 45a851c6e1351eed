package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// fakePromptStore serves canned templates, or errors.
type fakePromptStore struct {
	prompts map[string]string
	err     error
}

func (f *fakePromptStore) Load(name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.prompts[name], nil
}

// newChatServer returns a server that answers every chat completion with
// the given content and records the prompt each request carried.
func newChatServer(t *testing.T, content string, prompts *[]string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)
		*prompts = append(*prompts, req.Messages[len(req.Messages)-1].Content)

		resp := chatResponse{}
		resp.Choices = []struct {
			Message chatMessage `json:"message"`
		}{
			{Message: chatMessage{Role: "assistant", Content: content}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestService(t *testing.T, baseURL string) *LLMService {
	t.Helper()

	svc, err := NewLLMService(Config{APIKey: "test-key", BaseURL: baseURL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestRewriteQuery_UsesCustomPrompt(t *testing.T) {
	var prompts []string
	server := newChatServer(t, "rewritten query", &prompts)
	defer server.Close()

	svc := newTestService(t, server.URL)
	svc.SetPromptStore(&fakePromptStore{prompts: map[string]string{
		driven.PromptQueryRewrite: "Expand with synonyms: %s",
	}})

	out, err := svc.RewriteQuery(context.Background(), "vacation policy")
	require.NoError(t, err)
	assert.Equal(t, "rewritten query", out)

	require.Len(t, prompts, 1)
	assert.Equal(t, "Expand with synonyms: vacation policy", prompts[0])
}

func TestRewriteQuery_DefaultPromptWithoutStore(t *testing.T) {
	var prompts []string
	server := newChatServer(t, "q", &prompts)
	defer server.Close()

	svc := newTestService(t, server.URL)

	_, err := svc.RewriteQuery(context.Background(), "vacation policy")
	require.NoError(t, err)

	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "search query")
	assert.Contains(t, prompts[0], "vacation policy")
}

func TestRewriteQuery_FallsBackOnStoreError(t *testing.T) {
	var prompts []string
	server := newChatServer(t, "q", &prompts)
	defer server.Close()

	svc := newTestService(t, server.URL)
	svc.SetPromptStore(&fakePromptStore{err: assert.AnError})

	_, err := svc.RewriteQuery(context.Background(), "vacation policy")
	require.NoError(t, err)

	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "search query")
}

func TestGenerate_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL)

	_, err := svc.Generate(context.Background(), "hi", driven.GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneration)
}
