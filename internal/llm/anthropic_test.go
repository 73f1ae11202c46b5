package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/kdduha/exam-grader/backend/internal/config"
	"github.com/kdduha/exam-grader/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const anthropicReply = `{
  "id": "msg_01",
  "type": "message",
  "role": "assistant",
  "model": "claude-sonnet-4-20250514",
  "content": [{"type": "text", "text": "Score: 7/10\nReasoning: ..."}],
  "stop_reason": "end_turn",
  "stop_sequence": null,
  "usage": {"input_tokens": 12, "output_tokens": 9}
}`

type recordedCall struct {
	path string
	key  string
	body map[string]any
}

type fakeUpstream struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeUpstream) serve(t *testing.T, status int, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = sonic.Unmarshal(raw, &body)

		f.mu.Lock()
		f.calls = append(f.calls, recordedCall{
			path: r.URL.Path,
			key:  r.Header.Get("X-Api-Key") + r.Header.Get("Authorization"),
			body: body,
		})
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeUpstream) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func newAnthropic(baseURL, key string) *AnthropicDispatcher {
	return NewAnthropicDispatcher(config.AnthropicConfig{
		APIKey:  key,
		BaseURL: baseURL + "/",
		Model:   "claude-sonnet-4-20250514",
	}, 5*time.Second)
}

func samplePayload() []models.ContentBlock {
	return []models.ContentBlock{
		models.TextBlock("=== REFERENCE ==="),
		models.ImageBlock("BBBB"),
		models.TextBlock("=== STUDENT ==="),
		models.ImageBlock("AAAA"),
		models.TextBlock("Grade it"),
	}
}

func TestAnthropicComplete(t *testing.T) {
	upstream := &fakeUpstream{}
	srv := upstream.serve(t, http.StatusOK, anthropicReply)

	temp := 0.0
	out, err := newAnthropic(srv.URL, "sk-test").Complete(context.Background(), &Request{
		MaxTokens:   1024,
		Temperature: &temp,
		Blocks:      samplePayload(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Score: 7/10\nReasoning: ...", out)

	calls := upstream.recorded()
	require.Len(t, calls, 1)
	call := calls[0]
	assert.True(t, strings.HasSuffix(call.path, "/v1/messages"), call.path)
	assert.Contains(t, call.key, "sk-test")

	assert.Equal(t, "claude-sonnet-4-20250514", call.body["model"])
	assert.EqualValues(t, 1024, call.body["max_tokens"])
	assert.EqualValues(t, 0, call.body["temperature"])

	messages := call.body["messages"].([]any)
	require.Len(t, messages, 1)
	turn := messages[0].(map[string]any)
	assert.Equal(t, "user", turn["role"])

	content := turn["content"].([]any)
	require.Len(t, content, 5)

	var types []string
	for _, c := range content {
		types = append(types, c.(map[string]any)["type"].(string))
	}
	assert.Equal(t, []string{"text", "image", "text", "image", "text"}, types)

	source := content[1].(map[string]any)["source"].(map[string]any)
	assert.Equal(t, "base64", source["type"])
	assert.Equal(t, "image/jpeg", source["media_type"])
	assert.Equal(t, "BBBB", source["data"])
	assert.Equal(t, "Grade it", content[4].(map[string]any)["text"])
}

func TestAnthropicOmitsUnsetTemperature(t *testing.T) {
	upstream := &fakeUpstream{}
	srv := upstream.serve(t, http.StatusOK, anthropicReply)

	_, err := newAnthropic(srv.URL, "sk-test").Complete(context.Background(), &Request{
		MaxTokens: 250,
		Blocks:    samplePayload(),
	})
	require.NoError(t, err)

	calls := upstream.recorded()
	require.Len(t, calls, 1)
	_, ok := calls[0].body["temperature"]
	assert.False(t, ok)
}

func TestAnthropicMissingKey(t *testing.T) {
	upstream := &fakeUpstream{}
	srv := upstream.serve(t, http.StatusOK, anthropicReply)

	_, err := newAnthropic(srv.URL, "").Complete(context.Background(), &Request{Blocks: samplePayload()})

	var ge *models.GradeError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, models.KindConfiguration, ge.Kind)
	assert.Equal(t, "ANTHROPIC_API_KEY environment variable not set", ge.Error())
	assert.Empty(t, upstream.recorded())
}

func TestAnthropicUpstreamError(t *testing.T) {
	upstream := &fakeUpstream{}
	srv := upstream.serve(t, http.StatusInternalServerError,
		`{"type":"error","error":{"type":"api_error","message":"overloaded"}}`)

	_, err := newAnthropic(srv.URL, "sk-test").Complete(context.Background(), &Request{MaxTokens: 250, Blocks: samplePayload()})

	var ge *models.GradeError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, models.KindUpstream, ge.Kind)
	assert.Len(t, upstream.recorded(), 1, "retries are disabled")
}

func TestAnthropicNoTextBlock(t *testing.T) {
	upstream := &fakeUpstream{}
	srv := upstream.serve(t, http.StatusOK, `{
  "id": "msg_02",
  "type": "message",
  "role": "assistant",
  "model": "claude-sonnet-4-20250514",
  "content": [],
  "stop_reason": "end_turn",
  "stop_sequence": null,
  "usage": {"input_tokens": 12, "output_tokens": 0}
}`)

	_, err := newAnthropic(srv.URL, "sk-test").Complete(context.Background(), &Request{MaxTokens: 250, Blocks: samplePayload()})

	var ge *models.GradeError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, models.KindUpstream, ge.Kind)
	assert.Contains(t, ge.Error(), "no text block")
}
