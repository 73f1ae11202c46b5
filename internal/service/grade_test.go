package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kdduha/exam-grader/backend/internal/llm"
	"github.com/kdduha/exam-grader/backend/internal/logging"
	"github.com/kdduha/exam-grader/backend/internal/models"
	"github.com/kdduha/exam-grader/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	configured error
	reply      string
	err        error

	mu    sync.Mutex
	calls []*llm.Request
}

func (f *fakeDispatcher) Name() string      { return "fake" }
func (f *fakeDispatcher) Model() string     { return "fake-model" }
func (f *fakeDispatcher) Configured() error { return f.configured }

func (f *fakeDispatcher) Complete(_ context.Context, req *llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.reply, f.err
}

type memoryCache struct {
	data map[string]string
}

func (m *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func newService(t *testing.T, d llm.Dispatcher) *service.GradeService {
	t.Helper()
	return service.NewGradeService(logging.Discard(), d, mustPolicy(t, service.PresetGraduated), time.Second)
}

func TestGradeConciseWithoutReference(t *testing.T) {
	d := &fakeDispatcher{reply: "Score: 7/10\nReasoning: ..."}
	svc := newService(t, d)

	resp, err := svc.Grade(context.Background(), &models.GradeRequest{
		StudentImage: "data:image/jpeg;base64,AAAA",
	})
	require.NoError(t, err)
	assert.Equal(t, &models.GradeResponse{Feedback: "Score: 7/10\nReasoning: ...", Mode: "concise"}, resp)

	require.Len(t, d.calls, 1)
	call := d.calls[0]
	assert.Equal(t, 250, call.MaxTokens)
	require.NotNil(t, call.Temperature)
	assert.Equal(t, 0.0, *call.Temperature)
	assert.Equal(t, []string{"AAAA"}, imageData(call.Blocks))

	expected, _ := service.BuildPrompt(mustPolicy(t, service.PresetGraduated), "", "", false, false)
	assert.Equal(t, models.TextBlock(expected), call.Blocks[len(call.Blocks)-1])
}

func TestGradeVerboseWithReference(t *testing.T) {
	d := &fakeDispatcher{reply: "1. Score: 9/10"}
	svc := newService(t, d)

	resp, err := svc.Grade(context.Background(), &models.GradeRequest{
		ReferenceImage: "data:image/jpeg;base64,BBBB",
		StudentImage:   "data:image/jpeg;base64,AAAA",
		VerboseMode:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "verbose", resp.Mode)

	require.Len(t, d.calls, 1)
	call := d.calls[0]
	assert.Equal(t, 1024, call.MaxTokens)
	assert.Equal(t, []string{"BBBB", "AAAA"}, imageData(call.Blocks))

	policy := mustPolicy(t, service.PresetGraduated)
	conciseNoRef, _ := service.BuildPrompt(policy, "", "", false, false)
	verboseRef, _ := service.BuildPrompt(policy, "", "", true, true)
	prompt := call.Blocks[len(call.Blocks)-1].Text
	assert.NotEqual(t, conciseNoRef, prompt)
	assert.Equal(t, verboseRef, prompt)
}

func TestGradeMissingStudentImage(t *testing.T) {
	d := &fakeDispatcher{reply: "unused"}
	svc := newService(t, d)

	_, err := svc.Grade(context.Background(), &models.GradeRequest{ReferenceImage: "BBBB"})

	var ge *models.GradeError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, models.KindValidation, ge.Kind)
	assert.Empty(t, d.calls)
}

func TestGradeMissingCredential(t *testing.T) {
	d := &fakeDispatcher{configured: models.NewConfigurationError("ANTHROPIC_API_KEY environment variable not set")}
	svc := newService(t, d)

	_, err := svc.Grade(context.Background(), &models.GradeRequest{StudentImage: "AAAA"})

	var ge *models.GradeError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, models.KindConfiguration, ge.Kind)
	assert.Contains(t, ge.Error(), "ANTHROPIC_API_KEY")
	assert.Empty(t, d.calls, "no upstream call without a credential")
}

func TestGradeUpstreamFailure(t *testing.T) {
	d := &fakeDispatcher{err: errors.New("connection refused")}
	svc := newService(t, d)

	resp, err := svc.Grade(context.Background(), &models.GradeRequest{StudentImage: "AAAA"})
	assert.Nil(t, resp)

	var ge *models.GradeError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, models.KindUpstream, ge.Kind)
	assert.Len(t, d.calls, 1, "no retries")
}

func TestGradeInvalidPDF(t *testing.T) {
	d := &fakeDispatcher{reply: "unused"}
	svc := newService(t, d)

	_, err := svc.Grade(context.Background(), &models.GradeRequest{StudentImage: "data:application/pdf;base64,not-base64!"})

	var ge *models.GradeError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, models.KindValidation, ge.Kind)
	assert.Empty(t, d.calls)
}

func TestGradeUsesCache(t *testing.T) {
	d := &fakeDispatcher{reply: "Score: 8/10\nReasoning: fine"}
	svc := newService(t, d)
	svc.SetCacheClient(&memoryCache{data: map[string]string{}})

	req := func() *models.GradeRequest {
		return &models.GradeRequest{StudentImage: "AAAA", Rubric: "r"}
	}

	first, err := svc.Grade(context.Background(), req())
	require.NoError(t, err)
	second, err := svc.Grade(context.Background(), req())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, d.calls, 1)

	_, err = svc.Grade(context.Background(), &models.GradeRequest{StudentImage: "AAAA", Rubric: "other"})
	require.NoError(t, err)
	assert.Len(t, d.calls, 2)
}

func TestGradeSkipsCacheWhenSampling(t *testing.T) {
	d := &fakeDispatcher{reply: "Score: 4/10\nReasoning: capped"}
	svc := service.NewGradeService(logging.Discard(), d, mustPolicy(t, service.PresetReferenceCap), time.Second)
	cache := &memoryCache{data: map[string]string{}}
	svc.SetCacheClient(cache)

	for range 3 {
		_, err := svc.Grade(context.Background(), &models.GradeRequest{StudentImage: "AAAA"})
		require.NoError(t, err)
	}

	assert.Len(t, d.calls, 3)
	assert.Empty(t, cache.data)
}

type blockingDispatcher struct{}

func (blockingDispatcher) Name() string      { return "blocking" }
func (blockingDispatcher) Model() string     { return "blocking-model" }
func (blockingDispatcher) Configured() error { return nil }

func (blockingDispatcher) Complete(ctx context.Context, _ *llm.Request) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGradeModelTimeout(t *testing.T) {
	timeout := 50 * time.Millisecond
	svc := service.NewGradeService(logging.Discard(), blockingDispatcher{}, mustPolicy(t, service.PresetGraduated), timeout)

	start := time.Now()
	_, err := svc.Grade(context.Background(), &models.GradeRequest{StudentImage: "AAAA"})
	took := time.Since(start)

	var ge *models.GradeError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, models.KindUpstream, ge.Kind)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, took, timeout)
	assert.Less(t, took, 2*time.Second)
}
