package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kdduha/exam-grader/backend/internal/llm"
	"github.com/kdduha/exam-grader/backend/internal/metrics"
	"github.com/kdduha/exam-grader/backend/internal/models"
	"github.com/phuslu/log"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}

type GradeService struct {
	logger     *log.Logger
	dispatcher llm.Dispatcher
	policy     Policy
	timeout    time.Duration
	cache      Cache
}

func NewGradeService(logger *log.Logger, dispatcher llm.Dispatcher, policy Policy, timeout time.Duration) *GradeService {
	return &GradeService{
		logger:     logger,
		dispatcher: dispatcher,
		policy:     policy,
		timeout:    timeout,
	}
}

func (g *GradeService) SetCacheClient(cache Cache) {
	g.cache = cache
}

// Grade runs the whole pipeline for one submission. Every failure is a
// *models.GradeError; nothing partial is returned.
func (g *GradeService) Grade(ctx context.Context, req *models.GradeRequest) (*models.GradeResponse, error) {
	start := time.Now()
	mode := req.Mode()
	provider := g.dispatcher.Name()
	id := uuid.NewString()

	resp, outcome, err := g.grade(ctx, id, req)
	if err != nil {
		ge := models.AsGradeError(err)
		metrics.GradeTotal(mode, provider, string(ge.Kind))
		g.logger.Warn().Str("grade_id", id).Str("mode", mode).Str("kind", string(ge.Kind)).Err(ge).Msg("grading failed")
		return nil, ge
	}

	metrics.GradeTotal(mode, provider, outcome)
	metrics.GradeDuration(mode, provider, time.Since(start))
	g.logger.Info().Str("grade_id", id).Str("mode", mode).Str("outcome", outcome).Dur("took", time.Since(start)).Msg("graded")
	return resp, nil
}

func (g *GradeService) grade(ctx context.Context, id string, req *models.GradeRequest) (*models.GradeResponse, string, error) {
	if err := req.Normalize(); err != nil {
		return nil, "", err
	}

	if err := g.dispatcher.Configured(); err != nil {
		return nil, "", err
	}

	llmReq, err := g.buildLLMReq(req)
	if err != nil {
		return nil, "", err
	}

	g.logger.Debug().
		Str("grade_id", id).
		Bool("reference", req.HasReference()).
		Int("blocks", len(llmReq.Blocks)).
		Int("max_tokens", llmReq.MaxTokens).
		Str("policy", g.policy.Name).
		Msg("dispatching")

	var key string
	useCache := g.cache != nil && deterministic(llmReq.Temperature)
	if useCache {
		key = g.cacheKey(llmReq)
		cached, found, err := g.cache.Get(ctx, key)
		if err != nil {
			g.logger.Warn().Str("grade_id", id).Err(err).Msg("cache get error")
		}
		if found {
			return &models.GradeResponse{Feedback: cached, Mode: req.Mode()}, outcomeCache, nil
		}
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	feedback, err := g.dispatcher.Complete(callCtx, llmReq)
	if err != nil {
		return nil, "", err
	}

	if useCache {
		if err := g.cache.Set(ctx, key, feedback); err != nil {
			g.logger.Warn().Str("grade_id", id).Err(err).Msg("failed to set cache")
		}
	}

	return &models.GradeResponse{Feedback: feedback, Mode: req.Mode()}, outcomeOK, nil
}

// deterministic reports whether replaying stored feedback matches what
// the model would answer again. An omitted temperature is the provider
// default, which samples.
func deterministic(temperature *float64) bool {
	return temperature != nil && *temperature == 0
}

// cacheKey hashes everything that reaches the model, so a hit is only
// possible for a byte-identical upstream request.
func (g *GradeService) cacheKey(req *llm.Request) string {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	write(g.dispatcher.Name())
	write(g.dispatcher.Model())
	write(strconv.Itoa(req.MaxTokens))
	if req.Temperature != nil {
		write(strconv.FormatFloat(*req.Temperature, 'f', -1, 64))
	}
	for _, b := range req.Blocks {
		write(b.Type)
		write(b.Text)
		write(b.MediaType)
		write(b.Data)
	}
	return hex.EncodeToString(h.Sum(nil))
}
