package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/abaplens/abaplens/internal/ai"
	"github.com/abaplens/abaplens/internal/cache"
	"github.com/abaplens/abaplens/internal/config"
	"github.com/abaplens/abaplens/internal/telemetry"
	"github.com/abaplens/abaplens/pkg/models"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/abaplens/abaplens/internal/analysis")

// Recorder persists one history entry per analysis.
type Recorder interface {
	CreateAnalysisRecord(ctx context.Context, rec *models.AnalysisRecord) error
}

// ServiceOptions configures the optional parts of a Service.
// A nil Cache or zero CacheTTL disables caching; a nil Recorder disables history.
type ServiceOptions struct {
	Provider string
	Model    string
	Timeout  time.Duration
	Cache    cache.Cache
	CacheTTL time.Duration
	Recorder Recorder
}

// Outcome is the result of a successful Analyze call.
type Outcome struct {
	Result   models.AnalysisResult
	Fallback bool
	Cached   bool
}

// Service runs the input check, dispatch and sanitization for one request.
type Service struct {
	dispatcher *Dispatcher
	sanitizer  *Sanitizer
	opts       ServiceOptions
}

// NewService creates a new Service.
func NewService(d *Dispatcher, s *Sanitizer, opts ServiceOptions) *Service {
	return &Service{dispatcher: d, sanitizer: s, opts: opts}
}

// Analyze returns the analysis of code, the fallback analysis when the reply
// is not JSON, or an error. Empty code is rejected before any upstream call.
func (s *Service) Analyze(ctx context.Context, code string) (*Outcome, error) {
	if err := ValidateInput(code); err != nil {
		telemetry.AnalysesTotal.WithLabelValues(models.OutcomeError, ErrorKind(err)).Inc()
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "analysis.Analyze")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", s.opts.Provider),
		attribute.String("ai.model", s.opts.Model),
		attribute.Int("abap.code_bytes", len(code)),
	)

	start := time.Now()
	hash := CodeHash(code)

	if result, ok := s.lookup(ctx, hash); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		out := &Outcome{Result: result, Cached: true}
		s.finish(ctx, hash, out, nil, time.Since(start))
		return out, nil
	}

	callCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	upstreamStart := time.Now()
	raw, err := s.dispatcher.Dispatch(callCtx, code)
	telemetry.UpstreamDuration.WithLabelValues(s.opts.Provider).Observe(time.Since(upstreamStart).Seconds())

	var out *Outcome
	if err == nil {
		var (
			result   models.AnalysisResult
			fallback bool
		)
		result, fallback, err = s.sanitizer.Sanitize(raw)
		if err == nil {
			out = &Outcome{Result: result, Fallback: fallback}
		} else {
			slog.Debug("unusable model reply", "kind", ErrorKind(err), "reply_bytes", len(raw))
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, ErrorKind(err))
	}

	s.finish(ctx, hash, out, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	if !out.Fallback {
		s.store(ctx, hash, out.Result)
	}
	return out, nil
}

// finish records metrics, logs and the history entry for one analysis.
func (s *Service) finish(ctx context.Context, hash string, out *Outcome, err error, elapsed time.Duration) {
	outcome := models.OutcomeOK
	switch {
	case err != nil:
		outcome = models.OutcomeError
	case out.Fallback:
		outcome = models.OutcomeFallback
	}
	kind := ErrorKind(err)
	telemetry.AnalysesTotal.WithLabelValues(outcome, kind).Inc()

	if err != nil {
		slog.Error("analysis failed",
			"kind", kind,
			"error", err,
			"provider", s.opts.Provider,
			"duration_ms", elapsed.Milliseconds(),
		)
	} else {
		slog.Info("analysis completed",
			"outcome", outcome,
			"cached", out.Cached,
			"provider", s.opts.Provider,
			"duration_ms", elapsed.Milliseconds(),
		)
	}

	if s.opts.Recorder == nil {
		return
	}

	rec := &models.AnalysisRecord{
		ID:         uuid.New(),
		CodeHash:   hash,
		Provider:   s.opts.Provider,
		Model:      s.opts.Model,
		Outcome:    outcome,
		DurationMS: elapsed.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if err != nil {
		msg := err.Error()
		rec.ErrorMessage = &msg
	} else {
		rec.Compatibility = out.Result.Compatibility
		rec.Issues = out.Result.Issues
		rec.Recommendations = out.Result.Recommendations
		rec.ConvertedCode = out.Result.ConvertedCode
	}

	// History must be written even when the client has gone away.
	if rerr := s.opts.Recorder.CreateAnalysisRecord(context.WithoutCancel(ctx), rec); rerr != nil {
		slog.Warn("failed to record analysis", "error", rerr)
	}
}

func (s *Service) cacheEnabled() bool {
	return s.opts.Cache != nil && s.opts.CacheTTL > 0
}

func (s *Service) cacheKey(hash string) string {
	return cache.AnalysisKey(s.opts.Provider, s.opts.Model, hash)
}

func (s *Service) lookup(ctx context.Context, hash string) (models.AnalysisResult, bool) {
	if !s.cacheEnabled() {
		return models.AnalysisResult{}, false
	}

	data, found, err := s.opts.Cache.Get(ctx, s.cacheKey(hash))
	if err != nil {
		telemetry.CacheLookupsTotal.WithLabelValues("error").Inc()
		slog.Warn("analysis cache lookup failed", "error", err)
		return models.AnalysisResult{}, false
	}
	if !found {
		telemetry.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return models.AnalysisResult{}, false
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		telemetry.CacheLookupsTotal.WithLabelValues("error").Inc()
		slog.Warn("discarding corrupt cache entry", "error", err)
		if err := s.opts.Cache.Delete(ctx, s.cacheKey(hash)); err != nil {
			slog.Warn("analysis cache delete failed", "error", err)
		}
		return models.AnalysisResult{}, false
	}
	telemetry.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return result, true
}

func (s *Service) store(ctx context.Context, hash string, result models.AnalysisResult) {
	if !s.cacheEnabled() {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.opts.Cache.Set(context.WithoutCancel(ctx), s.cacheKey(hash), data, s.opts.CacheTTL); err != nil {
		slog.Warn("analysis cache store failed", "error", err)
	}
}

// CodeHash returns the hex sha256 of code.
func CodeHash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// NewServiceFromConfig builds the completion client for cfg and wires it
// into a Service with DefaultSchema. Provider, Model and Timeout in opts are
// taken from cfg.
func NewServiceFromConfig(cfg config.AIConfig, opts ServiceOptions) (*Service, error) {
	model, err := ai.NewModel(cfg)
	if err != nil {
		return nil, err
	}
	opts.Provider = cfg.Provider
	opts.Model = cfg.Model()
	opts.Timeout = cfg.InferenceTimeout

	d := NewDispatcher(model, cfg.Provider, DefaultSchema, llms.WithModel(cfg.Model()))
	return NewService(d, NewSanitizer(DefaultSchema), opts), nil
}
