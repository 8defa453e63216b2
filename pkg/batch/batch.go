// Package batch runs many Eircode lookups on a bounded worker pool.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/natserract/eircode/pkg/eircode"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultConcurrency = 10

// Kind selects which lookup a Job performs.
type Kind string

const (
	KindPostcode Kind = "postcode"
	KindEcad     Kind = "ecad"
)

const ecadPrefix = "ecad:"

type Job struct {
	Kind  Kind
	Value string
}

// Result is the outcome of one Job. Data and Err are exactly what the client
// returned.
type Result struct {
	ID       uuid.UUID
	Job      Job
	Data     any
	Err      error
	Duration time.Duration
}

// Sink persists results as they complete.
type Sink interface {
	SaveResult(ctx context.Context, r Result) error
}

// Metrics tracks the outcome counts of a run
type Metrics struct {
	Succeeded  int
	Failed     int
	SinkFailed int
	mu         sync.Mutex
}

// AddSuccess increments the succeeded count
func (m *Metrics) AddSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Succeeded++
}

// AddFailure increments the failed count
func (m *Metrics) AddFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed++
}

// AddSinkFailure increments the count of results the sink rejected
func (m *Metrics) AddSinkFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SinkFailed++
}

// Total returns the number of jobs that ran
func (m *Metrics) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Succeeded + m.Failed
}

// Service runs batches of lookups against an eircode.Lookup
type Service struct {
	client      eircode.Lookup
	sink        Sink
	limiter     *rate.Limiter
	concurrency int
	logger      *zap.Logger
}

type Option func(*Service)

// WithConcurrency caps the number of lookups in flight.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithRate limits lookups to rps per second. Zero or less disables pacing.
func WithRate(rps float64, burst int) Option {
	return func(s *Service) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithSink(sink Sink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

// NewService creates a new batch service
func NewService(client eircode.Lookup, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		client:      client,
		concurrency: defaultConcurrency,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs every job and returns the results in job order. A failed
// lookup is recorded in its Result and never stops the run.
func (s *Service) Run(ctx context.Context, jobs []Job) (*Metrics, []Result) {
	startTime := time.Now()
	s.logger.Info("Starting batch lookup",
		zap.Int("jobs", len(jobs)),
		zap.Int("concurrency", s.concurrency))

	metrics := &Metrics{}
	results := make([]Result, len(jobs))

	p := pool.New().WithMaxGoroutines(s.concurrency)
	for i, job := range jobs {
		p.Go(func() {
			results[i] = s.runJob(ctx, job, metrics)
		})
	}
	p.Wait()

	s.logger.Info("Completed batch lookup",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("succeeded", metrics.Succeeded),
		zap.Int("failed", metrics.Failed),
		zap.Int("sink_failed", metrics.SinkFailed))

	return metrics, results
}

func (s *Service) runJob(ctx context.Context, job Job, metrics *Metrics) Result {
	result := Result{ID: uuid.New(), Job: job}
	start := time.Now()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			result.Err = fmt.Errorf("rate limiter: %w", err)
		}
	}
	if result.Err == nil {
		result.Data, result.Err = s.lookup(ctx, job)
	}
	result.Duration = time.Since(start)

	if result.Err != nil {
		metrics.AddFailure()
		s.logger.Warn("Lookup failed",
			zap.String("job_id", result.ID.String()),
			zap.String("kind", string(job.Kind)),
			zap.String("value", job.Value),
			zap.Error(result.Err))
	} else {
		metrics.AddSuccess()
	}

	if s.sink != nil {
		if err := s.sink.SaveResult(ctx, result); err != nil {
			metrics.AddSinkFailure()
			s.logger.Error("Failed to save lookup result",
				zap.String("job_id", result.ID.String()),
				zap.Error(err))
		}
	}
	return result
}

func (s *Service) lookup(ctx context.Context, job Job) (any, error) {
	switch job.Kind {
	case KindPostcode:
		return s.client.PostcodeLookup(ctx, job.Value)
	case KindEcad:
		return s.client.GetEcadData(ctx, job.Value)
	default:
		return nil, fmt.Errorf("unknown job kind %q", job.Kind)
	}
}

// ParseJobs reads one job per line. Lines prefixed with "ecad:" are ECAD ids,
// anything else is a postcode. Blank lines and lines starting with '#' are
// skipped.
func ParseJobs(r io.Reader) ([]Job, error) {
	var jobs []Job
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, ecadPrefix); ok {
			jobs = append(jobs, Job{Kind: KindEcad, Value: strings.TrimSpace(rest)})
			continue
		}
		jobs = append(jobs, Job{Kind: KindPostcode, Value: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read jobs: %w", err)
	}
	return jobs, nil
}
