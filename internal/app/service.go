// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/climarisk/internal/adapters/events"
	"github.com/okian/climarisk/internal/adapters/mq/queue"
	"github.com/okian/climarisk/internal/adapters/mq/worker"
	"github.com/okian/climarisk/internal/adapters/repository"
	"github.com/okian/climarisk/internal/domain/aggregate"
	"github.com/okian/climarisk/internal/domain/dedupe"
	"github.com/okian/climarisk/internal/domain/model"
	"github.com/okian/climarisk/internal/domain/scoring"
	"github.com/okian/climarisk/internal/domain/types"
	"github.com/okian/climarisk/internal/reference"
	"github.com/okian/climarisk/pkg/logger"
	"github.com/okian/climarisk/pkg/metrics"
)

// Window used when an assessment pulls metrics from the observation store.
var (
	defaultObservationFrom = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	defaultObservationTo   = time.Date(2101, 1, 1, 0, 0, 0, 0, time.UTC)
)

// referenceReportPrefix marks reports seeded from the reference table.
const referenceReportPrefix = "reference:"

// ErrNotStarted is returned by operations that need a running service.
var ErrNotStarted = errors.New("service not started")

// ObservationSource reads stored scenario series.
type ObservationSource interface {
	Observations(ctx context.Context, metric string, from, to time.Time) ([]model.Observation, error)
	FetchMetrics(ctx context.Context, names []string, from, to time.Time) (map[string][]model.Observation, error)
}

// Service implements the API dependencies for the climate risk engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	board     repository.Board
	reports   repository.Reports
	failures  repository.Failures
	deduper   dedupe.Deduper
	jobs      *queue.InMemoryQueue
	scorer    *scoring.Scorer
	pool      *worker.Pool
	publisher events.Publisher
	source    ObservationSource

	// Assessments waiting in the queue or being processed.
	statusMu sync.RWMutex
	pending  map[string]struct{}

	// Cancels in-flight work once Stop gives up draining.
	cancelRun context.CancelFunc

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	maxReports     int
	profiles       map[string][]string
	defaultProfile string
	referencePath  string

	started bool
	now     func() time.Time
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the assessment queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxReports caps the number of reports kept in memory.
func WithMaxReports(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxReports = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProfiles registers extra scoring profiles as name -> dimensions.
func WithProfiles(profiles map[string][]string) Option {
	return func(s *Service) {
		s.profiles = profiles
	}
}

// WithDefaultProfile sets the profile used when a request names none.
func WithDefaultProfile(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.defaultProfile = name
		}
	}
}

// WithReferencePath seeds the board from a reference table on Start.
func WithReferencePath(path string) Option {
	return func(s *Service) {
		s.referencePath = path
	}
}

// WithPublisher sets where assessment events go. Defaults to a no-op.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithObservationSource enables observation queries and metric pulls.
func WithObservationSource(src ObservationSource) Option {
	return func(s *Service) {
		s.source = src
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   10_000,
		dedupeSize:  50_000,
		maxReports:  100_000,
		publisher:   events.NopPublisher{},
		pending:     make(map[string]struct{}),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	// Components that need no lifecycle are ready before Start.
	s.scorer = scoring.NewScorer(
		scoring.WithProfilesFromConfig(s.profiles),
		scoring.WithDefaultProfile(s.defaultProfile),
	)
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting climate risk service...")

	if _, err := s.scorer.Profile(""); err != nil {
		return fmt.Errorf("default profile: %w", err)
	}

	s.board = repository.NewTreapStore()
	s.reports = repository.NewMemoryReports(repository.WithMaxReports(s.maxReports))
	s.failures = repository.NewMemoryFailures(repository.WithMaxFailures(s.maxReports))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	if s.referencePath != "" {
		if err := s.seedReference(ctx); err != nil {
			return err
		}
	}

	// Workers outlive ctx; only Stop ends them, after draining the queue.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelRun = cancel
	s.pool = worker.NewPool(s.workerCount, s.jobs, s, s)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "climate risk service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Bool("observations", s.source != nil),
	)
	return nil
}

// Stop drains queued assessments until ctx expires, then closes the publisher.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping climate risk service...")

	err := s.pool.Shutdown(ctx)
	if err != nil {
		s.logger.Warn(ctx, "queued assessments abandoned", logger.Error(err))
	}
	s.cancelRun()
	s.publisher.Close()
	if closer, ok := s.source.(interface{ Close() }); ok {
		closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "climate risk service stopped")
	return err
}

func (s *Service) seedReference(ctx context.Context) error {
	table, err := reference.Load(s.referencePath)
	if err != nil {
		return err
	}
	for _, c := range table.Companies {
		a, err := s.scorer.Assess(table.ProfileFor(c), c.Items)
		if err != nil {
			return fmt.Errorf("reference company %q: %w", c.Name, err)
		}
		report := model.Report{
			ID:         referenceReportPrefix + c.Name,
			Company:    c.Name,
			Profile:    a.Profile,
			Items:      a.Items,
			Summary:    a.Summary,
			Categories: a.Categories,
			CreatedAt:  s.now().UTC(),
		}
		if err := s.store(ctx, report); err != nil {
			return fmt.Errorf("reference company %q: %w", c.Name, err)
		}
	}
	s.logger.Info(ctx, "reference table loaded",
		logger.String("path", s.referencePath),
		logger.Int("companies", len(table.Companies)),
	)
	return nil
}

// Aggregate runs the aggregator over a single-metric batch.
func (s *Service) Aggregate(_ context.Context, observations []model.Observation, sourceID string) (aggregate.Result, error) {
	return aggregate.Run(observations, sourceID)
}

// Sources lists the sources reporting metric, in first-seen order.
func (s *Service) Sources(_ context.Context, observations []model.Observation, metric string) []string {
	return aggregate.Sources(observations, metric)
}

// Score assesses items under profile without storing anything.
func (s *Service) Score(_ context.Context, profile string, items []model.ScoredItem) (scoring.Assessment, error) {
	return s.scorer.Assess(profile, items)
}

// RankPeers ranks items on one dimension.
func (s *Service) RankPeers(_ context.Context, items []model.ScoredItem, dimension string) ([]int, error) {
	return scoring.RankPeers(items, dimension)
}

// Summarize rolls items up overall and per category.
func (s *Service) Summarize(_ context.Context, items []model.ScoredItem) (model.Summary, []model.CategorySummary, error) {
	summary, err := scoring.Summarize(items)
	if err != nil {
		return model.Summary{}, nil, err
	}
	categories, err := scoring.ByCategory(items)
	if err != nil {
		return model.Summary{}, nil, err
	}
	return summary, categories, nil
}

// Profiles returns every registered profile, sorted by name.
func (s *Service) Profiles(_ context.Context) []scoring.Profile {
	names := s.scorer.Profiles()
	out := make([]scoring.Profile, 0, len(names))
	for _, name := range names {
		if p, err := s.scorer.Profile(name); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// SeenAndRecord atomically checks if a request id was seen and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes a request id from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits an assessment for asynchronous processing.
func (s *Service) Enqueue(ctx context.Context, job model.AssessmentJob) error {
	if s.jobs == nil {
		return ErrNotStarted
	}
	// Pending before the job is visible to workers.
	s.markPending(job.ID)
	if err := s.jobs.Enqueue(ctx, job); err != nil {
		s.clearPending(job.ID)
		return err
	}
	s.logger.Debug(ctx, "assessment queued",
		logger.String("assessment_id", job.ID),
		logger.String("company", job.Company),
		logger.Int("items", len(job.Items)),
	)
	return nil
}

// Assessment reports the state of a submitted assessment.
func (s *Service) Assessment(ctx context.Context, id string) (types.AssessmentState, error) {
	s.statusMu.RLock()
	_, pending := s.pending[id]
	s.statusMu.RUnlock()
	if pending {
		return types.AssessmentState{ID: id, Status: types.StatusPending}, nil
	}
	if s.reports == nil {
		return types.AssessmentState{}, ErrNotStarted
	}
	report, err := s.reports.Report(ctx, id)
	if err == nil {
		return types.AssessmentState{ID: id, Status: types.StatusCompleted, Report: &report}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return types.AssessmentState{}, err
	}
	failure, err := s.failures.Failure(ctx, id)
	if err != nil {
		return types.AssessmentState{}, err
	}
	return types.AssessmentState{ID: id, Status: types.StatusFailed, Error: failure.Error}, nil
}

// Assess runs one queued job through the engine.
func (s *Service) Assess(ctx context.Context, job model.AssessmentJob) (model.Report, error) { //nolint:gocritic // hugeParam: called by the worker with its copy
	a, err := s.scorer.Assess(job.Profile, job.Items)
	if err != nil {
		return model.Report{}, err
	}
	for _, it := range a.Items {
		metrics.RecordItemScored(string(it.Severity))
	}

	observations, err := s.collectObservations(ctx, job)
	if err != nil {
		return model.Report{}, err
	}
	series, err := aggregateSeries(observations)
	if err != nil {
		return model.Report{}, err
	}

	return model.Report{
		ID:         job.ID,
		Company:    job.Company,
		Profile:    a.Profile,
		Items:      a.Items,
		Summary:    a.Summary,
		Categories: a.Categories,
		Series:     series,
		CreatedAt:  s.now().UTC(),
	}, nil
}

// collectObservations merges inline observations with any metrics pulled
// from the observation store.
func (s *Service) collectObservations(ctx context.Context, job model.AssessmentJob) ([]model.Observation, error) { //nolint:gocritic // hugeParam
	if len(job.Metrics) == 0 {
		return job.Observations, nil
	}
	if s.source == nil {
		return nil, types.ErrObservationsDisabled
	}
	fetched, err := s.source.FetchMetrics(ctx, job.Metrics, defaultObservationFrom, defaultObservationTo)
	if err != nil {
		return nil, fmt.Errorf("fetch metrics: %w", err)
	}

	out := append([]model.Observation(nil), job.Observations...)
	for _, name := range job.Metrics {
		out = append(out, fetched[name]...)
	}
	return out, nil
}

// aggregateSeries averages each metric of a mixed batch across sources.
func aggregateSeries(observations []model.Observation) (map[string][]model.AggregatedPoint, error) {
	if len(observations) == 0 {
		return nil, nil
	}
	byMetric := aggregate.SplitByMetric(observations)
	out := make(map[string][]model.AggregatedPoint, len(byMetric))
	for metric, series := range byMetric {
		points, err := aggregate.Aggregate(series)
		if err != nil {
			return nil, fmt.Errorf("metric %q: %w", metric, err)
		}
		metrics.RecordAggregation("assessment", len(points))
		out[metric] = points
	}
	return out, nil
}

// Complete stores a finished report and moves its company on the board.
func (s *Service) Complete(ctx context.Context, report model.Report) error { //nolint:gocritic // hugeParam
	if err := s.store(ctx, report); err != nil {
		return err
	}
	s.clearPending(report.ID)

	if err := s.publisher.PublishCompleted(ctx, report); err != nil {
		s.logger.Warn(ctx, "completion event not published",
			logger.String("assessment_id", report.ID),
			logger.Error(err),
		)
	}
	return nil
}

// Fail records a failed assessment.
func (s *Service) Fail(ctx context.Context, job model.AssessmentJob, cause error) { //nolint:gocritic // hugeParam
	failure := repository.Failure{ID: job.ID, Error: cause.Error()}
	if err := s.failures.SaveFailure(ctx, failure); err != nil {
		s.logger.Error(ctx, "failure not recorded",
			logger.String("assessment_id", job.ID),
			logger.Error(err),
		)
	}
	s.clearPending(job.ID)

	if err := s.publisher.PublishFailed(ctx, job, cause); err != nil {
		s.logger.Warn(ctx, "failure event not published",
			logger.String("assessment_id", job.ID),
			logger.Error(err),
		)
	}
}

func (s *Service) store(ctx context.Context, report model.Report) error { //nolint:gocritic // hugeParam
	if err := s.reports.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	if err := s.board.UpsertCompany(ctx, report.Company, report.Summary.AverageOverall, report.ID); err != nil {
		return fmt.Errorf("update board: %w", err)
	}
	metrics.UpdateReportsStored(s.reports.ReportCount(ctx))
	metrics.UpdateBoardCompanies(s.board.Count(ctx))
	return nil
}

func (s *Service) markPending(id string) {
	s.statusMu.Lock()
	s.pending[id] = struct{}{}
	s.statusMu.Unlock()
}

func (s *Service) clearPending(id string) {
	s.statusMu.Lock()
	delete(s.pending, id)
	s.statusMu.Unlock()
}

// ObservedAggregate pulls one metric from the observation store and
// aggregates it.
func (s *Service) ObservedAggregate(ctx context.Context, metric, sourceID string, from, to time.Time) (aggregate.Result, error) {
	if s.source == nil {
		return aggregate.Result{}, types.ErrObservationsDisabled
	}
	obs, err := s.source.Observations(ctx, metric, from, to)
	if err != nil {
		return aggregate.Result{}, err
	}
	if len(obs) == 0 {
		return aggregate.Result{}, fmt.Errorf("%w: %s", types.ErrNoObservations, metric)
	}
	res, err := aggregate.Run(obs, sourceID)
	if err != nil {
		return aggregate.Result{}, err
	}
	metrics.RecordAggregation("observations", len(res.Points))
	return res, nil
}

// TopN returns the top N companies on the risk board.
func (s *Service) TopN(ctx context.Context, n int) ([]types.BoardEntry, error) {
	if s.board == nil {
		return nil, ErrNotStarted
	}
	entries, err := s.board.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	out := make([]types.BoardEntry, len(entries))
	for i, e := range entries {
		out[i] = toBoardEntry(e)
	}
	return out, nil
}

// CompanyRank returns the board position of company.
func (s *Service) CompanyRank(ctx context.Context, company string) (types.BoardEntry, error) {
	if s.board == nil {
		return types.BoardEntry{}, ErrNotStarted
	}
	e, err := s.board.Rank(ctx, company)
	if err != nil {
		return types.BoardEntry{}, err
	}
	return toBoardEntry(e), nil
}

func toBoardEntry(e repository.Entry) types.BoardEntry {
	return types.BoardEntry{
		Rank:           e.Rank,
		Company:        e.Company,
		AverageOverall: e.AverageOverall,
		Severity:       scoring.Classify(e.AverageOverall),
		ReportID:       e.ReportID,
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupeSize":   s.dedupeSize,
		"maxReports":   s.maxReports,
		"profiles":     s.scorer.Profiles(),
		"observations": s.source != nil,
	}

	if s.started {
		queueLen := s.jobs.Len(ctx)
		companies := s.board.Count(ctx)
		reports := s.reports.ReportCount(ctx)
		failed := s.failures.FailureCount(ctx)

		s.statusMu.RLock()
		inFlight := len(s.pending)
		s.statusMu.RUnlock()

		stats["queueLength"] = queueLen
		stats["companies"] = companies
		stats["reports"] = reports
		stats["tracked"] = inFlight
		stats["failed"] = failed
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateBoardCompanies(companies)
		metrics.UpdateReportsStored(reports)
	}

	return stats
}
