// Package influx reads scenario observations from an InfluxDB bucket.
//
// Points live in one measurement; the field is the metric name, the "source"
// tag names the contributing source and the point's year becomes the group key.
package influx

import (
	"context"
	"fmt"
	"regexp"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/query"
	"golang.org/x/sync/errgroup"

	"github.com/okian/climarisk/internal/domain/model"
	"github.com/okian/climarisk/pkg/logger"
	"github.com/okian/climarisk/pkg/metrics"
)

const (
	sourceTag          = "source"
	defaultMeasurement = "climate"
	maxParallelQueries = 4
)

// Names end up inside Flux string literals.
var identPattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,128}$`)

// Config holds connection settings.
type Config struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

// rows is the subset of *api.QueryTableResult the source reads.
type rows interface {
	Next() bool
	Record() *query.FluxRecord
	Err() error
	Close() error
}

type queryFunc func(ctx context.Context, flux string) (rows, error)

// Source fetches observations with Flux queries.
type Source struct {
	client      influxdb2.Client
	query       queryFunc
	bucket      string
	measurement string
	logger      logger.Logger
}

// NewSource creates a client for cfg. Call Close when done.
func NewSource(cfg Config, log logger.Logger) (*Source, error) {
	if cfg.URL == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, ErrMissingConfig
	}
	if cfg.Measurement == "" {
		cfg.Measurement = defaultMeasurement
	}
	if !identPattern.MatchString(cfg.Bucket) || !identPattern.MatchString(cfg.Measurement) {
		return nil, fmt.Errorf("%w: bucket %q measurement %q", ErrMissingConfig, cfg.Bucket, cfg.Measurement)
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	queryAPI := client.QueryAPI(cfg.Org)
	s := newSource(func(ctx context.Context, flux string) (rows, error) {
		return queryAPI.Query(ctx, flux)
	}, cfg.Bucket, cfg.Measurement, log)
	s.client = client
	return s, nil
}

func newSource(q queryFunc, bucket, measurement string, log logger.Logger) *Source {
	return &Source{query: q, bucket: bucket, measurement: measurement, logger: log}
}

// Close releases the underlying client.
func (s *Source) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// Observations returns one yearly observation per source for metric in
// [from, to). Several points of a source within one year are averaged by the
// query.
func (s *Source) Observations(ctx context.Context, metric string, from, to time.Time) ([]model.Observation, error) {
	if !identPattern.MatchString(metric) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMetric, metric)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: %s is not before %s", ErrInvalidRange, from.Format(time.RFC3339), to.Format(time.RFC3339))
	}

	result, err := s.query(ctx, buildQuery(s.bucket, s.measurement, metric, from, to))
	if err != nil {
		metrics.RecordObservationQuery("error")
		return nil, fmt.Errorf("influx query %s: %w", metric, err)
	}
	defer func() { _ = result.Close() }()

	byKey := make(map[string]model.Observation)
	var order []string
	for result.Next() {
		obs, ok := mapRecord(metric, result.Record())
		if !ok {
			continue
		}
		k := fmt.Sprintf("%s\x00%d", obs.SourceID, obs.GroupKey)
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = obs
	}
	if err := result.Err(); err != nil {
		metrics.RecordObservationQuery("error")
		return nil, fmt.Errorf("reading influx results for %s: %w", metric, err)
	}

	out := make([]model.Observation, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	metrics.RecordObservationQuery("ok")
	s.logger.Debug(ctx, "observations fetched",
		logger.String("metric", metric),
		logger.Int("count", len(out)),
	)
	return out, nil
}

// FetchMetrics queries several metrics concurrently.
func (s *Source) FetchMetrics(ctx context.Context, names []string, from, to time.Time) (map[string][]model.Observation, error) {
	results := make([][]model.Observation, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelQueries)
	for i, name := range names {
		g.Go(func() error {
			obs, err := s.Observations(gctx, name, from, to)
			if err != nil {
				return err
			}
			results[i] = obs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]model.Observation, len(names))
	for i, name := range names {
		out[name] = results[i]
	}
	return out, nil
}

func buildQuery(bucket, measurement, metric string, from, to time.Time) string {
	return fmt.Sprintf(`from(bucket: %q)
  |> range(start: %s, stop: %s)
  |> filter(fn: (r) => r._measurement == %q and r._field == %q)
  |> group(columns: [%q])
  |> aggregateWindow(every: 1y, fn: mean, timeSrc: "_start", createEmpty: false)
  |> keep(columns: ["_time", "_value", %q])
  |> sort(columns: [%q, "_time"])`,
		bucket,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
		measurement, metric,
		sourceTag, sourceTag, sourceTag,
	)
}

// mapRecord converts a Flux row; rows without a source tag are skipped.
func mapRecord(metric string, rec *query.FluxRecord) (model.Observation, bool) {
	if rec == nil {
		return model.Observation{}, false
	}
	src, _ := rec.ValueByKey(sourceTag).(string)
	if src == "" {
		return model.Observation{}, false
	}
	obs := model.Observation{
		SourceID: src,
		GroupKey: rec.Time().UTC().Year(),
		Metric:   metric,
	}
	switch v := rec.Value().(type) {
	case float64:
		obs.Value = model.Float(v)
	case int64:
		obs.Value = model.Float(float64(v))
	case uint64:
		obs.Value = model.Float(float64(v))
	}
	return obs, true
}
