package dataset

import (
	"context"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/aq-dashboard/internal/config"
	"github.com/sells-group/aq-dashboard/internal/fetcher"
	"github.com/sells-group/aq-dashboard/internal/resilience"
)

// Source column names.
const (
	ColPlace     = "geo_place_name"
	ColGeoType   = "geo_type_name"
	ColPollutant = "name"
	ColPeriod    = "time_period"
	ColValue     = "data_value"
	ColUnit      = "measure_info"
)

var requiredColumns = []string{ColPlace, ColGeoType, ColPollutant, ColPeriod, ColValue, ColUnit}

// LoadOptions controls fetching.
type LoadOptions struct {
	MaxAttempts    int
	Backoff        time.Duration
	AttemptTimeout time.Duration
}

// OptionsFromConfig maps the dataset config section onto LoadOptions.
func OptionsFromConfig(cfg config.DatasetConfig) LoadOptions {
	return LoadOptions{
		MaxAttempts:    cfg.MaxAttempts,
		Backoff:        cfg.RetryBackoff(),
		AttemptTimeout: cfg.FetchTimeout(),
	}
}

// Load fetches source through f and parses it. Transient failures, including
// an attempt running past AttemptTimeout, are retried with a fixed backoff.
// Malformed or empty sources fail immediately.
func Load(ctx context.Context, f fetcher.Fetcher, source string, opts LoadOptions) (*Dataset, error) {
	log := zap.L().With(zap.String("source", source))
	start := time.Now()

	retry := resilience.FixedBackoff(opts.MaxAttempts, opts.Backoff)
	retry.OnRetry = resilience.RetryLogger("dataset load")
	retry.ShouldRetry = func(err error) bool {
		if eris.Is(err, ErrMalformed) || eris.Is(err, ErrEmpty) {
			return false
		}
		return resilience.IsTransient(err)
	}

	ds, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*Dataset, error) {
		return loadOnce(ctx, f, source, opts.AttemptTimeout)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: load %s", source)
	}

	log.Info("dataset loaded",
		zap.Int("records", ds.Len()),
		zap.Int("skipped", ds.Skipped()),
		zap.Int("pollutants", len(ds.pollutants)),
		zap.Int("places", len(ds.places)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ds, nil
}

func loadOnce(ctx context.Context, f fetcher.Fetcher, source string, timeout time.Duration) (*Dataset, error) {
	attemptCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	body, err := f.Download(attemptCtx, source)
	if err == nil {
		defer body.Close() //nolint:errcheck
		var ds *Dataset
		ds, err = Parse(attemptCtx, body)
		if err == nil {
			return ds, nil
		}
	}

	if ctx.Err() == nil && attemptCtx.Err() == context.DeadlineExceeded {
		return nil, resilience.NewTransientError(eris.Wrapf(err, "attempt exceeded %s", timeout), 0)
	}
	return nil, err
}

// Parse reads CSV with a header row from r. Rows outside the supported
// periods are dropped, rows with a blank or non-numeric data_value are
// skipped and counted.
func Parse(ctx context.Context, r io.Reader) (*Dataset, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
		HasHeader:  true,
		HeaderCh:   headerCh,
		LazyQuotes: true,
		TrimSpace:  true,
	})

	var (
		cols     map[string]int
		records  []Observation
		skipped  int
		filtered int
	)
	for row := range rowCh {
		if cols == nil {
			var err error
			if cols, err = resolveColumns(<-headerCh); err != nil {
				return nil, err
			}
		}

		obs := Observation{
			Place:     field(row, cols[ColPlace]),
			GeoType:   field(row, cols[ColGeoType]),
			Pollutant: field(row, cols[ColPollutant]),
			Period:    field(row, cols[ColPeriod]),
			Unit:      field(row, cols[ColUnit]),
		}
		if !IsSupportedPeriod(obs.Period) {
			filtered++
			continue
		}
		v, ok := parseValue(field(row, cols[ColValue]))
		if !ok {
			skipped++
			continue
		}
		obs.Value = v
		records = append(records, obs)
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrap(err, "dataset: read csv")
	}

	if cols == nil {
		select {
		case header := <-headerCh:
			if _, err := resolveColumns(header); err != nil {
				return nil, err
			}
		default:
			return nil, eris.Wrap(ErrMalformed, "missing header row")
		}
	}

	if skipped > 0 {
		zap.L().Warn("dataset: skipped rows with unusable data_value", zap.Int("skipped", skipped))
	}
	zap.L().Debug("dataset: parsed",
		zap.Int("kept", len(records)),
		zap.Int("other_periods", filtered),
	)

	if len(records) == 0 {
		return nil, eris.Wrapf(ErrEmpty, "no rows for %q or %q", SeasonWinter, SeasonSummer)
	}
	return build(records, skipped), nil
}

func resolveColumns(header []string) (map[string]int, error) {
	idx := fetcher.HeaderIndex(header)
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Wrapf(ErrMalformed, "missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func parseValue(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
