// Package dashboard turns user interactions into chart updates over a
// read-only dataset snapshot.
package dashboard

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/aq-dashboard/internal/aggregate"
	"github.com/sells-group/aq-dashboard/internal/dataset"
	"github.com/sells-group/aq-dashboard/internal/figure"
	"github.com/sells-group/aq-dashboard/internal/observability"
)

// ErrUnknownPollutant is returned when a pollutant is not in the dataset.
var ErrUnknownPollutant = eris.New("no such pollutant")

// Update is the result of handling an event. A nil figure means the chart
// keeps whatever it currently shows.
type Update struct {
	DetailID   string
	Detail     *figure.Figure
	Comparison *figure.Figure
}

// NoUpdate leaves both charts untouched.
func NoUpdate() Update { return Update{} }

// IsNoUpdate reports whether u changes neither chart.
func (u Update) IsNoUpdate() bool {
	return u.Detail == nil && u.Comparison == nil
}

// Options configures a Dashboard.
type Options struct {
	DefaultPollutant string
	Store            *FigureStore
	Metrics          *observability.Metrics
}

// Dashboard answers chart requests. It is safe for concurrent use.
type Dashboard struct {
	ds               *dataset.Dataset
	ranges           aggregate.Ranges
	store            *FigureStore
	metrics          *observability.Metrics
	defaultPollutant string
}

// New precomputes the range table for ds and wires the figure store.
func New(ds *dataset.Dataset, opts Options) *Dashboard {
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetricsForTesting()
	}
	if opts.Store == nil {
		opts.Store = NewFigureStore(StoreOptions{Metrics: opts.Metrics})
	}

	d := &Dashboard{
		ds:      ds,
		ranges:  aggregate.ComputeRanges(ds),
		store:   opts.Store,
		metrics: opts.Metrics,
	}

	pollutants := ds.Pollutants()
	switch {
	case ds.HasPollutant(opts.DefaultPollutant):
		d.defaultPollutant = opts.DefaultPollutant
	case len(pollutants) > 0:
		d.defaultPollutant = pollutants[0]
		if opts.DefaultPollutant != "" {
			zap.L().Warn("dashboard: default pollutant not in dataset",
				zap.String("configured", opts.DefaultPollutant),
				zap.String("using", d.defaultPollutant),
			)
		}
	}
	return d
}

// Dataset returns the snapshot the dashboard reads.
func (d *Dashboard) Dataset() *dataset.Dataset { return d.ds }

// Pollutants returns the dropdown choices in first-seen order.
func (d *Dashboard) Pollutants() []string { return d.ds.Pollutants() }

// DefaultPollutant is the initially selected pollutant.
func (d *Dashboard) DefaultPollutant() string { return d.defaultPollutant }

// Ranges returns the precomputed range table.
func (d *Dashboard) Ranges() aggregate.Ranges { return d.ranges }

// Store returns the figure store.
func (d *Dashboard) Store() *FigureStore { return d.store }

// Overview ranks places by their mean level of pollutant.
func (d *Dashboard) Overview(pollutant string) (*figure.Figure, error) {
	defer d.observe("overview", time.Now())

	if !d.ds.HasPollutant(pollutant) {
		return nil, eris.Wrapf(ErrUnknownPollutant, "%q", pollutant)
	}
	return figure.Overview(pollutant, aggregate.PlaceMeans(d.ds, pollutant)), nil
}

// Figure returns the retained detail figure with the given id.
func (d *Dashboard) Figure(id string) (*figure.Figure, bool) {
	return d.store.Get(id)
}

// Handle dispatches ev. Events that cannot be served, and events arriving
// after ctx is done, are answered with NoUpdate.
func (d *Dashboard) Handle(ctx context.Context, ev Event) Update {
	if err := ctx.Err(); err != nil {
		zap.L().Debug("dashboard: event dropped", zap.String("kind", Kind(ev)), zap.Error(err))
		return NoUpdate()
	}

	var u Update
	switch e := ev.(type) {
	case OverviewClicked:
		u = d.overviewClicked(e)
	case DetailHovered:
		u = d.detailHovered(e)
	case Initial:
		u = d.initial(e)
	default:
		zap.L().Warn("dashboard: unhandled event", zap.String("type", Kind(ev)))
		u = NoUpdate()
	}

	outcome := "update"
	if u.IsNoUpdate() {
		outcome = "no_update"
	}
	d.metrics.Events.WithLabelValues(Kind(ev), outcome).Inc()

	if ce := zap.L().Check(zap.DebugLevel, "dashboard: event handled"); ce != nil {
		ce.Write(
			zap.String("kind", Kind(ev)),
			zap.String("outcome", outcome),
			zap.String("detail_id", u.DetailID),
		)
	}
	return u
}

func (d *Dashboard) overviewClicked(e OverviewClicked) Update {
	defer d.observe("detail", time.Now())

	if e.Location == "" {
		return NoUpdate()
	}

	detail := figure.Detail(e.Location, aggregate.PollutantMeans(d.ds, e.Location), d.ranges.DetailRange())
	comparison := figure.Comparison(e.Location, aggregate.SeasonalChange(d.ds, e.Location), d.ranges.ComparisonRange())
	if detail.NoData {
		zap.L().Info("dashboard: clicked location has no observations", zap.String("location", e.Location))
	}

	return Update{
		DetailID:   d.store.Put(detail),
		Detail:     detail,
		Comparison: comparison,
	}
}

func (d *Dashboard) detailHovered(e DetailHovered) Update {
	defer d.observe("hover", time.Now())

	base, ok := d.store.Get(e.FigureID)
	if !ok {
		zap.L().Info("dashboard: hover on unknown or expired figure", zap.String("figure_id", e.FigureID))
		return NoUpdate()
	}
	if e.Pollutant == "" {
		return Update{DetailID: e.FigureID, Detail: figure.Base(base)}
	}

	ref, ok := aggregate.ReferenceFor(d.ds, e.Pollutant)
	if !ok {
		zap.L().Info("dashboard: hover on unknown pollutant", zap.String("pollutant", e.Pollutant))
		return NoUpdate()
	}
	return Update{DetailID: e.FigureID, Detail: figure.WithReferenceLines(base, ref)}
}

func (d *Dashboard) initial(e Initial) Update {
	defer d.observe("initial", time.Now())

	if e.FigureID != "" {
		if base, ok := d.store.Get(e.FigureID); ok {
			return Update{DetailID: e.FigureID, Detail: base}
		}
	}
	return Update{Detail: figure.Empty()}
}

func (d *Dashboard) observe(callback string, start time.Time) {
	d.metrics.CallbackDuration.WithLabelValues(callback).Observe(time.Since(start).Seconds())
}
