package budget_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/beaconkit/beacon/internal/adapters/repository"
	"github.com/beaconkit/beacon/internal/alert"
	"github.com/beaconkit/beacon/internal/domain/budget"
	"github.com/beaconkit/beacon/internal/domain/model"
	"github.com/beaconkit/beacon/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// recordingSink captures alerts for assertions.
type recordingSink struct {
	mu     sync.Mutex
	alerts []alert.Alert
}

func (s *recordingSink) Send(_ context.Context, a alert.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	return nil
}

func (s *recordingSink) all() []alert.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]alert.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

func enriched(name model.MetricName, value float64) model.EnrichedMetric {
	return model.EnrichedMetric{
		Metric: model.NewMetric(name, value, "ms", time.Now()),
		Context: model.PageContext{
			URL:       "https://shop.example/cart",
			SessionID: "sess-1",
		},
	}
}

func TestNewTable(t *testing.T) {
	Convey("Given budget entries", t, func() {
		Convey("When all entries are well-formed", func() {
			table, err := budget.NewTable(map[string]budget.Budget{
				"lcp": {Threshold: 2500, Unit: "ms"},
				"cls": {Threshold: 0.1, Unit: "score"},
			})
			So(err, ShouldBeNil)
			So(table.Size(), ShouldEqual, 2)

			b, ok := table.Lookup(model.MetricLCP)
			So(ok, ShouldBeTrue)
			So(b.Threshold, ShouldEqual, 2500)
		})

		Convey("When a threshold is not positive, construction fails fast", func() {
			_, err := budget.NewTable(map[string]budget.Budget{
				"lcp": {Threshold: 0, Unit: "ms"},
			})
			So(err, ShouldWrap, budget.ErrInvalidBudget)
		})

		Convey("When a unit is missing, construction fails fast", func() {
			_, err := budget.NewTable(map[string]budget.Budget{
				"lcp": {Threshold: 2500},
			})
			So(err, ShouldWrap, budget.ErrInvalidBudget)
		})
	})
}

func TestSeverityFor(t *testing.T) {
	Convey("Given the default severity policy", t, func() {
		p := budget.DefaultSeverityPolicy()

		Convey("Then classification follows the ratio cutoffs", func() {
			So(budget.SeverityFor(1.1, p), ShouldEqual, model.SeverityLow)
			So(budget.SeverityFor(1.5, p), ShouldEqual, model.SeverityLow)
			So(budget.SeverityFor(1.6, p), ShouldEqual, model.SeverityMedium)
			So(budget.SeverityFor(2.0, p), ShouldEqual, model.SeverityMedium)
			So(budget.SeverityFor(2.4, p), ShouldEqual, model.SeverityHigh)
		})

		Convey("Then severity is monotonic in the ratio", func() {
			prev := 0
			for _, ratio := range []float64{1.01, 1.3, 1.51, 1.8, 2.01, 3, 10} {
				rank := budget.SeverityFor(ratio, p).Rank()
				So(rank, ShouldBeGreaterThanOrEqualTo, prev)
				prev = rank
			}
		})
	})
}

func TestValidator(t *testing.T) {
	Convey("Given a validator with an lcp budget of 2500ms", t, func() {
		table, err := budget.NewTable(map[string]budget.Budget{
			"lcp":  {Threshold: 2500, Unit: "ms"},
			"ttfb": {Threshold: 800, Unit: "ms"},
		})
		So(err, ShouldBeNil)

		sink := &recordingSink{}
		store := repository.NewMemStore()
		v := budget.NewValidator(table, store, sink)
		ctx := context.Background()

		Convey("When a metric stays within budget", func() {
			_, flagged := v.Validate(ctx, enriched(model.MetricLCP, 2400))
			So(flagged, ShouldBeFalse)
			So(store.Count(ctx), ShouldEqual, 0)
		})

		Convey("When a metric equals its threshold exactly", func() {
			_, flagged := v.Validate(ctx, enriched(model.MetricLCP, 2500))
			So(flagged, ShouldBeFalse)
		})

		Convey("When a metric has no configured budget", func() {
			_, flagged := v.Validate(ctx, enriched(model.MetricCLS, 99))
			So(flagged, ShouldBeFalse)
		})

		Convey("When lcp comes in at 6000ms", func() {
			invoked := make(chan struct{})
			v.RegisterAction(model.MetricLCP, func() { close(invoked) })

			viol, flagged := v.Validate(ctx, enriched(model.MetricLCP, 6000))

			Convey("Then a high-severity violation is recorded", func() {
				So(flagged, ShouldBeTrue)
				So(viol.Overage, ShouldEqual, 3500)
				So(viol.Ratio(), ShouldAlmostEqual, 2.4)
				So(viol.Severity, ShouldEqual, model.SeverityHigh)
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then an alert is dispatched", func() {
				alerts := sink.all()
				So(len(alerts), ShouldEqual, 1)
				So(alerts[0].Type, ShouldEqual, alert.TypeBudgetViolation)
				So(alerts[0].Severity, ShouldEqual, model.SeverityHigh)
				So(alerts[0].Context.SessionID, ShouldEqual, "sess-1")
			})

			Convey("Then the corrective action runs without being awaited", func() {
				select {
				case <-invoked:
				case <-time.After(time.Second):
					t.Fatal("corrective action was not invoked")
				}
			})
		})

		Convey("When ttfb lands between the medium and high cutoffs", func() {
			viol, flagged := v.Validate(ctx, enriched(model.MetricTTFB, 1400))

			So(flagged, ShouldBeTrue)
			So(viol.Severity, ShouldEqual, model.SeverityMedium)

			Convey("Then an alert is dispatched but no corrective action fires", func() {
				alerts := sink.all()
				So(len(alerts), ShouldEqual, 1)
			})
		})

		Convey("When a violation is low severity, it is logged only", func() {
			viol, flagged := v.Validate(ctx, enriched(model.MetricTTFB, 900))

			So(flagged, ShouldBeTrue)
			So(viol.Severity, ShouldEqual, model.SeverityLow)
			So(len(sink.all()), ShouldEqual, 0)
		})
	})
}

func TestSessionEscalation(t *testing.T) {
	Convey("Given a validator with a burst policy of 3 per minute", t, func() {
		table, _ := budget.NewTable(map[string]budget.Budget{
			"ttfb": {Threshold: 800, Unit: "ms"},
		})
		sink := &recordingSink{}
		now := time.Unix(1700000000, 0)
		v := budget.NewValidator(table, repository.NewMemStore(), sink,
			budget.WithBurstPolicy(3, time.Minute),
			budget.WithClock(func() time.Time { return now }),
		)
		ctx := context.Background()

		Convey("When violations stay under the burst threshold", func() {
			for i := 0; i < 3; i++ {
				v.Validate(ctx, enriched(model.MetricTTFB, 900))
			}
			for _, a := range sink.all() {
				So(a.Type, ShouldNotEqual, alert.TypeSessionEscalation)
			}
		})

		Convey("When a fourth violation arrives inside the window", func() {
			for i := 0; i < 4; i++ {
				v.Validate(ctx, enriched(model.MetricTTFB, 900))
			}

			var escalations int
			for _, a := range sink.all() {
				if a.Type == alert.TypeSessionEscalation {
					escalations++
				}
			}
			So(escalations, ShouldEqual, 1)

			Convey("And further violations in the same burst do not re-escalate", func() {
				v.Validate(ctx, enriched(model.MetricTTFB, 900))

				escalations = 0
				for _, a := range sink.all() {
					if a.Type == alert.TypeSessionEscalation {
						escalations++
					}
				}
				So(escalations, ShouldEqual, 1)
			})
		})
	})
}

func TestReport(t *testing.T) {
	Convey("Given a validator with two configured budgets", t, func() {
		table, _ := budget.NewTable(map[string]budget.Budget{
			"lcp":  {Threshold: 2500, Unit: "ms"},
			"ttfb": {Threshold: 800, Unit: "ms"},
		})
		sink := &recordingSink{}
		now := time.Unix(1700000000, 0)
		store := repository.NewMemStore(repository.WithClock(func() time.Time { return now }))
		v := budget.NewValidator(table, store, sink,
			budget.WithClock(func() time.Time { return now }),
		)
		ctx := context.Background()

		Convey("When only lcp has violated", func() {
			v.Validate(ctx, enriched(model.MetricLCP, 6000))
			v.Validate(ctx, enriched(model.MetricLCP, 3000))

			r := v.Report(ctx, time.Hour)

			Convey("Then aggregates reflect the window", func() {
				So(r.TotalViolations, ShouldEqual, 2)
				So(r.ByMetric[model.MetricLCP].Count, ShouldEqual, 2)
				So(r.ByMetric[model.MetricLCP].BySeverity[model.SeverityHigh], ShouldEqual, 1)
				So(r.ByMetric[model.MetricLCP].MaxRatio, ShouldAlmostEqual, 2.4)
			})

			Convey("Then budget health counts distinct violated metrics", func() {
				So(r.BudgetHealth, ShouldEqual, 50)
			})

			Convey("Then a second report with no new violations is identical", func() {
				again := v.Report(ctx, time.Hour)
				So(again, ShouldResemble, r)
			})
		})

		Convey("When every configured metric has violated", func() {
			v.Validate(ctx, enriched(model.MetricLCP, 6000))
			v.Validate(ctx, enriched(model.MetricTTFB, 2000))

			r := v.Report(ctx, time.Hour)
			So(r.BudgetHealth, ShouldEqual, 0)
		})

		Convey("When the window excludes all violations", func() {
			v.Validate(ctx, enriched(model.MetricLCP, 6000))
			now = now.Add(2 * time.Hour)

			r := v.Report(ctx, time.Hour)
			So(r.TotalViolations, ShouldEqual, 0)
			So(r.BudgetHealth, ShouldEqual, 100)
		})
	})
}
