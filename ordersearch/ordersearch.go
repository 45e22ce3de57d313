// Package ordersearch implements the grid search over SARIMAX order
// tuples scored by an information criterion.
package ordersearch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/modelforge/sarimax/logging"
	"github.com/modelforge/sarimax/sarimax"
	"github.com/modelforge/sarimax/timeseries"
)

// ErrNoViableModel indicates that every candidate in the search space
// failed numerical estimation. The accompanying Result carries the
// sentinel score +Inf and the first enumerated order.
var ErrNoViableModel = errors.New("ordersearch: no candidate order could be estimated")

// Config describes one search pass.
type Config struct {
	Metric sarimax.Metric // Information criterion; lower is better

	PMax int // Maximum AR order to scan
	DMax int // Maximum differencing order to scan
	QMax int // Maximum MA order to scan

	// Seasonal switches the pass to scanning (P,D,Q) triples at
	// SeasonalPeriod with the non-seasonal order fixed to FixedOrder.
	Seasonal       bool
	SeasonalPeriod int
	FixedOrder     sarimax.Order

	// Baseline is the best non-seasonal score, used to confirm
	// seasonality during a seasonal pass. HasBaseline must be set when
	// providing one; a pass without a baseline never confirms
	// seasonality, so the float zero value cannot act as a score.
	Baseline    float64
	HasBaseline bool

	// Workers > 1 evaluates candidates in parallel. All results are
	// collected before the best is selected, so the deterministic
	// tie-break is preserved.
	Workers int
}

// Result is the outcome of one search pass.
type Result struct {
	Order    sarimax.Order
	Seasonal sarimax.SeasonalOrder // zero value in non-seasonal passes

	// Score is the best information-criterion value found, or +Inf if no
	// candidate could be estimated.
	Score float64

	// SeasonalityConfirmed is set during a seasonal pass when the best
	// seasonal score strictly improves on the non-seasonal baseline.
	SeasonalityConfirmed bool

	Evaluated int // candidates enumerated
	Failed    int // candidates that failed estimation
}

// Viable reports whether at least one candidate was estimated.
func (r Result) Viable() bool {
	return r.Evaluated > r.Failed
}

// Err returns ErrNoViableModel when no candidate could be estimated, nil
// otherwise.
func (r Result) Err() error {
	if r.Viable() {
		return nil
	}
	return ErrNoViableModel
}

// Searcher runs grid searches with a given estimator.
type Searcher struct {
	est sarimax.Estimator
	log *logging.Logger
}

// New creates a Searcher. A nil logger disables progress narration.
func New(est sarimax.Estimator, log *logging.Logger) *Searcher {
	if log == nil {
		log = logging.Nop()
	}
	return &Searcher{est: est, log: log}
}

// candidate is one enumerated order tuple. The index records enumeration
// order and breaks score ties deterministically.
type candidate struct {
	index    int
	order    sarimax.Order
	seasonal sarimax.SeasonalOrder
}

// scored is a candidate with its fit outcome.
type scored struct {
	candidate
	score float64
	err   error
}

// Search exhaustively enumerates order triples and returns the
// minimum-score candidate. Enumeration order is fixed: p outer, d middle,
// q inner (P, D, Q in seasonal passes). Ties are broken by the first
// candidate in enumeration order. Candidates whose fit fails are skipped,
// not scored as worst. If every candidate fails, Search does not return an
// error: the Result carries the first enumerated order and score +Inf, and
// Viable() reports false. Errors are returned only for invalid
// configuration or context cancellation.
func (s *Searcher) Search(ctx context.Context, series *timeseries.Series, cfg Config) (Result, error) {
	if err := validate(cfg); err != nil {
		return Result{}, err
	}

	candidates := enumerate(cfg)
	s.log.Debug("starting order search",
		"seasonal", cfg.Seasonal,
		"candidates", len(candidates),
		"metric", string(cfg.Metric))

	var results []scored
	var err error
	if cfg.Workers > 1 {
		results, err = s.evaluateParallel(ctx, series, candidates, cfg)
	} else {
		results, err = s.evaluateSequential(ctx, series, candidates, cfg)
	}
	if err != nil {
		return Result{}, err
	}

	return s.selectBest(results, cfg), nil
}

func validate(cfg Config) error {
	if cfg.PMax < 0 || cfg.DMax < 0 || cfg.QMax < 0 {
		return fmt.Errorf("ordersearch: order maxima must be non-negative, got p=%d d=%d q=%d",
			cfg.PMax, cfg.DMax, cfg.QMax)
	}
	if cfg.Seasonal && cfg.SeasonalPeriod < 2 {
		return fmt.Errorf("ordersearch: seasonal pass requires period > 1, got %d", cfg.SeasonalPeriod)
	}
	return nil
}

// enumerate produces the full candidate grid in the fixed traversal order.
func enumerate(cfg Config) []candidate {
	out := make([]candidate, 0, (cfg.PMax+1)*(cfg.DMax+1)*(cfg.QMax+1))
	idx := 0
	for p := 0; p <= cfg.PMax; p++ {
		for d := 0; d <= cfg.DMax; d++ {
			for q := 0; q <= cfg.QMax; q++ {
				c := candidate{index: idx}
				if cfg.Seasonal {
					c.order = cfg.FixedOrder
					c.seasonal = sarimax.SeasonalOrder{P: p, D: d, Q: q, Period: cfg.SeasonalPeriod}
				} else {
					c.order = sarimax.Order{P: p, D: d, Q: q}
				}
				out = append(out, c)
				idx++
			}
		}
	}
	return out
}

func (s *Searcher) evaluateSequential(ctx context.Context, series *timeseries.Series, candidates []candidate, cfg Config) ([]scored, error) {
	results := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ordersearch: search canceled: %w", err)
		}
		results = append(results, s.evaluate(series, c, cfg))
	}
	return results, nil
}

func (s *Searcher) evaluateParallel(ctx context.Context, series *timeseries.Series, candidates []candidate, cfg Config) ([]scored, error) {
	results := make([]scored, len(candidates))
	jobs := make(chan candidate)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				// Each fit sees its own copy of the training series.
				results[c.index] = s.evaluate(series.Copy(), c, cfg)
			}
		}()
	}

	var dispatchErr error
dispatch:
	for _, c := range candidates {
		select {
		case <-ctx.Done():
			dispatchErr = fmt.Errorf("ordersearch: search canceled: %w", ctx.Err())
			break dispatch
		case jobs <- c:
		}
	}
	close(jobs)
	wg.Wait()

	if dispatchErr != nil {
		return nil, dispatchErr
	}
	return results, nil
}

func (s *Searcher) evaluate(series *timeseries.Series, c candidate, cfg Config) scored {
	model, err := s.est.Fit(series, c.order, c.seasonal)
	if err != nil {
		s.log.Debug("candidate skipped",
			"order", c.order.String(),
			"seasonal", c.seasonal.String(),
			"error", err)
		return scored{candidate: c, score: math.Inf(1), err: err}
	}

	score := model.Score(cfg.Metric)
	s.log.Debug("candidate scored",
		"order", c.order.String(),
		"seasonal", c.seasonal.String(),
		"score", score)
	return scored{candidate: c, score: score}
}

// selectBest picks the minimum-score successful candidate, ties broken by
// enumeration index.
func (s *Searcher) selectBest(results []scored, cfg Config) Result {
	out := Result{
		Score:     math.Inf(1),
		Evaluated: len(results),
	}

	best := -1
	for i, r := range results {
		if r.err != nil {
			out.Failed++
			continue
		}
		if best == -1 || r.score < results[best].score {
			best = i
		}
	}

	if best == -1 {
		// Sentinel: first enumerated order, infinite score.
		if len(results) > 0 {
			out.Order = results[0].order
			out.Seasonal = results[0].seasonal
		}
		s.log.Warn("no viable candidate found", "candidates", out.Evaluated)
		return out
	}

	out.Order = results[best].order
	out.Seasonal = results[best].seasonal
	out.Score = results[best].score

	if cfg.Seasonal {
		// Seasonality is confirmed only when the seasonal pass strictly
		// improves on the non-seasonal baseline; any margin counts.
		out.SeasonalityConfirmed = cfg.HasBaseline && !math.IsNaN(cfg.Baseline) && out.Score < cfg.Baseline
	}

	s.log.Info("order search complete",
		"order", out.Order.String(),
		"seasonal", out.Seasonal.String(),
		"score", out.Score,
		"failed", out.Failed)
	return out
}
