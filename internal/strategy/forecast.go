package strategy

import (
	"fmt"
	"time"

	"github.com/sztime001/trading-backtesting/internal/features"
	"github.com/sztime001/trading-backtesting/internal/model"
	"github.com/sztime001/trading-backtesting/internal/signal"
)

// DefaultWarmup is the number of leading signals forced flat by the forecaster.
const DefaultWarmup = 5

// Periods splits history into a training slice and a test slice.
type Periods struct {
	TrainStart time.Time
	TestStart  time.Time
	End        time.Time // zero keeps every row from TestStart on
}

// ForecastParams tunes feature derivation and signal alignment.
type ForecastParams struct {
	Lags  int
	Nudge float64
	// Warmup is the number of leading signals held flat; nil selects DefaultWarmup.
	Warmup *int
	// PredictionShift assigns the prediction made for the row PredictionShift periods later to
	// each bar. 0 aligns by date; 1 reproduces the historical one-period offset.
	PredictionShift int
}

// Forecaster predicts the direction of each period from the two previous returns and trades
// short or long accordingly.
type Forecaster struct {
	symbol     string
	params     ForecastParams
	warmup     int
	classifier model.Classifier
	predictors []features.Row
	byTime     map[int64]int
}

// NewForecaster derives the lagged feature table from history, fits the classifier on the
// training slice, and keeps the test slice as predictors.
func NewForecaster(symbol string, history signal.PriceSeries, periods Periods, params ForecastParams) (*Forecaster, error) {
	if params.Lags <= 0 {
		params.Lags = features.DefaultLags
	}
	if params.Lags < 2 {
		return nil, fmt.Errorf("%w: forecaster needs at least 2 lags, got %d", signal.ErrConfiguration, params.Lags)
	}
	if params.Nudge <= 0 {
		params.Nudge = features.DefaultNudge
	}
	warmup := DefaultWarmup
	if params.Warmup != nil {
		warmup = *params.Warmup
	}
	if warmup < 0 {
		return nil, fmt.Errorf("%w: negative warm-up %d", signal.ErrConfiguration, warmup)
	}
	if params.PredictionShift < 0 {
		return nil, fmt.Errorf("%w: negative prediction shift %d", signal.ErrConfiguration, params.PredictionShift)
	}
	if !periods.TestStart.After(periods.TrainStart) {
		return nil, fmt.Errorf("%w: test period must start after training period", signal.ErrConfiguration)
	}

	rows := features.LaggedSeries(history, periods.TrainStart, features.Params{Lags: params.Lags, Nudge: params.Nudge})

	var x [][]float64
	var y []int
	f := &Forecaster{symbol: symbol, params: params, warmup: warmup, byTime: make(map[int64]int)}
	for _, row := range rows {
		if row.Time.Before(periods.TestStart) {
			lag1, lag2 := row.Lag(1), row.Lag(2)
			if !lag1.Valid || !lag2.Valid || row.Direction == 0 {
				continue
			}
			x = append(x, []float64{lag1.Float64, lag2.Float64})
			y = append(y, row.Direction)
			continue
		}
		if !periods.End.IsZero() && row.Time.After(periods.End) {
			continue
		}
		f.byTime[row.Time.UnixNano()] = len(f.predictors)
		f.predictors = append(f.predictors, row)
	}

	qda, err := model.FitQDA(x, y)
	if err != nil {
		return nil, fmt.Errorf("fit %s forecaster: %w", symbol, err)
	}
	f.classifier = qda
	return f, nil
}

// Name returns the identifier for logging.
func (f *Forecaster) Name() string { return "Forecaster(" + f.symbol + ")" }

// Predictors returns the number of retained test-period rows.
func (f *Forecaster) Predictors() int { return len(f.predictors) }

// Generate assigns a predicted direction to every bar, holding the warm-up periods flat.
func (f *Forecaster) Generate(bars signal.PriceSeries) (signal.SignalSeries, error) {
	if err := bars.Validate(); err != nil {
		return signal.SignalSeries{}, err
	}
	out := signal.SignalSeries{Strategy: f.Name(), Signals: make([]signal.Signal, len(bars))}
	for i, b := range bars {
		idx, ok := f.byTime[b.Time.UnixNano()]
		if !ok {
			return signal.SignalSeries{}, fmt.Errorf("%w: no predictor row for %s", signal.ErrAlignment, b.Time.Format(time.DateOnly))
		}
		idx += f.params.PredictionShift
		if idx >= len(f.predictors) {
			return signal.SignalSeries{}, fmt.Errorf("%w: predictors end before bar %s (shift %d)",
				signal.ErrAlignment, b.Time.Format(time.DateOnly), f.params.PredictionShift)
		}

		out.Signals[i] = signal.Signal{Time: b.Time}
		if i < f.warmup {
			continue
		}
		row := f.predictors[idx]
		lag1, lag2 := row.Lag(1), row.Lag(2)
		if !lag1.Valid || !lag2.Valid {
			return signal.SignalSeries{}, fmt.Errorf("%w: undefined lag features on %s", signal.ErrNumeric, row.Time.Format(time.DateOnly))
		}
		direction, err := f.classifier.Predict([]float64{lag1.Float64, lag2.Float64})
		if err != nil {
			return signal.SignalSeries{}, fmt.Errorf("predict %s: %w", row.Time.Format(time.DateOnly), err)
		}
		out.Signals[i].Value = direction
	}
	out.FillDeltas()
	return out, nil
}
