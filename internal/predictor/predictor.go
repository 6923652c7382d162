// Package predictor turns screened bhavcopy rows into next-session targets,
// using an LLM when one is configured and classic pivots otherwise.
package predictor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"StockPulse/internal/calculator"
	"StockPulse/internal/model"
)

// Model is the subset of Client used by Service.
type Model interface {
	Predict(ctx context.Context, symbol, technical string) (*AIResult, error)
}

// LiveQuoter returns a symbol's last traded price.
type LiveQuoter interface {
	LivePrice(ctx context.Context, symbol string) (float64, error)
}

// Decide merges the model answer with pivot levels. Without a usable answer the
// pivot R1 becomes the target; S1 is always the stop-loss.
func Decide(row model.BhavRow, lv model.PivotLevels, ai *AIResult) model.Prediction {
	p := model.Prediction{
		Symbol:   row.Symbol,
		Close:    row.Close,
		Live:     row.Close,
		StopLoss: lv.S1,
	}
	if ai == nil {
		p.Target = lv.R1
		p.Sentiment = "Neutral"
		p.Reasoning = "Pivot Point Resistance (R1)"
		p.Source = model.SourcePivot
		return p
	}

	p.Source = model.SourceAI
	p.Target = lv.R1
	if ai.PredictedPrice != nil && *ai.PredictedPrice > 0 {
		p.Target = *ai.PredictedPrice
	}
	p.Sentiment = ai.Sentiment
	if p.Sentiment == "" {
		p.Sentiment = "Neutral"
	}
	p.Confidence = 5
	if ai.Confidence != nil {
		p.Confidence = *ai.Confidence
	}
	p.Reasoning = ai.Reason
	if p.Reasoning == "" {
		p.Reasoning = "Based on technical analysis"
	}
	return p
}

// Service produces predictions for screened picks.
type Service struct {
	Model  Model      // nil disables the LLM
	Quotes LiveQuoter // nil disables live prices
	Logger *zap.Logger
	Now    func() time.Time
}

// NewService creates a Service.
func NewService(m Model, q LiveQuoter, logger *zap.Logger) *Service {
	return &Service{Model: m, Quotes: q, Logger: logger.Named("predictor"), Now: time.Now}
}

// PredictAll returns one prediction per pick in order. Rows whose pivots cannot
// be computed are skipped.
func (s *Service) PredictAll(ctx context.Context, picks []model.Pick) []model.Prediction {
	var out []model.Prediction
	for _, pick := range picks {
		row := pick.BhavRow
		log := s.Logger.With(zap.String("symbol", row.Symbol))

		lv, err := calculator.CalculatePivots(row.High, row.Low, row.Close, row.PrevClose)
		if err != nil {
			log.Warn("skip pick", zap.Error(err))
			continue
		}

		var ai *AIResult
		if s.Model != nil {
			ai, err = s.Model.Predict(ctx, row.Symbol, TechnicalContext(row, lv, s.Now()))
			if err != nil {
				log.Warn("model failed, using pivots", zap.Error(err))
				ai = nil
			}
		}
		p := Decide(row, lv, ai)

		if s.Quotes != nil {
			if live, err := s.Quotes.LivePrice(ctx, row.Symbol); err != nil {
				log.Warn("live price unavailable, using close", zap.Error(err))
			} else {
				p.Live = live
			}
		}
		out = append(out, p)
	}
	return out
}
