package recorder

import (
	"time"

	"github.com/google/uuid"

	"StockPulse/internal/model"
)

// Run kinds.
const (
	KindSeasonal = "seasonal"
	KindScreen   = "screen"
	KindPredict  = "predict"
)

// Run holds one analysis run and, for seasonal runs, its per-symbol results.
type Run struct {
	ID           string
	Kind         string
	StartedAt    time.Time
	WindowStart  time.Time
	WindowEnd    time.Time
	Summaries    []model.SymbolSummary
	Observations map[string][]model.MonthlyObservation // by symbol
	Failed       int
}

// NewRun creates a Run with a fresh ID.
func NewRun(kind string, startedAt time.Time) *Run {
	return &Run{
		ID:           uuid.NewString(),
		Kind:         kind,
		StartedAt:    startedAt,
		Observations: make(map[string][]model.MonthlyObservation),
	}
}

// Recorder persists run results for later analysis.
type Recorder interface {
	RecordRun(run *Run) error
	RecordPicks(runID string, picks []model.Pick) error
	RecordPredictions(runID string, preds []model.Prediction) error
	Close() error
}
