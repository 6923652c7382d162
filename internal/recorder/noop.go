package recorder

import "StockPulse/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *Run) error                                 { return nil }
func (n *NoopRecorder) RecordPicks(_ string, _ []model.Pick) error             { return nil }
func (n *NoopRecorder) RecordPredictions(_ string, _ []model.Prediction) error { return nil }
func (n *NoopRecorder) Close() error                                           { return nil }
