package models

import (
	"time"

	"github.com/google/uuid"
)

// PredictionRecord pairs a model's out-of-sample directional call with the
// ground-truth label for one trading day.
type PredictionRecord struct {
	RunID      uuid.UUID `db:"run_id" json:"run_id"`
	Date       time.Time `db:"date" json:"date" validate:"required"`
	Target     int       `db:"target" json:"target" validate:"gte=0,lte=1"`
	Prediction int       `db:"prediction" json:"prediction" validate:"gte=0,lte=1"`
	FoldIndex  int       `db:"fold_index" json:"fold_index"`
}

// Correct reports whether the call matched the realized direction.
func (p *PredictionRecord) Correct() bool {
	return p.Target == p.Prediction
}

// TruePositive reports a predicted-up day that was in fact up. Precision
// counts these against all predicted-up days.
func (p *PredictionRecord) TruePositive() bool {
	return p.Prediction == 1 && p.Target == 1
}

// FalsePositive reports a predicted-up day that was in fact down.
func (p *PredictionRecord) FalsePositive() bool {
	return p.Prediction == 1 && p.Target == 0
}
