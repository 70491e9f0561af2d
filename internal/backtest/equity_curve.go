package backtest

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/yourusername/futures-signal/internal/models"
)

// EquityPoint represents a point in the signal equity curve
type EquityPoint struct {
	Time        time.Time `json:"time"`
	Value       float64   `json:"value"`
	Drawdown    float64   `json:"drawdown"`
	DailyReturn float64   `json:"daily_return"`
}

// EquityCurve represents a time-series of equity points
type EquityCurve []EquityPoint

// BuildSignalCurve simulates holding the contract on every day the model
// predicted up and staying flat otherwise, compounding next-day
// close-to-close returns. returns[date] is the next-day return of the row
// the prediction was made for.
func BuildSignalCurve(predictions []models.PredictionRecord, returns map[time.Time]float64) EquityCurve {
	curve := make(EquityCurve, 0, len(predictions))
	equity := 1.0
	peak := 1.0

	for _, p := range predictions {
		dailyReturn := 0.0
		if p.Prediction == 1 {
			dailyReturn = returns[p.Date]
		}
		equity *= 1 + dailyReturn
		if equity > peak {
			peak = equity
		}
		drawdown := 0.0
		if peak > 0 {
			drawdown = (peak - equity) / peak
		}
		curve = append(curve, EquityPoint{
			Time:        p.Date,
			Value:       equity,
			Drawdown:    drawdown,
			DailyReturn: dailyReturn,
		})
	}
	return curve
}

// GetReturns calculates periodic returns from the equity curve
func (e EquityCurve) GetReturns() []float64 {
	if len(e) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(e)-1)
	for i := 1; i < len(e); i++ {
		prev := e[i-1].Value
		curr := e[i].Value
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (curr-prev)/prev)
	}
	return returns
}

// GetVolatility calculates standard deviation of returns
func (e EquityCurve) GetVolatility() float64 {
	returns := e.GetReturns()
	if len(returns) == 0 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns))
	return math.Sqrt(variance)
}

// MaxDrawdown returns the largest peak-to-trough drawdown over the curve
func (e EquityCurve) MaxDrawdown() float64 {
	worst := 0.0
	for _, point := range e {
		if point.Drawdown > worst {
			worst = point.Drawdown
		}
	}
	return worst
}

// ToCSV exports the equity curve to a CSV string
func (e EquityCurve) ToCSV() string {
	var buf bytes.Buffer
	buf.WriteString("time,value,drawdown,daily_return\n")
	for _, point := range e {
		buf.WriteString(point.Time.Format("2006-01-02"))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Value))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Drawdown))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.DailyReturn))
		buf.WriteString("\n")
	}
	return buf.String()
}

// ToJSON exports the equity curve to a JSON string
func (e EquityCurve) ToJSON() string {
	data, _ := json.Marshal(e)
	return string(data)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
