package strategy

import (
	"fmt"

	"StockOracle/internal/model"
)

const (
	weightMADeviation = 0.25
	weightRSI         = 0.20
	weightMACD        = 0.15
	weightForecast    = 0.30
	weight52Week      = 0.10
)

func unavailable(name string, weight float64, why string) model.FactorScore {
	return model.FactorScore{Name: name, Weight: weight, Commentary: why}
}

func scored(name string, score, weight float64, commentary string) model.FactorScore {
	return model.FactorScore{
		Name:       name,
		RawScore:   score,
		Weight:     weight,
		Weighted:   score * weight,
		Commentary: commentary,
		Available:  true,
	}
}

// scoreMADeviation scores how far the close deviates from the longest
// available moving average. Deep discounts score positive.
func scoreMADeviation(in Inputs) model.FactorScore {
	const name = "MA deviation"
	window, ma, ok := in.longestMA()
	if !ok || ma == 0 {
		return unavailable(name, weightMADeviation, "no moving average yet")
	}
	deviation := (in.Row.Close - ma) / ma * 100 // percentage

	var score float64
	switch {
	case deviation <= -20:
		score = 2.0
	case deviation <= -10:
		score = 1.5
	case deviation <= -5:
		score = 1.0
	case deviation <= 0:
		score = 0.5
	case deviation <= 5:
		score = 0
	case deviation <= 10:
		score = -0.5
	case deviation <= 15:
		score = -1.0
	case deviation <= 20:
		score = -1.5
	default:
		score = -2.0
	}
	return scored(name, score, weightMADeviation, fmt.Sprintf("%+.1f%% vs MA%d", deviation, window))
}

// scoreRSI scores the RSI zone.
func scoreRSI(in Inputs) model.FactorScore {
	const name = "RSI"
	if !in.Row.RSI.Valid {
		return unavailable(name, weightRSI, "RSI needs more history")
	}
	rsi := in.Row.RSI.Float64

	var score float64
	switch {
	case rsi <= 25:
		score = 2.0
	case rsi <= 30:
		score = 1.5
	case rsi <= 40:
		score = 1.0
	case rsi <= 45:
		score = 0.5
	case rsi <= 55:
		score = 0
	case rsi <= 60:
		score = -0.5
	case rsi <= 70:
		score = -1.0
	case rsi <= 80:
		score = -1.5
	default:
		score = -2.0
	}
	return scored(name, score, weightRSI, fmt.Sprintf("RSI=%.0f", rsi))
}

// scoreMACD scores momentum from the MACD line against its signal line.
func scoreMACD(in Inputs) model.FactorScore {
	const name = "MACD"
	if !in.Row.MACD.Valid || !in.Row.Signal.Valid {
		return unavailable(name, weightMACD, "MACD unavailable")
	}
	macd, sig := in.Row.MACD.Float64, in.Row.Signal.Float64

	var score float64
	var commentary string
	switch {
	case macd > sig && macd > 0:
		score, commentary = 1.5, "above signal, positive"
	case macd > sig:
		score, commentary = 1.0, "above signal"
	case macd < sig && macd < 0:
		score, commentary = -1.5, "below signal, negative"
	case macd < sig:
		score, commentary = -1.0, "below signal"
	default:
		score, commentary = 0, "flat"
	}
	return scored(name, score, weightMACD, commentary)
}

// scoreForecast scores the predicted next close against the last close.
func scoreForecast(in Inputs) model.FactorScore {
	const name = "Forecast"
	if !in.HasForecast || in.Row.Close == 0 {
		return unavailable(name, weightForecast, "no forecast")
	}
	change := (in.NextClose - in.Row.Close) / in.Row.Close * 100

	var score float64
	switch {
	case change >= 5:
		score = 2.0
	case change >= 2:
		score = 1.0
	case change >= 0.5:
		score = 0.5
	case change > -0.5:
		score = 0
	case change > -2:
		score = -0.5
	case change > -5:
		score = -1.0
	default:
		score = -2.0
	}
	return scored(name, score, weightForecast, fmt.Sprintf("next close %+.2f%%", change))
}

// score52WeekPosition scores where the price sits in the 52-week range.
// Above 95% it only gives -2 when the other factors average below -1,
// otherwise it caps at -1.
func score52WeekPosition(in Inputs, otherFactorsAvg float64) model.FactorScore {
	const name = "52w position"
	if in.Range.High52w == 0 && in.Range.Low52w == 0 {
		return unavailable(name, weight52Week, "no range")
	}
	pos := in.Range.Position52w * 100 // convert to percentage

	var score float64
	switch {
	case pos <= 10:
		score = 2.0
	case pos <= 20:
		score = 1.5
	case pos <= 30:
		score = 1.0
	case pos <= 40:
		score = 0.5
	case pos <= 60:
		score = 0
	case pos <= 70:
		score = -0.5
	case pos <= 80:
		score = -1.0
	case pos <= 95:
		score = -1.5
	default:
		if otherFactorsAvg < -1 {
			score = -2.0
		} else {
			score = -1.0
		}
	}
	return scored(name, score, weight52Week, fmt.Sprintf("position=%.0f%%", pos))
}
