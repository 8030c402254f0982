package model

// Decision is the action a TradeSignal recommends.
type Decision string

const (
	DecisionStrongBuy  Decision = "STRONG_BUY"
	DecisionBuy        Decision = "BUY"
	DecisionHold       Decision = "HOLD"
	DecisionSell       Decision = "SELL"
	DecisionStrongSell Decision = "STRONG_SELL"
)

// FactorScore represents a single factor's scoring result.
type FactorScore struct {
	Name       string  `json:"name"`
	RawScore   float64 `json:"raw_score"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Commentary string  `json:"commentary"`
	Available  bool    `json:"available"`
}

// DecisionTier maps a total score range to a decision.
type DecisionTier struct {
	Label    string   `json:"label"`
	Decision Decision `json:"decision"`
}

// TradeSignal is the output of the rule-based strategy engine.
type TradeSignal struct {
	Factors    []FactorScore `json:"factors"`
	TotalScore float64       `json:"total_score"`
	Tier       DecisionTier  `json:"tier"`
	WarningMsg string        `json:"warning,omitempty"`
}
