package scoring

// RiskLevel is the discrete confidence tier of a recommendation.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

const (
	riskFitFloor        = 0.06
	riskReadinessFloor  = 0.55
	riskConfidenceFloor = 0.62
)

const (
	ReasonLowOverlap       = "low thesis overlap"
	ReasonLowReadiness     = "lower near-term execution readiness"
	ReasonLowConfidence    = "model confidence below preferred threshold"
	ReasonStrongFitProfile = "strong fit-readiness-confidence profile"
)

// ClassifyRisk evaluates the three threshold rules in fixed order. Two or more
// triggered rules is high risk, one is medium, none is low.
func ClassifyRisk(fit, readiness, confidence float64) (RiskLevel, []string) {
	var reasons []string
	if fit < riskFitFloor {
		reasons = append(reasons, ReasonLowOverlap)
	}
	if readiness < riskReadinessFloor {
		reasons = append(reasons, ReasonLowReadiness)
	}
	if confidence < riskConfidenceFloor {
		reasons = append(reasons, ReasonLowConfidence)
	}

	switch {
	case len(reasons) >= 2:
		return RiskHigh, reasons
	case len(reasons) == 1:
		return RiskMedium, reasons
	default:
		return RiskLow, []string{ReasonStrongFitProfile}
	}
}
