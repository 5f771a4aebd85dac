package domain

// Sentiment label bands for the 0-100 fear & greed index.
const (
	extremeFearMax = 20
	fearMax        = 40
	neutralMax     = 60
	greedMax       = 80
)

// SentimentLabel returns the human-readable label for an index value.
func SentimentLabel(value int) string {
	switch {
	case value <= extremeFearMax:
		return "Extreme Fear"
	case value <= fearMax:
		return "Fear"
	case value <= neutralMax:
		return "Neutral"
	case value <= greedMax:
		return "Greed"
	default:
		return "Extreme Greed"
	}
}
