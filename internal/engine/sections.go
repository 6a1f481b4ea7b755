package engine

import (
	"strings"

	"go.uber.org/zap"
)

// Strategy names the parse path that produced a section split.
type Strategy string

const (
	StrategyExact    Strategy = "exact"
	StrategyPartial  Strategy = "partial"
	StrategySynonym  Strategy = "synonym"
	StrategyFallback Strategy = "fallback"
)

// synonymMarkers are tried in order when the expected markers are absent.
var synonymMarkers = []string{"Response:", "Scene:", "Next Scene:", "What happens next:"}

// ParseSections splits a critic reply into its analysis and response
// sections. Strategies are tried in order of decreasing strictness; the
// last one accepts any text, so parsing never fails outright. Splits
// always happen at the first occurrence of a marker.
func ParseSections(raw string, logger *zap.Logger) (analysis, response string, strategy Strategy) {
	defer func() {
		sectionParseTotal.WithLabelValues(string(strategy)).Inc()
	}()

	if strings.Contains(raw, "Action Analysis:") && strings.Contains(raw, "Response:") {
		before, after, _ := strings.Cut(raw, "Response:")
		analysis = strings.TrimSpace(strings.Replace(before, "Action Analysis:", "", 1))
		response = strings.TrimSpace(after)
		strategy = StrategyExact
		return
	}

	if strings.Contains(raw, "Analysis:") && strings.Contains(raw, "Response:") {
		before, after, _ := strings.Cut(raw, "Response:")
		analysis = strings.TrimSpace(strings.Replace(before, "Analysis:", "", 1))
		response = strings.TrimSpace(after)
		strategy = StrategyPartial
		return
	}

	for _, marker := range synonymMarkers {
		if before, after, found := strings.Cut(raw, marker); found {
			analysis = strings.TrimSpace(before)
			response = strings.TrimSpace(after)
			strategy = StrategySynonym
			return
		}
	}

	logger.Warn("no section markers found in critic reply, using full text as response")
	analysis = ""
	response = strings.TrimSpace(raw)
	strategy = StrategyFallback
	return
}
