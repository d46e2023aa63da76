// internal/engine/hybrid/strategy.go
package hybrid

// Strategy represents how a listing page should be retrieved
type Strategy int

const (
	// StrategyStatic keeps the direct HTTP response
	StrategyStatic Strategy = iota

	// StrategyRendered re-fetches the page in a headless browser
	StrategyRendered
)

// String returns the string representation of the strategy
func (s Strategy) String() string {
	switch s {
	case StrategyStatic:
		return "Static"
	case StrategyRendered:
		return "Rendered"
	default:
		return "Unknown"
	}
}

// DetermineStrategy decides whether direct content is enough. Pages that
// already expose paper links or script data stay static, as do pages with no
// scripts at all. Any other page may build its listing client-side and is
// rendered, however much static text surrounds it.
func DetermineStrategy(content []byte) (Strategy, Signals) {
	s := Inspect(content)

	if s.HasListingMarkers() || s.Scripts == 0 {
		return StrategyStatic, s
	}
	return StrategyRendered, s
}
