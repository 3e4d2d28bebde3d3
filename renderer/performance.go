package renderer

import "github.com/etnz/folio"

// RenderPerformance renders a performance record as the chain of terms from
// the beginning to the ending NAV.
func RenderPerformance(rec folio.PerformanceRecord) string {
	partials := map[string]string{
		"performance_diagnostics": "performance_diagnostics.md",
	}
	return renderTemplate("performance", "performance.md", partials, rec)
}
