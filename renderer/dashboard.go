package renderer

import "github.com/etnz/folio"

// DashboardReport is the headline figures of a scope.
type DashboardReport struct {
	Scope string
	folio.Dashboard
}

func RenderDashboard(r DashboardReport) string {
	return renderTemplate("dashboard", "dashboard.md", nil, r)
}
