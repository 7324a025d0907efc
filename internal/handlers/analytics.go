package handlers

import "strings"

// Analytics is the GA4 tag surfaced to the layout. Static exports carry it too.
type Analytics struct {
	GA4MeasurementID string
	Debug            bool
}

// NewAnalytics normalizes a configured measurement id. Anything that is not a
// GA4 id ("G-" prefix) leaves the tag disabled.
func NewAnalytics(id string, debug bool) Analytics {
	id = strings.ToUpper(strings.TrimSpace(id))
	if !strings.HasPrefix(id, "G-") || len(id) <= len("G-") {
		return Analytics{}
	}
	return Analytics{GA4MeasurementID: id, Debug: debug}
}

func (a Analytics) Enabled() bool { return a.GA4MeasurementID != "" }
