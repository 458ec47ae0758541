// Package availability supplies the list of selectable booking dates.
package availability

import "time"

// Provider computes bookable calendar dates. The rest of the system
// only consumes the list; it never validates dates itself.
type Provider struct {
	windowDays int
	now        func() time.Time
}

// New creates a provider offering the next windowDays days.
func New(windowDays int) *Provider {
	return &Provider{windowDays: windowDays, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (p *Provider) WithClock(now func() time.Time) *Provider {
	p.now = now
	return p
}

// Dates returns upcoming bookable dates in ISO form, ascending,
// starting tomorrow. Sundays are excluded; the crew does not work
// them.
func (p *Provider) Dates() []string {
	today := p.now().UTC().Truncate(24 * time.Hour)
	out := make([]string, 0, p.windowDays)
	for i := 1; i <= p.windowDays; i++ {
		d := today.AddDate(0, 0, i)
		if d.Weekday() == time.Sunday {
			continue
		}
		out = append(out, d.Format("2006-01-02"))
	}
	return out
}
