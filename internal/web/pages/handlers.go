// Package pages serves the public site: home, search, package detail,
// authentication forms and preference updates.
package pages

import (
	"github.com/packagehub/hub-web/internal/web/handler"
	"github.com/packagehub/hub-web/pkg/urlutil"
)

// Handlers serves the public pages.
type Handlers struct {
	*handler.Base
	samples     urlutil.SampleQueries
	sampleCount int
}

// NewHandlers creates the public page handlers. sampleCount sample queries
// are drawn from samples for every home page view.
func NewHandlers(base *handler.Base, samples urlutil.SampleQueries, sampleCount int) *Handlers {
	return &Handlers{
		Base:        base,
		samples:     samples,
		sampleCount: sampleCount,
	}
}
