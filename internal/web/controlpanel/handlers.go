// Package controlpanel serves the signed-in user's control panel. Every
// page acts on the user's own resources, or on the organization selected in
// the preferences cookie.
package controlpanel

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/web/handler"
)

// Handlers serves the control panel pages.
type Handlers struct {
	*handler.Base
	reposLimit int
}

// NewHandlers creates the control panel handlers. reposLimit is the page
// size of the repository list.
func NewHandlers(base *handler.Base, reposLimit int) *Handlers {
	if reposLimit <= 0 {
		reposLimit = 10
	}
	return &Handlers{Base: base, reposLimit: reposLimit}
}

// owner returns the alias of the signed-in user and the selected organization.
func owner(c *gin.Context) (alias, org string) {
	sc := session.FromGin(c)
	if u := sc.User(); u != nil {
		alias = u.Alias
	}
	return alias, sc.SelectedOrg()
}

func queryFlag(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}

func queryPage(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
