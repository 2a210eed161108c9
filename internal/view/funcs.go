package view

import (
	"errors"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/web/static"
	"github.com/packagehub/hub-web/pkg/urlutil"
)

// Funcs returns the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"packageURL":        packageURL,
		"packageVersionURL": packageVersionURL,
		"searchURL":         urlutil.SearchURL,
		"anchor":            urlutil.AnchorValue,
		"countOrDash":       CountOrDash,
		"unixDate":          UnixDate,
		"join":              strings.Join,
		"add":               func(a, b int) int { return a + b },
		"list":              func(items ...int) []int { return items },
		"dict":              dict,
		"searchLimits":      func() []int { return session.SearchLimits },
		"asset":             static.AssetURL,
		"eventKindLabel":    EventKindLabel,
	}
}

func packageURL(p hubapi.Package) string {
	return urlutil.BuildPackageURL(p.Location(), false)
}

func packageVersionURL(p hubapi.Package, version string) string {
	loc := p.Location()
	loc.Version = version
	return urlutil.BuildPackageURL(loc, true)
}

// CountOrDash formats a hub counter; zero renders as "-".
func CountOrDash(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

// UnixDate formats a unix timestamp as a short UTC date.
func UnixDate(ts int64) string {
	if ts <= 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format("2 Jan, 2006")
}

func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict expects key/value pairs")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, errors.New("dict keys must be strings")
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}
