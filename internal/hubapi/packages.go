package hubapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/packagehub/hub-web/pkg/urlutil"
)

// PackageRef locates a package, optionally at a specific version.
type PackageRef struct {
	Kind       string
	Repository string
	Name       string
	Version    string
}

func (r PackageRef) path() string {
	p := "/packages/" + url.PathEscape(r.Kind) + "/" + url.PathEscape(r.Repository) + "/" + url.PathEscape(r.Name)
	if r.Version != "" {
		p += "/" + url.PathEscape(r.Version)
	}
	return p
}

// Location returns the site location of the package.
func (p Package) Location() urlutil.PackageLocation {
	return urlutil.PackageLocation{
		Kind:           p.Repository.Kind.Name(),
		Repository:     p.Repository.Name,
		NormalizedName: p.NormalizedName,
		Version:        p.Version,
	}
}

// SearchQuery is a package search request. Filters carries the same state as
// the search page URL; PageNumber in it is ignored in favour of Offset.
type SearchQuery struct {
	Limit   int
	Offset  int
	Filters urlutil.SearchFilters
}

// Values serializes the query: facets=true, limit, offset, every facet
// selection as key=value, the boolean flags and the text queries.
func (q SearchQuery) Values() url.Values {
	f := q.Filters
	f.PageNumber = 0
	v, err := f.Values()
	if err != nil {
		v = url.Values{}
	}
	v.Set("facets", "true")
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("offset", strconv.Itoa(q.Offset))
	return v
}

// GetPackage returns the package detail, at ref.Version when set.
func (c *Client) GetPackage(ctx context.Context, ref PackageRef) (*PackageDetail, error) {
	var pkg PackageDetail
	if _, err := c.get(ctx, "GetPackage", ref.path(), nil, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// SearchPackages runs a package search. TotalCount comes from the
// Pagination-Total-Count response header.
func (c *Client) SearchPackages(ctx context.Context, q SearchQuery) (*SearchResults, error) {
	var res SearchResults
	resp, err := c.get(ctx, "SearchPackages", "/packages/search", q.Values(), &res)
	if err != nil {
		return nil, err
	}
	res.TotalCount = paginationTotal(resp, len(res.Packages))
	return &res, nil
}

// GetStats returns the hub-wide package and release counters.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var s Stats
	if _, err := c.get(ctx, "GetStats", "/packages/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetPackagesUpdates returns the latest added and recently updated packages.
func (c *Client) GetPackagesUpdates(ctx context.Context) (*PackagesUpdates, error) {
	var u PackagesUpdates
	if _, err := c.get(ctx, "GetPackagesUpdates", "/packages/updates", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetRandomPackages returns a random selection of packages.
func (c *Client) GetRandomPackages(ctx context.Context) ([]Package, error) {
	var pkgs []Package
	if _, err := c.get(ctx, "GetRandomPackages", "/packages/random", nil, &pkgs); err != nil {
		return nil, err
	}
	return pkgs, nil
}

// GetStars returns the star count of a package.
func (c *Client) GetStars(ctx context.Context, packageID string) (*PackageStars, error) {
	var s PackageStars
	if _, err := c.get(ctx, "GetStars", "/packages/"+url.PathEscape(packageID)+"/stars", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ToggleStar stars or unstars a package for the current user.
func (c *Client) ToggleStar(ctx context.Context, packageID string) error {
	return c.send(ctx, "ToggleStar", http.MethodPut, "/packages/"+url.PathEscape(packageID)+"/stars", nil)
}

// GetStarredByUser returns the packages starred by the current user.
func (c *Client) GetStarredByUser(ctx context.Context) ([]Package, error) {
	var pkgs []Package
	if _, err := c.get(ctx, "GetStarredByUser", "/packages/starred", nil, &pkgs); err != nil {
		return nil, err
	}
	return pkgs, nil
}

// GetChangelog returns the changelog of every version of a package.
func (c *Client) GetChangelog(ctx context.Context, packageID string) ([]ChangeLog, error) {
	var logs []ChangeLog
	if _, err := c.get(ctx, "GetChangelog", "/packages/"+url.PathEscape(packageID)+"/changelog", nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
