package urlutil

import (
	"fmt"
	"net/url"
	"strings"

	packageurl "github.com/package-url/packageurl-go"
)

// PackageLocation identifies a package version inside the hub.
type PackageLocation struct {
	Kind           string // repository kind name, e.g. "helm"
	Repository     string
	NormalizedName string
	Version        string
}

// BuildPackageURL returns the site path of a package:
// /packages/{kind}/{repository}/{normalizedName}[/{version}].
// The version segment is only added when withVersion is set and a version is known.
func BuildPackageURL(loc PackageLocation, withVersion bool) string {
	u := fmt.Sprintf("/packages/%s/%s/%s",
		url.PathEscape(loc.Kind),
		url.PathEscape(loc.Repository),
		url.PathEscape(loc.NormalizedName),
	)
	if withVersion && loc.Version != "" {
		u += "/" + url.PathEscape(loc.Version)
	}
	return u
}

// PackagePURL returns the Package URL of loc. The repository URL, when set,
// is carried as the repository_url qualifier.
func PackagePURL(loc PackageLocation, repositoryURL string) string {
	var qualifiers packageurl.Qualifiers
	if repositoryURL != "" {
		qualifiers = packageurl.QualifiersFromMap(map[string]string{
			"repository_url": repositoryURL,
		})
	}
	p := packageurl.NewPackageURL(
		strings.ToLower(loc.Kind),
		loc.Repository,
		loc.NormalizedName,
		loc.Version,
		qualifiers,
		"",
	)
	return p.ToString()
}

// ParsePackagePURL is the inverse of PackagePURL.
func ParsePackagePURL(purl string) (PackageLocation, string, error) {
	p, err := packageurl.FromString(purl)
	if err != nil {
		return PackageLocation{}, "", fmt.Errorf("invalid package url %q: %w", purl, err)
	}
	var repoURL string
	for _, q := range p.Qualifiers {
		if q.Key == "repository_url" {
			repoURL = q.Value
		}
	}
	return PackageLocation{
		Kind:           p.Type,
		Repository:     p.Namespace,
		NormalizedName: p.Name,
		Version:        p.Version,
	}, repoURL, nil
}
