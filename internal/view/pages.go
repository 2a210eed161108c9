package view

import (
	"fmt"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/pkg/urlutil"
)

// Page template names.
const (
	PageHome          = "home"
	PageSearch        = "search"
	PagePackage       = "package"
	PageLogin         = "login"
	PageSignup        = "signup"
	PageVerifyEmail   = "verify_email"
	PageError         = "error"
	PageRepositories  = "cp_repositories"
	PageOrganizations = "cp_organizations"
	PageMembers       = "cp_members"
	PageOrgSettings   = "cp_org_settings"
	PageProfile       = "cp_profile"
	PageWebhooks      = "cp_webhooks"
	PageAPIKeys       = "cp_api_keys"
	PageSubscriptions = "cp_subscriptions"
)

type HomeData struct {
	Stats         Resource[*hubapi.Stats]
	Updates       Resource[*hubapi.PackagesUpdates]
	SampleQueries []urlutil.SampleQuery
}

// SearchData backs the search page. Links on the page are derived from
// Filters so that every facet click keeps the rest of the search state.
type SearchData struct {
	Filters    urlutil.SearchFilters
	Limit      int
	Results    Resource[*hubapi.SearchResults]
	Pagination Pagination
}

// FacetURL returns the search link with the facet option toggled.
func (d SearchData) FacetURL(key string, id hubapi.FacetID) string {
	f := d.cloneFilters()
	f.PageNumber = 1
	value := string(id)
	current := f.Filters[key]
	next := make([]string, 0, len(current)+1)
	found := false
	for _, v := range current {
		if v == value {
			found = true
			continue
		}
		next = append(next, v)
	}
	if !found {
		next = append(next, value)
	}
	if len(next) == 0 {
		delete(f.Filters, key)
	} else {
		f.Filters[key] = next
	}
	if len(f.Filters) == 0 {
		f.Filters = nil
	}
	return urlutil.SearchURL(f)
}

// ToggleURL returns the search link with one of the boolean filters flipped.
func (d SearchData) ToggleURL(name string) string {
	f := d.cloneFilters()
	f.PageNumber = 1
	switch name {
	case "official":
		f.Official = !f.Official
	case "verified_publisher":
		f.VerifiedPublisher = !f.VerifiedPublisher
	case "operators":
		f.Operators = !f.Operators
	case "deprecated":
		f.Deprecated = !f.Deprecated
	}
	return urlutil.SearchURL(f)
}

// Cleared returns the filters with every facet removed, keeping the text query.
func (d SearchData) Cleared() urlutil.SearchFilters {
	return urlutil.SearchFilters{PageNumber: 1, TSQueryWeb: d.Filters.TSQueryWeb}
}

// From is the 1-based index of the first result on the page.
func (d SearchData) From() int {
	if !d.Results.Ready() || len(d.Results.Data.Packages) == 0 {
		return 0
	}
	return Offset(d.Filters.Page(), d.Limit) + 1
}

// To is the 1-based index of the last result on the page.
func (d SearchData) To() int {
	if !d.Results.Ready() {
		return 0
	}
	return Offset(d.Filters.Page(), d.Limit) + len(d.Results.Data.Packages)
}

// EmptyMessage is shown when the search returned nothing.
func (d SearchData) EmptyMessage() string {
	if d.Filters.TSQueryWeb != "" {
		return fmt.Sprintf("We're sorry! We can't seem to find any packages that match your search for %q", d.Filters.TSQueryWeb)
	}
	return "We're sorry! We can't seem to find any packages that match your search"
}

func (d SearchData) cloneFilters() urlutil.SearchFilters {
	f := d.Filters
	f.TSQuery = append([]string(nil), d.Filters.TSQuery...)
	f.Filters = make(map[string][]string, len(d.Filters.Filters)+1)
	for k, v := range d.Filters.Filters {
		f.Filters[k] = append([]string(nil), v...)
	}
	if len(f.TSQuery) == 0 {
		f.TSQuery = nil
	}
	return f
}

type PackageData struct {
	Detail   Resource[*hubapi.PackageDetail]
	Versions []hubapi.AvailableVersion
	Related  Resource[[]hubapi.Package]
	Stars    Resource[*hubapi.PackageStars]
	Starred  bool
	// Subscriptions is only loaded for signed-in users.
	Subscriptions Resource[[]hubapi.Subscription]
	// Install is the generated install snippet, when the package kind has one.
	Install string
	PURL    string
}

// Subscribed reports whether the user is subscribed to the event kind.
func (d PackageData) Subscribed(eventKind int) bool {
	if !d.Subscriptions.Ready() {
		return false
	}
	for _, s := range d.Subscriptions.Data {
		if s.EventKind == eventKind {
			return true
		}
	}
	return false
}

type LoginData struct {
	Redirect string
	Email    string
	Message  string
}

type SignupData struct {
	Form    hubapi.UserRegistration
	Message string
	Done    bool
}

type VerifyEmailData struct {
	Verified bool
	Message  string
}

type ErrorData struct {
	Status  int
	Message string
}

type RepositoriesData struct {
	Page          int
	Repositories  Resource[*hubapi.RepositoriesPage]
	Pagination    Pagination
	Kinds         []hubapi.RepositoryKindInfo
	Message       string
	ShowAddForm   bool
	ShowClaimForm bool
}

type OrganizationsData struct {
	Organizations Resource[[]hubapi.Organization]
	Message       string
	ShowAddForm   bool
}

type MembersData struct {
	Members     Resource[[]hubapi.Member]
	Message     string
	ShowAddForm bool
}

type OrgSettingsData struct {
	Organization Resource[*hubapi.Organization]
	Message      string
}

type ProfileData struct {
	Profile Resource[*hubapi.Profile]
	Message string
}

type WebhooksData struct {
	Webhooks    Resource[[]hubapi.Webhook]
	Message     string
	ShowAddForm bool
}

type APIKeysData struct {
	APIKeys     Resource[[]hubapi.APIKey]
	Created     *hubapi.APIKeyCreated
	Message     string
	ShowAddForm bool
}

type SubscriptionsData struct {
	Subscriptions Resource[[]hubapi.Subscription]
	Message       string
}

// EventKindLabel names a subscription event kind.
func EventKindLabel(kind int) string {
	switch kind {
	case hubapi.EventNewPackageRelease:
		return "New releases"
	case hubapi.EventSecurityAlert:
		return "Security alerts"
	default:
		return "Unknown"
	}
}
