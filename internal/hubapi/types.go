package hubapi

import (
	"encoding/json"
	"fmt"
	"sort"
)

// RepositoryKind identifies the registry type a repository is tracked as.
type RepositoryKind int

const (
	KindHelm RepositoryKind = iota
	KindFalco
	KindOPA
	KindOLM
	KindTBAction
	KindKrew
	KindHelmPlugin
	KindTektonTask
	KindKedaScaler
	KindCoreDNS
	KindKeptn
	KindTektonPipeline
	KindContainer
	KindKubewarden
	KindGatekeeper
	KindKyverno
)

// RepositoryKindInfo is one row of the repository kind lookup table.
type RepositoryKindInfo struct {
	Kind  RepositoryKind
	Name  string
	Label string
}

// RepositoryKinds lists every known kind, ordered by value.
var RepositoryKinds = []RepositoryKindInfo{
	{KindHelm, "helm", "Helm charts"},
	{KindFalco, "falco", "Falco rules"},
	{KindOPA, "opa", "OPA policies"},
	{KindOLM, "olm", "OLM operators"},
	{KindTBAction, "tbaction", "Tinkerbell actions"},
	{KindKrew, "krew", "Krew kubectl plugins"},
	{KindHelmPlugin, "helm-plugin", "Helm plugins"},
	{KindTektonTask, "tekton-task", "Tekton tasks"},
	{KindKedaScaler, "keda-scaler", "KEDA scalers"},
	{KindCoreDNS, "coredns", "CoreDNS plugins"},
	{KindKeptn, "keptn", "Keptn integrations"},
	{KindTektonPipeline, "tekton-pipeline", "Tekton pipelines"},
	{KindContainer, "container", "Containers images"},
	{KindKubewarden, "kubewarden", "Kubewarden policies"},
	{KindGatekeeper, "gatekeeper", "Gatekeeper policies"},
	{KindKyverno, "kyverno", "Kyverno policies"},
}

func (k RepositoryKind) info() (RepositoryKindInfo, bool) {
	if k < 0 || int(k) >= len(RepositoryKinds) {
		return RepositoryKindInfo{}, false
	}
	return RepositoryKinds[k], true
}

// Name returns the URL-safe name of the kind ("helm", "tekton-task", ...).
func (k RepositoryKind) Name() string {
	if i, ok := k.info(); ok {
		return i.Name
	}
	return fmt.Sprintf("kind-%d", int(k))
}

// Label returns the human readable name of the kind.
func (k RepositoryKind) Label() string {
	if i, ok := k.info(); ok {
		return i.Label
	}
	return "Unknown"
}

func (k RepositoryKind) String() string {
	return k.Name()
}

// Valid reports whether k is a known kind.
func (k RepositoryKind) Valid() bool {
	_, ok := k.info()
	return ok
}

// ParseRepositoryKind looks a kind up by name.
func ParseRepositoryKind(name string) (RepositoryKind, bool) {
	for _, i := range RepositoryKinds {
		if i.Name == name {
			return i.Kind, true
		}
	}
	return 0, false
}

// Repository is a tracked source of packages owned by a user or an organization.
type Repository struct {
	RepositoryID            string         `json:"repository_id,omitempty"`
	Name                    string         `json:"name"`
	DisplayName             string         `json:"display_name,omitempty"`
	URL                     string         `json:"url"`
	Branch                  string         `json:"branch,omitempty"`
	Kind                    RepositoryKind `json:"kind"`
	Private                 bool           `json:"private,omitempty"`
	AuthUser                string         `json:"auth_user,omitempty"`
	AuthPass                string         `json:"auth_pass,omitempty"`
	VerifiedPublisher       bool           `json:"verified_publisher"`
	Official                bool           `json:"official"`
	Disabled                bool           `json:"disabled,omitempty"`
	ScannerDisabled         bool           `json:"scanner_disabled,omitempty"`
	UserAlias               string         `json:"user_alias,omitempty"`
	OrganizationName        string         `json:"organization_name,omitempty"`
	OrganizationDisplayName string         `json:"organization_display_name,omitempty"`
	LastTrackingTS          int64          `json:"last_tracking_ts,omitempty"`
	LastTrackingErrors      string         `json:"last_tracking_errors,omitempty"`
}

// Package is the summary shape returned by search and listings.
type Package struct {
	PackageID      string     `json:"package_id"`
	Name           string     `json:"name"`
	NormalizedName string     `json:"normalized_name"`
	DisplayName    string     `json:"display_name,omitempty"`
	LogoImageID    string     `json:"logo_image_id,omitempty"`
	Description    string     `json:"description,omitempty"`
	Version        string     `json:"version"`
	AppVersion     string     `json:"app_version,omitempty"`
	License        string     `json:"license,omitempty"`
	Deprecated     bool       `json:"deprecated,omitempty"`
	Signed         bool       `json:"signed,omitempty"`
	Stars          int        `json:"stars"`
	TS             int64      `json:"ts,omitempty"`
	Repository     Repository `json:"repository"`
}

// Title returns the display name, falling back to the package name.
func (p Package) Title() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}

// AvailableVersion is one entry of a package's version list.
type AvailableVersion struct {
	Version                 string `json:"version"`
	ContainsSecurityUpdates bool   `json:"contains_security_updates,omitempty"`
	Prerelease              bool   `json:"prerelease,omitempty"`
	TS                      int64  `json:"ts"`
}

// Maintainer of a package.
type Maintainer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Link attached to a package.
type Link struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ContainerImage referenced by a package.
type ContainerImage struct {
	Name        string `json:"name,omitempty"`
	Image       string `json:"image"`
	Whitelisted bool   `json:"whitelisted,omitempty"`
}

// DisplayName returns the image name, or the image reference when unnamed.
func (c ContainerImage) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Image
}

// PackageDetail is the full package document shown on the package page.
type PackageDetail struct {
	Package
	Keywords          []string                   `json:"keywords,omitempty"`
	HomeURL           string                     `json:"home_url,omitempty"`
	Readme            string                     `json:"readme,omitempty"`
	Install           string                     `json:"install,omitempty"`
	ContentURL        string                     `json:"content_url,omitempty"`
	RelativePath      string                     `json:"relative_path,omitempty"`
	AvailableVersions []AvailableVersion         `json:"available_versions,omitempty"`
	Maintainers       []Maintainer               `json:"maintainers,omitempty"`
	Links             []Link                     `json:"links,omitempty"`
	ContainersImages  []ContainerImage           `json:"containers_images,omitempty"`
	Data              map[string]json.RawMessage `json:"data,omitempty"`
}

// GatekeeperSamples returns the sample constraint names found in the package
// data, sorted.
func (d *PackageDetail) GatekeeperSamples() []string {
	raw, ok := d.Data["samples"]
	if !ok {
		return nil
	}
	var samples map[string]json.RawMessage
	if err := json.Unmarshal(raw, &samples); err != nil {
		return nil
	}
	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FacetID is a facet option identifier. The API sends numbers for enumerated
// facets (repository kinds) and strings for the rest.
type FacetID string

func (id *FacetID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = FacetID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("facet id must be a string or number: %w", err)
	}
	*id = FacetID(n.String())
	return nil
}

// FacetOption is one selectable value of a search facet.
type FacetOption struct {
	ID    FacetID `json:"id"`
	Name  string  `json:"name"`
	Total int     `json:"total"`
}

// Facet groups the options of one search filter dimension.
type Facet struct {
	Title     string        `json:"title"`
	FilterKey string        `json:"filter_key"`
	Options   []FacetOption `json:"options"`
}

// SearchResults is the response of a package search.
type SearchResults struct {
	Packages   []Package `json:"packages"`
	Facets     []Facet   `json:"facets,omitempty"`
	TotalCount int       `json:"-"`
}

// Stats holds hub-wide counters.
type Stats struct {
	Packages int `json:"packages"`
	Releases int `json:"releases"`
}

// PackagesUpdates holds the latest added and recently updated packages.
type PackagesUpdates struct {
	LatestPackagesAdded     []Package `json:"latest_packages_added"`
	PackagesRecentlyUpdated []Package `json:"packages_recently_updated"`
}

// PackageStars is the star count of a package and whether the user starred it.
type PackageStars struct {
	Stars     int   `json:"stars"`
	StarredBy *bool `json:"starred_by_user,omitempty"`
}

// ChangeLog lists the changes of one package version.
type ChangeLog struct {
	Version    string   `json:"version"`
	TS         int64    `json:"ts"`
	Changes    []string `json:"changes"`
	Prerelease bool     `json:"prerelease,omitempty"`
}

// Profile is the logged-in user's profile.
type Profile struct {
	Alias          string `json:"alias"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	ProfileImageID string `json:"profile_image_id,omitempty"`
	PasswordSet    bool   `json:"password_set"`
}

// FullName joins first and last name, falling back to the alias.
func (p *Profile) FullName() string {
	name := p.FirstName
	if p.LastName != "" {
		if name != "" {
			name += " "
		}
		name += p.LastName
	}
	if name == "" {
		return p.Alias
	}
	return name
}

// UserRegistration is the sign-up payload.
type UserRegistration struct {
	Alias     string `json:"alias"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// ProfileUpdate is the payload for editing the user profile.
type ProfileUpdate struct {
	Alias          string `json:"alias"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	ProfileImageID string `json:"profile_image_id,omitempty"`
}

// Organization groups users that share repositories.
type Organization struct {
	Name         string `json:"name"`
	DisplayName  string `json:"display_name,omitempty"`
	Description  string `json:"description,omitempty"`
	HomeURL      string `json:"home_url,omitempty"`
	LogoImageID  string `json:"logo_image_id,omitempty"`
	Confirmed    bool   `json:"confirmed,omitempty"`
	MembersCount int    `json:"members_count,omitempty"`
}

// Member of an organization.
type Member struct {
	Alias     string `json:"alias"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Confirmed bool   `json:"confirmed"`
}

// Webhook delivers package event notifications to an external URL.
type Webhook struct {
	WebhookID         string                `json:"webhook_id,omitempty"`
	Name              string                `json:"name"`
	Description       string                `json:"description,omitempty"`
	URL               string                `json:"url"`
	Secret            string                `json:"secret,omitempty"`
	ContentType       string                `json:"content_type,omitempty"`
	Template          string                `json:"template,omitempty"`
	Active            bool                  `json:"active"`
	EventKinds        []int                 `json:"event_kinds"`
	Packages          []Package             `json:"packages"`
	LastNotifications []WebhookNotification `json:"last_notifications,omitempty"`
}

// WebhookNotification records one delivery attempt.
type WebhookNotification struct {
	NotificationID string `json:"notification_id"`
	Created        int64  `json:"created_at"`
	Processed      bool   `json:"processed"`
	Error          string `json:"error,omitempty"`
}

// APIKey is a user API key. The secret is never returned after creation.
type APIKey struct {
	APIKeyID  string `json:"api_key_id,omitempty"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// APIKeyCreated is returned once when a key is added.
type APIKeyCreated struct {
	APIKeyID string `json:"api_key_id"`
	Secret   string `json:"secret"`
}

// Subscription of the user to an event kind of a package.
type Subscription struct {
	PackageID string   `json:"package_id,omitempty"`
	EventKind int      `json:"event_kind"`
	Package   *Package `json:"package,omitempty"`
}
