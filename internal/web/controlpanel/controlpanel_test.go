package controlpanel

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/web/handler"
	"github.com/packagehub/hub-web/internal/web/handler/handlertest"
)

var (
	errUnauthorized = &hubapi.APIError{Kind: hubapi.KindUnauthorized, Status: http.StatusUnauthorized}
	errNotFound     = &hubapi.APIError{Kind: hubapi.KindNotFound, Status: http.StatusNotFound}
	errForbidden    = &hubapi.APIError{Kind: hubapi.KindForbidden, Status: http.StatusForbidden}
	errServer       = &hubapi.APIError{Kind: hubapi.KindOther, Status: http.StatusInternalServerError}
	testUser        = &hubapi.Profile{Alias: "jdoe", Email: "jdoe@example.com", PasswordSet: true}
)

func newControlPanelEnv(t *testing.T) *handlertest.Env {
	t.Helper()
	env := handlertest.NewEnv(t)
	h := NewHandlers(env.Base, 10)

	r := env.Router
	r.GET("/control-panel/repositories", h.Repositories())
	r.POST("/control-panel/repositories", h.AddRepository())
	r.POST("/control-panel/repositories/claim", h.ClaimRepository())
	r.POST("/control-panel/repositories/:name/delete", h.DeleteRepository())
	r.POST("/control-panel/repositories/:name/transfer", h.TransferRepository())
	r.GET("/control-panel/organizations", h.Organizations())
	r.POST("/control-panel/organizations", h.AddOrganization())
	r.POST("/control-panel/organizations/:name/accept", h.AcceptInvitation())
	r.POST("/control-panel/context", h.SwitchContext())
	r.GET("/control-panel/members", h.Members())
	r.POST("/control-panel/members", h.AddMember())
	r.POST("/control-panel/members/:alias/delete", h.RemoveMember())
	r.GET("/control-panel/settings/org", h.OrgSettings())
	r.POST("/control-panel/settings/org", h.UpdateOrganization())
	r.POST("/control-panel/settings/org/delete", h.DeleteOrganization())
	r.GET("/control-panel/settings/profile", h.Profile())
	r.POST("/control-panel/settings/profile", h.UpdateProfile())
	r.POST("/control-panel/settings/password", h.UpdatePassword())
	r.GET("/control-panel/webhooks", h.Webhooks())
	r.POST("/control-panel/webhooks", h.AddWebhook())
	r.POST("/control-panel/webhooks/:id/delete", h.DeleteWebhook())
	r.GET("/control-panel/api-keys", h.APIKeys())
	r.POST("/control-panel/api-keys", h.AddAPIKey())
	r.POST("/control-panel/api-keys/:id/delete", h.DeleteAPIKey())
	r.GET("/control-panel/subscriptions", h.Subscriptions())
	r.POST("/control-panel/subscriptions/delete", h.DeleteSubscription())
	return env
}

func repos(names ...string) *hubapi.RepositoriesPage {
	p := &hubapi.RepositoriesPage{Total: len(names)}
	for _, n := range names {
		p.Items = append(p.Items, hubapi.Repository{Name: n, URL: "https://charts.example.com/" + n, Kind: hubapi.KindHelm})
	}
	return p
}

func assertNotice(t *testing.T, w *httptest.ResponseRecorder, location, notice string) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, location, w.Header().Get("Location"))
	ck := handlertest.Cookie(w, handler.FlashCookie)
	require.NotNil(t, ck)
	assert.Equal(t, url.QueryEscape(notice), ck.Value)
}

func assertLoginRedirect(t *testing.T, env *handlertest.Env, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login?redirect=")
	assert.Zero(t, env.Store.Len())
}

func selectedOrg(t *testing.T, env *handlertest.Env, w *httptest.ResponseRecorder) string {
	t.Helper()
	ck := handlertest.Cookie(w, handlertest.PrefsCookie)
	require.NotNil(t, ck, "prefs cookie not saved")
	prefs, err := env.Codec.Decode(ck.Value)
	require.NoError(t, err)
	return prefs.ControlPanel.SelectedOrg
}

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

func TestRepositories_ListsUserRepositories(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("SearchRepositories", mock.Anything, hubapi.RepositoriesQuery{Limit: 10, User: "jdoe"}).
		Return(repos("a", "b", "c"), nil).Once()

	w := env.Get("/control-panel/repositories", env.Login(t, testUser))
	body := w.Body.String()

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, handlertest.TestIDCount(body, "repoCard"))
	assert.Zero(t, handlertest.TestIDCount(body, "noData"))
	assert.Zero(t, handlertest.TestIDCount(body, "repoForm"))
}

func TestRepositories_ScopedToSelectedOrg(t *testing.T) {
	env := newControlPanelEnv(t)
	page := repos("a")
	page.Total = 25
	env.API.On("SearchRepositories", mock.Anything, hubapi.RepositoriesQuery{Offset: 10, Limit: 10, Org: "acme"}).
		Return(page, nil).Once()

	w := env.Get("/control-panel/repositories?page=2", env.Login(t, testUser), env.OrgPrefs(t, "acme"))
	body := w.Body.String()

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, `href="/control-panel/repositories?page=1"`)
	assert.Contains(t, body, `href="/control-panel/repositories?page=3"`)
	assert.Contains(t, body, "2 / 3")
}

func TestRepositories_PastLastPageReloadsFirst(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("SearchRepositories", mock.Anything, hubapi.RepositoriesQuery{Offset: 20, Limit: 10, User: "jdoe"}).
		Return(&hubapi.RepositoriesPage{Total: 2}, nil).Once()
	env.API.On("SearchRepositories", mock.Anything, hubapi.RepositoriesQuery{Limit: 10, User: "jdoe"}).
		Return(repos("a", "b"), nil).Once()

	w := env.Get("/control-panel/repositories?page=3", env.Login(t, testUser))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, handlertest.TestIDCount(w.Body.String(), "repoCard"))
}

func TestRepositories_EmptyShowsCTA(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("SearchRepositories", mock.Anything, mock.Anything).Return(&hubapi.RepositoriesPage{}, nil).Once()

	w := env.Get("/control-panel/repositories", env.Login(t, testUser))
	body := w.Body.String()

	assert.Equal(t, 1, handlertest.TestIDCount(body, "noData"))
	assert.Equal(t, 1, handlertest.TestIDCount(body, "addFirstRepoBtn"))
}

func TestRepositories_UnauthorizedRedirectsToLogin(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("SearchRepositories", mock.Anything, mock.Anything).Return(nil, errUnauthorized).Once()

	w := env.Get("/control-panel/repositories", env.Login(t, testUser))

	assertLoginRedirect(t, env, w)
	assert.Equal(t, "/login?redirect=%2Fcontrol-panel%2Frepositories", w.Header().Get("Location"))
}

func TestRepositories_FailureShowsInlineMessage(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("SearchRepositories", mock.Anything, mock.Anything).Return(nil, errServer).Once()

	w := env.Get("/control-panel/repositories", env.Login(t, testUser))
	body := w.Body.String()

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, handlertest.TestIDCount(body, "noData"))
	assert.Contains(t, body, repositoriesErrorMessage)
	assert.Zero(t, handlertest.TestIDCount(body, "repoCard"))
}

func TestRepositories_DeepLinkOutsideOrgSwitchesToUser(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("SearchRepositories", mock.Anything, hubapi.RepositoriesQuery{Limit: 10, Org: "acme"}).
		Return(repos("a"), nil).Once()

	w := env.Get("/control-panel/repositories?repo=mine", env.Login(t, testUser), env.OrgPrefs(t, "acme"))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/control-panel/repositories?repo=mine", w.Header().Get("Location"))
	assert.Empty(t, selectedOrg(t, env, w))
}

func TestRepositories_DeepLinkInsideOrgKeepsContext(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("SearchRepositories", mock.Anything, mock.Anything).Return(repos("a"), nil).Once()

	w := env.Get("/control-panel/repositories?repo=a", env.Login(t, testUser), env.OrgPrefs(t, "acme"))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRepositories_ShowsForms(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("SearchRepositories", mock.Anything, mock.Anything).Return(repos("a"), nil).Twice()
	cookie := env.Login(t, testUser)

	body := env.Get("/control-panel/repositories?add=1", cookie).Body.String()
	assert.Equal(t, 1, handlertest.TestIDCount(body, "repoForm"))
	assert.Contains(t, body, `<option value="tekton-task">Tekton tasks</option>`)

	body = env.Get("/control-panel/repositories?claim=1", cookie).Body.String()
	assert.Equal(t, 1, handlertest.TestIDCount(body, "claimRepoForm"))
}

func TestAddRepository(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("AddRepository", mock.Anything, hubapi.Repository{
		Name: "stable", URL: "https://charts.example.com", Kind: hubapi.KindHelm,
	}, "acme").Return(nil).Once()

	w := env.PostForm("/control-panel/repositories", url.Values{
		"kind": {"helm"}, "name": {" stable "}, "url": {"https://charts.example.com"},
	}, env.Login(t, testUser), env.OrgPrefs(t, "acme"))

	assertNotice(t, w, "/control-panel/repositories", "Repository stable added.")
}

func TestAddRepository_InvalidForm(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("SearchRepositories", mock.Anything, mock.Anything).Return(repos("a"), nil).Once()

	w := env.PostForm("/control-panel/repositories", url.Values{"kind": {"nope"}, "name": {"x"}, "url": {"https://x"}},
		env.Login(t, testUser))
	body := w.Body.String()

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, handlertest.TestIDCount(body, "formError"))
	assert.Equal(t, 1, handlertest.TestIDCount(body, "repoForm"))
	env.API.AssertNotCalled(t, "AddRepository", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddRepository_APIValidationMessage(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("AddRepository", mock.Anything, mock.Anything, "").
		Return(&hubapi.APIError{Kind: hubapi.KindOther, Status: http.StatusBadRequest, Message: "invalid url"}).Once()
	env.API.On("SearchRepositories", mock.Anything, mock.Anything).Return(repos("a"), nil).Once()

	w := env.PostForm("/control-panel/repositories", url.Values{"kind": {"helm"}, "name": {"x"}, "url": {"ftp://x"}},
		env.Login(t, testUser))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-testid="formError">invalid url<`)
}

func TestDeleteRepository(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("DeleteRepository", mock.Anything, "stable", "").Return(nil).Once()

	w := env.PostForm("/control-panel/repositories/stable/delete", nil, env.Login(t, testUser))

	assertNotice(t, w, "/control-panel/repositories", "Repository stable deleted.")
}

func TestDeleteRepository_Forbidden(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("DeleteRepository", mock.Anything, "stable", "acme").Return(errForbidden).Once()
	env.API.On("SearchRepositories", mock.Anything, mock.Anything).Return(repos("stable"), nil).Once()

	w := env.PostForm("/control-panel/repositories/stable/delete", nil, env.Login(t, testUser), env.OrgPrefs(t, "acme"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "You do not have permissions to perform this action.")
}

func TestDeleteRepository_UnauthorizedRedirectsToLogin(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("DeleteRepository", mock.Anything, "stable", "").Return(errUnauthorized).Once()

	w := env.PostForm("/control-panel/repositories/stable/delete", nil, env.Login(t, testUser))

	assertLoginRedirect(t, env, w)
	env.API.AssertNotCalled(t, "SearchRepositories", mock.Anything, mock.Anything)
}

func TestTransferRepository(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("TransferRepository", mock.Anything, "stable", "", "acme").Return(nil).Once()

	w := env.PostForm("/control-panel/repositories/stable/transfer", url.Values{"to_org": {"acme"}}, env.Login(t, testUser))

	assertNotice(t, w, "/control-panel/repositories", "Repository stable transferred.")
}

func TestTransferRepository_SameContext(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("SearchRepositories", mock.Anything, mock.Anything).Return(repos("stable"), nil).Once()

	w := env.PostForm("/control-panel/repositories/stable/transfer", url.Values{"to_org": {"acme"}},
		env.Login(t, testUser), env.OrgPrefs(t, "acme"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.API.AssertNotCalled(t, "TransferRepository", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClaimRepository(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("ClaimRepositoryOwnership", mock.Anything, "stable", "acme").Return(nil).Once()

	w := env.PostForm("/control-panel/repositories/claim", url.Values{"name": {"stable"}},
		env.Login(t, testUser), env.OrgPrefs(t, "acme"))

	assertNotice(t, w, "/control-panel/repositories", "Repository stable claimed.")
}

// ---------------------------------------------------------------------------
// Organizations
// ---------------------------------------------------------------------------

func TestOrganizations_List(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetUserOrganizations", mock.Anything).Return([]hubapi.Organization{
		{Name: "acme", Confirmed: true, MembersCount: 3},
		{Name: "globex"},
	}, nil).Once()

	w := env.Get("/control-panel/organizations", env.Login(t, testUser), env.OrgPrefs(t, "acme"))
	body := w.Body.String()

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, handlertest.TestIDCount(body, "organizationCard"))
	assert.Equal(t, 1, handlertest.TestIDCount(body, "acceptInvitationBtn"))
	assert.Contains(t, body, `<option value="acme" selected>acme</option>`)
}

func TestOrganizations_Empty(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetUserOrganizations", mock.Anything).Return([]hubapi.Organization{}, nil).Once()

	body := env.Get("/control-panel/organizations", env.Login(t, testUser)).Body.String()

	assert.Contains(t, body, "Do you need to create a organization?")
	assert.Equal(t, 1, handlertest.TestIDCount(body, "addFirstOrgBtn"))
}

func TestAddOrganization(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("AddOrganization", mock.Anything, hubapi.Organization{Name: "acme", DisplayName: "Acme"}).Return(nil).Once()

	w := env.PostForm("/control-panel/organizations", url.Values{"name": {"acme"}, "display_name": {"Acme"}}, env.Login(t, testUser))

	assertNotice(t, w, "/control-panel/organizations", "Organization acme added.")
}

func TestAddOrganization_InvalidName(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetUserOrganizations", mock.Anything).Return([]hubapi.Organization{}, nil).Once()

	w := env.PostForm("/control-panel/organizations", url.Values{"name": {"Acme Corp"}}, env.Login(t, testUser))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please provide a valid name for the organization")
	env.API.AssertNotCalled(t, "AddOrganization", mock.Anything, mock.Anything)
}

func TestAcceptInvitation(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("ConfirmOrganizationMembership", mock.Anything, "acme").Return(nil).Once()

	w := env.PostForm("/control-panel/organizations/acme/accept", nil, env.Login(t, testUser))

	assertNotice(t, w, "/control-panel/organizations", "You are now a member of acme.")
}

func TestSwitchContext(t *testing.T) {
	env := newControlPanelEnv(t)
	cookie := env.Login(t, testUser)

	w := env.PostForm("/control-panel/context", url.Values{"org": {"acme"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/control-panel/repositories", w.Header().Get("Location"))
	assert.Equal(t, "acme", selectedOrg(t, env, w))

	w = env.PostForm("/control-panel/context", url.Values{"org": {""}}, cookie, env.OrgPrefs(t, "acme"))
	assert.Empty(t, selectedOrg(t, env, w))
}

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

func TestMembers_List(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetOrganizationMembers", mock.Anything, "acme").Return([]hubapi.Member{
		{Alias: "jdoe", Confirmed: true},
		{Alias: "asmith"},
	}, nil).Once()

	w := env.Get("/control-panel/members", env.Login(t, testUser), env.OrgPrefs(t, "acme"))
	body := w.Body.String()

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, handlertest.TestIDCount(body, "memberCard"))
	assert.Contains(t, body, "Invitation not accepted yet")
	assert.Contains(t, body, ">Leave<")
}

func TestMembers_Empty(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetOrganizationMembers", mock.Anything, "acme").Return([]hubapi.Member{}, nil).Once()

	body := env.Get("/control-panel/members", env.Login(t, testUser), env.OrgPrefs(t, "acme")).Body.String()

	assert.Contains(t, body, "Do you want to add a member?")
	assert.Equal(t, 1, handlertest.TestIDCount(body, "addFirstMemberBtn"))
}

func TestAddMember(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("AddOrganizationMember", mock.Anything, "acme", "asmith").Return(nil).Once()

	w := env.PostForm("/control-panel/members", url.Values{"alias": {"asmith"}}, env.Login(t, testUser), env.OrgPrefs(t, "acme"))

	assertNotice(t, w, "/control-panel/members", "Invitation sent to asmith.")
}

func TestRemoveMember(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("DeleteOrganizationMember", mock.Anything, "acme", "asmith").Return(nil).Once()

	w := env.PostForm("/control-panel/members/asmith/delete", nil, env.Login(t, testUser), env.OrgPrefs(t, "acme"))

	assertNotice(t, w, "/control-panel/members", "Member asmith removed.")
	assert.Nil(t, handlertest.Cookie(w, handlertest.PrefsCookie))
}

func TestRemoveMember_LeavingClearsContext(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("DeleteOrganizationMember", mock.Anything, "acme", "jdoe").Return(nil).Once()

	w := env.PostForm("/control-panel/members/jdoe/delete", nil, env.Login(t, testUser), env.OrgPrefs(t, "acme"))

	assertNotice(t, w, "/control-panel/organizations", "You have left acme.")
	assert.Empty(t, selectedOrg(t, env, w))
}

// ---------------------------------------------------------------------------
// Organization settings
// ---------------------------------------------------------------------------

func TestOrgSettings(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetOrganization", mock.Anything, "acme").
		Return(&hubapi.Organization{Name: "acme", DisplayName: "Acme Inc", HomeURL: "https://acme.example.com"}, nil).Once()

	w := env.Get("/control-panel/settings/org", env.Login(t, testUser), env.OrgPrefs(t, "acme"))
	body := w.Body.String()

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, `name="current_name" value="acme"`)
	assert.Contains(t, body, `value="Acme Inc"`)
}

func TestOrgSettings_NotFound(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetOrganization", mock.Anything, "acme").Return(nil, errNotFound).Once()

	w := env.Get("/control-panel/settings/org", env.Login(t, testUser), env.OrgPrefs(t, "acme"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Sorry, the organization you requested was not found.")
}

func TestOrgSettings_Failure(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetOrganization", mock.Anything, "acme").Return(nil, errServer).Once()

	w := env.Get("/control-panel/settings/org", env.Login(t, testUser), env.OrgPrefs(t, "acme"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), orgSettingsErrorMessage)
	assert.Zero(t, handlertest.TestIDCount(w.Body.String(), "organizationForm"))
}

func TestUpdateOrganization_RenameMovesContext(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("UpdateOrganization", mock.Anything, hubapi.Organization{Name: "acme-corp"}, "acme").Return(nil).Once()

	w := env.PostForm("/control-panel/settings/org", url.Values{"current_name": {"acme"}, "name": {"acme-corp"}},
		env.Login(t, testUser), env.OrgPrefs(t, "acme"))

	assertNotice(t, w, "/control-panel/settings/org", "Organization updated.")
	assert.Equal(t, "acme-corp", selectedOrg(t, env, w))
}

func TestDeleteOrganization(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("DeleteOrganization", mock.Anything, "acme").Return(nil).Once()

	w := env.PostForm("/control-panel/settings/org/delete", nil, env.Login(t, testUser), env.OrgPrefs(t, "acme"))

	assertNotice(t, w, "/control-panel/organizations", "Organization acme deleted.")
	assert.Empty(t, selectedOrg(t, env, w))
}

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

func TestProfile(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetUserProfile", mock.Anything).Return(&hubapi.Profile{Alias: "jdoe", Email: "jdoe@example.com", FirstName: "John", PasswordSet: true}, nil).Once()

	w := env.Get("/control-panel/settings/profile", env.Login(t, testUser))
	body := w.Body.String()

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, `value="John"`)
	assert.Equal(t, 1, handlertest.TestIDCount(body, "passwordForm"))
}

func TestProfile_NoPasswordForExternalAccounts(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetUserProfile", mock.Anything).Return(&hubapi.Profile{Alias: "jdoe"}, nil).Once()

	body := env.Get("/control-panel/settings/profile", env.Login(t, testUser)).Body.String()

	assert.Zero(t, handlertest.TestIDCount(body, "passwordForm"))
}

func TestUpdateProfile_RefreshesSession(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("UpdateUserProfile", mock.Anything, hubapi.ProfileUpdate{Alias: "jdoe", FirstName: "John"}).Return(nil).Once()
	updated := &hubapi.Profile{Alias: "jdoe", Email: "jdoe@example.com", FirstName: "John"}
	env.API.On("GetUserProfile", mock.Anything).Return(updated, nil).Once()
	cookie := env.Login(t, testUser)

	w := env.PostForm("/control-panel/settings/profile", url.Values{"alias": {"jdoe"}, "first_name": {"John"}}, cookie)

	assertNotice(t, w, "/control-panel/settings/profile", "Profile updated.")
	sess, err := env.Store.Get(t.Context(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "John", sess.User.FirstName)
}

func TestUpdatePassword(t *testing.T) {
	tests := []struct {
		name       string
		apiErr     error
		wantStatus int
		wantBody   string
	}{
		{"success", nil, http.StatusSeeOther, ""},
		{"wrong old password", &hubapi.APIError{Kind: hubapi.KindOther, Status: http.StatusBadRequest, Message: "invalid password"}, http.StatusOK, "invalid password"},
		{"server error", errServer, http.StatusOK, "An error occurred updating your password, please try again later."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newControlPanelEnv(t)
			env.AllowCSRF()
			env.API.On("UpdatePassword", mock.Anything, "old", "new").Return(tt.apiErr).Once()
			if tt.apiErr != nil {
				env.API.On("GetUserProfile", mock.Anything).Return(testUser, nil).Once()
			}

			w := env.PostForm("/control-panel/settings/password", url.Values{"old_password": {"old"}, "new_password": {"new"}},
				env.Login(t, testUser))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Webhooks
// ---------------------------------------------------------------------------

func TestWebhooks_List(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetWebhooks", mock.Anything, "acme").Return([]hubapi.Webhook{
		{WebhookID: "w1", Name: "ci", URL: "https://ci.example.com", Active: true},
	}, nil).Once()

	w := env.Get("/control-panel/webhooks", env.Login(t, testUser), env.OrgPrefs(t, "acme"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, handlertest.TestIDCount(w.Body.String(), "webhookCard"))
	assert.Contains(t, w.Body.String(), `action="/control-panel/webhooks/w1/delete"`)
}

func TestWebhooks_Empty(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetWebhooks", mock.Anything, "").Return([]hubapi.Webhook{}, nil).Once()

	body := env.Get("/control-panel/webhooks", env.Login(t, testUser)).Body.String()

	assert.Equal(t, 1, handlertest.TestIDCount(body, "addFirstWebhookBtn"))
}

func TestAddWebhook(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("AddWebhook", mock.Anything, mock.MatchedBy(func(h hubapi.Webhook) bool {
		return h.Name == "ci" && h.Active && len(h.Packages) == 2 && h.Packages[1].PackageID == "p2" &&
			len(h.EventKinds) == 1 && h.EventKinds[0] == 0
	}), "").Return(nil).Once()

	w := env.PostForm("/control-panel/webhooks", url.Values{
		"name": {"ci"}, "url": {"https://ci.example.com"}, "active": {"true"},
		"package_ids": {"p1, p2,"}, "action": {"add"},
	}, env.Login(t, testUser))

	assertNotice(t, w, "/control-panel/webhooks", "Webhook ci added.")
}

func TestAddWebhook_TestAction(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("TriggerWebhookTest", mock.Anything, mock.MatchedBy(func(h hubapi.Webhook) bool {
		return h.URL == "https://ci.example.com" && !h.Active
	})).Return(nil).Once()

	w := env.PostForm("/control-panel/webhooks", url.Values{
		"name": {"ci"}, "url": {"https://ci.example.com"}, "action": {"test"},
	}, env.Login(t, testUser))

	assertNotice(t, w, "/control-panel/webhooks?add=1", "A test notification has been sent to https://ci.example.com.")
	env.API.AssertNotCalled(t, "AddWebhook", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddWebhook_InvalidURL(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetWebhooks", mock.Anything, "").Return([]hubapi.Webhook{}, nil).Once()

	w := env.PostForm("/control-panel/webhooks", url.Values{"name": {"ci"}, "url": {"ci.example.com"}}, env.Login(t, testUser))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, handlertest.TestIDCount(w.Body.String(), "formError"))
	env.API.AssertNotCalled(t, "AddWebhook", mock.Anything, mock.Anything, mock.Anything)
	env.API.AssertNotCalled(t, "TriggerWebhookTest", mock.Anything, mock.Anything)
}

func TestDeleteWebhook(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("DeleteWebhook", mock.Anything, "w1", "acme").Return(nil).Once()

	w := env.PostForm("/control-panel/webhooks/w1/delete", nil, env.Login(t, testUser), env.OrgPrefs(t, "acme"))

	assertNotice(t, w, "/control-panel/webhooks", "Webhook deleted.")
}

// ---------------------------------------------------------------------------
// API keys
// ---------------------------------------------------------------------------

func TestAPIKeys_List(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetAPIKeys", mock.Anything).Return([]hubapi.APIKey{{APIKeyID: "k1", Name: "ci"}, {APIKeyID: "k2", Name: "local"}}, nil).Once()

	w := env.Get("/control-panel/api-keys", env.Login(t, testUser))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, handlertest.TestIDCount(w.Body.String(), "apiKeyCard"))
}

func TestAPIKeys_UnauthorizedRedirectsToLogin(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetAPIKeys", mock.Anything).Return(nil, errUnauthorized).Once()

	assertLoginRedirect(t, env, env.Get("/control-panel/api-keys", env.Login(t, testUser)))
}

func TestAddAPIKey_ShowsSecretOnce(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("AddAPIKey", mock.Anything, "ci").Return(&hubapi.APIKeyCreated{APIKeyID: "k1", Secret: "s3cr3t"}, nil).Once()
	env.API.On("GetAPIKeys", mock.Anything).Return([]hubapi.APIKey{{APIKeyID: "k1", Name: "ci"}}, nil).Twice()
	cookie := env.Login(t, testUser)

	w := env.PostForm("/control-panel/api-keys", url.Values{"name": {"ci"}}, cookie)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Body.String(), `data-testid="apiKeySecret">s3cr3t<`)

	w = env.Get("/control-panel/api-keys", cookie)
	assert.NotContains(t, w.Body.String(), "s3cr3t")
}

func TestDeleteAPIKey(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("DeleteAPIKey", mock.Anything, "k1").Return(nil).Once()

	w := env.PostForm("/control-panel/api-keys/k1/delete", nil, env.Login(t, testUser))

	assertNotice(t, w, "/control-panel/api-keys", "API key deleted.")
}

// ---------------------------------------------------------------------------
// Subscriptions
// ---------------------------------------------------------------------------

func TestSubscriptions_ListIgnoresSelectedOrg(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetUserSubscriptions", mock.Anything).Return([]hubapi.Subscription{
		{PackageID: "pkg-1", EventKind: hubapi.EventNewPackageRelease},
		{PackageID: "pkg-2", EventKind: hubapi.EventSecurityAlert},
	}, nil).Once()

	w := env.Get("/control-panel/subscriptions", env.Login(t, testUser), env.OrgPrefs(t, "acme"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, handlertest.TestIDCount(w.Body.String(), "subscriptionRow"))
}

func TestSubscriptions_Empty(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetUserSubscriptions", mock.Anything).Return([]hubapi.Subscription{}, nil).Once()

	body := env.Get("/control-panel/subscriptions", env.Login(t, testUser)).Body.String()

	assert.Equal(t, 1, handlertest.TestIDCount(body, "noData"))
	assert.Zero(t, handlertest.TestIDCount(body, "subscriptionRow"))
}

func TestSubscriptions_UnauthorizedRedirectsToLogin(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetUserSubscriptions", mock.Anything).Return(nil, errUnauthorized).Once()

	assertLoginRedirect(t, env, env.Get("/control-panel/subscriptions", env.Login(t, testUser)))
}

func TestDeleteSubscription(t *testing.T) {
	env := newControlPanelEnv(t)
	env.AllowCSRF()
	env.API.On("DeleteSubscription", mock.Anything, "pkg-1", hubapi.EventSecurityAlert).Return(nil).Once()

	w := env.PostForm("/control-panel/subscriptions/delete", url.Values{"package_id": {"pkg-1"}, "event_kind": {"1"}},
		env.Login(t, testUser))

	assertNotice(t, w, "/control-panel/subscriptions", "Subscription removed.")
}

func TestDeleteSubscription_InvalidForm(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetUserSubscriptions", mock.Anything).Return([]hubapi.Subscription{}, nil).Once()

	w := env.PostForm("/control-panel/subscriptions/delete", url.Values{"package_id": {"pkg-1"}, "event_kind": {"x"}},
		env.Login(t, testUser))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, handlertest.TestIDCount(w.Body.String(), "formError"))
	env.API.AssertNotCalled(t, "DeleteSubscription", mock.Anything, mock.Anything, mock.Anything)
}

func TestMutation_CSRFFailureShowsMessage(t *testing.T) {
	env := newControlPanelEnv(t)
	env.API.On("GetCSRFToken", mock.Anything).Return("", errServer).Once()
	env.API.On("GetAPIKeys", mock.Anything).Return([]hubapi.APIKey{}, nil).Once()

	w := env.PostForm("/control-panel/api-keys/k1/delete", nil, env.Login(t, testUser))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "An error occurred deleting the API key, please try again later.")
}

func TestOwner(t *testing.T) {
	env := handlertest.NewEnv(t)
	var alias, org string
	env.Router.GET("/owner", func(c *gin.Context) { alias, org = owner(c) })

	env.Get("/owner", env.Login(t, testUser), env.Prefs(t, session.Prefs{ControlPanel: session.ControlPanelPrefs{SelectedOrg: "acme"}}))

	assert.Equal(t, "jdoe", alias)
	assert.Equal(t, "acme", org)
}
