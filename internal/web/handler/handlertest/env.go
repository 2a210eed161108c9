package handlertest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/view"
	"github.com/packagehub/hub-web/internal/web/handler"
)

// Cookie names used by the test session manager.
const (
	SessionCookie = "test_session"
	PrefsCookie   = "test_prefs"
)

// Env is a gin engine wired with the page renderer, the session middleware
// and a mocked hub API.
type Env struct {
	API    *MockAPI
	Store  *session.MemoryStore
	Codec  *session.PrefsCodec
	Router *gin.Engine
	Base   *handler.Base
}

// NewEnv builds an Env. Register the routes under test on Env.Router.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	store := session.NewMemoryStore()
	codec := session.NewPrefsCodec("handlertest-secret")
	manager := session.NewManager(store, codec, session.ManagerConfig{
		CookieName:         SessionCookie,
		PrefsCookie:        PrefsCookie,
		TTL:                time.Hour,
		DefaultSearchLimit: 20,
	})

	api := &MockAPI{}
	t.Cleanup(func() { api.AssertExpectations(t) })

	r := gin.New()
	r.HTMLRender = renderer
	r.Use(manager.Middleware())

	return &Env{
		API:    api,
		Store:  store,
		Codec:  codec,
		Router: r,
		Base:   &handler.Base{API: api, Sessions: manager},
	}
}

// Login stores a session for user and returns its cookie.
func (e *Env) Login(t *testing.T, user *hubapi.Profile) *http.Cookie {
	t.Helper()
	sess, err := session.New("hub-session-"+user.Alias, user, time.Hour)
	require.NoError(t, err)
	require.NoError(t, e.Store.Set(context.Background(), sess))
	return &http.Cookie{Name: SessionCookie, Value: sess.ID}
}

// Prefs returns a preferences cookie holding p.
func (e *Env) Prefs(t *testing.T, p session.Prefs) *http.Cookie {
	t.Helper()
	value, err := e.Codec.Encode(p)
	require.NoError(t, err)
	return &http.Cookie{Name: PrefsCookie, Value: value}
}

// OrgPrefs returns a preferences cookie with org selected in the control panel.
func (e *Env) OrgPrefs(t *testing.T, org string) *http.Cookie {
	t.Helper()
	p := session.DefaultPrefs(20)
	p.ControlPanel.SelectedOrg = org
	return e.Prefs(t, p)
}

// AllowCSRF lets mutations fetch a CSRF token any number of times.
func (e *Env) AllowCSRF() {
	e.API.On("GetCSRFToken", mock.Anything).Return("csrf-token", nil).Maybe()
}

// Get serves a GET request.
func (e *Env) Get(target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// PostForm serves a form POST request.
func (e *Env) PostForm(target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// TestIDCount counts the elements carrying data-testid=id in html.
func TestIDCount(html, id string) int {
	return strings.Count(html, `data-testid="`+id+`"`)
}

// Cookie returns the cookie named name set by the response, or nil.
func Cookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
