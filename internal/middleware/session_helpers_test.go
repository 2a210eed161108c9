package middleware

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/session"
)

const (
	testSessionCookie = "test_sid"
	testPrefsCookie   = "test_prefs"
)

// sessionFixture wires a session manager over an in-memory store and can mint
// cookies for a signed-in user.
type sessionFixture struct {
	store   *session.MemoryStore
	codec   *session.PrefsCodec
	manager *session.Manager
}

func newSessionFixture() *sessionFixture {
	store := session.NewMemoryStore()
	codec := session.NewPrefsCodec("middleware-test-secret")
	return &sessionFixture{
		store: store,
		codec: codec,
		manager: session.NewManager(store, codec, session.ManagerConfig{
			CookieName:  testSessionCookie,
			PrefsCookie: testPrefsCookie,
		}),
	}
}

// router returns an engine running the session middleware followed by mw.
func (f *sessionFixture) router(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(f.manager.Middleware())
	r.Use(mw...)
	return r
}

func (f *sessionFixture) login(t *testing.T, alias string) *http.Cookie {
	t.Helper()
	sess, err := session.New("hub-"+alias, &hubapi.Profile{Alias: alias}, time.Hour)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	if err := f.store.Set(context.Background(), sess); err != nil {
		t.Fatalf("store.Set: %v", err)
	}
	return &http.Cookie{Name: testSessionCookie, Value: sess.ID}
}

func (f *sessionFixture) orgPrefs(t *testing.T, org string) *http.Cookie {
	t.Helper()
	p := session.DefaultPrefs(0)
	p.ControlPanel.SelectedOrg = org
	value, err := f.codec.Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return &http.Cookie{Name: testPrefsCookie, Value: value}
}
