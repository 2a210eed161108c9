package pages

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/middleware"
	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/view"
)

const (
	loginFailedMessage   = "Authentication failed. Please check your credentials."
	loginErrorMessage    = "An error occurred signing in, please try again later."
	signupErrorMessage   = "An error occurred registering the user, please try again later."
	aliasTakenMessage    = "This username is not available, please choose another one."
	verifyErrorMessage   = "An error occurred verifying your email, please contact us about this issue."
	verifyExpiredMessage = "Sorry, the code provided is no longer valid."
)

// LoginPage renders the sign in form. Signed in users are sent on to the
// redirect target straight away.
// GET /login
func (h *Handlers) LoginPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		redirect := middleware.SafeRedirect(c.Query("redirect"), "")
		if session.FromGin(c).IsLoggedIn() {
			c.Redirect(http.StatusSeeOther, middleware.SafeRedirect(redirect, "/"))
			return
		}
		h.Render(c, http.StatusOK, view.PageLogin, "Sign in", view.LoginData{Redirect: redirect})
	}
}

// Login checks the credentials against the hub API and starts a session.
// POST /login
func (h *Handlers) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.PostForm("email"))
		password := c.PostForm("password")
		redirect := middleware.SafeRedirect(c.PostForm("redirect"), "")
		form := view.LoginData{Redirect: redirect, Email: email}

		ctx := c.Request.Context()
		hubSID, err := h.API.Login(ctx, email, password)
		if err != nil {
			form.Message = loginErrorMessage
			status := http.StatusBadGateway
			if hubapi.IsUnauthorized(err) {
				form.Message = loginFailedMessage
				status = http.StatusUnauthorized
			} else {
				slog.Warn("login failed", "error", err, "request_id", middleware.RequestID(c))
			}
			h.Render(c, status, view.PageLogin, "Sign in", form)
			return
		}

		profile, err := h.API.GetUserProfile(hubapi.WithSession(ctx, hubSID))
		if err != nil {
			slog.Warn("failed to load profile after login", "error", err, "request_id", middleware.RequestID(c))
			form.Message = loginErrorMessage
			h.Render(c, http.StatusBadGateway, view.PageLogin, "Sign in", form)
			return
		}
		if err := h.Sessions.Login(c, hubSID, profile); err != nil {
			slog.Error("failed to store session", "error", err, "request_id", middleware.RequestID(c))
			form.Message = loginErrorMessage
			h.Render(c, http.StatusInternalServerError, view.PageLogin, "Sign in", form)
			return
		}

		slog.Info("user signed in", "user", profile.Alias, "request_id", middleware.RequestID(c))
		c.Redirect(http.StatusSeeOther, middleware.SafeRedirect(redirect, "/"))
	}
}

// Logout ends the hub session and the local one.
// POST /logout
func (h *Handlers) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if session.FromGin(c).IsLoggedIn() {
			if err := h.API.Logout(session.APIContext(c)); err != nil {
				slog.Warn("hub logout failed", "error", err, "request_id", middleware.RequestID(c))
			}
		}
		if err := h.Sessions.Logout(c); err != nil {
			slog.Warn("failed to clear session", "error", err, "request_id", middleware.RequestID(c))
		}
		c.Redirect(http.StatusSeeOther, "/")
	}
}

// SignupPage renders the sign up form.
// GET /signup
func (h *Handlers) SignupPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.Render(c, http.StatusOK, view.PageSignup, "Sign up", view.SignupData{})
	}
}

// Signup registers a new user. The hub API sends the verification email.
// POST /signup
func (h *Handlers) Signup() gin.HandlerFunc {
	return func(c *gin.Context) {
		form := hubapi.UserRegistration{
			Alias:     strings.TrimSpace(c.PostForm("alias")),
			Email:     strings.TrimSpace(c.PostForm("email")),
			Password:  c.PostForm("password"),
			FirstName: strings.TrimSpace(c.PostForm("first_name")),
			LastName:  strings.TrimSpace(c.PostForm("last_name")),
		}
		data := view.SignupData{Form: form}
		data.Form.Password = ""

		// Register still validates the alias when the check itself fails.
		available, err := h.API.CheckAvailability(c.Request.Context(), hubapi.AvailabilityUserAlias, form.Alias)
		if err != nil {
			slog.Warn("alias availability check failed",
				"error", err, "request_id", middleware.RequestID(c))
		} else if !available {
			data.Message = aliasTakenMessage
			h.Render(c, http.StatusBadRequest, view.PageSignup, "Sign up", data)
			return
		}

		err = h.API.Register(c.Request.Context(), form)
		if err != nil {
			data.Message = signupErrorMessage
			status := http.StatusBadGateway
			if hubapi.KindOf(err) == hubapi.KindOther {
				if msg := hubapi.Message(err); msg != "" {
					data.Message = msg
					status = http.StatusBadRequest
				}
			}
			h.Render(c, status, view.PageSignup, "Sign up", data)
			return
		}
		data.Done = true
		h.Render(c, http.StatusOK, view.PageSignup, "Sign up", data)
	}
}

// VerifyEmail confirms the email of a new account with the code from the
// verification link.
// GET /verify-email?code=...
func (h *Handlers) VerifyEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Query("code")
		if code == "" {
			h.Render(c, http.StatusBadRequest, view.PageVerifyEmail, "Verify email", view.VerifyEmailData{Message: verifyExpiredMessage})
			return
		}

		err := h.API.VerifyEmail(c.Request.Context(), code)
		switch {
		case err == nil:
			h.Render(c, http.StatusOK, view.PageVerifyEmail, "Verify email", view.VerifyEmailData{Verified: true})
		case hubapi.KindOf(err) == hubapi.KindOther && isClientError(err):
			h.Render(c, http.StatusBadRequest, view.PageVerifyEmail, "Verify email", view.VerifyEmailData{Message: verifyExpiredMessage})
		default:
			h.Render(c, http.StatusBadGateway, view.PageVerifyEmail, "Verify email", view.VerifyEmailData{Message: verifyErrorMessage})
		}
	}
}

func isClientError(err error) bool {
	var apiErr *hubapi.APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500
}

