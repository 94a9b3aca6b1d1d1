// Authorization HTTP handlers.
//
// This file exposes the web authorization surface:
//   - GET  /               (password form)
//   - POST /               (password check, renders success or the form again)
//   - GET  /authorize/{id} (grant access to a user identity)
//   - GET  /check/{id}     (report whether an identity is authorized)
//
// Handlers are transport-thin: they validate input, call the auth service,
// and translate results into HTTP responses. The password form only gates a
// page; recording a grant happens exclusively on /authorize.
package handlers

import (
	"context"
	"crypto/subtle"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages holds the parsed login/success templates.
var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// AuthService defines the grant operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AuthService interface {
	// IsAuthorized reports whether userID holds an unexpired grant.
	IsAuthorized(ctx context.Context, userID int64) (bool, error)
	// Authorize grants userID access for the configured window,
	// replacing any prior grant.
	Authorize(ctx context.Context, userID int64) error
}

// Handlers groups the HTTP endpoints of the authorization server.
type Handlers struct {
	auth AuthService

	// password is the shared login password, compared by exact match.
	password string
}

// New constructs a Handlers instance bound to the given service and the
// shared password.
func New(auth AuthService, password string) *Handlers {
	return &Handlers{auth: auth, password: password}
}

// loginPage carries the optional error line rendered above the form.
type loginPage struct {
	Error string
}

// CheckResponse is the JSON body of GET /check/{id}.
type CheckResponse struct {
	Authorized bool `json:"authorized"`
}

// StatusResponse is the JSON body of GET /authorize/{id}.
type StatusResponse struct {
	Status string `json:"status"`
}

// LoginForm renders the password form.
//
//	GET /
func (h *Handlers) LoginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", loginPage{})
}

// Login checks the submitted password. A match renders the success page;
// anything else re-renders the form with an error message.
//
//	POST /
func (h *Handlers) Login(c *gin.Context) {
	got := c.PostForm("password")
	if h.password == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.password)) != 1 {
		h.render(c, http.StatusUnauthorized, "login.html", loginPage{Error: "❌ Wrong password"})
		return
	}
	h.render(c, http.StatusOK, "success.html", nil)
}

// Authorize grants access to the user identity in the path. The route is
// deliberately unauthenticated, mirroring the one-shot links handed out
// after a successful login.
//
//	GET /authorize/{id}
func (h *Handlers) Authorize(c *gin.Context) {
	id, valid := h.userID(c)
	if !valid {
		return
	}
	if err := h.auth.Authorize(c.Request.Context(), id); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeGrantFailed, "could not record authorization")
		return
	}
	ok(c, http.StatusOK, StatusResponse{Status: "ok"})
}

// Check reports whether the user identity in the path currently holds an
// unexpired grant.
//
//	GET /check/{id}
func (h *Handlers) Check(c *gin.Context) {
	id, valid := h.userID(c)
	if !valid {
		return
	}
	authorized, err := h.auth.IsAuthorized(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCheckFailed, "could not check authorization")
		return
	}
	ok(c, http.StatusOK, CheckResponse{Authorized: authorized})
}

// userID parses the :id path parameter, failing the request with 400 when
// it is not an integer.
func (h *Handlers) userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be an integer")
		return 0, false
	}
	return id, true
}

// render writes an HTML page from the embedded template set.
func (h *Handlers) render(c *gin.Context, status int, name string, data any) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(c.Writer, name, data); err != nil {
		lgFallback(c, err)
	}
}

// lgFallback logs a template execution failure; headers are already sent.
func lgFallback(c *gin.Context, err error) {
	_ = c.Error(err)
}
