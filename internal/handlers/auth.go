package handlers

import (
	"log"
	"net/http"

	"buyer-lead-console/internal/session"

	"github.com/gin-gonic/gin"
)

// LoginPage renders the login form
func (h *Handler) LoginPage(c *gin.Context) {
	if session.Identity(c) != nil {
		c.Redirect(http.StatusSeeOther, "/buyers")
		return
	}
	c.HTML(http.StatusOK, "login.html", h.pageData(c, "Log in"))
}

// Login exchanges the submitted credentials for a token and establishes the
// session
func (h *Handler) Login(c *gin.Context) {
	if !h.loginLimiter.Allow(c.ClientIP()) {
		data := h.pageData(c, "Log in")
		data["Error"] = "Too many login attempts. Please try again later."
		c.HTML(http.StatusTooManyRequests, "login.html", data)
		return
	}

	email := c.PostForm("email")
	password := c.PostForm("password")

	result, err := h.api.Login(email, password)
	if err != nil {
		data := h.pageData(c, "Log in")
		data["Error"] = failureMessage(err)
		data["Email"] = email
		c.HTML(http.StatusUnauthorized, "login.html", data)
		return
	}

	if err := h.sessions.Establish(c, result.Token, result.User); err != nil {
		log.Printf("[auth] failed to establish session: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Could not start a session. Please try again.")
		return
	}

	log.Printf("[auth] user %s logged in", result.User.Email)
	c.Redirect(http.StatusSeeOther, "/buyers")
}

// DemoLogin logs in as a shared demo account for the submitted role
func (h *Handler) DemoLogin(c *gin.Context) {
	if !h.loginLimiter.Allow(c.ClientIP()) {
		data := h.pageData(c, "Log in")
		data["Error"] = "Too many login attempts. Please try again later."
		c.HTML(http.StatusTooManyRequests, "login.html", data)
		return
	}

	role := c.DefaultPostForm("role", "agent")

	result, err := h.api.DemoLogin(role)
	if err != nil {
		data := h.pageData(c, "Log in")
		data["Error"] = failureMessage(err)
		c.HTML(http.StatusUnauthorized, "login.html", data)
		return
	}

	if err := h.sessions.Establish(c, result.Token, result.User); err != nil {
		log.Printf("[auth] failed to establish session: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Could not start a session. Please try again.")
		return
	}

	log.Printf("[auth] demo login as %s", role)
	c.Redirect(http.StatusSeeOther, "/buyers")
}

// RegisterPage renders the registration form
func (h *Handler) RegisterPage(c *gin.Context) {
	if session.Identity(c) != nil {
		c.Redirect(http.StatusSeeOther, "/buyers")
		return
	}
	c.HTML(http.StatusOK, "register.html", h.pageData(c, "Register"))
}

// Register creates an account and logs straight in
func (h *Handler) Register(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	role := c.DefaultPostForm("role", "agent")

	result, err := h.api.Register(email, password, role)
	if err != nil {
		data := h.pageData(c, "Register")
		data["Error"] = failureMessage(err)
		data["Email"] = email
		c.HTML(http.StatusBadRequest, "register.html", data)
		return
	}

	if err := h.sessions.Establish(c, result.Token, result.User); err != nil {
		log.Printf("[auth] failed to establish session: %v", err)
		h.renderError(c, http.StatusInternalServerError, "Could not start a session. Please try again.")
		return
	}

	log.Printf("[auth] registered %s", result.User.Email)
	c.Redirect(http.StatusSeeOther, "/buyers")
}

// Logout clears the session synchronously; no network call is involved
func (h *Handler) Logout(c *gin.Context) {
	if sessionID := h.sessionID(c); sessionID != "" {
		h.listings.Drop(sessionID)
	}
	h.sessions.Logout(c)
	c.Redirect(http.StatusSeeOther, "/login")
}
