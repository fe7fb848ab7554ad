package handlers

import (
	"log"
	"net/http"

	"buyer-lead-console/internal/api"
	"buyer-lead-console/internal/listing"
	"buyer-lead-console/internal/models"
	"buyer-lead-console/internal/ratelimit"
	"buyer-lead-console/internal/session"

	"github.com/gin-gonic/gin"
)

// Handler carries the console's shared dependencies
type Handler struct {
	api          *api.Client
	sessions     *session.Manager
	listings     *listing.Registry
	loginLimiter *ratelimit.LoginLimiter
	cookieName   string
}

func NewHandler(apiClient *api.Client, sessions *session.Manager, listings *listing.Registry, loginLimiter *ratelimit.LoginLimiter, cookieName string) *Handler {
	return &Handler{
		api:          apiClient,
		sessions:     sessions,
		listings:     listings,
		loginLimiter: loginLimiter,
		cookieName:   cookieName,
	}
}

// RegisterRoutes wires all console routes onto the router
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, "/buyers")
	})

	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.POST("/demo-login", h.DemoLogin)
	r.GET("/register", h.RegisterPage)
	r.POST("/register", h.Register)
	r.POST("/logout", h.Logout)

	buyers := r.Group("/buyers", h.requireAuth())
	{
		buyers.GET("", h.ListBuyers)
		buyers.GET("/poll", h.PollBuyers)
		buyers.GET("/new", h.NewBuyerPage)
		buyers.POST("/new", h.CreateBuyer)
		buyers.GET("/import", h.ImportPage)
		buyers.POST("/import", h.ImportCSV)
		buyers.GET("/export", h.ExportCSV)
		buyers.GET("/:id", h.ViewBuyer)
		buyers.GET("/:id/edit", h.EditBuyerPage)
		buyers.POST("/:id/edit", h.UpdateBuyer)
		buyers.GET("/:id/delete", h.DeleteBuyerPage)
		buyers.POST("/:id/delete", h.DeleteBuyer)
	}
}

// requireAuth redirects unauthenticated requests to the login page
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if session.Identity(c) == nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// pageData builds the base template payload for a page
func (h *Handler) pageData(c *gin.Context, title string) gin.H {
	return gin.H{
		"Title":    title,
		"Identity": session.Identity(c),
	}
}

// failureMessage maps an error to the message shown to the user. Conflict and
// not-found responses keep their distinct messages; everything else falls
// back to the extracted or generic message.
func failureMessage(err error) string {
	if apiErr, ok := api.AsError(err); ok {
		return apiErr.UserMessage()
	}
	return api.GenericErrorMessage
}

// renderError shows the shared error page
func (h *Handler) renderError(c *gin.Context, status int, message string) {
	data := h.pageData(c, "Error")
	data["Message"] = message
	c.HTML(status, "error.html", data)
}

// handleAPIError renders the right page for a failed API call. 401 sends the
// user back to login; everything else surfaces on the error page.
func (h *Handler) handleAPIError(c *gin.Context, err error) {
	log.Printf("[console] api error: %v", err)
	if apiErr, ok := api.AsError(err); ok {
		switch {
		case apiErr.IsUnauthorized():
			c.Redirect(http.StatusSeeOther, "/login")
			return
		case apiErr.IsNotFound():
			h.renderError(c, http.StatusNotFound, apiErr.UserMessage())
			return
		case apiErr.IsForbidden():
			h.renderError(c, http.StatusForbidden, apiErr.UserMessage())
			return
		}
		h.renderError(c, http.StatusBadGateway, apiErr.UserMessage())
		return
	}
	h.renderError(c, http.StatusBadGateway, api.GenericErrorMessage)
}

// sessionID returns the request's session cookie value, or ""
func (h *Handler) sessionID(c *gin.Context) string {
	id, err := c.Cookie(h.cookieName)
	if err != nil {
		return ""
	}
	return id
}

// enumOptions is attached to every lead form page
func enumOptions() gin.H {
	return gin.H{
		"Cities":        models.Cities(),
		"PropertyTypes": models.PropertyTypes(),
		"BHKs":          models.BHKs(),
		"Purposes":      []models.Purpose{models.PurposeBuy, models.PurposeRent},
		"Timelines":     models.Timelines(),
		"Sources":       models.Sources(),
		"Statuses":      models.Statuses(),
	}
}
