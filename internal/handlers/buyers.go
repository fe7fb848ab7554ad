package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"buyer-lead-console/internal/api"
	"buyer-lead-console/internal/filters"
	"buyer-lead-console/internal/models"
	"buyer-lead-console/internal/session"
	"buyer-lead-console/internal/validation"

	"github.com/gin-gonic/gin"
)

const historyDisplayLimit = 5

// ListBuyers renders one page of leads for the current filter state
func (h *Handler) ListBuyers(c *gin.Context) {
	state := filters.Parse(c.Request.URL.Query())

	// Keep the address bar canonical: only non-default fields, stable order
	if canonical := state.Encode(); c.Request.URL.RawQuery != canonical {
		target := "/buyers"
		if canonical != "" {
			target += "?" + canonical
		}
		c.Redirect(http.StatusSeeOther, target)
		return
	}

	cred := session.Credential(c)
	syncer := h.listings.Get(h.sessionID(c))
	page, err := syncer.Fetch(state, func(s filters.FilterState) (*models.LeadPage, error) {
		return h.api.ListBuyers(cred, s.Values())
	})
	if err != nil {
		h.handleAPIError(c, err)
		return
	}

	data := h.pageData(c, "Buyer Leads")
	data["State"] = state
	data["Page"] = page
	data["Options"] = enumOptions()
	data["Query"] = state.Encode()
	data["Generation"] = syncer.Snapshot().Generation
	c.HTML(http.StatusOK, "buyers.html", data)
}

// PollBuyers returns the session's last applied listing snapshot as JSON.
// The table refresh script uses it to repaint without a full page load.
func (h *Handler) PollBuyers(c *gin.Context) {
	syncer := h.listings.Get(h.sessionID(c))
	snapshot := syncer.Snapshot()

	resp := gin.H{
		"generation": snapshot.Generation,
		"query":      snapshot.State.Encode(),
	}
	if snapshot.Err != nil {
		resp["error"] = failureMessage(snapshot.Err)
	}
	if snapshot.Page != nil {
		resp["page"] = snapshot.Page
	}
	c.JSON(http.StatusOK, resp)
}

// NewBuyerPage renders an empty lead form
func (h *Handler) NewBuyerPage(c *gin.Context) {
	h.renderLeadForm(c, "New Lead", "", "", validation.LeadInput{}, validation.Errors{}, "")
}

// CreateBuyer validates the submitted lead and sends it to the API. Field
// errors never leave the console; the request is only issued once the record
// passes the schema.
func (h *Handler) CreateBuyer(c *gin.Context) {
	input := leadInputFromForm(c)

	lead, errs := validation.ValidateLead(input)
	if errs != nil {
		h.renderLeadForm(c, "New Lead", "", "", input, errs, "")
		return
	}

	created, err := h.api.CreateBuyer(session.Credential(c), lead)
	if err != nil {
		if errs := serverFieldErrors(err); errs != nil {
			h.renderLeadForm(c, "New Lead", "", "", input, errs, "")
			return
		}
		h.renderLeadForm(c, "New Lead", "", "", input, validation.Errors{}, failureMessage(err))
		return
	}

	c.Redirect(http.StatusSeeOther, "/buyers/"+created.ID)
}

// ViewBuyer renders a single lead with its recent change history
func (h *Handler) ViewBuyer(c *gin.Context) {
	id := c.Param("id")

	lead, history, err := h.api.GetBuyer(session.Credential(c), id)
	if err != nil {
		h.handleAPIError(c, err)
		return
	}
	if len(history) > historyDisplayLimit {
		history = history[:historyDisplayLimit]
	}

	data := h.pageData(c, lead.FullName)
	data["Lead"] = lead
	data["History"] = history
	data["CanEdit"] = lead.EditableBy(session.Identity(c))
	c.HTML(http.StatusOK, "buyer_view.html", data)
}

// EditBuyerPage renders the prefilled edit form. The form carries the
// last-known updatedAt so the API can detect a concurrent edit on submit.
func (h *Handler) EditBuyerPage(c *gin.Context) {
	id := c.Param("id")

	lead, _, err := h.api.GetBuyer(session.Credential(c), id)
	if err != nil {
		h.handleAPIError(c, err)
		return
	}

	if !lead.EditableBy(session.Identity(c)) {
		h.renderError(c, http.StatusForbidden, "You do not have permission to edit this lead.")
		return
	}

	updatedAt := ""
	if lead.UpdatedAt != nil {
		updatedAt = lead.UpdatedAt.Format(time.RFC3339Nano)
	}
	h.renderLeadForm(c, "Edit Lead", id, updatedAt, leadInputFromRecord(lead), validation.Errors{}, "")
}

// UpdateBuyer submits an edit with the optimistic-concurrency timestamp. A
// conflict is surfaced verbatim; the console never merges or retries.
func (h *Handler) UpdateBuyer(c *gin.Context) {
	id := c.Param("id")
	input := leadInputFromForm(c)

	lead, errs := validation.ValidateLead(input)
	if errs != nil {
		h.renderLeadForm(c, "Edit Lead", id, c.PostForm("updatedAt"), input, errs, "")
		return
	}

	lead.ID = id
	if raw := c.PostForm("updatedAt"); raw != "" {
		if updatedAt, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			lead.UpdatedAt = &updatedAt
		}
	}

	_, err := h.api.UpdateBuyer(session.Credential(c), lead)
	if err != nil {
		if apiErr, ok := api.AsError(err); ok && apiErr.IsConflict() {
			h.renderLeadForm(c, "Edit Lead", id, c.PostForm("updatedAt"), input, validation.Errors{}, api.ConflictMessage)
			return
		}
		if errs := serverFieldErrors(err); errs != nil {
			h.renderLeadForm(c, "Edit Lead", id, c.PostForm("updatedAt"), input, errs, "")
			return
		}
		h.renderLeadForm(c, "Edit Lead", id, c.PostForm("updatedAt"), input, validation.Errors{}, failureMessage(err))
		return
	}

	c.Redirect(http.StatusSeeOther, "/buyers/"+id)
}

// DeleteBuyerPage asks for confirmation before the delete is issued
func (h *Handler) DeleteBuyerPage(c *gin.Context) {
	id := c.Param("id")

	lead, _, err := h.api.GetBuyer(session.Credential(c), id)
	if err != nil {
		h.handleAPIError(c, err)
		return
	}

	data := h.pageData(c, "Delete Lead")
	data["Lead"] = lead
	c.HTML(http.StatusOK, "buyer_delete.html", data)
}

// DeleteBuyer removes the lead after explicit confirmation
func (h *Handler) DeleteBuyer(c *gin.Context) {
	id := c.Param("id")

	if err := h.api.DeleteBuyer(session.Credential(c), id); err != nil {
		h.handleAPIError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/buyers")
}

// renderLeadForm redisplays the lead form with values, field errors, and an
// optional banner message. updatedAt rides along as a hidden field on edits.
func (h *Handler) renderLeadForm(c *gin.Context, title, id, updatedAt string, input validation.LeadInput, errs validation.Errors, banner string) {
	status := http.StatusOK
	if len(errs) > 0 || banner != "" {
		status = http.StatusBadRequest
	}

	data := h.pageData(c, title)
	data["ID"] = id
	data["Form"] = input
	data["Errors"] = errs
	data["Options"] = enumOptions()
	data["UpdatedAt"] = updatedAt
	if banner != "" {
		data["Error"] = banner
	}
	c.HTML(status, "buyer_form.html", data)
}

// leadInputFromForm collects the raw form values
func leadInputFromForm(c *gin.Context) validation.LeadInput {
	return validation.LeadInput{
		FullName:     c.PostForm("fullName"),
		Email:        c.PostForm("email"),
		Phone:        c.PostForm("phone"),
		City:         c.PostForm("city"),
		PropertyType: c.PostForm("propertyType"),
		BHK:          c.PostForm("bhk"),
		Purpose:      c.PostForm("purpose"),
		BudgetMin:    c.PostForm("budgetMin"),
		BudgetMax:    c.PostForm("budgetMax"),
		Timeline:     c.PostForm("timeline"),
		Source:       c.PostForm("source"),
		Status:       c.PostForm("status"),
		Notes:        c.PostForm("notes"),
		Tags:         validation.SplitTags(c.PostForm("tags")),
	}
}

// leadInputFromRecord prefills the form from a fetched record
func leadInputFromRecord(lead *models.BuyerLead) validation.LeadInput {
	input := validation.LeadInput{
		FullName:     lead.FullName,
		Email:        lead.Email,
		Phone:        lead.Phone,
		City:         string(lead.City),
		PropertyType: string(lead.PropType),
		BHK:          string(lead.BHK),
		Purpose:      string(lead.Purpose),
		Timeline:     string(lead.Timeline),
		Source:       string(lead.Source),
		Status:       string(lead.Status),
		Notes:        lead.Notes,
		Tags:         lead.Tags,
	}
	if lead.BudgetMin != nil {
		input.BudgetMin = strconv.Itoa(*lead.BudgetMin)
	}
	if lead.BudgetMax != nil {
		input.BudgetMax = strconv.Itoa(*lead.BudgetMax)
	}
	return input
}

// serverFieldErrors converts a 400 validation payload from the API into
// form field errors, in stable field order
func serverFieldErrors(err error) validation.Errors {
	apiErr, ok := api.AsError(err)
	if !ok || apiErr.StatusCode != http.StatusBadRequest || len(apiErr.Fields) == 0 {
		return nil
	}

	fields := make([]string, 0, len(apiErr.Fields))
	for field := range apiErr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var errs validation.Errors
	for _, field := range fields {
		for _, msg := range apiErr.Fields[field] {
			errs = append(errs, validation.FieldError{Field: field, Message: msg})
		}
	}
	return errs
}
