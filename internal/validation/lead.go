package validation

import (
	"strconv"
	"strings"

	"buyer-lead-console/internal/models"

	"github.com/go-playground/validator/v10"
)

// FieldError is one validation failure scoped to a single form field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is an ordered list of field errors
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "valid"
	}
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

// ByField returns the first message for the given field, or ""
func (e Errors) ByField(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// LeadInput is a candidate lead as submitted from a form or CSV row.
// All values are raw strings; Validate normalizes and type-checks them.
type LeadInput struct {
	FullName     string
	Email        string
	Phone        string
	City         string
	PropertyType string
	BHK          string
	Purpose      string
	BudgetMin    string
	BudgetMax    string
	Timeline     string
	Source       string
	Status       string
	Notes        string
	Tags         []string
}

// leadRules carries the per-field tag rules. Field order here fixes the
// order in which errors are reported.
type leadRules struct {
	FullName     string `validate:"required,min=2,max=80"`
	Email        string `validate:"omitempty,email"`
	Phone        string `validate:"required,digits,min=10,max=15"`
	City         string `validate:"required,oneof=Chandigarh Mohali Zirakpur Panchkula Other"`
	PropertyType string `validate:"required,oneof=Apartment Villa Plot Office Retail"`
	BHK          string `validate:"omitempty,oneof=Studio 1 2 3 4"`
	Purpose      string `validate:"required,oneof=Buy Rent"`
	Timeline     string `validate:"required,oneof=0-3m 3-6m >6m Exploring"`
	Source       string `validate:"required,oneof=Website Referral Walk-in Call Other"`
	Status       string `validate:"omitempty,oneof=New Qualified Contacted Visited Negotiation Converted Dropped"`
	Notes        string `validate:"omitempty,max=1000"`
}

// fieldMessages maps struct field -> failed tag -> user-facing message
var fieldMessages = map[string]map[string]string{
	"FullName": {
		"required": "Full name is required",
		"min":      "Full name must be at least 2 characters",
		"max":      "Full name must be at most 80 characters",
	},
	"Email": {
		"email": "Email must be a valid email address",
	},
	"Phone": {
		"required": "Phone is required",
		"digits":   "Phone must contain digits only",
		"min":      "Phone must be 10-15 digits",
		"max":      "Phone must be 10-15 digits",
	},
	"City":         {"required": "City is required", "oneof": "City must be one of the supported cities"},
	"PropertyType": {"required": "Property type is required", "oneof": "Property type is not recognized"},
	"BHK":          {"oneof": "BHK is not recognized"},
	"Purpose":      {"required": "Purpose is required", "oneof": "Purpose must be Buy or Rent"},
	"Timeline":     {"required": "Timeline is required", "oneof": "Timeline is not recognized"},
	"Source":       {"required": "Source is required", "oneof": "Source is not recognized"},
	"Status":       {"oneof": "Status is not recognized"},
	"Notes":        {"max": "Notes must be at most 1000 characters"},
}

// formNames maps struct field names to the form field names errors are
// reported against
var formNames = map[string]string{
	"FullName":     "fullName",
	"Email":        "email",
	"Phone":        "phone",
	"City":         "city",
	"PropertyType": "propertyType",
	"BHK":          "bhk",
	"Purpose":      "purpose",
	"Timeline":     "timeline",
	"Source":       "source",
	"Status":       "status",
	"Notes":        "notes",
}

// fieldOrder fixes the reporting order of field errors to the order the
// fields appear on the form
var fieldOrder = []string{
	"fullName", "email", "phone", "city", "propertyType", "bhk", "purpose",
	"budgetMin", "budgetMax", "timeline", "source", "status", "notes",
}

// Cross-field rule messages
const (
	msgBHKRequired = "BHK is required for Apartment and Villa"
	msgBudgetOrder = "Maximum budget must be greater than or equal to minimum budget"
	msgBudgetValue = "Budget must be a non-negative number"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// digits: ASCII digits only, no sign or decimal point
	v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, r := range s {
			if r < '0' || r > '9' {
				return false
			}
		}
		return len(s) > 0
	})
	return v
}

// ValidateLead normalizes and validates a candidate lead. It returns the
// accepted record, or an ordered set of field-scoped errors. Field rules run
// first; the two cross-field rules (BHK requirement, budget ordering) run
// only after every field rule has passed. Pure and deterministic, no I/O.
func ValidateLead(in LeadInput) (*models.BuyerLead, Errors) {
	in = normalize(in)

	rules := leadRules{
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        in.Phone,
		City:         in.City,
		PropertyType: in.PropertyType,
		BHK:          in.BHK,
		Purpose:      in.Purpose,
		Timeline:     in.Timeline,
		Source:       in.Source,
		Status:       in.Status,
		Notes:        in.Notes,
	}

	fieldErrs := make(map[string]string)
	if err := validate.Struct(rules); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, Errors{{Field: "form", Message: "Invalid input"}}
		}
		for _, fe := range verrs {
			msg := fieldMessages[fe.StructField()][fe.Tag()]
			if msg == "" {
				msg = "Invalid value"
			}
			name := formNames[fe.StructField()]
			if _, taken := fieldErrs[name]; !taken {
				fieldErrs[name] = msg
			}
		}
	}

	budgetMin, minErr := parseBudget(in.BudgetMin)
	if minErr != "" {
		fieldErrs["budgetMin"] = minErr
	}
	budgetMax, maxErr := parseBudget(in.BudgetMax)
	if maxErr != "" {
		fieldErrs["budgetMax"] = maxErr
	}

	// Errors surface in form-field order regardless of which rule produced them
	var errs Errors
	for _, field := range fieldOrder {
		if msg, ok := fieldErrs[field]; ok {
			errs = append(errs, FieldError{Field: field, Message: msg})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	// Cross-field refinements, evaluated only once field rules pass
	propType := models.PropertyType(in.PropertyType)
	if propType.NeedsBHK() && in.BHK == "" {
		errs = append(errs, FieldError{Field: "bhk", Message: msgBHKRequired})
	}
	if budgetMin != nil && budgetMax != nil && *budgetMax < *budgetMin {
		errs = append(errs, FieldError{Field: "budgetMax", Message: msgBudgetOrder})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	status := models.Status(in.Status)
	if status == "" {
		status = models.StatusNew
	}

	lead := &models.BuyerLead{
		FullName:  in.FullName,
		Email:     in.Email,
		Phone:     in.Phone,
		City:      models.City(in.City),
		PropType:  propType,
		BHK:       models.BHK(in.BHK),
		Purpose:   models.Purpose(in.Purpose),
		BudgetMin: budgetMin,
		BudgetMax: budgetMax,
		Timeline:  models.Timeline(in.Timeline),
		Source:    models.Source(in.Source),
		Status:    status,
		Notes:     in.Notes,
		Tags:      in.Tags,
	}
	return lead, nil
}

// normalize trims every value and treats "present but empty" optional fields
// as absent. Tags are de-duplicated with blanks dropped.
func normalize(in LeadInput) LeadInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.City = strings.TrimSpace(in.City)
	in.PropertyType = strings.TrimSpace(in.PropertyType)
	in.BHK = strings.TrimSpace(in.BHK)
	in.Purpose = strings.TrimSpace(in.Purpose)
	in.BudgetMin = strings.TrimSpace(in.BudgetMin)
	in.BudgetMax = strings.TrimSpace(in.BudgetMax)
	in.Timeline = strings.TrimSpace(in.Timeline)
	in.Source = strings.TrimSpace(in.Source)
	in.Status = strings.TrimSpace(in.Status)
	in.Notes = strings.TrimSpace(in.Notes)

	seen := make(map[string]bool)
	var tags []string
	for _, t := range in.Tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	in.Tags = tags
	return in
}

// SplitTags turns a comma-separated tag string into a tag list
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func parseBudget(raw string) (*int, string) {
	if raw == "" {
		return nil, ""
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, msgBudgetValue
	}
	return &n, ""
}
