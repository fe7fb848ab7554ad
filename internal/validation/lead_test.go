package validation

import (
	"testing"

	"buyer-lead-console/internal/models"
)

func validInput() LeadInput {
	return LeadInput{
		FullName:     "Ravi Kumar",
		Phone:        "9876543210",
		City:         "Mohali",
		PropertyType: "Plot",
		Purpose:      "Buy",
		Timeline:     "0-3m",
		Source:       "Website",
	}
}

func TestValidateLead_Accepts(t *testing.T) {
	lead, errs := ValidateLead(validInput())
	if errs != nil {
		t.Fatalf("expected valid input to pass, got: %v", errs)
	}
	if lead.Status != models.StatusNew {
		t.Errorf("Status = %q, want default %q", lead.Status, models.StatusNew)
	}
	if lead.City != models.CityMohali {
		t.Errorf("City = %q, want %q", lead.City, models.CityMohali)
	}
}

func TestValidateLead_BHKRequirement(t *testing.T) {
	tests := []struct {
		propertyType string
		bhk          string
		wantBHKError bool
	}{
		{"Apartment", "", true},
		{"Villa", "", true},
		{"Apartment", "2", false},
		{"Villa", "Studio", false},
		{"Plot", "", false},
		{"Office", "", false},
		{"Retail", "", false},
		{"Plot", "3", false},
	}

	for _, tt := range tests {
		t.Run(tt.propertyType+"/"+tt.bhk, func(t *testing.T) {
			in := validInput()
			in.PropertyType = tt.propertyType
			in.BHK = tt.bhk

			_, errs := ValidateLead(in)
			got := errs.ByField("bhk") != ""
			if got != tt.wantBHKError {
				t.Errorf("bhk error = %v, want %v (errs: %v)", got, tt.wantBHKError, errs)
			}
		})
	}
}

func TestValidateLead_BudgetOrdering(t *testing.T) {
	tests := []struct {
		name     string
		min, max string
		wantErr  bool
	}{
		{"max below min", "500000", "400000", true},
		{"max equals min", "500000", "500000", false},
		{"max above min", "400000", "500000", false},
		{"only min", "400000", "", false},
		{"only max", "", "400000", false},
		{"neither", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.BudgetMin = tt.min
			in.BudgetMax = tt.max

			_, errs := ValidateLead(in)
			got := errs.ByField("budgetMax") != ""
			if got != tt.wantErr {
				t.Errorf("budgetMax error = %v, want %v (errs: %v)", got, tt.wantErr, errs)
			}
		})
	}
}

func TestValidateLead_BudgetNonNegative(t *testing.T) {
	in := validInput()
	in.BudgetMin = "-5"

	_, errs := ValidateLead(in)
	if errs.ByField("budgetMin") == "" {
		t.Errorf("expected budgetMin error for negative value, got: %v", errs)
	}
}

func TestValidateLead_Phone(t *testing.T) {
	tests := []struct {
		phone   string
		wantErr bool
	}{
		{"9876543210", false},
		{"123456789012345", false},
		{"12345", true},
		{"1234567890123456", true},
		{"98765abc10", true},
		{"+919876543210", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			in := validInput()
			in.Phone = tt.phone

			_, errs := ValidateLead(in)
			got := errs.ByField("phone") != ""
			if got != tt.wantErr {
				t.Errorf("phone %q error = %v, want %v", tt.phone, got, tt.wantErr)
			}
		})
	}
}

func TestValidateLead_OptionalEmail(t *testing.T) {
	in := validInput()
	in.Email = ""
	if _, errs := ValidateLead(in); errs != nil {
		t.Errorf("empty email should be accepted, got: %v", errs)
	}

	in.Email = "   "
	if _, errs := ValidateLead(in); errs != nil {
		t.Errorf("blank email should normalize to absent, got: %v", errs)
	}

	in.Email = "not-an-email"
	if _, errs := ValidateLead(in); errs.ByField("email") == "" {
		t.Error("malformed email should be rejected")
	}

	in.Email = "ravi@example.com"
	if _, errs := ValidateLead(in); errs != nil {
		t.Errorf("well-formed email should be accepted, got: %v", errs)
	}
}

func TestValidateLead_CrossFieldRunsAfterFieldRules(t *testing.T) {
	// Field failure suppresses the cross-field pass entirely
	in := validInput()
	in.PropertyType = "Apartment"
	in.BHK = ""
	in.Phone = "123"

	_, errs := ValidateLead(in)
	if errs.ByField("phone") == "" {
		t.Fatal("expected phone error")
	}
	if errs.ByField("bhk") != "" {
		t.Error("cross-field bhk rule should not run while field rules fail")
	}
}

func TestValidateLead_NotesLength(t *testing.T) {
	in := validInput()
	notes := make([]rune, 1001)
	for i := range notes {
		notes[i] = 'a'
	}
	in.Notes = string(notes)

	_, errs := ValidateLead(in)
	if errs.ByField("notes") == "" {
		t.Error("notes over 1000 chars should be rejected")
	}
}

func TestValidateLead_TagNormalization(t *testing.T) {
	in := validInput()
	in.Tags = []string{" hot ", "hot", "", "nri"}

	lead, errs := ValidateLead(in)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(lead.Tags) != 2 || lead.Tags[0] != "hot" || lead.Tags[1] != "nri" {
		t.Errorf("Tags = %v, want [hot nri]", lead.Tags)
	}
}

func TestValidateLead_ErrorsInFormFieldOrder(t *testing.T) {
	in := validInput()
	in.Phone = "123"
	in.BudgetMin = "-5"
	in.Timeline = "someday"

	_, errs := ValidateLead(in)
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(errs), errs)
	}
	want := []string{"phone", "budgetMin", "timeline"}
	for i, field := range want {
		if errs[i].Field != field {
			t.Errorf("errs[%d].Field = %q, want %q (full: %v)", i, errs[i].Field, field, errs)
		}
	}
}

func TestValidateLead_Deterministic(t *testing.T) {
	in := validInput()
	in.PropertyType = "Apartment"
	in.BudgetMin = "900"
	in.BudgetMax = "100"

	_, first := ValidateLead(in)
	_, second := ValidateLead(in)
	if first.Error() != second.Error() {
		t.Errorf("validation not deterministic: %v vs %v", first, second)
	}
}
