package models

import (
	"fmt"
	"time"
)

// City is one of the fixed set of supported cities
type City string

const (
	CityChandigarh City = "Chandigarh"
	CityMohali     City = "Mohali"
	CityZirakpur   City = "Zirakpur"
	CityPanchkula  City = "Panchkula"
	CityOther      City = "Other"
)

// PropertyType is the kind of property the lead is interested in
type PropertyType string

const (
	PropertyApartment PropertyType = "Apartment"
	PropertyVilla     PropertyType = "Villa"
	PropertyPlot      PropertyType = "Plot"
	PropertyOffice    PropertyType = "Office"
	PropertyRetail    PropertyType = "Retail"
)

// BHK is the bedroom count, required only for Apartment and Villa
type BHK string

const (
	BHKStudio BHK = "Studio"
	BHK1      BHK = "1"
	BHK2      BHK = "2"
	BHK3      BHK = "3"
	BHK4      BHK = "4"
)

// Purpose is the transaction purpose
type Purpose string

const (
	PurposeBuy  Purpose = "Buy"
	PurposeRent Purpose = "Rent"
)

// Timeline is the expected purchase timeline
type Timeline string

const (
	TimelineImmediate Timeline = "0-3m"
	TimelineShort     Timeline = "3-6m"
	TimelineLong      Timeline = ">6m"
	TimelineExploring Timeline = "Exploring"
)

// Source is how the lead was acquired
type Source string

const (
	SourceWebsite  Source = "Website"
	SourceReferral Source = "Referral"
	SourceWalkIn   Source = "Walk-in"
	SourceCall     Source = "Call"
	SourceOther    Source = "Other"
)

// Status tracks the lead through the sales funnel
type Status string

const (
	StatusNew         Status = "New"
	StatusQualified   Status = "Qualified"
	StatusContacted   Status = "Contacted"
	StatusVisited     Status = "Visited"
	StatusNegotiation Status = "Negotiation"
	StatusConverted   Status = "Converted"
	StatusDropped     Status = "Dropped"
)

var (
	cities = map[City]bool{
		CityChandigarh: true, CityMohali: true, CityZirakpur: true,
		CityPanchkula: true, CityOther: true,
	}
	propertyTypes = map[PropertyType]bool{
		PropertyApartment: true, PropertyVilla: true, PropertyPlot: true,
		PropertyOffice: true, PropertyRetail: true,
	}
	bhks = map[BHK]bool{
		BHKStudio: true, BHK1: true, BHK2: true, BHK3: true, BHK4: true,
	}
	purposes = map[Purpose]bool{
		PurposeBuy: true, PurposeRent: true,
	}
	timelines = map[Timeline]bool{
		TimelineImmediate: true, TimelineShort: true,
		TimelineLong: true, TimelineExploring: true,
	}
	sources = map[Source]bool{
		SourceWebsite: true, SourceReferral: true, SourceWalkIn: true,
		SourceCall: true, SourceOther: true,
	}
	statuses = map[Status]bool{
		StatusNew: true, StatusQualified: true, StatusContacted: true,
		StatusVisited: true, StatusNegotiation: true,
		StatusConverted: true, StatusDropped: true,
	}
)

func (c City) IsValid() bool         { return cities[c] }
func (p PropertyType) IsValid() bool { return propertyTypes[p] }
func (b BHK) IsValid() bool          { return bhks[b] }
func (p Purpose) IsValid() bool      { return purposes[p] }
func (t Timeline) IsValid() bool     { return timelines[t] }
func (s Source) IsValid() bool       { return sources[s] }
func (s Status) IsValid() bool       { return statuses[s] }

// NeedsBHK reports whether a bedroom count is required for this property type
func (p PropertyType) NeedsBHK() bool {
	return p == PropertyApartment || p == PropertyVilla
}

// Cities returns all cities in display order
func Cities() []City {
	return []City{CityChandigarh, CityMohali, CityZirakpur, CityPanchkula, CityOther}
}

// PropertyTypes returns all property types in display order
func PropertyTypes() []PropertyType {
	return []PropertyType{PropertyApartment, PropertyVilla, PropertyPlot, PropertyOffice, PropertyRetail}
}

// BHKs returns all bedroom counts in display order
func BHKs() []BHK {
	return []BHK{BHKStudio, BHK1, BHK2, BHK3, BHK4}
}

// Timelines returns all timelines in display order
func Timelines() []Timeline {
	return []Timeline{TimelineImmediate, TimelineShort, TimelineLong, TimelineExploring}
}

// Sources returns all sources in display order
func Sources() []Source {
	return []Source{SourceWebsite, SourceReferral, SourceWalkIn, SourceCall, SourceOther}
}

// Statuses returns all statuses in display order
func Statuses() []Status {
	return []Status{StatusNew, StatusQualified, StatusContacted, StatusVisited,
		StatusNegotiation, StatusConverted, StatusDropped}
}

// BuyerLead represents a single buyer lead record as served by the remote API
type BuyerLead struct {
	ID        string       `json:"id,omitempty"`
	FullName  string       `json:"fullName"`
	Email     string       `json:"email,omitempty"`
	Phone     string       `json:"phone"`
	City      City         `json:"city"`
	PropType  PropertyType `json:"propertyType"`
	BHK       BHK          `json:"bhk,omitempty"`
	Purpose   Purpose      `json:"purpose"`
	BudgetMin *int         `json:"budgetMin,omitempty"`
	BudgetMax *int         `json:"budgetMax,omitempty"`
	Timeline  Timeline     `json:"timeline"`
	Source    Source       `json:"source"`
	Status    Status       `json:"status,omitempty"`
	Notes     string       `json:"notes,omitempty"`
	Tags      []string     `json:"tags,omitempty"`

	OwnerID   string     `json:"ownerId,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// EditableBy reports whether the given identity may edit this lead.
// Advisory only; the remote API enforces the same rule authoritatively.
func (b *BuyerLead) EditableBy(id *Identity) bool {
	if id == nil {
		return false
	}
	return id.Role == RoleAdmin || id.ID == b.OwnerID
}

// BudgetLabel renders the budget range for display
func (b *BuyerLead) BudgetLabel() string {
	switch {
	case b.BudgetMin != nil && b.BudgetMax != nil:
		return fmt.Sprintf("%d - %d", *b.BudgetMin, *b.BudgetMax)
	case b.BudgetMin != nil:
		return fmt.Sprintf("from %d", *b.BudgetMin)
	case b.BudgetMax != nil:
		return fmt.Sprintf("up to %d", *b.BudgetMax)
	}
	return "-"
}

// LeadPage is one page of the buyers listing
type LeadPage struct {
	Leads      []BuyerLead `json:"buyers"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Pages lists the page numbers for pagination links
func (p *LeadPage) Pages() []int {
	if p.TotalPages <= 0 {
		return nil
	}
	pages := make([]int, p.TotalPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

func (p *LeadPage) HasPrev() bool { return p.Page > 1 }
func (p *LeadPage) HasNext() bool { return p.Page < p.TotalPages }
func (p *LeadPage) PrevPage() int { return p.Page - 1 }
func (p *LeadPage) NextPage() int { return p.Page + 1 }
