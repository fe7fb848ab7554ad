package filters

import (
	"net/url"
	"strconv"
)

// Defaults for a freshly opened listing
const (
	DefaultPage      = 1
	DefaultSortBy    = "updatedAt"
	DefaultSortOrder = "desc"
)

// FilterState mirrors the listing URL query parameters one to one. Empty or
// default fields are omitted when the state is serialized back to a URL.
type FilterState struct {
	City         string
	PropertyType string
	Status       string
	Timeline     string
	Search       string
	Page         int
	SortBy       string
	SortOrder    string
}

// queryKeys fixes the serialization order of the query string
var queryKeys = []string{
	"city", "propertyType", "status", "timeline", "search",
	"page", "sortBy", "sortOrder",
}

// Default returns the state a listing opens with when the URL carries no
// parameters
func Default() FilterState {
	return FilterState{
		Page:      DefaultPage,
		SortBy:    DefaultSortBy,
		SortOrder: DefaultSortOrder,
	}
}

// Parse seeds a FilterState from URL query parameters. Missing or invalid
// parameters fall back to the documented defaults.
func Parse(q url.Values) FilterState {
	s := Default()
	s.City = q.Get("city")
	s.PropertyType = q.Get("propertyType")
	s.Status = q.Get("status")
	s.Timeline = q.Get("timeline")
	s.Search = q.Get("search")

	if pageStr := q.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page >= 1 {
			s.Page = page
		}
	}
	if sortBy := q.Get("sortBy"); sortBy != "" {
		s.SortBy = sortBy
	}
	if sortOrder := q.Get("sortOrder"); sortOrder == "asc" || sortOrder == "desc" {
		s.SortOrder = sortOrder
	}
	return s
}

// get returns the string form of one field by query key
func (s FilterState) get(key string) string {
	switch key {
	case "city":
		return s.City
	case "propertyType":
		return s.PropertyType
	case "status":
		return s.Status
	case "timeline":
		return s.Timeline
	case "search":
		return s.Search
	case "page":
		if s.Page <= DefaultPage {
			return ""
		}
		return strconv.Itoa(s.Page)
	case "sortBy":
		if s.SortBy == DefaultSortBy {
			return ""
		}
		return s.SortBy
	case "sortOrder":
		if s.SortOrder == DefaultSortOrder {
			return ""
		}
		return s.SortOrder
	}
	return ""
}

// Encode serializes the state with only non-default, non-empty fields, in
// stable key order
func (s FilterState) Encode() string {
	var buf []byte
	for _, key := range queryKeys {
		v := s.get(key)
		if v == "" {
			continue
		}
		if len(buf) > 0 {
			buf = append(buf, '&')
		}
		buf = append(buf, key...)
		buf = append(buf, '=')
		buf = append(buf, url.QueryEscape(v)...)
	}
	return string(buf)
}

// Values returns the non-default fields as url.Values, for building API
// request queries
func (s FilterState) Values() url.Values {
	q := url.Values{}
	for _, key := range queryKeys {
		if v := s.get(key); v != "" {
			q.Set(key, v)
		}
	}
	return q
}

// With returns a copy with one field changed. Changing any field other than
// the page resets the page to 1.
func (s FilterState) With(field, value string) FilterState {
	if field != "page" {
		s.Page = DefaultPage
	}
	switch field {
	case "city":
		s.City = value
	case "propertyType":
		s.PropertyType = value
	case "status":
		s.Status = value
	case "timeline":
		s.Timeline = value
	case "search":
		s.Search = value
	case "page":
		if page, err := strconv.Atoi(value); err == nil && page >= 1 {
			s.Page = page
		} else {
			s.Page = DefaultPage
		}
	case "sortBy":
		s.SortBy = value
		if value == "" {
			s.SortBy = DefaultSortBy
		}
	case "sortOrder":
		s.SortOrder = value
		if value != "asc" && value != "desc" {
			s.SortOrder = DefaultSortOrder
		}
	}
	return s
}

// PageQuery returns the query string for the same filters on another page,
// for pagination links
func (s FilterState) PageQuery(page int) string {
	return s.With("page", strconv.Itoa(page)).Encode()
}

// IsDefault reports whether the state equals the documented defaults
func (s FilterState) IsDefault() bool {
	return s == Default()
}
