package domain

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// SortableFields maps public sort names to column names.
var SortableFields = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"price":         "price",
	"rating":        "rating",
	"bedrooms":      "bedrooms",
	"bathrooms":     "bathrooms",
	"areaSqFt":      "area_sq_ft",
	"availableFrom": "available_from",
	"title":         "title",
	"city":          "city",
	"state":         "state",
}

// SortField is one entry of a sort order.
type SortField struct {
	Field string
	Desc  bool
}

func (s SortField) String() string {
	if s.Desc {
		return "-" + s.Field
	}
	return s.Field
}

// DefaultSort orders newest first.
var DefaultSort = []SortField{{Field: "createdAt", Desc: true}}

// SearchFilter is the parsed query of an advanced search.
type SearchFilter struct {
	Type         string
	City         string
	State        string
	MinPrice     *float64
	MaxPrice     *float64
	MinBedrooms  *int
	MaxBedrooms  *int
	MinBathrooms *int
	MaxBathrooms *int
	MinAreaSqFt  *float64
	MaxAreaSqFt  *float64
	MinRating    *float64
	MaxRating    *float64
	Furnished    string
	Amenities    []string
	Tags         []string
	ListedBy     string
	ListingType  string
	IsVerified   *bool
	Sort         []SortField
	Page         PageRequest
}

// ParseSearchFilter reads a filter from query parameters. Numeric filters
// that do not parse and unknown sort fields are rejected.
func ParseSearchFilter(q url.Values) (SearchFilter, error) {
	f := SearchFilter{
		Type:        strings.TrimSpace(q.Get("type")),
		City:        strings.TrimSpace(q.Get("city")),
		State:       strings.TrimSpace(q.Get("state")),
		Furnished:   strings.TrimSpace(q.Get("furnished")),
		ListedBy:    strings.TrimSpace(q.Get("listedBy")),
		ListingType: strings.TrimSpace(q.Get("listingType")),
		Amenities:   listParam(q, "amenities"),
		Tags:        listParam(q, "tags"),
		Page:        NewPageRequest(q.Get("page"), q.Get("limit")),
	}

	var err error
	floats := []struct {
		name string
		dst  **float64
	}{
		{"minPrice", &f.MinPrice}, {"maxPrice", &f.MaxPrice},
		{"minAreaSqFt", &f.MinAreaSqFt}, {"maxAreaSqFt", &f.MaxAreaSqFt},
		{"minRating", &f.MinRating}, {"maxRating", &f.MaxRating},
	}
	for _, p := range floats {
		if *p.dst, err = floatParam(q, p.name); err != nil {
			return SearchFilter{}, err
		}
	}

	ints := []struct {
		name string
		dst  **int
	}{
		{"minBedrooms", &f.MinBedrooms}, {"maxBedrooms", &f.MaxBedrooms},
		{"minBathrooms", &f.MinBathrooms}, {"maxBathrooms", &f.MaxBathrooms},
	}
	for _, p := range ints {
		if *p.dst, err = intParam(q, p.name); err != nil {
			return SearchFilter{}, err
		}
	}

	if v := q.Get("isVerified"); v != "" {
		b := v == "true"
		f.IsVerified = &b
	}

	if f.Sort, err = ParseSort(q.Get("sort")); err != nil {
		return SearchFilter{}, err
	}
	return f, nil
}

// ParseSort parses "-price,createdAt". An empty value yields DefaultSort.
func ParseSort(value string) ([]SortField, error) {
	var out []SortField
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sf := SortField{Field: strings.TrimPrefix(part, "-"), Desc: strings.HasPrefix(part, "-")}
		if _, ok := SortableFields[sf.Field]; !ok {
			return nil, fmt.Errorf("cannot sort by %q", sf.Field)
		}
		out = append(out, sf)
	}
	if len(out) == 0 {
		return DefaultSort, nil
	}
	return out, nil
}

// CacheParams returns every field that influences the result, for cache key
// derivation.
func (f SearchFilter) CacheParams() map[string]any {
	sort := make([]string, len(f.Sort))
	for i, s := range f.Sort {
		sort[i] = s.String()
	}
	return map[string]any{
		"type":         f.Type,
		"city":         f.City,
		"state":        f.State,
		"minPrice":     f.MinPrice,
		"maxPrice":     f.MaxPrice,
		"minBedrooms":  f.MinBedrooms,
		"maxBedrooms":  f.MaxBedrooms,
		"minBathrooms": f.MinBathrooms,
		"maxBathrooms": f.MaxBathrooms,
		"minAreaSqFt":  f.MinAreaSqFt,
		"maxAreaSqFt":  f.MaxAreaSqFt,
		"minRating":    f.MinRating,
		"maxRating":    f.MaxRating,
		"furnished":    f.Furnished,
		"amenities":    setParam(f.Amenities),
		"tags":         setParam(f.Tags),
		"listedBy":     f.ListedBy,
		"listingType":  f.ListingType,
		"isVerified":   f.IsVerified,
		"sort":         sort,
		"page":         f.Page.Page,
		"limit":        f.Page.Limit,
	}
}

// setParam orders a list that is matched as a set, so equivalent requests
// share a key. Absent and empty lists are the same.
func setParam(items []string) []string {
	out := slices.Clone(items)
	if out == nil {
		out = []string{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// listParam accepts repeated parameters and comma separated lists.
func listParam(q url.Values, name string) []string {
	var out []string
	for _, v := range q[name] {
		out = append(out, SplitList(v, ",")...)
	}
	return out
}

func floatParam(q url.Values, name string) (*float64, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("invalid value for %s: %q", name, v)
	}
	return &f, nil
}

func intParam(q url.Values, name string) (*int, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("invalid value for %s: %q", name, v)
	}
	return &n, nil
}
