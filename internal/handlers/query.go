package handlers

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/chachabrian/staybook-backend/internal/apperror"
	"github.com/chachabrian/staybook-backend/internal/models"
)

// rangeParam matches the bracket form, e.g. price[gte]=100.
var rangeParam = regexp.MustCompile(`^(price|bedrooms|bathrooms)\[(gt|gte|lt|lte)\]$`)

// parseHouseFilter turns the query string into typed criteria. Values are
// only ever bound as query parameters.
func parseHouseFilter(q url.Values) (models.HouseFilter, error) {
	var f models.HouseFilter

	ranges := map[string]*models.NumberRange{
		"price":     &f.Price,
		"bedrooms":  &f.Bedrooms,
		"bathrooms": &f.Bathrooms,
	}

	for key, values := range q {
		m := rangeParam.FindStringSubmatch(key)
		if m == nil || len(values) == 0 {
			continue
		}
		v, err := parseNumber(key, values[0])
		if err != nil {
			return f, err
		}
		setBound(ranges[m[1]], m[2], v)
	}

	plain := []struct {
		param string
		field string
		op    string
	}{
		{"priceMin", "price", "gte"},
		{"priceMax", "price", "lte"},
		{"bedrooms", "bedrooms", "gte"},
		{"bathrooms", "bathrooms", "gte"},
	}
	for _, p := range plain {
		raw := q.Get(p.param)
		if raw == "" {
			continue
		}
		v, err := parseNumber(p.param, raw)
		if err != nil {
			return f, err
		}
		setBound(ranges[p.field], p.op, v)
	}

	f.Location = strings.TrimSpace(q.Get("location"))
	f.City = strings.TrimSpace(q.Get("city"))

	if raw := q.Get("isAvailable"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			return f, apperror.Validation("isAvailable must be true or false")
		}
		f.Available = &available
	}

	sort, err := parseSort(q.Get("sort"))
	if err != nil {
		return f, err
	}
	f.Sort = sort

	if f.Page, err = parseInt(q, "page"); err != nil {
		return f, err
	}
	if f.Limit, err = parseInt(q, "limit"); err != nil {
		return f, err
	}
	return f, nil
}

func parseNumber(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperror.Validation("%s must be a number", name)
	}
	return v, nil
}

func parseInt(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, apperror.Validation("%s must be a positive integer", name)
	}
	return v, nil
}

func setBound(r *models.NumberRange, op string, v float64) {
	switch op {
	case "gt":
		r.Gt = &v
	case "gte":
		r.Gte = &v
	case "lt":
		r.Lt = &v
	case "lte":
		r.Lte = &v
	}
}

// parseSort reads "price,-createdAt" style lists.
func parseSort(raw string) ([]models.SortField, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var fields []models.SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := strings.HasPrefix(part, "-")
		column, ok := models.HouseSortColumns[strings.TrimPrefix(part, "-")]
		if !ok {
			return nil, apperror.Validation("Cannot sort by %s", strings.TrimPrefix(part, "-"))
		}
		fields = append(fields, models.SortField{Column: column, Desc: desc})
	}
	return fields, nil
}
