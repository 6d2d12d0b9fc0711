package mongodb

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tour-service/internal/apperrors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100
	MaxLimit     = 100
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	kindBool
	kindDate
	kindObjectID
)

// tourFields maps every queryable tour field to its stored type.
var tourFields = map[string]fieldKind{
	"_id":             kindObjectID,
	"name":            kindString,
	"slug":            kindString,
	"duration":        kindNumber,
	"maxGroupSize":    kindNumber,
	"difficulty":      kindString,
	"ratingsAverage":  kindNumber,
	"ratingsQuantity": kindNumber,
	"price":           kindNumber,
	"priceDiscount":   kindNumber,
	"summary":         kindString,
	"description":     kindString,
	"imageCover":      kindString,
	"images":          kindString,
	"createdAt":       kindDate,
	"startDates":      kindDate,
	"secretTour":      kindBool,
	"guides":          kindObjectID,
}

// Projection-only paths that are not filterable.
var tourProjectionFields = map[string]bool{
	"startLocation": true,
	"locations":     true,
}

var reservedParams = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

var operatorParam = regexp.MustCompile(`^([A-Za-z_]+)\[([a-z]+)\]$`)

var comparisonOperators = map[string]string{
	"gte": "$gte",
	"gt":  "$gt",
	"lte": "$lte",
	"lt":  "$lt",
}

// TourQuery is a list request translated into Mongo terms.
type TourQuery struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.M
	Skip       int64
	Limit      int64
	// PageRequested is set when the client asked for a page explicitly.
	PageRequested bool
}

// BuildTourQuery translates query-string parameters into a filter,
// sort, projection and page window. The secret filter is always applied.
func BuildTourQuery(params url.Values) (*TourQuery, error) {
	filter, err := buildFilter(params)
	if err != nil {
		return nil, err
	}
	sortSpec, err := buildSort(params.Get("sort"))
	if err != nil {
		return nil, err
	}
	projection, err := buildProjection(params.Get("fields"))
	if err != nil {
		return nil, err
	}

	page := positiveInt(params.Get("page"), DefaultPage)
	limit := positiveInt(params.Get("limit"), DefaultLimit)
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return &TourQuery{
		Filter:        nonSecret(filter),
		Sort:          sortSpec,
		Projection:    projection,
		Skip:          int64((page - 1) * limit),
		Limit:         int64(limit),
		PageRequested: params.Get("page") != "",
	}, nil
}

// nonSecret returns a copy of filter that never matches secret tours.
// Any client condition on secretTour is overwritten.
func nonSecret(filter bson.M) bson.M {
	out := make(bson.M, len(filter)+1)
	for k, v := range filter {
		out[k] = v
	}
	out["secretTour"] = bson.M{"$ne": true}
	return out
}

func buildFilter(params url.Values) (bson.M, error) {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	filter := bson.M{}
	for _, key := range keys {
		if reservedParams[key] {
			continue
		}
		raw := params.Get(key)

		field, op := key, ""
		if m := operatorParam.FindStringSubmatch(key); m != nil {
			mongoOp, ok := comparisonOperators[m[2]]
			if !ok {
				return nil, apperrors.NewFieldError(key, "Unsupported operator: "+m[2])
			}
			field, op = m[1], mongoOp
		}

		kind, ok := tourFields[field]
		if !ok {
			return nil, apperrors.NewFieldError(field, "Unknown field: "+field)
		}
		value, err := castValue(field, kind, raw)
		if err != nil {
			return nil, err
		}

		if op == "" {
			if _, exists := filter[field]; exists {
				return nil, apperrors.NewFieldError(field, "Conflicting conditions for "+field)
			}
			filter[field] = value
			continue
		}

		switch existing := filter[field].(type) {
		case nil:
			filter[field] = bson.M{op: value}
		case bson.M:
			existing[op] = value
		default:
			return nil, apperrors.NewFieldError(field, "Conflicting conditions for "+field)
		}
	}
	return filter, nil
}

func castValue(field string, kind fieldKind, raw string) (interface{}, error) {
	switch kind {
	case kindNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperrors.NewFieldError(field, field+" must be a number")
		}
		return v, nil
	case kindBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperrors.NewFieldError(field, field+" must be true or false")
		}
		return v, nil
	case kindDate:
		if v, err := time.Parse(time.RFC3339, raw); err == nil {
			return v, nil
		}
		if v, err := time.Parse("2006-01-02", raw); err == nil {
			return v, nil
		}
		return nil, apperrors.NewFieldError(field, field+" must be a date")
	case kindObjectID:
		v, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, apperrors.NewFieldError(field, field+" must be an id")
		}
		return v, nil
	}
	return raw, nil
}

func buildSort(raw string) (bson.D, error) {
	if raw == "" {
		return bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}, nil
	}

	var out bson.D
	hasID := false
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dir := 1
		if strings.HasPrefix(part, "-") {
			dir = -1
			part = part[1:]
		}
		if _, ok := tourFields[part]; !ok {
			return nil, apperrors.NewFieldError("sort", "Cannot sort by "+part)
		}
		if part == "_id" {
			hasID = true
		}
		out = append(out, bson.E{Key: part, Value: dir})
	}
	if !hasID {
		out = append(out, bson.E{Key: "_id", Value: 1})
	}
	return out, nil
}

func buildProjection(raw string) (bson.M, error) {
	if raw == "" {
		return bson.M{"__v": 0, "createdAt": 0}, nil
	}

	projection := bson.M{}
	include, exclude := 0, 0
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value := 1
		if strings.HasPrefix(part, "-") {
			value = 0
			part = part[1:]
			exclude++
		} else {
			include++
		}
		if _, ok := tourFields[part]; !ok && !tourProjectionFields[part] {
			return nil, apperrors.NewFieldError("fields", "Unknown field: "+part)
		}
		projection[part] = value
	}

	if include > 0 && exclude > 0 {
		return nil, apperrors.NewFieldError("fields", "Cannot mix included and excluded fields")
	}
	if exclude > 0 {
		projection["__v"] = 0
	}
	return projection, nil
}

func positiveInt(raw string, def int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
