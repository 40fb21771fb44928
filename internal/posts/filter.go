package posts

import (
	"net/url"
	"regexp"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filter narrows a post listing. Zero fields do not filter.
type Filter struct {
	// Query is matched case-insensitively against the title and excerpt in both languages.
	Query    string
	Category string
	// FromDate and ToDate are inclusive YYYY-MM-DD bounds.
	FromDate string
	ToDate   string
}

// FilterFromQuery reads q, category, from and to.
func FilterFromQuery(values url.Values) Filter {
	return Filter{
		Query:    strings.TrimSpace(values.Get("q")),
		Category: strings.TrimSpace(values.Get("category")),
		FromDate: strings.TrimSpace(values.Get("from")),
		ToDate:   strings.TrimSpace(values.Get("to")),
	}
}

func (f Filter) IsEmpty() bool {
	return f.Query == "" && f.Category == "" && f.FromDate == "" && f.ToDate == ""
}

func (f Filter) Match(p *Post) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !p.Title.Contains(q) && !p.Excerpt.Contains(q) {
			return false
		}
	}
	if f.Category != "" && !slices.Contains(p.Categories, f.Category) {
		return false
	}
	// ISO dates compare correctly as strings
	if f.FromDate != "" && p.Date < f.FromDate {
		return false
	}
	if f.ToDate != "" && p.Date > f.ToDate {
		return false
	}
	return true
}

// Apply returns the matching posts, keeping their order.
func (f Filter) Apply(all []*Post) []*Post {
	if f.IsEmpty() {
		return all
	}
	matched := make([]*Post, 0, len(all))
	for _, p := range all {
		if f.Match(p) {
			matched = append(matched, p)
		}
	}
	return matched
}

// BSON is the mongo query equivalent of Match.
func (f Filter) BSON() bson.M {
	query := bson.M{}
	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title.en": re},
			bson.M{"title.vi": re},
			bson.M{"excerpt.en": re},
			bson.M{"excerpt.vi": re},
		}
	}
	if f.Category != "" {
		query["categories"] = f.Category
	}
	if f.FromDate != "" || f.ToDate != "" {
		dateRange := bson.M{}
		if f.FromDate != "" {
			dateRange["$gte"] = f.FromDate
		}
		if f.ToDate != "" {
			dateRange["$lte"] = f.ToDate
		}
		query["date"] = dateRange
	}
	return query
}
