package episode

import (
	"strings"
	"time"

	"github.com/narwhalmedia/episodes/internal/domain/specification"
)

// fieldSpec matches one field of an episode against a predicate
type fieldSpec struct {
	match  func(*Episode) bool
	clause string
	params []any
}

func (s *fieldSpec) IsSatisfiedBy(candidate any) bool {
	e, ok := candidate.(*Episode)
	return ok && s.match(e)
}

func (s *fieldSpec) ToSQL() (string, []any) {
	return s.clause, s.params
}

// ByID matches a single episode
func ByID(id int64) specification.Specification {
	return &fieldSpec{
		match:  func(e *Episode) bool { return e.ID() == id },
		clause: "id = ?",
		params: []any{id},
	}
}

// ByCategory matches episodes in category
func ByCategory(category Category) specification.Specification {
	return CategoryIn(category)
}

// CategoryIn matches episodes in any of the categories
func CategoryIn(categories ...Category) specification.Specification {
	values := make([]string, len(categories))
	for i, c := range categories {
		values[i] = string(c)
	}
	return &fieldSpec{
		match:  func(e *Episode) bool { return containsFold(values, string(e.category)) },
		clause: "category IN ?",
		params: []any{values},
	}
}

// ByStatus matches episodes with status
func ByStatus(status Status) specification.Specification {
	return StatusIn(status)
}

// StatusIn matches episodes with any of the statuses
func StatusIn(statuses ...Status) specification.Specification {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	return &fieldSpec{
		match:  func(e *Episode) bool { return containsFold(values, string(e.status)) },
		clause: "status IN ?",
		params: []any{values},
	}
}

// BySourceType matches episodes from a source
func BySourceType(sourceType SourceType) specification.Specification {
	return SourceTypeIn(sourceType)
}

// SourceTypeIn matches episodes from any of the sources
func SourceTypeIn(sourceTypes ...SourceType) specification.Specification {
	values := make([]string, len(sourceTypes))
	for i, s := range sourceTypes {
		values[i] = string(s)
	}
	return &fieldSpec{
		match:  func(e *Episode) bool { return containsFold(values, string(e.sourceType)) },
		clause: "source_type IN ?",
		params: []any{values},
	}
}

// ByLanguage matches episodes in language, ignoring case
func ByLanguage(language string) specification.Specification {
	return LanguageIn(language)
}

// LanguageIn matches episodes in any of the languages
func LanguageIn(languages ...string) specification.Specification {
	values := make([]string, len(languages))
	for i, l := range languages {
		values[i] = strings.ToLower(strings.TrimSpace(l))
	}
	return &fieldSpec{
		match:  func(e *Episode) bool { return containsFold(values, e.language) },
		clause: "LOWER(language) IN ?",
		params: []any{values},
	}
}

// Published matches Ready episodes whose publish date is not after now
func Published(now time.Time) specification.Specification {
	now = now.UTC()
	return &fieldSpec{
		match: func(e *Episode) bool {
			return e.status == StatusReady && !e.publishDate.After(now)
		},
		clause: "(status = ? AND publish_date <= ?)",
		params: []any{string(StatusReady), now},
	}
}

// TextContains matches episodes whose title or description contains term
func TextContains(term string) specification.Specification {
	term = strings.ToLower(strings.TrimSpace(term))
	pattern := "%" + term + "%"
	return &fieldSpec{
		match: func(e *Episode) bool {
			return strings.Contains(strings.ToLower(e.title), term) ||
				strings.Contains(strings.ToLower(e.description), term)
		},
		clause: "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)",
		params: []any{pattern, pattern},
	}
}

// PublishedBetween matches publish dates within [from, to]; nil bounds are open
func PublishedBetween(from, to *time.Time) specification.Specification {
	var specs []specification.Specification
	if from != nil {
		f := from.UTC()
		specs = append(specs, &fieldSpec{
			match:  func(e *Episode) bool { return !e.publishDate.Before(f) },
			clause: "publish_date >= ?",
			params: []any{f},
		})
	}
	if to != nil {
		t := to.UTC()
		specs = append(specs, &fieldSpec{
			match:  func(e *Episode) bool { return !e.publishDate.After(t) },
			clause: "publish_date <= ?",
			params: []any{t},
		})
	}
	return specification.And(specs...)
}

// DurationBetween matches durations within [min, max]; nil bounds are open
func DurationBetween(shortest, longest *time.Duration) specification.Specification {
	var specs []specification.Specification
	if shortest != nil {
		lo := *shortest
		specs = append(specs, &fieldSpec{
			match:  func(e *Episode) bool { return e.duration >= lo },
			clause: "duration_seconds >= ?",
			params: []any{int64(lo / time.Second)},
		})
	}
	if longest != nil {
		hi := *longest
		specs = append(specs, &fieldSpec{
			match:  func(e *Episode) bool { return e.duration <= hi },
			clause: "duration_seconds <= ?",
			params: []any{int64(hi / time.Second)},
		})
	}
	return specification.And(specs...)
}

// SearchCriteria are the optional filters of an advanced search
type SearchCriteria struct {
	Statuses      []Status
	Categories    []Category
	Languages     []string
	SourceTypes   []SourceType
	PublishedFrom *time.Time
	PublishedTo   *time.Time
	MinDuration   *time.Duration
	MaxDuration   *time.Duration
	SearchTerm    string
}

// AdvancedSearch combines every non-empty criterion with AND
func AdvancedSearch(c SearchCriteria) specification.Specification {
	var specs []specification.Specification
	if len(c.Statuses) > 0 {
		specs = append(specs, StatusIn(c.Statuses...))
	}
	if len(c.Categories) > 0 {
		specs = append(specs, CategoryIn(c.Categories...))
	}
	if len(c.Languages) > 0 {
		specs = append(specs, LanguageIn(c.Languages...))
	}
	if len(c.SourceTypes) > 0 {
		specs = append(specs, SourceTypeIn(c.SourceTypes...))
	}
	if c.PublishedFrom != nil || c.PublishedTo != nil {
		specs = append(specs, PublishedBetween(c.PublishedFrom, c.PublishedTo))
	}
	if c.MinDuration != nil || c.MaxDuration != nil {
		specs = append(specs, DurationBetween(c.MinDuration, c.MaxDuration))
	}
	if strings.TrimSpace(c.SearchTerm) != "" {
		specs = append(specs, TextContains(c.SearchTerm))
	}
	return specification.And(specs...)
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}
