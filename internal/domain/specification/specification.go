package specification

import "strings"

// Specification defines the interface for query specifications
type Specification interface {
	// IsSatisfiedBy checks if the specification is satisfied by the given object
	IsSatisfiedBy(candidate any) bool
	// ToSQL converts the specification to SQL WHERE clause and parameters
	ToSQL() (string, []any)
}

// Page bounds and orders a specification query
type Page struct {
	Offset  int
	Limit   int
	OrderBy string
}

// And combines specifications so that all must hold. With no arguments
// it matches everything.
func And(specs ...Specification) Specification {
	return &junction{specs: specs, op: "AND", all: true}
}

// Or combines specifications so that at least one must hold. With no
// arguments it matches nothing.
func Or(specs ...Specification) Specification {
	return &junction{specs: specs, op: "OR"}
}

// Not negates a specification
func Not(spec Specification) Specification {
	return &notSpecification{spec: spec}
}

// All matches every candidate
func All() Specification {
	return And()
}

type junction struct {
	specs []Specification
	op    string
	all   bool
}

func (s *junction) IsSatisfiedBy(candidate any) bool {
	for _, spec := range s.specs {
		ok := spec.IsSatisfiedBy(candidate)
		if s.all && !ok {
			return false
		}
		if !s.all && ok {
			return true
		}
	}
	return s.all
}

func (s *junction) ToSQL() (string, []any) {
	if len(s.specs) == 0 {
		if s.all {
			return "1 = 1", nil
		}
		return "1 = 0", nil
	}

	parts := make([]string, 0, len(s.specs))
	var params []any
	for _, spec := range s.specs {
		sql, p := spec.ToSQL()
		parts = append(parts, sql)
		params = append(params, p...)
	}
	if len(parts) == 1 {
		return parts[0], params
	}
	return "(" + strings.Join(parts, " "+s.op+" ") + ")", params
}

// notSpecification represents a NOT specification
type notSpecification struct {
	spec Specification
}

func (s *notSpecification) IsSatisfiedBy(candidate any) bool {
	return !s.spec.IsSatisfiedBy(candidate)
}

func (s *notSpecification) ToSQL() (string, []any) {
	sql, params := s.spec.ToSQL()
	return "NOT (" + sql + ")", params
}
