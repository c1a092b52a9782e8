package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Comparator is a comparison predicate applied to a single metadata field.
type Comparator string

// Supported comparators.
const (
	ComparatorEq  Comparator = "eq"
	ComparatorNe  Comparator = "ne"
	ComparatorGt  Comparator = "gt"
	ComparatorGte Comparator = "gte"
	ComparatorLt  Comparator = "lt"
	ComparatorLte Comparator = "lte"
)

// IsValid returns true if the comparator is recognised.
func (c Comparator) IsValid() bool {
	switch c {
	case ComparatorEq, ComparatorNe, ComparatorGt, ComparatorGte, ComparatorLt, ComparatorLte:
		return true
	default:
		return false
	}
}

// Operator combines child filters.
type Operator string

// Supported logical operators.
const (
	OperatorAnd Operator = "and"
	OperatorOr  Operator = "or"
)

// IsValid returns true if the operator is recognised.
func (o Operator) IsValid() bool {
	return o == OperatorAnd || o == OperatorOr
}

// FilterableField describes one metadata attribute the self-query
// retriever may constrain.
type FilterableField struct {
	// Name is the metadata key.
	Name string `json:"name"`

	// Description tells the LLM what the field holds.
	Description string `json:"description"`

	// Type is the attribute type as presented to the LLM.
	Type string `json:"type"`
}

// FilterableFields returns the metadata schema exposed to self-query retrieval.
func FilterableFields() []FilterableField {
	return []FilterableField{
		{
			Name:        MetaSource,
			Description: "O nome do arquivo PDF de onde o texto foi extraído. Ex: 'lei_8666_1993.pdf'",
			Type:        "string",
		},
		{
			Name:        MetaLawNumber,
			Description: "O número oficial da lei ou decreto. Use isto para perguntas sobre uma lei específica. Ex: '8666', '10520'",
			Type:        "string",
		},
		{
			Name:        MetaPublicationDate,
			Description: "A data de publicação da lei. Ex: '21 DE JUNHO DE 1993'",
			Type:        "string",
		},
	}
}

// IsFilterableField reports whether name is part of the filterable schema.
func IsFilterableField(name string) bool {
	for _, f := range FilterableFields() {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Filter is a metadata predicate. A filter is either a comparison
// (Field, Comparator, Value) or a composite (Operator, Filters).
// The zero value is an empty filter that matches everything.
type Filter struct {
	Operator   Operator   `json:"operator,omitempty"`
	Filters    []Filter   `json:"filters,omitempty"`
	Field      string     `json:"field,omitempty"`
	Comparator Comparator `json:"comparator,omitempty"`
	Value      string     `json:"value,omitempty"`
}

// Eq builds an equality comparison.
func Eq(field, value string) Filter {
	return Filter{Field: field, Comparator: ComparatorEq, Value: value}
}

// Compare builds a comparison with an arbitrary comparator.
func Compare(field string, c Comparator, value string) Filter {
	return Filter{Field: field, Comparator: c, Value: value}
}

// And combines filters so that all must match.
func And(filters ...Filter) Filter {
	return Filter{Operator: OperatorAnd, Filters: filters}
}

// Or combines filters so that at least one must match.
func Or(filters ...Filter) Filter {
	return Filter{Operator: OperatorOr, Filters: filters}
}

// IsEmpty returns true if the filter places no constraint.
func (f Filter) IsEmpty() bool {
	return f.Operator == "" && f.Field == "" && f.Comparator == "" && len(f.Filters) == 0
}

// IsComposite returns true if the filter combines children.
func (f Filter) IsComposite() bool {
	return f.Operator != ""
}

// Validate checks the filter against the filterable schema.
func (f Filter) Validate() error {
	if f.IsEmpty() {
		return nil
	}
	if f.IsComposite() {
		if !f.Operator.IsValid() {
			return fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Operator)
		}
		if f.Field != "" || f.Comparator != "" {
			return fmt.Errorf("%w: composite filter cannot carry a comparison", ErrInvalidFilter)
		}
		if len(f.Filters) == 0 {
			return fmt.Errorf("%w: %s without operands", ErrInvalidFilter, f.Operator)
		}
		for i, child := range f.Filters {
			if child.IsEmpty() {
				return fmt.Errorf("%w: empty operand %d", ErrInvalidFilter, i)
			}
			if err := child.Validate(); err != nil {
				return err
			}
		}
		return nil
	}
	if !IsFilterableField(f.Field) {
		return fmt.Errorf("%w: field %q is not filterable", ErrInvalidFilter, f.Field)
	}
	if !f.Comparator.IsValid() {
		return fmt.Errorf("%w: unknown comparator %q", ErrInvalidFilter, f.Comparator)
	}
	if len(f.Filters) > 0 {
		return fmt.Errorf("%w: comparison cannot have operands", ErrInvalidFilter)
	}
	return nil
}

// Match evaluates the filter against chunk metadata.
// A comparison on a missing field never matches. Ordering comparisons
// are numeric when both sides are integers and lexical otherwise.
func (f Filter) Match(m Metadata) bool {
	if f.IsEmpty() {
		return true
	}
	if f.IsComposite() {
		switch f.Operator {
		case OperatorAnd:
			for _, child := range f.Filters {
				if !child.Match(m) {
					return false
				}
			}
			return true
		case OperatorOr:
			for _, child := range f.Filters {
				if child.Match(m) {
					return true
				}
			}
			return false
		default:
			return false
		}
	}

	actual, ok := m[f.Field]
	if !ok {
		return false
	}
	cmp := compareValues(actual, f.Value)
	switch f.Comparator {
	case ComparatorEq:
		return cmp == 0
	case ComparatorNe:
		return cmp != 0
	case ComparatorGt:
		return cmp > 0
	case ComparatorGte:
		return cmp >= 0
	case ComparatorLt:
		return cmp < 0
	case ComparatorLte:
		return cmp <= 0
	default:
		return false
	}
}

// String renders the filter in a compact prefix form, e.g.
// and(eq(lei_numero, "8666"), eq(source, "a.pdf")).
func (f Filter) String() string {
	if f.IsEmpty() {
		return "NO_FILTER"
	}
	if f.IsComposite() {
		parts := make([]string, 0, len(f.Filters))
		for _, child := range f.Filters {
			parts = append(parts, child.String())
		}
		return fmt.Sprintf("%s(%s)", f.Operator, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s(%s, %q)", f.Comparator, f.Field, f.Value)
}

// IsInteger reports whether s is a plain base-10 integer.
func IsInteger(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func compareValues(a, b string) int {
	if IsInteger(a) && IsInteger(b) {
		ai, errA := strconv.ParseInt(a, 10, 64)
		bi, errB := strconv.ParseInt(b, 10, 64)
		if errA == nil && errB == nil {
			switch {
			case ai < bi:
				return -1
			case ai > bi:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(a, b)
}
