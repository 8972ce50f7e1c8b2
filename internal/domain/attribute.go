package domain

import "strings"

// Attribute is a named axis of product variation, e.g. Size: [40, 41].
type Attribute struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Attributes is the ordered attribute collection of one product draft.
// Mutators return a new collection and leave the receiver untouched, so a
// rejected change (too many combinations, bad index) never leaks.
type Attributes []Attribute

// Index returns the position of the attribute called name, or -1.
// Names compare case-insensitively after trimming.
func (a Attributes) Index(name string) int {
	name = strings.TrimSpace(name)
	for i, attr := range a {
		if strings.EqualFold(attr.Name, name) {
			return i
		}
	}
	return -1
}

// AddValue appends value to the attribute called name, creating it when
// missing. Adding a value that is already present is a no-op.
func (a Attributes) AddValue(name, value string) (Attributes, error) {
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)

	fields := FormErrors{}
	if name == "" {
		fields["attribute"] = "Attribute name is required"
	}
	if value == "" {
		fields["value"] = "Attribute value is required"
	}
	if len(fields) > 0 {
		return a, &ValidationError{Message: "attribute name and value are required", Fields: fields}
	}

	next := a.Clone()
	i := next.Index(name)
	if i < 0 {
		return append(next, Attribute{Name: name, Values: []string{value}}), nil
	}
	for _, v := range next[i].Values {
		if v == value {
			return next, nil
		}
	}
	next[i].Values = append(next[i].Values, value)
	return next, nil
}

// RemoveValue drops one value. An attribute left without values is removed.
func (a Attributes) RemoveValue(attrIndex, valueIndex int) (Attributes, error) {
	if attrIndex < 0 || attrIndex >= len(a) {
		return a, ErrNotFound
	}
	if valueIndex < 0 || valueIndex >= len(a[attrIndex].Values) {
		return a, ErrNotFound
	}

	next := a.Clone()
	values := next[attrIndex].Values
	next[attrIndex].Values = append(values[:valueIndex], values[valueIndex+1:]...)
	if len(next[attrIndex].Values) == 0 {
		return append(next[:attrIndex], next[attrIndex+1:]...), nil
	}
	return next, nil
}

func (a Attributes) RemoveAttribute(attrIndex int) (Attributes, error) {
	if attrIndex < 0 || attrIndex >= len(a) {
		return a, ErrNotFound
	}
	next := a.Clone()
	return append(next[:attrIndex], next[attrIndex+1:]...), nil
}

// ValueSets returns the value sequences in declaration order.
func (a Attributes) ValueSets() [][]string {
	sets := make([][]string, len(a))
	for i, attr := range a {
		sets[i] = attr.Values
	}
	return sets
}

// Complete reports whether there is at least one attribute and every
// attribute has at least one value.
func (a Attributes) Complete() bool {
	if len(a) == 0 {
		return false
	}
	for _, attr := range a {
		if len(attr.Values) == 0 {
			return false
		}
	}
	return true
}

func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for i, attr := range a {
		out[i] = Attribute{Name: attr.Name, Values: append([]string(nil), attr.Values...)}
	}
	return out
}
