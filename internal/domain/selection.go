package domain

// Selection is the ordered set of checked variant ids, the operand of bulk edits.
type Selection []string

func (s Selection) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Toggle adds or removes id depending on checked.
func (s Selection) Toggle(id string, checked bool) Selection {
	if checked {
		if s.Contains(id) {
			return s
		}
		return append(append(Selection(nil), s...), id)
	}
	out := make(Selection, 0, len(s))
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// SelectAll selects every real row, or clears the selection when checked is false.
func SelectAll(variants []Variant, checked bool) Selection {
	if !checked {
		return Selection{}
	}
	out := make(Selection, 0, len(variants))
	for _, v := range variants {
		if !v.Placeholder {
			out = append(out, v.ID)
		}
	}
	return out
}

// Prune drops ids that no longer refer to a selectable row.
func (s Selection) Prune(variants []Variant) Selection {
	live := make(map[string]bool, len(variants))
	for _, v := range variants {
		if !v.Placeholder {
			live[v.ID] = true
		}
	}
	out := make(Selection, 0, len(s))
	for _, id := range s {
		if live[id] {
			out = append(out, id)
		}
	}
	return out
}
