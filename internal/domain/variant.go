package domain

import "github.com/google/uuid"

// Variant is one sellable version of a product, one row of the variant table.
// Editable fields are kept as entered; they are parsed on submission.
type Variant struct {
	ID          string      `json:"id"`
	Key         string      `json:"key"`
	Combination Combination `json:"combination"`
	Name        string      `json:"name"`
	Price       string      `json:"price"`
	Inventory   string      `json:"inventory"`
	Available   string      `json:"available"`
	Image       string      `json:"image,omitempty"`
	Barcode     string      `json:"barcode,omitempty"`
	SKU         string      `json:"sku,omitempty"`
	Placeholder bool        `json:"placeholder,omitempty"`
}

// VariantPatch is a single-row edit. Nil fields are left alone.
type VariantPatch struct {
	Price     *string `json:"price"`
	Inventory *string `json:"inventory"`
	Available *string `json:"available"`
	Image     *string `json:"image"`
	Barcode   *string `json:"barcode"`
	SKU       *string `json:"sku"`
}

func (v *Variant) Apply(p VariantPatch) {
	if p.Price != nil {
		v.Price = *p.Price
	}
	if p.Inventory != nil {
		v.Inventory = *p.Inventory
	}
	if p.Available != nil {
		v.Available = *p.Available
	}
	if p.Image != nil {
		v.Image = *p.Image
	}
	if p.Barcode != nil {
		v.Barcode = *p.Barcode
	}
	if p.SKU != nil {
		v.SKU = *p.SKU
	}
}

// VariantMode tells the form which sales block to show.
type VariantMode string

const (
	// VariantModeSimple: no attributes, price and stock live on the product itself.
	VariantModeSimple VariantMode = "simple"
	// VariantModeAttributes: one row per attribute combination.
	VariantModeAttributes VariantMode = "attributes"
)

type DeriveOptions struct {
	MaxCombinations int
	Placeholders    bool
}

// DeriveVariants recomputes the variant table after an attribute change.
// When attrs yields no combination the table falls back to placeholder rows,
// or to an explicit empty table when placeholders are disabled.
func DeriveVariants(previous []Variant, attrs Attributes, opts DeriveOptions) ([]Variant, VariantMode, error) {
	mode := VariantModeAttributes
	if len(attrs) == 0 {
		mode = VariantModeSimple
	}

	if !attrs.Complete() {
		if opts.Placeholders {
			return PlaceholderVariants(), mode, nil
		}
		return []Variant{}, mode, nil
	}

	sets := attrs.ValueSets()
	if opts.MaxCombinations > 0 && CombinationCount(sets) > opts.MaxCombinations {
		return previous, mode, ErrTooManyCombinations
	}

	return Materialize(previous, GenerateCombinations(sets)), mode, nil
}

// Materialize builds one row per combination, carrying over the id and
// editable fields of any previous row with the same combination key.
func Materialize(previous []Variant, combos []Combination) []Variant {
	byKey := make(map[string]Variant, len(previous))
	for _, v := range previous {
		if v.Placeholder {
			continue
		}
		key := v.Key
		if key == "" {
			key = v.Combination.Key()
		}
		byKey[key] = v
	}

	out := make([]Variant, 0, len(combos))
	for _, combo := range combos {
		key := combo.Key()
		row := Variant{
			Key:         key,
			Combination: append(Combination(nil), combo...),
			Name:        combo.Name(),
		}
		if prev, ok := byKey[key]; ok {
			row.ID = prev.ID
			row.Price = prev.Price
			row.Inventory = prev.Inventory
			row.Available = prev.Available
			row.Image = prev.Image
			row.Barcode = prev.Barcode
			row.SKU = prev.SKU
		}
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		out = append(out, row)
	}
	return out
}

// PlaceholderVariants is the demo table shown while no combination exists.
// Rows are flagged so they are never selected or submitted.
func PlaceholderVariants() []Variant {
	demo := []struct {
		id, size, color, price, inventory, available string
	}{
		{"placeholder-1", "S", "Black", "120000", "30", "28"},
		{"placeholder-2", "S", "White", "120000", "25", "25"},
		{"placeholder-3", "M", "Black", "125000", "40", "37"},
		{"placeholder-4", "M", "White", "125000", "35", "35"},
		{"placeholder-5", "L", "Black", "130000", "20", "18"},
		{"placeholder-6", "L", "White", "130000", "15", "15"},
	}

	out := make([]Variant, len(demo))
	for i, d := range demo {
		combo := Combination{d.size, d.color}
		out[i] = Variant{
			ID:          d.id,
			Key:         combo.Key(),
			Combination: combo,
			Name:        combo.Name(),
			Price:       d.price,
			Inventory:   d.inventory,
			Available:   d.available,
			Placeholder: true,
		}
	}
	return out
}

// RealVariants filters out placeholder rows.
func RealVariants(variants []Variant) []Variant {
	out := make([]Variant, 0, len(variants))
	for _, v := range variants {
		if !v.Placeholder {
			out = append(out, v)
		}
	}
	return out
}

func cloneVariants(variants []Variant) []Variant {
	if variants == nil {
		return nil
	}
	out := make([]Variant, len(variants))
	for i, v := range variants {
		v.Combination = append(Combination(nil), v.Combination...)
		out[i] = v
	}
	return out
}
