package domain

import (
	"fmt"
	"strings"

	"storefront-console/pkg/utils"
)

type BulkKind string

const (
	BulkBarcode BulkKind = "barcode"
	BulkPrice   BulkKind = "price"
)

func ParseBulkKind(s string) (BulkKind, error) {
	switch BulkKind(s) {
	case BulkBarcode, BulkPrice:
		return BulkKind(s), nil
	}
	return "", NewValidationError("kind", fmt.Sprintf("unknown bulk edit kind %q", s))
}

// BulkEdit is an open bulk edit modal: one draft value per selected variant.
type BulkEdit struct {
	Kind     BulkKind          `json:"kind"`
	Drafts   map[string]string `json:"drafts"`
	ApplyAll string            `json:"applyAll,omitempty"`
	Errors   FormErrors        `json:"errors,omitempty"`
}

// OpenBulkEdit seeds a draft for every selected variant from its current value.
func OpenBulkEdit(kind BulkKind, variants []Variant, sel Selection) (*BulkEdit, error) {
	if len(sel) == 0 {
		return nil, ErrNoSelection
	}

	b := &BulkEdit{Kind: kind, Drafts: make(map[string]string, len(sel))}
	for _, v := range variants {
		if !sel.Contains(v.ID) || v.Placeholder {
			continue
		}
		b.Drafts[v.ID] = b.current(v)
	}
	if len(b.Drafts) == 0 {
		return nil, ErrNoSelection
	}
	return b, nil
}

func (b *BulkEdit) current(v Variant) string {
	if b.Kind == BulkPrice {
		return v.Price
	}
	return v.Barcode
}

// Set changes the draft of one selected variant.
func (b *BulkEdit) Set(variantID, value string) error {
	if _, ok := b.Drafts[variantID]; !ok {
		return ErrNotFound
	}
	b.Drafts[variantID] = value
	delete(b.Errors, "variants."+variantID)
	return nil
}

// ApplyToAll overwrites every draft with value.
func (b *BulkEdit) ApplyToAll(value string) {
	b.ApplyAll = value
	for id := range b.Drafts {
		b.Drafts[id] = value
	}
	b.Errors = nil
}

// Validate checks price drafts: blank or a non-negative number.
// Barcodes are free text.
func (b *BulkEdit) Validate() FormErrors {
	errs := FormErrors{}
	if b.Kind != BulkPrice {
		return errs
	}
	for id, v := range b.Drafts {
		if msg := amountError(v, false); msg != "" {
			errs["variants."+id] = msg
		}
	}
	return errs
}

// Confirm merges the drafts into variants. Only selected rows change.
func (b *BulkEdit) Confirm(variants []Variant) ([]Variant, error) {
	if errs := b.Validate(); len(errs) > 0 {
		b.Errors = errs
		return variants, &ValidationError{Message: "some bulk values are invalid", Fields: errs}
	}

	out := cloneVariants(variants)
	for i := range out {
		v, ok := b.Drafts[out[i].ID]
		if !ok {
			continue
		}
		if b.Kind == BulkPrice {
			out[i].Price = strings.TrimSpace(v)
		} else {
			out[i].Barcode = strings.TrimSpace(v)
		}
	}
	return out, nil
}

func (b *BulkEdit) Clone() *BulkEdit {
	if b == nil {
		return nil
	}
	c := &BulkEdit{Kind: b.Kind, ApplyAll: b.ApplyAll, Drafts: make(map[string]string, len(b.Drafts))}
	for k, v := range b.Drafts {
		c.Drafts[k] = v
	}
	if b.Errors != nil {
		c.Errors = FormErrors{}
		for k, v := range b.Errors {
			c.Errors[k] = v
		}
	}
	return c
}

// amountError returns a message when s is not a non-negative decimal.
func amountError(s string, required bool) string {
	s = strings.TrimSpace(s)
	if s == "" {
		if required {
			return "This field is required"
		}
		return ""
	}
	f, err := utils.ParseAmount(s)
	if err != nil {
		return "Must be a number"
	}
	if f < 0 {
		return "Must not be negative"
	}
	return ""
}
