package domain

import (
	"errors"
	"testing"
	"time"
)

var testOpts = DraftOptions{MaxCombinations: 50, Placeholders: true}

func newDraft() *ProductDraft {
	return NewProductDraft("d-1", "admin-1", testOpts, time.Unix(0, 0))
}

func TestDraftStartsInSimpleModeWithPlaceholders(t *testing.T) {
	d := newDraft()
	if d.Mode != VariantModeSimple {
		t.Fatalf("mode = %s", d.Mode)
	}
	if len(d.Variants) == 0 || !d.Variants[0].Placeholder {
		t.Fatal("new draft should show placeholder rows")
	}
}

func TestDraftAttributeFlow(t *testing.T) {
	d := newDraft()
	for _, kv := range [][2]string{{"Size", "40"}, {"Size", "41"}, {"Color", "Gray"}, {"Color", "Blue"}} {
		if err := d.AddAttributeValue(kv[0], kv[1]); err != nil {
			t.Fatal(err)
		}
	}
	if d.Mode != VariantModeAttributes || len(d.Variants) != 4 {
		t.Fatalf("mode=%s rows=%d", d.Mode, len(d.Variants))
	}

	_ = d.SelectAll(true)
	if err := d.OpenBulk(BulkPrice); err != nil {
		t.Fatal(err)
	}

	// Removing a value is destructive: selection and open bulk edit go away.
	if err := d.RemoveAttributeValue("Size", "41"); err != nil {
		t.Fatal(err)
	}
	if len(d.Variants) != 2 || len(d.Selection) != 0 || d.Bulk != nil {
		t.Fatalf("rows=%d sel=%v bulk=%v", len(d.Variants), d.Selection, d.Bulk)
	}

	if err := d.RemoveAttribute("Color"); err != nil {
		t.Fatal(err)
	}
	if err := d.RemoveAttributeValue("Size", "40"); err != nil {
		t.Fatal(err)
	}
	if d.Mode != VariantModeSimple || len(d.Attributes) != 0 {
		t.Fatalf("removing the last attribute should exit attributes mode, got %s", d.Mode)
	}
	if !d.Variants[0].Placeholder {
		t.Fatal("expected placeholder rows after clearing attributes")
	}

	if err := d.RemoveAttribute("Material"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDraftCombinationCapLeavesStateUnchanged(t *testing.T) {
	d := NewProductDraft("d", "o", DraftOptions{MaxCombinations: 4}, time.Now())
	_ = d.AddAttributeValue("Size", "S")
	_ = d.AddAttributeValue("Size", "M")
	_ = d.AddAttributeValue("Color", "Red")
	_ = d.AddAttributeValue("Color", "Blue")
	before := d.Clone()

	err := d.AddAttributeValue("Color", "Green")
	if !errors.Is(err, ErrTooManyCombinations) {
		t.Fatalf("err = %v, want ErrTooManyCombinations", err)
	}
	if len(d.Attributes[1].Values) != 2 || len(d.Variants) != len(before.Variants) {
		t.Fatal("rejected mutation must not change the draft")
	}
}

func TestDraftLockedWhileSubmitting(t *testing.T) {
	d := newDraft()
	_ = d.Submission.BeginValidation()
	d.Submission.BeginSubmit(time.Now())

	checks := map[string]error{
		"field":     d.SetField("name", "x"),
		"attribute": d.AddAttributeValue("Size", "40"),
		"image":     d.AddImage("/uploads/a.webp"),
		"select":    d.SelectAll(true),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrDraftLocked) {
			t.Errorf("%s: err = %v, want ErrDraftLocked", name, err)
		}
	}
}

func TestDraftProductPayload(t *testing.T) {
	d := newDraft()
	d.Form.Data = validFormData()
	_ = d.AddImage("/uploads/a.webp")
	_ = d.AddAttributeValue("Size", "40")
	_ = d.AddAttributeValue("Color", "Gray")
	price := "150000"
	if err := d.UpdateVariant(d.Variants[0].ID, VariantPatch{Price: &price}); err != nil {
		t.Fatal(err)
	}

	if errs := d.Validate(); len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	p, err := d.Product()
	if err != nil {
		t.Fatal(err)
	}
	if p.SellingPrice != 1200.5 || p.Inventory != 40 || p.Slug != "linen-shirt" {
		t.Fatalf("unexpected product %+v", p)
	}
	if len(p.Variants) != 1 {
		t.Fatalf("variants = %d, want 1", len(p.Variants))
	}
	v := p.Variants[0]
	if v.Attributes["Size"] != "40" || v.Attributes["Color"] != "Gray" || v.Price == nil || *v.Price != 150000 {
		t.Fatalf("unexpected variant %+v", v)
	}
}

func TestDraftProductExcludesPlaceholders(t *testing.T) {
	d := newDraft()
	d.Form.Data = validFormData()
	p, err := d.Product()
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Variants) != 0 {
		t.Fatalf("placeholder rows were submitted: %v", p.Variants)
	}
}

func TestDraftFromProductRoundTrip(t *testing.T) {
	price := 99.5
	p := &Product{
		ID:           "p-9",
		Name:         "Sneaker",
		Brand:        "Acme",
		Description:  "Runs fast",
		CostPrice:    50,
		SellingPrice: 80,
		Inventory:    10,
		Available:    9,
		Weight:       1.2,
		Images:       []string{"/uploads/x.webp"},
		Attributes:   []Attribute{{Name: "Size", Values: []string{"40", "41"}}},
		Variants: []ProductVariant{
			{ID: "v-40", Name: "40", Attributes: map[string]string{"Size": "40"}, Price: &price, Stock: 4, Available: 3},
		},
	}

	d := DraftFromProduct(p, "d-2", "admin", testOpts, time.Now())
	if d.ProductID != "p-9" || d.Form.Data.SellingPrice != "80" {
		t.Fatalf("form not seeded: %+v", d.Form.Data)
	}
	if len(d.Variants) != 2 {
		t.Fatalf("rows = %d, want 2", len(d.Variants))
	}
	if d.Variants[0].ID != "v-40" || d.Variants[0].Price != "99.5" || d.Variants[0].Inventory != "4" {
		t.Fatalf("existing variant not carried: %+v", d.Variants[0])
	}
	if d.Variants[1].ID == "" || d.Variants[1].Price != "" {
		t.Fatalf("missing combination should be a fresh row: %+v", d.Variants[1])
	}

	out, err := d.Product()
	if err != nil {
		t.Fatal(err)
	}
	if out.ID != "p-9" || out.Variants[0].ID != "v-40" {
		t.Fatalf("edit payload lost ids: %+v", out)
	}
}

func TestDraftCloneIsDeep(t *testing.T) {
	d := newDraft()
	_ = d.AddAttributeValue("Size", "40")
	c := d.Clone()
	c.Attributes[0].Values[0] = "99"
	c.Variants[0].Price = "1"
	c.Form.Errors["x"] = "y"
	if d.Attributes[0].Values[0] != "40" || d.Variants[0].Price != "" || d.Form.Errors["x"] != "" {
		t.Fatal("clone shares state with original")
	}
}
