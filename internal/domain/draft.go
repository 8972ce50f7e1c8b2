package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"storefront-console/pkg/utils"
)

type DraftOptions struct {
	MaxCombinations int  `json:"maxCombinations"`
	Placeholders    bool `json:"placeholders"`
}

func (o DraftOptions) derive() DeriveOptions {
	return DeriveOptions{MaxCombinations: o.MaxCombinations, Placeholders: o.Placeholders}
}

// ProductDraft is one admin product-authoring session: the form, its
// attributes, the derived variant table, the selection and any open bulk edit.
type ProductDraft struct {
	ID         string       `json:"id"`
	Owner      string       `json:"owner"`
	ProductID  string       `json:"productId,omitempty"`
	Form       ProductForm  `json:"form"`
	Attributes Attributes   `json:"attributes"`
	Mode       VariantMode  `json:"mode"`
	Variants   []Variant    `json:"variants"`
	Selection  Selection    `json:"selection"`
	Bulk       *BulkEdit    `json:"bulk,omitempty"`
	Images     []string     `json:"images"`
	Submission Submission   `json:"submission"`
	Options    DraftOptions `json:"options"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

func NewProductDraft(id, owner string, opts DraftOptions, now time.Time) *ProductDraft {
	d := &ProductDraft{
		ID:         id,
		Owner:      owner,
		Form:       ProductForm{Errors: FormErrors{}},
		Attributes: Attributes{},
		Selection:  Selection{},
		Images:     []string{},
		Submission: Submission{State: SubmitIdle},
		Options:    opts,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	d.Variants, d.Mode, _ = DeriveVariants(nil, d.Attributes, opts.derive())
	return d
}

func (d *ProductDraft) editable() error {
	if d.Submission.Busy() {
		return ErrDraftLocked
	}
	return nil
}

func (d *ProductDraft) SetField(name, value string) error {
	if err := d.editable(); err != nil {
		return err
	}
	return d.Form.SetField(name, value)
}

// setAttributes recomputes the variant table for next. On error the draft is unchanged.
func (d *ProductDraft) setAttributes(next Attributes, clearSelection bool) error {
	variants, mode, err := DeriveVariants(d.Variants, next, d.Options.derive())
	if err != nil {
		return err
	}
	d.Attributes = next
	d.Variants = variants
	d.Mode = mode
	d.Bulk = nil
	if clearSelection {
		d.Selection = Selection{}
	} else {
		d.Selection = d.Selection.Prune(variants)
	}
	return nil
}

func (d *ProductDraft) AddAttributeValue(name, value string) error {
	if err := d.editable(); err != nil {
		return err
	}
	next, err := d.Attributes.AddValue(name, value)
	if err != nil {
		return err
	}
	return d.setAttributes(next, false)
}

// RemoveAttributeValue removes value from the attribute called name.
func (d *ProductDraft) RemoveAttributeValue(name, value string) error {
	if err := d.editable(); err != nil {
		return err
	}
	ai := d.Attributes.Index(name)
	if ai < 0 {
		return ErrNotFound
	}
	vi := -1
	for i, v := range d.Attributes[ai].Values {
		if v == value {
			vi = i
			break
		}
	}
	next, err := d.Attributes.RemoveValue(ai, vi)
	if err != nil {
		return err
	}
	return d.setAttributes(next, true)
}

func (d *ProductDraft) RemoveAttribute(name string) error {
	if err := d.editable(); err != nil {
		return err
	}
	next, err := d.Attributes.RemoveAttribute(d.Attributes.Index(name))
	if err != nil {
		return err
	}
	return d.setAttributes(next, true)
}

func (d *ProductDraft) variantIndex(id string) int {
	for i, v := range d.Variants {
		if v.ID == id && !v.Placeholder {
			return i
		}
	}
	return -1
}

// UpdateVariant edits one real row.
func (d *ProductDraft) UpdateVariant(id string, patch VariantPatch) error {
	if err := d.editable(); err != nil {
		return err
	}
	i := d.variantIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	d.Variants[i].Apply(patch)
	for _, field := range []string{"price", "inventory", "available"} {
		delete(d.Form.Errors, "variants."+id+"."+field)
	}
	return nil
}

func (d *ProductDraft) ToggleSelection(id string, checked bool) error {
	if err := d.editable(); err != nil {
		return err
	}
	if d.variantIndex(id) < 0 {
		return ErrNotFound
	}
	d.Selection = d.Selection.Toggle(id, checked)
	return nil
}

func (d *ProductDraft) SelectAll(checked bool) error {
	if err := d.editable(); err != nil {
		return err
	}
	d.Selection = SelectAll(d.Variants, checked)
	return nil
}

func (d *ProductDraft) OpenBulk(kind BulkKind) error {
	if err := d.editable(); err != nil {
		return err
	}
	b, err := OpenBulkEdit(kind, d.Variants, d.Selection)
	if err != nil {
		return err
	}
	d.Bulk = b
	return nil
}

func (d *ProductDraft) openBulk() (*BulkEdit, error) {
	if err := d.editable(); err != nil {
		return nil, err
	}
	if d.Bulk == nil {
		return nil, ErrNoBulkEdit
	}
	return d.Bulk, nil
}

func (d *ProductDraft) SetBulkDraft(variantID, value string) error {
	b, err := d.openBulk()
	if err != nil {
		return err
	}
	return b.Set(variantID, value)
}

func (d *ProductDraft) ApplyBulkToAll(value string) error {
	b, err := d.openBulk()
	if err != nil {
		return err
	}
	b.ApplyToAll(value)
	return nil
}

// ConfirmBulk merges the open bulk edit into the table and closes it.
// Invalid drafts keep the modal open with per-variant errors.
func (d *ProductDraft) ConfirmBulk() error {
	b, err := d.openBulk()
	if err != nil {
		return err
	}
	variants, err := b.Confirm(d.Variants)
	if err != nil {
		return err
	}
	d.Variants = variants
	d.Bulk = nil
	return nil
}

func (d *ProductDraft) CancelBulk() error {
	if _, err := d.openBulk(); err != nil {
		return err
	}
	d.Bulk = nil
	return nil
}

func (d *ProductDraft) AddImage(url string) error {
	if err := d.editable(); err != nil {
		return err
	}
	d.Images = append(d.Images, url)
	delete(d.Form.Errors, "images")
	return nil
}

func (d *ProductDraft) RemoveImage(url string) error {
	if err := d.editable(); err != nil {
		return err
	}
	for i, u := range d.Images {
		if u == url {
			d.Images = append(d.Images[:i], d.Images[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Validate runs the submit-time checks and stores the result on the form.
func (d *ProductDraft) Validate() FormErrors {
	errs := ValidateAll(d.Form.Data, len(d.Images), d.Variants)
	d.Form.Errors = errs
	return errs
}

// Product builds the payload sent to the backend. Placeholder rows are never included.
func (d *ProductDraft) Product() (*Product, error) {
	data := d.Form.Data.trimmed()

	var p Product
	var err error
	if p.CostPrice, err = utils.ParseAmount(data.CostPrice); err != nil {
		return nil, fmt.Errorf("costPrice: %w", err)
	}
	if p.SellingPrice, err = utils.ParseAmount(data.SellingPrice); err != nil {
		return nil, fmt.Errorf("sellingPrice: %w", err)
	}
	if p.Weight, err = utils.ParseAmount(data.Weight); err != nil {
		return nil, fmt.Errorf("weight: %w", err)
	}
	p.Inventory = utils.ParseInt(data.Inventory, 0)
	p.Available = utils.ParseInt(data.Available, 0)

	p.ID = d.ProductID
	p.Name = data.Name
	p.Slug = utils.GenerateSlug(data.Name)
	p.Barcode = data.Barcode
	p.CategoryID = data.Category
	p.Brand = data.Brand
	p.Description = data.Description
	p.Dimensions = data.Dimensions
	p.Images = append([]string{}, d.Images...)
	p.Attributes = d.Attributes.Clone()
	p.IsActive = true

	p.Variants = []ProductVariant{}
	for _, v := range RealVariants(d.Variants) {
		pv := ProductVariant{
			Name:       v.Name,
			Attributes: make(map[string]string, len(d.Attributes)),
			Stock:      utils.ParseInt(strings.TrimSpace(v.Inventory), 0),
			Available:  utils.ParseInt(strings.TrimSpace(v.Available), 0),
			Image:      v.Image,
			Barcode:    v.Barcode,
			SKU:        v.SKU,
		}
		if d.ProductID != "" {
			pv.ID = v.ID
		}
		for i, attr := range d.Attributes {
			if i < len(v.Combination) {
				pv.Attributes[attr.Name] = v.Combination[i]
			}
		}
		if price := strings.TrimSpace(v.Price); price != "" {
			f, err := utils.ParseAmount(price)
			if err != nil {
				return nil, fmt.Errorf("variant %s price: %w", v.Name, err)
			}
			pv.Price = &f
		}
		p.Variants = append(p.Variants, pv)
	}
	return &p, nil
}

// DraftFromProduct seeds a draft with an existing product so it can be edited.
func DraftFromProduct(p *Product, id, owner string, opts DraftOptions, now time.Time) *ProductDraft {
	d := NewProductDraft(id, owner, opts, now)
	d.ProductID = p.ID
	d.Form.Data = ProductFormData{
		Name:         p.Name,
		Barcode:      p.Barcode,
		Category:     p.CategoryID,
		Brand:        p.Brand,
		Description:  p.Description,
		CostPrice:    formatAmount(p.CostPrice),
		SellingPrice: formatAmount(p.SellingPrice),
		Inventory:    strconv.Itoa(p.Inventory),
		Available:    strconv.Itoa(p.Available),
		Weight:       formatAmount(p.Weight),
		Dimensions:   p.Dimensions,
	}
	d.Images = append([]string{}, p.Images...)

	attrs := Attributes{}
	for _, a := range p.Attributes {
		for _, v := range a.Values {
			if next, err := attrs.AddValue(a.Name, v); err == nil {
				attrs = next
			}
		}
	}

	existing := make([]Variant, 0, len(p.Variants))
	for _, pv := range p.Variants {
		combo := make(Combination, 0, len(attrs))
		for _, a := range attrs {
			combo = append(combo, pv.Attributes[a.Name])
		}
		v := Variant{
			ID:          pv.ID,
			Key:         combo.Key(),
			Combination: combo,
			Name:        combo.Name(),
			Inventory:   strconv.Itoa(pv.Stock),
			Available:   strconv.Itoa(pv.Available),
			Image:       pv.Image,
			Barcode:     pv.Barcode,
			SKU:         pv.SKU,
		}
		if pv.Price != nil {
			v.Price = formatAmount(*pv.Price)
		}
		existing = append(existing, v)
	}

	// A product stored with more rows than the cap is still editable.
	derive := d.Options.derive()
	derive.MaxCombinations = 0
	if variants, mode, err := DeriveVariants(existing, attrs, derive); err == nil {
		d.Attributes = attrs
		d.Variants = variants
		d.Mode = mode
	}
	return d
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Clone returns a deep copy so stores never share state with callers.
func (d *ProductDraft) Clone() *ProductDraft {
	if d == nil {
		return nil
	}
	c := *d
	c.Form.Errors = d.Form.Errors.Clone()
	c.Attributes = d.Attributes.Clone()
	c.Variants = cloneVariants(d.Variants)
	c.Selection = append(Selection{}, d.Selection...)
	c.Bulk = d.Bulk.Clone()
	c.Images = append([]string{}, d.Images...)
	return &c
}
