package domain

import (
	"fmt"
	"strings"
)

// FormErrors maps a field name to a human-readable message.
type FormErrors map[string]string

func (e FormErrors) Clone() FormErrors {
	out := make(FormErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// ProductFormData holds the top-level product fields exactly as typed.
type ProductFormData struct {
	Name         string `json:"name" validate:"required"`
	Barcode      string `json:"barcode"`
	Category     string `json:"category"`
	Brand        string `json:"brand" validate:"required"`
	Description  string `json:"description" validate:"required"`
	CostPrice    string `json:"costPrice" validate:"required,amount"`
	SellingPrice string `json:"sellingPrice" validate:"required,amount"`
	Inventory    string `json:"inventory" validate:"required,count"`
	Available    string `json:"available" validate:"required,count"`
	Weight       string `json:"weight" validate:"required,amount"`
	Dimensions   string `json:"dimensions"`
}

// liveRules re-validate on every change; other fields only clear their error
// and wait for submit.
var liveRules = map[string]string{
	"costPrice":    "omitempty,amount",
	"sellingPrice": "omitempty,amount",
	"inventory":    "omitempty,count",
	"available":    "omitempty,count",
	"weight":       "omitempty,amount",
}

func (d *ProductFormData) field(name string) (*string, bool) {
	switch name {
	case "name":
		return &d.Name, true
	case "barcode":
		return &d.Barcode, true
	case "category":
		return &d.Category, true
	case "brand":
		return &d.Brand, true
	case "description":
		return &d.Description, true
	case "costPrice":
		return &d.CostPrice, true
	case "sellingPrice":
		return &d.SellingPrice, true
	case "inventory":
		return &d.Inventory, true
	case "available":
		return &d.Available, true
	case "weight":
		return &d.Weight, true
	case "dimensions":
		return &d.Dimensions, true
	}
	return nil, false
}

func (d ProductFormData) trimmed() ProductFormData {
	for _, name := range []string{"name", "barcode", "category", "brand", "description",
		"costPrice", "sellingPrice", "inventory", "available", "weight", "dimensions"} {
		p, _ := d.field(name)
		*p = strings.TrimSpace(*p)
	}
	return d
}

// ProductForm is the form record plus its current errors.
type ProductForm struct {
	Data   ProductFormData `json:"data"`
	Errors FormErrors      `json:"errors"`
}

// SetField updates one field. Its previous error is cleared; numeric
// fields are re-checked immediately.
func (f *ProductForm) SetField(name, value string) error {
	p, ok := f.Data.field(name)
	if !ok {
		return NewValidationError(name, fmt.Sprintf("unknown field %q", name))
	}
	*p = value

	if f.Errors == nil {
		f.Errors = FormErrors{}
	}
	delete(f.Errors, name)
	if rule, live := liveRules[name]; live {
		if msg := ValidateValue(strings.TrimSpace(value), rule); msg != "" {
			f.Errors[name] = msg
		}
	}
	return nil
}

// ValidateAll is the submit-time check over the form record, the image
// count and the per-variant values.
func ValidateAll(data ProductFormData, imageCount int, variants []Variant) FormErrors {
	errs := ValidateStruct(data.trimmed())

	if imageCount < 1 {
		errs["images"] = "At least one image is required"
	}

	for _, v := range variants {
		if v.Placeholder {
			continue
		}
		if msg := amountError(v.Price, false); msg != "" {
			errs["variants."+v.ID+".price"] = msg
		}
		for field, value := range map[string]string{"inventory": v.Inventory, "available": v.Available} {
			if msg := ValidateValue(strings.TrimSpace(value), "omitempty,count"); msg != "" {
				errs["variants."+v.ID+"."+field] = msg
			}
		}
	}
	return errs
}
