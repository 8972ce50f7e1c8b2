package v1

import (
	"net/http"
	"path/filepath"
	"strings"

	"storefront-console/internal/domain"
	"storefront-console/internal/usecase"
	"storefront-console/pkg/logger"
	"storefront-console/pkg/utils"
)

var (
	allowedMimeTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
	}
	allowedExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
		".gif":  true,
	}
)

// ProductDraftHandler exposes the admin product form: attributes, the
// variant table, bulk edits, images and submission.
type ProductDraftHandler struct {
	draftUC       *usecase.ProductDraftUsecase
	maxUploadSize int64
}

func NewProductDraftHandler(uc *usecase.ProductDraftUsecase, maxUploadSizeMB int64) *ProductDraftHandler {
	return &ProductDraftHandler{
		draftUC:       uc,
		maxUploadSize: maxUploadSizeMB << 20,
	}
}

// draftError is the body sent when an operation fails but the draft was
// updated anyway (field errors, failed submission).
type draftError struct {
	Error  string               `json:"error"`
	Fields domain.FormErrors    `json:"fields,omitempty"`
	Draft  *domain.ProductDraft `json:"draft"`
}

// respond writes d, or the error with d attached when there is one.
func respond(w http.ResponseWriter, r *http.Request, status int, d *domain.ProductDraft, err error) {
	if err == nil {
		utils.WriteJSON(w, status, d)
		return
	}
	if d == nil {
		writeError(w, r, err)
		return
	}

	msg := err.Error()
	if d.Submission.Banner != "" {
		msg = d.Submission.Banner
	}
	utils.WriteJSON(w, statusFor(err), draftError{Error: msg, Fields: d.Form.Errors, Draft: d})
}

// POST /api/v1/admin/products/drafts
func (h *ProductDraftHandler) Create(w http.ResponseWriter, r *http.Request) {
	d, err := h.draftUC.Create(r.Context())
	respond(w, r, http.StatusCreated, d, err)
}

// POST /api/v1/admin/products/{id}/drafts
func (h *ProductDraftHandler) EditProduct(w http.ResponseWriter, r *http.Request) {
	d, err := h.draftUC.EditProduct(r.Context(), r.PathValue("id"))
	respond(w, r, http.StatusCreated, d, err)
}

func (h *ProductDraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.draftUC.Get(r.Context(), r.PathValue("id"))
	respond(w, r, http.StatusOK, d, err)
}

func (h *ProductDraftHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.draftUC.Discard(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PATCH .../drafts/{id}/fields with {"name": "...", "costPrice": "..."}
func (h *ProductDraftHandler) SetFields(w http.ResponseWriter, r *http.Request) {
	var fields map[string]string
	if !decodeBody(w, r, &fields) {
		return
	}
	d, err := h.draftUC.SetFields(r.Context(), r.PathValue("id"), fields)
	respond(w, r, http.StatusOK, d, err)
}

type attributeValueReq struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

func (h *ProductDraftHandler) AddAttributeValue(w http.ResponseWriter, r *http.Request) {
	var req attributeValueReq
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := h.draftUC.AddAttributeValue(r.Context(), r.PathValue("id"), req.Attribute, req.Value)
	respond(w, r, http.StatusOK, d, err)
}

func (h *ProductDraftHandler) RemoveAttributeValue(w http.ResponseWriter, r *http.Request) {
	d, err := h.draftUC.RemoveAttributeValue(r.Context(), r.PathValue("id"), r.PathValue("attr"), r.PathValue("value"))
	respond(w, r, http.StatusOK, d, err)
}

func (h *ProductDraftHandler) RemoveAttribute(w http.ResponseWriter, r *http.Request) {
	d, err := h.draftUC.RemoveAttribute(r.Context(), r.PathValue("id"), r.PathValue("attr"))
	respond(w, r, http.StatusOK, d, err)
}

func (h *ProductDraftHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	var patch domain.VariantPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	d, err := h.draftUC.UpdateVariant(r.Context(), r.PathValue("id"), r.PathValue("variantId"), patch)
	respond(w, r, http.StatusOK, d, err)
}

// PUT .../drafts/{id}/selection with {"variantId","checked"} or {"all": true}
func (h *ProductDraftHandler) ChangeSelection(w http.ResponseWriter, r *http.Request) {
	var change usecase.SelectionChange
	if !decodeBody(w, r, &change) {
		return
	}
	d, err := h.draftUC.ChangeSelection(r.Context(), r.PathValue("id"), change)
	respond(w, r, http.StatusOK, d, err)
}

// POST .../drafts/{id}/bulk/{kind} opens the barcode or price modal.
func (h *ProductDraftHandler) OpenBulk(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseBulkKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.draftUC.OpenBulk(r.Context(), r.PathValue("id"), kind)
	respond(w, r, http.StatusOK, d, err)
}

func (h *ProductDraftHandler) UpdateBulk(w http.ResponseWriter, r *http.Request) {
	var change usecase.BulkChange
	if !decodeBody(w, r, &change) {
		return
	}
	d, err := h.draftUC.UpdateBulk(r.Context(), r.PathValue("id"), change)
	respond(w, r, http.StatusOK, d, err)
}

func (h *ProductDraftHandler) ConfirmBulk(w http.ResponseWriter, r *http.Request) {
	d, err := h.draftUC.ConfirmBulk(r.Context(), r.PathValue("id"))
	respond(w, r, http.StatusOK, d, err)
}

func (h *ProductDraftHandler) CancelBulk(w http.ResponseWriter, r *http.Request) {
	d, err := h.draftUC.CancelBulk(r.Context(), r.PathValue("id"))
	respond(w, r, http.StatusOK, d, err)
}

func (h *ProductDraftHandler) DismissBanner(w http.ResponseWriter, r *http.Request) {
	d, err := h.draftUC.DismissBanner(r.Context(), r.PathValue("id"))
	respond(w, r, http.StatusOK, d, err)
}

// UploadImages accepts one or more "file" parts and attaches them in order.
func (h *ProductDraftHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		log.Warn().Err(err).Msg("Upload: ParseMultipartForm failed")
		utils.WriteError(w, http.StatusBadRequest, "File too large or invalid format")
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		utils.WriteError(w, http.StatusBadRequest, "Invalid file")
		return
	}

	var d *domain.ProductDraft
	for _, header := range files {
		contentType := header.Header.Get("Content-Type")
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !allowedMimeTypes[contentType] || !allowedExtensions[ext] {
			log.Warn().Str("filename", header.Filename).Str("content_type", contentType).Msg("Upload: rejected file type")
			utils.WriteError(w, http.StatusBadRequest, "Invalid file type. Allowed: JPEG, PNG, WebP, GIF")
			return
		}

		file, err := header.Open()
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid file")
			return
		}
		d, err = h.draftUC.AddImage(r.Context(), r.PathValue("id"), file, header.Filename)
		file.Close()
		if err != nil {
			respond(w, r, http.StatusOK, d, err)
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, d)
}

// DELETE .../drafts/{id}/images?url=
func (h *ProductDraftHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		utils.WriteError(w, http.StatusBadRequest, "url is required")
		return
	}
	d, err := h.draftUC.RemoveImage(r.Context(), r.PathValue("id"), url)
	respond(w, r, http.StatusOK, d, err)
}

// Submit validates and saves the draft. Success answers 201 with the saved
// product and the client route to open next.
func (h *ProductDraftHandler) Submit(w http.ResponseWriter, r *http.Request) {
	res, err := h.draftUC.Submit(r.Context(), r.PathValue("id"))
	if err != nil {
		var d *domain.ProductDraft
		if res != nil {
			d = res.Draft
		}
		respond(w, r, http.StatusOK, d, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, res)
}
