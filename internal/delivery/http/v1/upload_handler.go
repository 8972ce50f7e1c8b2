package v1

import (
	"net/http"
	"path/filepath"
	"strings"

	"storefront-console/pkg/logger"
	"storefront-console/pkg/storage"
	"storefront-console/pkg/utils"
)

// UploadHandler stores a single processed image and returns its URL. Used for
// category and brand images and per-variant images.
type UploadHandler struct {
	storage       storage.ImageStore
	maxUploadSize int64
}

func NewUploadHandler(s storage.ImageStore, maxUploadSizeMB int64) *UploadHandler {
	return &UploadHandler{
		storage:       s,
		maxUploadSize: maxUploadSizeMB << 20,
	}
}

func (h *UploadHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		log.Warn().Err(err).Msg("Upload: ParseMultipartForm failed")
		utils.WriteError(w, http.StatusBadRequest, "File too large or invalid format")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedMimeTypes[contentType] {
		log.Warn().Str("content_type", contentType).Msg("Upload: invalid MIME type")
		utils.WriteError(w, http.StatusBadRequest, "Invalid file type. Allowed: JPEG, PNG, WebP, GIF")
		return
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); !allowedExtensions[ext] {
		utils.WriteError(w, http.StatusBadRequest, "Invalid file extension")
		return
	}

	processed, newContentType, err := utils.ProcessImage(file, header.Filename)
	if err != nil {
		log.Warn().Err(err).Msg("Upload: image processing failed")
		utils.WriteError(w, http.StatusUnprocessableEntity, "Unsupported or corrupt image")
		return
	}

	url, err := h.storage.Put(r.Context(), processed, newContentType)
	if err != nil {
		log.Error().Err(err).Msg("Upload: storage failed")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"url": url})
}
