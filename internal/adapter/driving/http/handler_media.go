package httphandler

import (
	"errors"
	"net/http"
)

// UploadMedia accepts a multipart upload ("file" field) into the content
// library. The request body is capped at the configured limit.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "validation", "upload exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "validation", "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "missing \"file\" field")
		return
	}
	defer file.Close()

	asset, err := h.media.Save(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusCreated, toMediaResponse(*asset))
}

// ListMedia returns all content library entries, newest first.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	assets, err := h.media.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list media", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	resp := make([]MediaResponse, 0, len(assets))
	for _, a := range assets {
		resp = append(resp, toMediaResponse(a))
	}

	writeData(w, http.StatusOK, resp)
}

// DeleteMedia removes a content library entry and its file.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	if err := h.media.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, "not_found", "media asset not found")
		return
	}

	writeMessage(w, http.StatusOK, "media deleted")
}
