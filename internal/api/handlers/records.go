package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/hoteldesk/internal/api/dto"
	"github.com/hugh/hoteldesk/internal/records"
)

const (
	msgInvalidTable   = "Table không hợp lệ"
	msgRecordNotFound = "Không tìm thấy dữ liệu"
	msgStoreFailed    = "Lỗi máy chủ"
)

type RecordHandler struct {
	recordService *records.Service
	logger        *slog.Logger
	development   bool
}

func NewRecordHandler(recordService *records.Service, logger *slog.Logger, development bool) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		logger:        logger,
		development:   development,
	}
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.recordService.List(r.Context(), chi.URLParam(r, "table"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if !records.IsValidTable(table) {
		writeError(w, http.StatusBadRequest, msgInvalidTable)
		return
	}

	body, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	if _, err := h.recordService.Create(r.Context(), table, body); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if !records.IsValidTable(table) {
		writeError(w, http.StatusBadRequest, msgInvalidTable)
		return
	}

	patch, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	if _, err := h.recordService.Update(r.Context(), table, chi.URLParam(r, "id"), patch); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.recordService.Delete(r.Context(), chi.URLParam(r, "table"), chi.URLParam(r, "id")); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OKResponse{OK: true})
}

// decodeRecord accepts any JSON object and rejects every other body.
func (h *RecordHandler) decodeRecord(w http.ResponseWriter, r *http.Request) (records.Record, bool) {
	var body records.Record
	if err := decodeJSON(w, r, &body); err != nil || body == nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return nil, false
	}
	return body, true
}

func (h *RecordHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, records.ErrInvalidTable):
		writeError(w, http.StatusBadRequest, msgInvalidTable)
	case errors.Is(err, records.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, msgRecordNotFound)
	default:
		writeInternal(w, r, h.logger, h.development, msgStoreFailed, err)
	}
}
