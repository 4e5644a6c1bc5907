package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/yndnr/vitals/internal/core/domain"
)

// maxBodyBytes limits item request bodies.
const maxBodyBytes = 64 << 10

func toItemResponse(item *domain.Item) ItemResponse {
	return ItemResponse{
		ID:        item.ID,
		Name:      item.Name,
		Value:     item.Value,
		CreatedAt: time.UnixMilli(item.CreatedAt).UTC(),
		UpdatedAt: time.UnixMilli(item.UpdatedAt).UTC(),
	}
}

// decodeItemRequest decodes an item body. It reports false for an empty
// body.
func decodeItemRequest(w http.ResponseWriter, r *http.Request) (ItemRequest, bool, error) {
	var req ItemRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, false, nil
		}
		return req, false, domain.ErrBadRequest.WithDetails("invalid request body").WithCause(err)
	}
	return req, true, nil
}

// handleListData handles GET /data.
func (h *Handler) handleListData(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := ListItemsResponse{Items: make([]ItemResponse, 0, len(items)), Total: len(items)}
	for _, item := range items {
		resp.Items = append(resp.Items, toItemResponse(item))
	}
	h.writeJSON(w, r, http.StatusOK, "This is a sample data endpoint.", resp)
}

// handleCreateData handles POST /data. An empty body is acknowledged
// without storing anything.
func (h *Handler) handleCreateData(w http.ResponseWriter, r *http.Request) {
	req, ok, err := decodeItemRequest(w, r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if !ok {
		h.writeJSON(w, r, http.StatusOK, "Data received", nil)
		return
	}

	item, err := h.items.Create(r.Context(), req.Name, req.Value)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, "Data received", toItemResponse(item))
}

// handleGetData handles GET /data/{id}.
func (h *Handler) handleGetData(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, "", toItemResponse(item))
}

// handleUpdateData handles PUT /data/{id}.
func (h *Handler) handleUpdateData(w http.ResponseWriter, r *http.Request) {
	req, ok, err := decodeItemRequest(w, r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if !ok {
		h.handleServiceError(w, r, domain.ErrBadRequest.WithDetails("request body is required"))
		return
	}

	item, err := h.items.Update(r.Context(), r.PathValue("id"), req.Name, req.Value)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, "Data updated", toItemResponse(item))
}

// handleDeleteData handles DELETE /data/{id}.
func (h *Handler) handleDeleteData(w http.ResponseWriter, r *http.Request) {
	if err := h.items.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, "Data deleted", nil)
}

// handleError handles GET /error, which always fails with a 500.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request) {
	h.handleServiceError(w, r, domain.ErrInternalServer.WithDetails("error demo endpoint"))
}
