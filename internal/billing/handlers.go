package billing

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aquaris-labs/backend-aquaris/internal/common"
)

// Handler wires the billing service to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

func (h *Handler) validate() *validator.Validate {
	if h.Validate == nil {
		h.Validate = validator.New()
	}
	return h.Validate
}

// Quote computes a bill preview without side effects.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	quote, err := h.Svc.Quote(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quote})
}

// GenerateBill confirms the bill and persists one sale record.
func (h *Handler) GenerateBill(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	bill, err := h.Svc.Generate(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": bill})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (Request, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "billing service not configured", nil)
		return Request{}, false
	}
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return Request{}, false
	}
	if err := h.validate().Struct(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid billing input", map[string]any{"error": err.Error()})
		return Request{}, false
	}
	return req, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart):
		common.JSONError(w, http.StatusUnprocessableEntity, "EMPTY_CART", "add products to generate bill", nil)
	case errors.Is(err, ErrNegativeQuantity):
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_QUANTITY", err.Error(), nil)
	case errors.Is(err, ErrOfferNotFound):
		common.JSONError(w, http.StatusUnprocessableEntity, "OFFER_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrUnknownOfferKind):
		common.JSONError(w, http.StatusUnprocessableEntity, "UNKNOWN_OFFER_KIND", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "BILLING_ERROR", err.Error(), nil)
	}
}
