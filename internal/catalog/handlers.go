package catalog

import (
	"net/http"

	"github.com/aquaris-labs/backend-aquaris/internal/common"
)

// Handler exposes catalog read endpoints.
type Handler struct {
	Svc *Service
}

// Products returns the full product listing.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.WriteAppError(w, common.NewAppError("INTERNAL", "catalog service not configured", http.StatusInternalServerError, nil))
		return
	}
	products, err := h.Svc.ListProducts(r.Context())
	if err != nil {
		common.WriteAppError(w, common.NewAppError("CATALOG_ERROR", err.Error(), http.StatusInternalServerError, err))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": products})
}

// Offers returns the full offer listing.
func (h *Handler) Offers(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.WriteAppError(w, common.NewAppError("INTERNAL", "catalog service not configured", http.StatusInternalServerError, nil))
		return
	}
	offers, err := h.Svc.ListOffers(r.Context())
	if err != nil {
		common.WriteAppError(w, common.NewAppError("CATALOG_ERROR", err.Error(), http.StatusInternalServerError, err))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": offers})
}
