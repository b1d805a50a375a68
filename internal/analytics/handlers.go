package analytics

import (
	"net/http"

	"github.com/aquaris-labs/backend-aquaris/internal/common"
)

// Handler exposes revenue reporting endpoints.
type Handler struct {
	Svc *Service
}

// DailyRevenue returns aggregated revenue per calendar date.
func (h *Handler) DailyRevenue(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_NOT_CONFIGURED", "analytics service not configured", nil)
		return
	}
	series, err := h.Svc.DailyRevenue(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_ERROR", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": series})
}
