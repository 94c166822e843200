package handler

import (
	"net/http"
	"vaccitrack/internal/app/service"
	"vaccitrack/internal/common"

	"github.com/go-chi/chi/v5"
)

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.getStats)
	r.Get("/summary", h.getStatsSummary)
}

func (h *StatsHandler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.GetStatsAccurate(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, stats, "getStats")
}

func (h *StatsHandler) getStatsSummary(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.GetStats(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, stats, "getStatsSummary")
}
