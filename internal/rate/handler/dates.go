package handler

import (
	"net/http"
	"time"

	"github.com/lewnelson/foreign-exchange-api/internal/domain"
)

func (h *Handler) GetEarliestSupportedDate(w http.ResponseWriter, r *http.Request) {
	date, err := h.engine.EarliestRateDate(r.Context())
	if err != nil {
		h.writeFailure(w, "GET /earliest-supported-date", err)
		return
	}
	writeResult(w, time.Hour, domain.FormatDate(date))
}

func (h *Handler) GetLatestSupportedDate(w http.ResponseWriter, r *http.Request) {
	date, err := h.engine.LatestRateDate(r.Context())
	if err != nil {
		h.writeFailure(w, "GET /latest-supported-date", err)
		return
	}
	writeResult(w, 5*time.Minute, domain.FormatDate(date))
}
