package handler

import (
	"fmt"
	"net/http"
	"time"
)

func (h *Handler) GetSupportedCurrencies(w http.ResponseWriter, r *http.Request) {
	rawDate := r.URL.Query().Get("date")
	date, ok := parseDateParam(rawDate)
	if !ok {
		writeErrors(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid param `date` '%s', must be in the format YYYY-MM-DD", rawDate))
		return
	}

	codes, err := h.currencies.ListCurrencies(r.Context(), date)
	if err != nil {
		h.writeFailure(w, "GET /supported-currencies", err)
		return
	}
	if codes == nil {
		codes = []string{}
	}
	writeResult(w, 15*time.Minute, codes)
}
