package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// conversionRequest carries the validated parameters shared by the two
// conversion endpoints.
type conversionRequest struct {
	date     time.Time
	fromCode string
	toCode   string
	amount   float64
}

// parseConversionParams collects every format error rather than stopping at
// the first, so a request with three bad parameters reports all three.
func parseConversionParams(r *http.Request, amountRequired bool) (conversionRequest, []string) {
	query := r.URL.Query()
	rawDate := query.Get("date")
	fromCode := query.Get("from_currency_code")
	toCode := query.Get("to_currency_code")

	var (
		req  conversionRequest
		errs []string
	)

	date, ok := parseDateParam(rawDate)
	if !ok {
		errs = append(errs, fmt.Sprintf("Invalid param `date` '%s', must be in the format YYYY-MM-DD", rawDate))
	}
	if !validCurrencyCode(fromCode) {
		errs = append(errs, fmt.Sprintf("Invalid param `from_currency_code` '%s', must conform to ISO_4217", fromCode))
	}
	if !validCurrencyCode(toCode) {
		errs = append(errs, fmt.Sprintf("Invalid param `to_currency_code` '%s', must conform to ISO_4217", toCode))
	}

	if amountRequired {
		rawAmount := query.Get("amount")
		amount, parseErr := strconv.ParseFloat(rawAmount, 64)
		if parseErr != nil || !validAmount(amount) {
			errs = append(errs, fmt.Sprintf("Invalid param `amount` '%s', must be a number greater than 0", rawAmount))
		} else {
			req.amount = amount
		}
	}

	req.date = date
	req.fromCode = fromCode
	req.toCode = toCode
	return req, errs
}

func (h *Handler) GetExchangeRate(w http.ResponseWriter, r *http.Request) {
	req, errs := parseConversionParams(r, false)
	if len(errs) > 0 {
		writeErrors(w, http.StatusBadRequest, errs...)
		return
	}

	rate, err := h.engine.ConvertRate(r.Context(), req.date, req.fromCode, req.toCode)
	if err != nil {
		h.writeFailure(w, "GET /exchange-rate", err)
		return
	}
	writeResult(w, time.Hour, rate)
}

func (h *Handler) ExchangeCurrency(w http.ResponseWriter, r *http.Request) {
	req, errs := parseConversionParams(r, true)
	if len(errs) > 0 {
		writeErrors(w, http.StatusBadRequest, errs...)
		return
	}

	money, err := h.engine.ConvertAmount(r.Context(), req.date, req.fromCode, req.toCode, req.amount)
	if err != nil {
		h.writeFailure(w, "GET /exchange-currency", err)
		return
	}
	writeResult(w, time.Hour, money)
}
