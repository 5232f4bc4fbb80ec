package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lewnelson/foreign-exchange-api/internal/domain"
)

const maskedErrorMessage = "internal server error"

// RateEngine is the conversion surface consumed by the HTTP layer.
type RateEngine interface {
	EarliestRateDate(ctx context.Context) (time.Time, error)
	LatestRateDate(ctx context.Context) (time.Time, error)
	ConvertRate(ctx context.Context, date time.Time, fromCode, toCode string) (float64, error)
	ConvertAmount(ctx context.Context, date time.Time, fromCode, toCode string, amount float64) (float64, error)
}

type CurrencyLister interface {
	ListCurrencies(ctx context.Context, date time.Time) ([]string, error)
}

type Handler struct {
	engine     RateEngine
	currencies CurrencyLister
	production bool
}

func NewRateHandler(engine RateEngine, currencies CurrencyLister, production bool) *Handler {
	return &Handler{engine: engine, currencies: currencies, production: production}
}

type resultResponse struct {
	Result any `json:"result"`
}

type errorsResponse struct {
	Errors []string `json:"errors"`
}

func writeResult(w http.ResponseWriter, cacheMaxAge time.Duration, result any) {
	w.Header().Set("Content-Type", "application/json")
	if cacheMaxAge > 0 {
		w.Header().Set("Cache-Control",
			"public, must-revalidate, max-age="+strconv.Itoa(int(cacheMaxAge.Seconds())))
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resultResponse{Result: result})
}

func writeErrors(w http.ResponseWriter, statusCode int, errs ...string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorsResponse{Errors: errs})
}

// writeFailure maps an engine failure to a response: input errors become a
// 400 with the offending message, anything else a 500. In production the
// underlying cause is masked; outside it the message is surfaced verbatim.
func (h *Handler) writeFailure(w http.ResponseWriter, route string, err error) {
	if domain.IsInputError(err) {
		writeErrors(w, http.StatusBadRequest, err.Error())
		return
	}

	logrus.WithError(err).WithField("route", route).Error("Request failed")
	if h.production {
		writeErrors(w, http.StatusInternalServerError, maskedErrorMessage)
		return
	}
	writeErrors(w, http.StatusInternalServerError, err.Error())
}
