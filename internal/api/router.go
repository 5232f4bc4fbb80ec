package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/lewnelson/foreign-exchange-api/internal/metrics"
	"github.com/lewnelson/foreign-exchange-api/internal/rate/handler"
)

func NewRouter(rateHandler *handler.Handler, m *metrics.Metrics) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))
	router.Use(instrument(m))

	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Get("/exchange-rate", rateHandler.GetExchangeRate)
	router.Get("/exchange-currency", rateHandler.ExchangeCurrency)
	router.Get("/supported-currencies", rateHandler.GetSupportedCurrencies)
	router.Get("/earliest-supported-date", rateHandler.GetEarliestSupportedDate)
	router.Get("/latest-supported-date", rateHandler.GetLatestSupportedDate)
	return router
}

// instrument records request counts, durations and a timing log line per
// request.
func instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			m.HTTPRequestsTotal.WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(ww.Status())).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.URL.Path, r.Method).Observe(elapsed.Seconds())
			logrus.WithFields(logrus.Fields{
				"route":        r.Method + " " + r.URL.Path,
				"status":       ww.Status(),
				"time_elapsed": elapsed.Milliseconds(),
			}).Info("Request handled")
		})
	}
}
