package handler

import (
	"regexp"
	"time"

	"github.com/lewnelson/foreign-exchange-api/internal/domain"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

func parseDateParam(s string) (time.Time, bool) {
	date, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func validCurrencyCode(s string) bool {
	return currencyCodePattern.MatchString(s)
}

func validAmount(amount float64) bool {
	return amount > 0
}
