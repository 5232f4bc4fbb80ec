package httpclient

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/lewnelson/foreign-exchange-api/internal/domain"
)

// ECBFeedClient downloads the daily reference-rate feed: an XML envelope
// whose Cube root groups per-date Cube nodes, each holding per-currency
// Cube leaves with rate attributes.
type ECBFeedClient struct {
	http    *http.Client
	feedURL string
}

type feedEnvelope struct {
	XMLName xml.Name  `xml:"Envelope"`
	Days    []feedDay `xml:"Cube>Cube"`
}

type feedDay struct {
	Time  string     `xml:"time,attr"`
	Rates []feedRate `xml:"Cube"`
}

type feedRate struct {
	Currency string  `xml:"currency,attr"`
	Rate     float64 `xml:"rate,attr"`
}

func (c *ECBFeedClient) FetchLatestRates(ctx context.Context) ([]domain.RateRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected feed status %d: %s", resp.StatusCode, resp.Status)
	}

	var envelope feedEnvelope
	if err = xml.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode rates feed: %w", err)
	}

	records := make([]domain.RateRecord, 0, len(envelope.Days)*32)
	for _, day := range envelope.Days {
		date, parseErr := domain.ParseDate(day.Time)
		if parseErr != nil {
			logrus.WithError(parseErr).WithField("time", day.Time).Warn("Skipping feed group with unparseable date")
			continue
		}
		for _, rate := range day.Rates {
			records = append(records, domain.RateRecord{
				DateRecorded: date,
				CurrencyCode: rate.Currency,
				Rate:         rate.Rate,
			})
		}
	}
	return records, nil
}

func NewECBFeedClient(httpClient *http.Client, feedURL string) *ECBFeedClient {
	return &ECBFeedClient{http: httpClient, feedURL: feedURL}
}
