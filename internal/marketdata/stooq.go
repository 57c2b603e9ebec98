package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotationlab/backend/pkg/httputil"
	"github.com/rotationlab/backend/pkg/logger"
)

// StooqSource fetches daily OHLCV history from the Stooq CSV endpoint.
type StooqSource struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewStooqSource creates a Stooq fetcher.
func NewStooqSource(client *httputil.Client, log *logger.Logger, baseURL string) *StooqSource {
	if baseURL == "" {
		baseURL = "https://stooq.com"
	}
	return &StooqSource{
		httpClient: client,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Fetch implements Source. Instruments that fail to download or parse are
// skipped with a warning; an entirely empty result is the caller's problem
// to surface.
func (s *StooqSource) Fetch(ctx context.Context, symbols []string, lookbackDays int) (*Frame, error) {
	// Calendar window wide enough to cover lookbackDays trading days.
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -lookbackDays*7/5-14)

	frame := NewFrame()
	skipped := 0
	for _, sym := range symbols {
		series, err := s.fetchOne(ctx, sym, from, to)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.WithFields(map[string]interface{}{
				"symbol": sym,
				"error":  err.Error(),
			}).Warn("Skipping instrument, fetch failed")
			skipped++
			continue
		}
		frame.Series[sym] = series
	}

	s.logger.WithFields(map[string]interface{}{
		"requested": len(symbols),
		"fetched":   len(frame.Series),
		"skipped":   skipped,
	}).Info("Fetched daily history")

	return frame, nil
}

// fetchOne downloads one instrument's CSV history.
func (s *StooqSource) fetchOne(ctx context.Context, symbol string, from, to time.Time) (*PriceSeries, error) {
	url := fmt.Sprintf("%s/q/d/l/?s=%s&d1=%s&d2=%s&i=d",
		s.baseURL, stooqSymbol(symbol), from.Format("20060102"), to.Format("20060102"))

	resp, err := s.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	bars, err := ParseStooqCSV(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse CSV failed: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no data returned")
	}

	return NewPriceSeries(symbol, bars)
}

// ParseStooqCSV parses the Stooq daily CSV format:
// Date,Open,High,Low,Close,Volume with an ISO date column.
func ParseStooqCSV(body string) ([]Bar, error) {
	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1

	var bars []Bar
	for i := 0; ; i++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record failed: %w", err)
		}
		if i == 0 || len(record) < 6 {
			continue // header or malformed row
		}

		date, err := time.Parse("2006-01-02", record[0])
		if err != nil {
			continue
		}

		high, err1 := strconv.ParseFloat(record[2], 64)
		low, err2 := strconv.ParseFloat(record[3], 64)
		closePrice, err3 := strconv.ParseFloat(record[4], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}

		// Volume can be empty for indices
		volume, _ := strconv.ParseFloat(record[5], 64)

		bars = append(bars, Bar{
			Date:   date,
			Close:  closePrice,
			High:   high,
			Low:    low,
			Volume: volume,
		})
	}

	return bars, nil
}

// stooqSymbol maps a US ticker to Stooq's naming (lowercase, .us suffix,
// dots for share classes).
func stooqSymbol(symbol string) string {
	s := strings.ToLower(symbol)
	s = strings.ReplaceAll(s, "-", ".")
	return s + ".us"
}
