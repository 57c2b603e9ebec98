package universe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rotationlab/backend/pkg/httputil"
	"github.com/rotationlab/backend/pkg/logger"
)

const sp500ListURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

// ConstituentsFetcher scrapes the current S&P 500 constituent list. It is
// used by the full-universe backfill to compare the curated holdings tables
// against the whole index.
type ConstituentsFetcher struct {
	httpClient *httputil.Client
	logger     *logger.Logger
}

// NewConstituentsFetcher creates a constituents fetcher.
func NewConstituentsFetcher(client *httputil.Client, log *logger.Logger) *ConstituentsFetcher {
	return &ConstituentsFetcher{
		httpClient: client,
		logger:     log,
	}
}

// FetchSP500 returns the current S&P 500 tickers, normalized to the
// dash share-class convention (BRK.B -> BRK-B).
func (f *ConstituentsFetcher) FetchSP500(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sp500ListURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := f.httpClient.Do(req)
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

	tickers, err := ParseSP500HTML(string(body))
	if err != nil {
		return nil, err
	}

	f.logger.WithField("count", len(tickers)).Debug("Fetched S&P 500 constituents")
	return tickers, nil
}

// ParseSP500HTML extracts tickers from the Wikipedia constituents table.
// The first column of the first sortable wikitable holds the symbol.
func ParseSP500HTML(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}

	table := doc.Find("table.wikitable").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("constituents table not found")
	}

	var tickers []string
	table.Find("tbody tr").Each(func(i int, row *goquery.Selection) {
		cell := row.Find("td").First()
		symbol := strings.TrimSpace(cell.Text())
		if symbol == "" {
			return // header row
		}
		tickers = append(tickers, strings.ReplaceAll(symbol, ".", "-"))
	})

	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers found in constituents table")
	}

	return tickers, nil
}
