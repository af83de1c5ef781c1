package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/RizzyDope/paper-trading-bot/internal/model"
)

// BackfillClient fetches historical candles from the bybit v5 public kline
// endpoint to fill gaps detected in the live aggregation stream.
type BackfillClient struct {
	baseURL string
	client  *http.Client
}

// NewBackfillClient creates a client against the given REST base URL.
func NewBackfillClient(baseURL string) *BackfillClient {
	return &BackfillClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type klineResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List [][]string `json:"list"`
	} `json:"result"`
}

// FetchCandles returns the candles between from and to for the given symbol
// and timeframe, normalized to the internal candle format and ordered oldest
// first. Interval is derived from the timeframe in minutes.
func (b *BackfillClient) FetchCandles(ctx context.Context, symbol string, timeframe time.Duration, from, to time.Time) ([]model.Candle, error) {
	q := url.Values{}
	q.Set("category", "linear")
	q.Set("symbol", symbol)
	q.Set("interval", strconv.Itoa(int(timeframe.Minutes())))
	q.Set("start", strconv.FormatInt(from.UnixMilli(), 10))
	q.Set("end", strconv.FormatInt(to.UnixMilli(), 10))
	q.Set("limit", "200")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/v5/market/kline?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build kline request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch klines: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read kline response: %w", err)
	}

	var kr klineResponse
	if err := json.Unmarshal(body, &kr); err != nil {
		return nil, fmt.Errorf("decode kline response: %w", err)
	}
	if kr.RetCode != 0 {
		return nil, fmt.Errorf("kline request refused: %s", kr.RetMsg)
	}

	// Rows arrive newest first: [startMs, open, high, low, close, ...].
	candles := make([]model.Candle, 0, len(kr.Result.List))
	for i := len(kr.Result.List) - 1; i >= 0; i-- {
		row := kr.Result.List[i]
		if len(row) < 5 {
			continue
		}
		startMs, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		open, e1 := strconv.ParseFloat(row[1], 64)
		high, e2 := strconv.ParseFloat(row[2], 64)
		low, e3 := strconv.ParseFloat(row[3], 64)
		closePx, e4 := strconv.ParseFloat(row[4], 64)
		if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
			continue
		}
		candles = append(candles, model.Candle{
			StartTime: time.UnixMilli(startMs),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePx,
		})
	}
	return candles, nil
}
