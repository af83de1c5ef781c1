package execution

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RizzyDope/paper-trading-bot/internal/model"
)

const recvWindow = "5000"

// BybitGateway talks to the bybit v5 testnet REST API with HMAC-SHA256
// request signing.
type BybitGateway struct {
	baseURL   string
	apiKey    string
	apiSecret string
	client    *http.Client
}

// NewBybitGateway creates a gateway against the given base URL.
func NewBybitGateway(baseURL, apiKey, apiSecret string) *BybitGateway {
	return &BybitGateway{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type bybitResponse struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
}

func (g *BybitGateway) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(g.apiSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// privatePost signs timestamp + key + recvWindow + JSON body.
func (g *BybitGateway) privatePost(ctx context.Context, path string, body map[string]any) (*bybitResponse, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal order body: %w", err)
	}

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	signature := g.sign(timestamp + g.apiKey + recvWindow + string(raw))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-BAPI-API-KEY", g.apiKey)
	req.Header.Set("X-BAPI-SIGN", signature)
	req.Header.Set("X-BAPI-TIMESTAMP", timestamp)
	req.Header.Set("X-BAPI-RECV-WINDOW", recvWindow)
	req.Header.Set("Content-Type", "application/json")

	return g.do(req, path)
}

// privateGet signs timestamp + key + recvWindow + sorted query string.
func (g *BybitGateway) privateGet(ctx context.Context, path string, query map[string]string) (*bybitResponse, error) {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+query[k])
	}
	queryString := strings.Join(pairs, "&")

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	signature := g.sign(timestamp + g.apiKey + recvWindow + queryString)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+queryString, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-BAPI-API-KEY", g.apiKey)
	req.Header.Set("X-BAPI-SIGN", signature)
	req.Header.Set("X-BAPI-TIMESTAMP", timestamp)
	req.Header.Set("X-BAPI-RECV-WINDOW", recvWindow)

	return g.do(req, path)
}

func (g *BybitGateway) do(req *http.Request, path string) (*bybitResponse, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", path, err)
	}

	var br bybitResponse
	if err := json.Unmarshal(data, &br); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", path, err)
	}
	if br.RetCode != 0 {
		return nil, &RejectError{Code: strconv.Itoa(br.RetCode), Message: br.RetMsg}
	}
	return &br, nil
}

// PlaceMarketOrder submits an IOC market order.
func (g *BybitGateway) PlaceMarketOrder(ctx context.Context, symbol string, side model.Side, qty float64, reduceOnly bool) (Fill, error) {
	orderSide := "Buy"
	if side == model.SideShort {
		orderSide = "Sell"
	}

	orderID := uuid.NewString()
	body := map[string]any{
		"category":    "linear",
		"symbol":      symbol,
		"side":        orderSide,
		"orderType":   "Market",
		"qty":         strconv.FormatFloat(qty, 'f', 4, 64),
		"timeInForce": "IOC",
		"orderLinkId": orderID,
	}
	if reduceOnly {
		body["reduceOnly"] = true
	}

	if _, err := g.privatePost(ctx, "/v5/order/create", body); err != nil {
		return Fill{}, err
	}
	// Market IOC orders fill at the touch; bybit does not echo an average
	// price in the create response, so the caller prices the fill from the
	// triggering quote.
	return Fill{OrderID: orderID}, nil
}

type bybitPositionList struct {
	List []struct {
		Symbol   string `json:"symbol"`
		Side     string `json:"side"`
		AvgPrice string `json:"avgPrice"`
		Size     string `json:"size"`
	} `json:"list"`
}

// OpenPosition returns the exchange's live position for the symbol, or nil.
func (g *BybitGateway) OpenPosition(ctx context.Context, symbol string) (*model.Position, error) {
	res, err := g.privateGet(ctx, "/v5/position/list", map[string]string{
		"category": "linear",
		"symbol":   symbol,
	})
	if err != nil {
		return nil, err
	}

	var pl bybitPositionList
	if err := json.Unmarshal(res.Result, &pl); err != nil {
		return nil, fmt.Errorf("decode position list: %w", err)
	}

	for _, p := range pl.List {
		size, err := strconv.ParseFloat(p.Size, 64)
		if err != nil || size <= 0 {
			continue
		}
		entry, err := strconv.ParseFloat(p.AvgPrice, 64)
		if err != nil {
			continue
		}
		side := model.SideLong
		if p.Side == "Sell" {
			side = model.SideShort
		}
		return &model.Position{
			Symbol:     p.Symbol,
			Side:       side,
			EntryPrice: entry,
			Size:       size,
		}, nil
	}
	return nil, nil
}

// SetLeverage ensures both buy and sell leverage for the symbol.
func (g *BybitGateway) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	lev := strconv.Itoa(leverage)
	_, err := g.privatePost(ctx, "/v5/position/set-leverage", map[string]any{
		"category":     "linear",
		"symbol":       symbol,
		"buyLeverage":  lev,
		"sellLeverage": lev,
	})
	return err
}

type bybitInstrumentList struct {
	List []struct {
		Symbol        string `json:"symbol"`
		LotSizeFilter struct {
			QtyStep string `json:"qtyStep"`
		} `json:"lotSizeFilter"`
	} `json:"list"`
}

// QuantityStep returns the symbol's order quantity granularity.
func (g *BybitGateway) QuantityStep(ctx context.Context, symbol string) (float64, error) {
	res, err := g.privateGet(ctx, "/v5/market/instruments-info", map[string]string{
		"category": "linear",
		"symbol":   symbol,
	})
	if err != nil {
		return 0, err
	}

	var il bybitInstrumentList
	if err := json.Unmarshal(res.Result, &il); err != nil {
		return 0, fmt.Errorf("decode instruments info: %w", err)
	}
	for _, inst := range il.List {
		if inst.Symbol != symbol {
			continue
		}
		step, err := strconv.ParseFloat(inst.LotSizeFilter.QtyStep, 64)
		if err != nil {
			return 0, fmt.Errorf("parse qty step: %w", err)
		}
		return step, nil
	}
	return 0, fmt.Errorf("symbol %s not found in instruments info", symbol)
}
