// Package clients contains thin API clients for external services.
package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/domain"
)

const httpClientTimeout = 30 * time.Second

// Bittrex is a client for the Bittrex REST API v1.1.
// Every response arrives in a {success, message, result} envelope;
// private endpoints are signed with HMAC-SHA512 over the full request URI.
type Bittrex struct {
	baseURL    string
	key        string
	secret     string
	httpClient *http.Client
	nonce      func() string
}

// NewBittrex returns a new client instance.
func NewBittrex(baseURL, key, secret string) *Bittrex {
	return &Bittrex{
		baseURL: baseURL,
		key:     key,
		secret:  secret,
		httpClient: &http.Client{
			Timeout: httpClientTimeout,
		},
		nonce: func() string {
			return strconv.FormatInt(time.Now().UnixNano(), 10)
		},
	}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`

	// body is the verbatim response envelope, kept for status reports.
	body []byte
}

// marketEntry is the wire form of a market listing.
// MinTradeSize decodes through decimal to avoid binary floating point.
type marketEntry struct {
	MarketCurrency string          `json:"MarketCurrency"`
	BaseCurrency   string          `json:"BaseCurrency"`
	MinTradeSize   decimal.Decimal `json:"MinTradeSize"`
}

type balanceEntry struct {
	Currency string          `json:"Currency"`
	Balance  decimal.Decimal `json:"Balance"`
}

type orderBookEntry struct {
	Quantity decimal.Decimal `json:"Quantity"`
	Rate     decimal.Decimal `json:"Rate"`
}

type orderBookResult struct {
	Buy  []orderBookEntry `json:"buy"`
	Sell []orderBookEntry `json:"sell"`
}

type placeOrderResult struct {
	UUID string `json:"uuid"`
}

type orderStatusResult struct {
	OrderUUID string  `json:"OrderUuid"`
	IsOpen    bool    `json:"IsOpen"`
	Closed    *string `json:"Closed"`
}

// GetMarkets lists all tradable markets.
func (b *Bittrex) GetMarkets(ctx context.Context) ([]domain.MarketInfo, error) {
	resp, err := b.do(ctx, "/public/getmarkets", nil, false)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.Errorf("bittrex getmarkets failed: %s", resp.Message)
	}

	var entries []marketEntry
	if err := json.Unmarshal(resp.Result, &entries); err != nil {
		return nil, errors.Wrap(err, "failed to decode market list")
	}

	markets := make([]domain.MarketInfo, 0, len(entries))
	for _, e := range entries {
		markets = append(markets, domain.MarketInfo{
			MarketCurrency: e.MarketCurrency,
			BaseCurrency:   e.BaseCurrency,
			MinTradeSize:   e.MinTradeSize,
		})
	}
	return markets, nil
}

// GetBalances retrieves all account balances.
func (b *Bittrex) GetBalances(ctx context.Context) ([]domain.Balance, error) {
	resp, err := b.do(ctx, "/account/getbalances", nil, true)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.Errorf("bittrex getbalances failed: %s", resp.Message)
	}

	var entries []balanceEntry
	if err := json.Unmarshal(resp.Result, &entries); err != nil {
		return nil, errors.Wrap(err, "failed to decode balances")
	}

	balances := make([]domain.Balance, 0, len(entries))
	for _, e := range entries {
		balances = append(balances, domain.Balance{Currency: e.Currency, Amount: e.Balance})
	}
	return balances, nil
}

// GetOrderBook fetches the order book of a market and returns the best
// (first-listed) bid and ask rates.
func (b *Bittrex) GetOrderBook(ctx context.Context, pair domain.Pair) (domain.OrderBookSnapshot, error) {
	values := make(url.Values)
	values.Set("market", pair.MarketName())
	values.Set("type", "both")

	resp, err := b.do(ctx, "/public/getorderbook", values, false)
	if err != nil {
		return domain.OrderBookSnapshot{}, err
	}
	if !resp.Success {
		return domain.OrderBookSnapshot{}, errors.Errorf("bittrex getorderbook failed for %s: %s", pair.MarketName(), resp.Message)
	}

	var book orderBookResult
	if err := json.Unmarshal(resp.Result, &book); err != nil {
		return domain.OrderBookSnapshot{}, errors.Wrap(err, "failed to decode order book")
	}
	if len(book.Buy) == 0 || len(book.Sell) == 0 {
		return domain.OrderBookSnapshot{}, errors.Errorf("bittrex returned an empty order book side for %s", pair.MarketName())
	}

	return domain.OrderBookSnapshot{
		Bid: book.Buy[0].Rate,
		Ask: book.Sell[0].Rate,
	}, nil
}

// SellLimit places a sell limit order and returns the raw acknowledgement.
// The caller decides how to treat rejections and missing identifiers.
func (b *Bittrex) SellLimit(ctx context.Context, pair domain.Pair, quantity, rate decimal.Decimal) (domain.OrderAck, error) {
	return b.placeLimit(ctx, "/market/selllimit", pair, quantity, rate)
}

// BuyLimit places a buy limit order and returns the raw acknowledgement.
func (b *Bittrex) BuyLimit(ctx context.Context, pair domain.Pair, quantity, rate decimal.Decimal) (domain.OrderAck, error) {
	return b.placeLimit(ctx, "/market/buylimit", pair, quantity, rate)
}

func (b *Bittrex) placeLimit(ctx context.Context, endpoint string, pair domain.Pair, quantity, rate decimal.Decimal) (domain.OrderAck, error) {
	values := make(url.Values)
	values.Set("market", pair.MarketName())
	values.Set("quantity", quantity.String())
	values.Set("rate", rate.String())

	resp, err := b.do(ctx, endpoint, values, true)
	if err != nil {
		return domain.OrderAck{}, err
	}

	ack := domain.OrderAck{Success: resp.Success, Message: resp.Message}
	if len(resp.Result) > 0 {
		var result placeOrderResult
		if err := json.Unmarshal(resp.Result, &result); err != nil {
			return domain.OrderAck{}, errors.Wrap(err, "failed to decode order acknowledgement")
		}
		ack.ID = result.UUID
	}
	return ack, nil
}

// GetOrder fetches the current status of an order by its identifier.
// An order counts as closed once the Closed timestamp is set.
func (b *Bittrex) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	values := make(url.Values)
	values.Set("uuid", orderID)

	resp, err := b.do(ctx, "/account/getorder", values, true)
	if err != nil {
		return domain.Order{}, err
	}
	if !resp.Success {
		return domain.Order{}, errors.Errorf("bittrex getorder failed for %s: %s", orderID, resp.Message)
	}

	var status orderStatusResult
	if err := json.Unmarshal(resp.Result, &status); err != nil {
		return domain.Order{}, errors.Wrap(err, "failed to decode order status")
	}

	return domain.Order{
		ID:     status.OrderUUID,
		Closed: status.Closed != nil,
		Raw:    string(resp.body),
	}, nil
}

func (b *Bittrex) do(ctx context.Context, endpoint string, values url.Values, signed bool) (*apiResponse, error) {
	if values == nil {
		values = make(url.Values)
	}
	if signed {
		values.Set("apikey", b.key)
		values.Set("nonce", b.nonce())
	}

	addr, err := url.Parse(b.baseURL + endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid request url for %s", endpoint)
	}
	addr.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr.String(), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request for %s", endpoint)
	}
	if signed {
		req.Header.Set("apisign", b.sign(addr.String()))
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request to %s failed", endpoint)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read response from %s", endpoint)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("bittrex returned http status %d for %s", resp.StatusCode, endpoint)
	}

	apiResp := new(apiResponse)
	if err := json.Unmarshal(body, apiResp); err != nil {
		return nil, errors.Wrapf(err, "failed to decode response from %s", endpoint)
	}
	apiResp.body = body
	return apiResp, nil
}

func (b *Bittrex) sign(uri string) string {
	mac := hmac.New(sha512.New, []byte(b.secret))
	mac.Write([]byte(uri))
	return hex.EncodeToString(mac.Sum(nil))
}
