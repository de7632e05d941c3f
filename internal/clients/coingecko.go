package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultCoinGeckoURL is the public API base. No key required.
	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

	coinGeckoTimeout = 15 * time.Second
)

// CoinGeckoClient is a read-only consumer of the CoinGecko price oracle.
type CoinGeckoClient struct {
	baseURL    string
	assetID    string
	httpClient *http.Client
}

// NewCoinGeckoClient creates an oracle client for one asset id (e.g. "bitcoin").
func NewCoinGeckoClient(baseURL, assetID string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	return &CoinGeckoClient{
		baseURL: baseURL,
		assetID: assetID,
		httpClient: &http.Client{
			Timeout: coinGeckoTimeout,
		},
	}
}

// SimplePrice is the /simple/price payload for a single asset.
type SimplePrice struct {
	USD          float64 `json:"usd"`
	USD24hChange float64 `json:"usd_24h_change"`
	USD24hVol    float64 `json:"usd_24h_vol"`
	USDMarketCap float64 `json:"usd_market_cap"`
}

// MarketChart is the /coins/{id}/market_chart payload.
// Each price entry is [unix-milliseconds, price].
type MarketChart struct {
	Prices [][2]float64 `json:"prices"`
}

// CoinData is the subset of /coins/{id} consumed for extended stats.
type CoinData struct {
	MarketData struct {
		CurrentPrice             map[string]float64 `json:"current_price"`
		MarketCap                map[string]float64 `json:"market_cap"`
		TotalVolume              map[string]float64 `json:"total_volume"`
		PriceChangePercentage24h float64            `json:"price_change_percentage_24h"`
		PriceChangePercentage7d  float64            `json:"price_change_percentage_7d"`
		PriceChangePercentage30d float64            `json:"price_change_percentage_30d"`
		ATH                      map[string]float64 `json:"ath"`
		ATHDate                  map[string]string  `json:"ath_date"`
		ATL                      map[string]float64 `json:"atl"`
		ATLDate                  map[string]string  `json:"atl_date"`
		CirculatingSupply        float64            `json:"circulating_supply"`
		TotalSupply              float64            `json:"total_supply"`
		MaxSupply                float64            `json:"max_supply"`
	} `json:"market_data"`
}

// CurrentPrice fetches the live quote with 24h change, volume and market cap.
func (c *CoinGeckoClient) CurrentPrice(ctx context.Context) (*SimplePrice, error) {
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true&include_24hr_vol=true&include_market_cap=true",
		c.baseURL, c.assetID)

	var payload map[string]SimplePrice
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	price, ok := payload[c.assetID]
	if !ok {
		return nil, errors.Errorf("oracle response missing asset %q", c.assetID)
	}

	return &price, nil
}

// MarketChart fetches the historical price series for the given day count.
// The oracle switches to daily granularity beyond 90 days.
func (c *CoinGeckoClient) MarketChart(ctx context.Context, days int) (*MarketChart, error) {
	interval := "hourly"
	if days > 90 {
		interval = "daily"
	}
	url := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d&interval=%s",
		c.baseURL, c.assetID, days, interval)

	var chart MarketChart
	if err := c.getJSON(ctx, url, &chart); err != nil {
		return nil, err
	}

	return &chart, nil
}

// CoinData fetches the extended market statistics document.
func (c *CoinGeckoClient) CoinData(ctx context.Context) (*CoinData, error) {
	url := fmt.Sprintf("%s/coins/%s?localization=false&tickers=false&community_data=false&developer_data=false",
		c.baseURL, c.assetID)

	var data CoinData
	if err := c.getJSON(ctx, url, &data); err != nil {
		return nil, err
	}

	return &data, nil
}

func (c *CoinGeckoClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create HTTP request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "oracle request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read oracle response")
	}

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("oracle returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to unmarshal oracle response")
	}

	return nil
}
