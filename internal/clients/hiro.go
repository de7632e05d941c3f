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
	// DefaultHiroURL is the Stacks testnet indexer base.
	DefaultHiroURL = "https://api.testnet.hiro.so"

	// DefaultTxPageSize is the fixed transaction page size passed through
	// to the indexer. No pagination beyond it.
	DefaultTxPageSize = 50

	hiroTimeout = 15 * time.Second
)

// HiroClient is a read-only consumer of the Stacks ledger indexer.
type HiroClient struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
}

// NewHiroClient creates an indexer client. pageSize <= 0 selects the default.
func NewHiroClient(baseURL string, pageSize int) *HiroClient {
	if baseURL == "" {
		baseURL = DefaultHiroURL
	}
	if pageSize <= 0 {
		pageSize = DefaultTxPageSize
	}
	return &HiroClient{
		baseURL:  baseURL,
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: hiroTimeout,
		},
	}
}

// AddressTransactions is one page of an account's transaction history,
// newest first as the indexer returns it.
type AddressTransactions struct {
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	Total   int           `json:"total"`
	Results []Transaction `json:"results"`
}

// Transaction is the indexer's view of a single transaction.
type Transaction struct {
	TxID          string        `json:"tx_id"`
	TxType        string        `json:"tx_type"`
	TxStatus      string        `json:"tx_status"`
	BlockHeight   int64         `json:"block_height"`
	BurnBlockTime int64         `json:"burn_block_time"`
	ContractCall  *ContractCall `json:"contract_call,omitempty"`
}

// ContractCall carries the decoded call details of a contract_call transaction.
type ContractCall struct {
	ContractID   string        `json:"contract_id"`
	FunctionName string        `json:"function_name"`
	FunctionArgs []FunctionArg `json:"function_args"`
}

// FunctionArg is a decoded Clarity argument. Repr is the printable encoding,
// e.g. `u100000` for a uint or `"aggressive"` for a string.
type FunctionArg struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Repr string `json:"repr"`
}

// PageSize returns the page size this client requests from the indexer.
func (c *HiroClient) PageSize() int {
	return c.pageSize
}

// AddressTransactions fetches the most recent transactions of an address,
// in the indexer's reverse-chronological order.
func (c *HiroClient) AddressTransactions(ctx context.Context, address string) (*AddressTransactions, error) {
	url := fmt.Sprintf("%s/extended/v1/address/%s/transactions?limit=%d", c.baseURL, address, c.pageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create HTTP request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "indexer request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read indexer response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("indexer returned status %d: %s", resp.StatusCode, string(body))
	}

	var page AddressTransactions
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal indexer response")
	}

	return &page, nil
}
