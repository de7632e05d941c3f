package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const hiroPage = `{
	"limit": 50,
	"offset": 0,
	"total": 2,
	"results": [
		{
			"tx_id": "0xabc",
			"tx_type": "contract_call",
			"tx_status": "success",
			"block_height": 102,
			"burn_block_time": 1756600000,
			"contract_call": {
				"contract_id": "ST2X1GBHA2WJXREWP231EEQXZ1GDYZEEXYRAD1PA8.sbtc-vault",
				"function_name": "deposit",
				"function_args": [
					{"name": "amount", "type": "uint", "repr": "u100000"},
					{"name": "profile", "type": "string-ascii", "repr": "\"aggressive\""}
				]
			}
		},
		{
			"tx_id": "0xdef",
			"tx_type": "token_transfer",
			"tx_status": "success",
			"block_height": 101,
			"burn_block_time": 1756590000
		}
	]
}`

func TestHiroAddressTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/extended/v1/address/ST2USER/transactions", r.URL.Path)
		require.Equal(t, "25", r.URL.Query().Get("limit"))
		w.Write([]byte(hiroPage))
	}))
	defer srv.Close()

	client := NewHiroClient(srv.URL, 25)

	page, err := client.AddressTransactions(context.Background(), "ST2USER")
	require.NoError(t, err)
	require.Len(t, page.Results, 2)

	call := page.Results[0]
	require.Equal(t, "0xabc", call.TxID)
	require.Equal(t, "contract_call", call.TxType)
	require.NotNil(t, call.ContractCall)
	require.Equal(t, "deposit", call.ContractCall.FunctionName)
	require.Equal(t, "u100000", call.ContractCall.FunctionArgs[0].Repr)
	require.Equal(t, `"aggressive"`, call.ContractCall.FunctionArgs[1].Repr)

	require.Nil(t, page.Results[1].ContractCall)
}

func TestHiroAddressTransactions_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewHiroClient(srv.URL, 50)

	_, err := client.AddressTransactions(context.Background(), "ST2USER")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 502")
}

func TestNewHiroClient_Defaults(t *testing.T) {
	client := NewHiroClient("", 0)
	require.Equal(t, DefaultTxPageSize, client.PageSize())

	client = NewHiroClient("", -5)
	require.Equal(t, DefaultTxPageSize, client.PageSize())
}
