package rpc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// RPCContext is the slot context wrapping most results
type RPCContext struct {
	Slot uint64 `json:"slot"`
}

// AccountInfo is the value of getAccountInfo
type AccountInfo struct {
	Data       []string `json:"data"` // [payload, encoding]
	Owner      string   `json:"owner"`
	Lamports   uint64   `json:"lamports"`
	Executable bool     `json:"executable"`
	Space      uint64   `json:"space"`
}

// DecodeData returns the raw account bytes.
func (a *AccountInfo) DecodeData() ([]byte, error) {
	if a == nil || len(a.Data) == 0 {
		return nil, fmt.Errorf("account has no data")
	}

	encoding := "base64"
	if len(a.Data) > 1 {
		encoding = a.Data[1]
	}

	switch encoding {
	case "base64":
		return base64.StdEncoding.DecodeString(a.Data[0])
	case "base58":
		return base58.Decode(a.Data[0])
	default:
		return nil, fmt.Errorf("unsupported account encoding %q", encoding)
	}
}

// AccountInfoResult is the result of getAccountInfo
type AccountInfoResult struct {
	Context RPCContext   `json:"context"`
	Value   *AccountInfo `json:"value"`
}

// TokenAmount represents token balance information
type TokenAmount struct {
	Amount         string   `json:"amount"`
	Decimals       int      `json:"decimals"`
	UIAmountString string   `json:"uiAmountString"`
	UIAmount       *float64 `json:"uiAmount"`
}

// TokenAccountBalance is an entry of getTokenLargestAccounts
type TokenAccountBalance struct {
	Address string `json:"address"`
	TokenAmount
}

// TokenLargestAccountsResult is the result of getTokenLargestAccounts
type TokenLargestAccountsResult struct {
	Context RPCContext            `json:"context"`
	Value   []TokenAccountBalance `json:"value"`
}

// TokenSupplyResult is the result of getTokenSupply
type TokenSupplyResult struct {
	Context RPCContext   `json:"context"`
	Value   *TokenAmount `json:"value"`
}
