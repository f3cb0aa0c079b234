package chain

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"
)

// EVMClient is a minimal JSON-RPC client for EVM chains.
type EVMClient struct {
	url    string
	client *http.Client
}

// NewEVMClient creates a new EVM JSON-RPC client pointed at url.
func NewEVMClient(url string) *EVMClient {
	return &EVMClient{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// URL returns the RPC endpoint this client talks to.
func (c *EVMClient) URL() string { return c.url }

// SendRawTransaction broadcasts a signed raw transaction.
func (c *EVMClient) SendRawTransaction(rawTx string) (string, error) {
	result, err := c.call("eth_sendRawTransaction", rawTx)
	if err != nil {
		return "", err
	}
	hash, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected result: %T", result)
	}
	return hash, nil
}

// EstimateGas estimates gas for a transaction.
func (c *EVMClient) EstimateGas(from, to, data string, value *big.Int) (uint64, error) {
	params := map[string]string{
		"from": from,
		"to":   to,
	}
	if data != "" {
		params["data"] = data
	}
	if value != nil && value.Sign() > 0 {
		params["value"] = "0x" + value.Text(16)
	}

	result, err := c.call("eth_estimateGas", params, "latest")
	if err != nil {
		return 0, err
	}

	hexStr, ok := result.(string)
	if !ok {
		return 21000, nil
	}
	n, ok := parseBigHex(hexStr)
	if !ok {
		return 21000, nil
	}
	return n.Uint64(), nil
}

// GasPrice returns the current gas price.
func (c *EVMClient) GasPrice() (*big.Int, error) {
	result, err := c.call("eth_gasPrice")
	if err != nil {
		return nil, err
	}
	hexStr, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected result: %T", result)
	}
	gp, ok := parseBigHex(hexStr)
	if !ok {
		return nil, fmt.Errorf("could not parse gas price: %s", hexStr)
	}
	return gp, nil
}

// ChainID returns the chain's ID.
func (c *EVMClient) ChainID() (int64, error) {
	result, err := c.call("eth_chainId")
	if err != nil {
		return 0, err
	}
	hexStr, ok := result.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected result: %T", result)
	}
	id, ok := parseBigHex(hexStr)
	if !ok {
		return 0, fmt.Errorf("could not parse chain id: %s", hexStr)
	}
	return id.Int64(), nil
}

// GetPendingNonce returns the transaction count including pending (queued)
// transactions, using the "pending" block tag.
func (c *EVMClient) GetPendingNonce(address string) (uint64, error) {
	result, err := c.call("eth_getTransactionCount", address, "pending")
	if err != nil {
		return 0, err
	}
	hexStr, ok := result.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected result: %T", result)
	}
	n, ok := parseBigHex(hexStr)
	if !ok {
		return 0, fmt.Errorf("could not parse pending nonce: %s", hexStr)
	}
	return n.Uint64(), nil
}

// GetAllowance returns the ERC-20 allowance that owner has granted to spender
// on the given token contract. Uses the allowance(address,address) selector 0xdd62ed3e.
func (c *EVMClient) GetAllowance(tokenAddr, owner, spender string) (*big.Int, error) {
	data := "0xdd62ed3e" +
		fmt.Sprintf("%064s", strings.TrimPrefix(owner, "0x")) +
		fmt.Sprintf("%064s", strings.TrimPrefix(spender, "0x"))

	result, err := c.call("eth_call", map[string]string{
		"to":   tokenAddr,
		"data": data,
	}, "latest")
	if err != nil {
		return nil, err
	}
	hexStr, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected result: %T", result)
	}
	n, ok := parseBigHex(hexStr)
	if !ok {
		return nil, fmt.Errorf("could not parse allowance: %s", hexStr)
	}
	return n, nil
}

// TxReceipt holds the relevant fields of a transaction receipt.
type TxReceipt struct {
	Hash        string
	Status      uint64 // 1 = success, 0 = reverted
	BlockNumber uint64
	GasUsed     uint64
}

// GetTransactionReceipt fetches the receipt for hash.
// Returns nil, nil if the transaction is still pending.
func (c *EVMClient) GetTransactionReceipt(hash string) (*TxReceipt, error) {
	result, err := c.call("eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil // still pending
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	var r struct {
		Status      string `json:"status"`
		BlockNumber string `json:"blockNumber"`
		GasUsed     string `json:"gasUsed"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}

	receipt := &TxReceipt{Hash: hash}
	if s, ok := parseBigHex(r.Status); ok {
		receipt.Status = s.Uint64()
	}
	if bn, ok := parseBigHex(r.BlockNumber); ok {
		receipt.BlockNumber = bn.Uint64()
	}
	if gu, ok := parseBigHex(r.GasUsed); ok {
		receipt.GasUsed = gu.Uint64()
	}
	return receipt, nil
}

// WaitForReceipt polls every 2 s until the transaction is mined or timeout
// expires. Returns an error if the transaction reverted (Status == 0).
func (c *EVMClient) WaitForReceipt(hash string, timeout time.Duration) (*TxReceipt, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		receipt, err := c.GetTransactionReceipt(hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			if receipt.Status == 0 {
				return receipt, fmt.Errorf("transaction reverted (hash: %s)", hash)
			}
			return receipt, nil
		}
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("transaction %s not mined within %s", hash, timeout)
}

// --- EIP-5792 wallet call batching ---

// ChainCapabilities holds the advertised capabilities for one chain,
// as returned by wallet_getCapabilities.
type ChainCapabilities struct {
	AtomicBatch struct {
		Supported bool `json:"supported"`
	} `json:"atomicBatch"`
	PaymasterService struct {
		Supported bool `json:"supported"`
	} `json:"paymasterService"`
}

// GetCapabilities queries wallet_getCapabilities for an account and
// returns the per-chain capability map keyed by hex chain id. A wallet
// or node that doesn't implement EIP-5792 returns an error; callers
// treat that as "no batching" rather than a failure.
func (c *EVMClient) GetCapabilities(address string) (map[string]ChainCapabilities, error) {
	result, err := c.call("wallet_getCapabilities", address)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	caps := make(map[string]ChainCapabilities)
	if err := json.Unmarshal(raw, &caps); err != nil {
		return nil, fmt.Errorf("parsing capabilities: %w", err)
	}
	return caps, nil
}

// BatchCall is one call in a wallet_sendCalls request.
type BatchCall struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
}

// SendCalls submits a batch of calls through wallet_sendCalls
// (EIP-5792). hexChainID scopes the batch; capabilities is optional
// (e.g. a paymasterService entry) and omitted when nil. Returns the
// bundle identifier assigned by the wallet.
func (c *EVMClient) SendCalls(from, hexChainID string, calls []BatchCall, capabilities map[string]any) (string, error) {
	params := map[string]any{
		"version": "1.0",
		"chainId": hexChainID,
		"from":    from,
		"calls":   calls,
	}
	if len(capabilities) > 0 {
		params["capabilities"] = capabilities
	}

	result, err := c.call("wallet_sendCalls", params)
	if err != nil {
		return "", err
	}
	id, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected result: %T", result)
	}
	return id, nil
}

// --- internal JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *EVMClient) call(method string, params ...interface{}) (interface{}, error) {
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Post(c.url, "application/json", strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, fmt.Errorf("RPC error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	var result interface{}
	if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
		return nil, fmt.Errorf("parsing result: %w", err)
	}

	return result, nil
}

// parseBigHex parses a 0x-prefixed hex quantity into a big.Int.
func parseBigHex(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	return new(big.Int).SetString(strings.TrimPrefix(s, "0x"), 16)
}
