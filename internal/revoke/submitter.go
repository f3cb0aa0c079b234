package revoke

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/wardenlabs/warden/internal/approvals"
	"github.com/wardenlabs/warden/internal/chain"
	"github.com/wardenlabs/warden/internal/config"
)

// ErrNothingSelected is returned when Submit is called with no items.
var ErrNothingSelected = errors.New("no approvals selected")

// Mode records how a batch went out.
type Mode string

const (
	ModeAtomic     Mode = "atomic"     // one wallet_sendCalls bundle
	ModeSequential Mode = "sequential" // individually signed transactions
)

// Client is the chain boundary the submitter needs (satisfied by
// *chain.EVMClient).
type Client interface {
	GetCapabilities(address string) (map[string]chain.ChainCapabilities, error)
	SendCalls(from, hexChainID string, calls []chain.BatchCall, capabilities map[string]any) (string, error)
	GasPrice() (*big.Int, error)
	GetPendingNonce(address string) (uint64, error)
	EstimateGas(from, to, data string, value *big.Int) (uint64, error)
	SendRawTransaction(rawTx string) (string, error)
}

// Signer signs transactions for the connected wallet (satisfied by
// *wallet.Signer).
type Signer interface {
	SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error)
	Address() string
}

// Result is the per-item outcome in sequential mode.
type Result struct {
	ItemID string
	TxHash string
	Err    error
}

// Report describes one Submit outcome. BundleID is set in atomic mode;
// Results carries per-item outcomes in sequential mode.
type Report struct {
	Mode     Mode
	BundleID string
	Results  []Result
}

// Failed counts per-item failures. Atomic bundles report zero: the
// bundle either landed or Submit itself errored.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Submitter revokes approvals for one wallet on one chain.
type Submitter struct {
	client       Client
	signer       Signer
	chain        *chain.Chain
	paymasterURL string
}

// NewSubmitter creates a submitter. paymasterURL may be empty.
func NewSubmitter(client Client, signer Signer, c *chain.Chain, paymasterURL string) *Submitter {
	return &Submitter{client: client, signer: signer, chain: c, paymasterURL: paymasterURL}
}

// Submit revokes the given approvals. If the wallet advertises atomic
// batching for this chain, everything goes out as a single
// wallet_sendCalls bundle (with a paymasterService capability when
// configured and supported). Otherwise — including when the bundle
// submission itself fails — each revocation is signed and broadcast
// individually, continuing past per-item failures.
func (s *Submitter) Submit(ctx context.Context, items []approvals.Item) (*Report, error) {
	if len(items) == 0 {
		return nil, ErrNothingSelected
	}

	caps, err := s.client.GetCapabilities(s.signer.Address())
	if err == nil {
		if cc, ok := caps[s.chain.HexChainID]; ok && cc.AtomicBatch.Supported {
			report, batchErr := s.submitBatch(items, cc)
			if batchErr == nil {
				return report, nil
			}
			// Wallet advertised batching but the bundle failed;
			// degrade to individual transactions.
		}
	}

	return s.submitSequential(ctx, items)
}

func (s *Submitter) submitBatch(items []approvals.Item, cc chain.ChainCapabilities) (*Report, error) {
	var capabilities map[string]any
	if s.paymasterURL != "" && cc.PaymasterService.Supported {
		capabilities = map[string]any{
			"paymasterService": map[string]any{"url": s.paymasterURL},
		}
	}

	id, err := s.client.SendCalls(s.signer.Address(), s.chain.HexChainID, BuildCalls(items), capabilities)
	if err != nil {
		return nil, err
	}
	return &Report{Mode: ModeAtomic, BundleID: id}, nil
}

func (s *Submitter) submitSequential(ctx context.Context, items []approvals.Item) (*Report, error) {
	gasPrice, err := s.client.GasPrice()
	if err != nil {
		return nil, fmt.Errorf("fetching gas price: %w", err)
	}
	nonce, err := s.client.GetPendingNonce(s.signer.Address())
	if err != nil {
		return nil, fmt.Errorf("fetching nonce: %w", err)
	}

	report := &Report{Mode: ModeSequential, Results: make([]Result, 0, len(items))}
	for _, it := range items {
		if ctx.Err() != nil {
			report.Results = append(report.Results, Result{ItemID: it.ID, Err: ctx.Err()})
			continue
		}

		hash, err := s.sendOne(it, nonce, gasPrice)
		report.Results = append(report.Results, Result{ItemID: it.ID, TxHash: hash, Err: err})
		if err == nil {
			// A failed sign or broadcast never consumed the nonce.
			nonce++
		}
	}
	return report, nil
}

func (s *Submitter) sendOne(it approvals.Item, nonce uint64, gasPrice *big.Int) (string, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(Calldata(it), "0x"))
	if err != nil {
		return "", fmt.Errorf("encoding calldata: %w", err)
	}

	gasLimit, err := s.client.EstimateGas(s.signer.Address(), it.TokenAddress, Calldata(it), nil)
	if err != nil {
		// Node couldn't simulate; fall back to conservative bounds.
		gasLimit = config.GasLimitApprove
		if it.Kind == approvals.KindNFT {
			gasLimit = config.GasLimitApprovalForAll
		}
	}

	to := common.HexToAddress(it.TokenAddress)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(s.chain.ChainID),
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gasLimit,
		To:        &to,
		Value:     big.NewInt(0),
		Data:      data,
	})

	raw, err := s.signer.SignTx(tx, big.NewInt(s.chain.ChainID))
	if err != nil {
		return "", err
	}
	return s.client.SendRawTransaction("0x" + hex.EncodeToString(raw))
}
