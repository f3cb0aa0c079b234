// Package revoke turns selected approvals into on-chain revocations:
// calldata construction, EIP-5792 batch submission with a sequential
// fallback, and the post-submit settle poll against the index.
package revoke

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/wardenlabs/warden/internal/approvals"
	"github.com/wardenlabs/warden/internal/chain"
)

// Selectors derived from the canonical ABI signatures.
var (
	approveSelector           = selectorFor("approve(address,uint256)")        // 0x095ea7b3
	setApprovalForAllSelector = selectorFor("setApprovalForAll(address,bool)") // 0xa22cb465
)

const zeroWord = "0000000000000000000000000000000000000000000000000000000000000000"

func selectorFor(sig string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// Calldata builds the revocation calldata for one approval: token
// approvals get approve(spender, 0), NFT operator grants get
// setApprovalForAll(spender, false). Both encode to a zero final word,
// so the shapes only differ in the selector.
func Calldata(it approvals.Item) string {
	spender := fmt.Sprintf("%064s", strings.ToLower(strings.TrimPrefix(it.SpenderAddr, "0x")))
	if it.Kind == approvals.KindNFT {
		return setApprovalForAllSelector + spender + zeroWord
	}
	return approveSelector + spender + zeroWord
}

// BuildCalls maps approvals to EIP-5792 batch calls, preserving order.
// Each call targets the token contract with zero value.
func BuildCalls(items []approvals.Item) []chain.BatchCall {
	calls := make([]chain.BatchCall, len(items))
	for i, it := range items {
		calls[i] = chain.BatchCall{
			To:    it.TokenAddress,
			Data:  Calldata(it),
			Value: "0x0",
		}
	}
	return calls
}
