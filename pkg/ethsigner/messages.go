package ethsigner

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/syncwave/zkwallet-go/pkg/types"
)

// Message-part builders render the exact human-readable lines that appear in
// Ethereum authorization messages. The network reconstructs the same text
// from the transaction payload when verifying, so formatting is load-bearing:
// token symbols (not ids), formatted amounts (not minor units), and zero
// amounts/fees rendered as absent lines rather than "0". Callers pass
// amount/fee as already-formatted strings, empty when the value is zero.

// appendFeeLine attaches the fee line to a message part, separating with a
// newline only when the part is non-empty.
func appendFeeLine(part, stringFee, symbol string) string {
	if stringFee == "" {
		return part
	}
	if part != "" {
		part += "\n"
	}
	return part + fmt.Sprintf("Fee: %s %s", stringFee, symbol)
}

// TransferMessagePart renders the Transfer authorization lines.
func TransferMessagePart(to common.Address, stringAmount, stringFee, symbol string) string {
	var part string
	if stringAmount != "" {
		part = fmt.Sprintf("Transfer %s %s to: %s", stringAmount, symbol, strings.ToLower(to.Hex()))
	}
	return appendFeeLine(part, stringFee, symbol)
}

// WithdrawMessagePart renders the Withdraw authorization lines.
func WithdrawMessagePart(to common.Address, stringAmount, stringFee, symbol string) string {
	var part string
	if stringAmount != "" {
		part = fmt.Sprintf("Withdraw %s %s to: %s", stringAmount, symbol, strings.ToLower(to.Hex()))
	}
	return appendFeeLine(part, stringFee, symbol)
}

// ForcedExitMessagePart renders the ForcedExit authorization lines.
func ForcedExitMessagePart(target common.Address, stringFee, symbol string) string {
	part := fmt.Sprintf("ForcedExit %s to: %s", symbol, strings.ToLower(target.Hex()))
	return appendFeeLine(part, stringFee, symbol)
}

// MintNFTMessagePart renders the MintNFT authorization lines.
func MintNFTMessagePart(contentHash common.Hash, recipient common.Address, stringFee, symbol string) string {
	part := fmt.Sprintf("MintNFT %s for: %s", contentHash.Hex(), strings.ToLower(recipient.Hex()))
	return appendFeeLine(part, stringFee, symbol)
}

// WithdrawNFTMessagePart renders the WithdrawNFT authorization lines.
func WithdrawNFTMessagePart(token types.TokenID, to common.Address, stringFee, symbol string) string {
	part := fmt.Sprintf("WithdrawNFT %d to: %s", token, strings.ToLower(to.Hex()))
	return appendFeeLine(part, stringFee, symbol)
}

// SwapMessagePart renders the Swap authorization lines. Only the fee is
// disclosed; the traded amounts are covered by the embedded order
// signatures.
func SwapMessagePart(stringFee, symbol string) string {
	if stringFee == "" {
		return ""
	}
	return fmt.Sprintf("Swap fee: %s %s", stringFee, symbol)
}

// ChangePubKeyMessagePart renders the ChangePubKey authorization lines used
// inside batches.
func ChangePubKeyMessagePart(newPkHash types.PubKeyHash, stringFee, symbol string) string {
	part := fmt.Sprintf("Set signing key: %s", newPkHash.HexString())
	return appendFeeLine(part, stringFee, symbol)
}

// OrderMessage renders the full authorization message for one swap order.
// Zero-amount orders read as limit orders.
func OrderMessage(order *types.Order, stringAmount, sellSymbol, buySymbol string) string {
	var header string
	if stringAmount == "" {
		header = fmt.Sprintf("Limit order for %s -> %s", sellSymbol, buySymbol)
	} else {
		header = fmt.Sprintf("Order for %s %s -> %s", stringAmount, sellSymbol, buySymbol)
	}
	return strings.Join([]string{
		header,
		fmt.Sprintf("Ratio: %s:%s", order.Ratio[0].String(), order.Ratio[1].String()),
		fmt.Sprintf("Address: %s", strings.ToLower(order.Recipient.Hex())),
		fmt.Sprintf("Nonce: %d", order.Nonce),
	}, "\n")
}

// TxMessage assembles the full single-transaction authorization message.
func TxMessage(part string, nonce types.Nonce) string {
	if part == "" {
		return fmt.Sprintf("Nonce: %d", nonce)
	}
	return fmt.Sprintf("%s\nNonce: %d", part, nonce)
}

// BatchMessage assembles the aggregate batch authorization message: the
// non-empty message parts of every member, newline-joined, followed by the
// starting nonce of the batch. Empty parts are dropped entirely, never left
// as blank lines.
func BatchMessage(parts []string, batchNonce types.Nonce) string {
	kept := make([]string, 0, len(parts)+1)
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	kept = append(kept, fmt.Sprintf("Nonce: %d", batchNonce))
	return strings.Join(kept, "\n")
}

// ChangePubKeyAuthPayload builds the canonical byte payload signed for ECDSA
// ChangePubKey authorization: newPkHash ++ nonce ++ accountId ++ batchHash.
func ChangePubKeyAuthPayload(newPkHash types.PubKeyHash, nonce types.Nonce, accountID types.AccountID, batchHash common.Hash) []byte {
	buf := new(bytes.Buffer)
	buf.Write(newPkHash[:])
	_ = binary.Write(buf, binary.BigEndian, uint32(nonce))
	_ = binary.Write(buf, binary.BigEndian, uint32(accountID))
	buf.Write(batchHash.Bytes())
	return buf.Bytes()
}

// ChangePubKeyLegacyMessage builds the legacy-format key-registration
// message. It omits the batch hash and is signed at the transaction level.
func ChangePubKeyLegacyMessage(newPkHash types.PubKeyHash, nonce types.Nonce, accountID types.AccountID) string {
	return strings.Join([]string{
		"Register zkSync pubkey:",
		"",
		newPkHash.HexString(),
		fmt.Sprintf("nonce: 0x%08x", uint32(nonce)),
		fmt.Sprintf("account id: 0x%08x", uint32(accountID)),
		"",
		"Only sign this message for a trusted client!",
	}, "\n")
}
