package zksigner

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"github.com/syncwave/zkwallet-go/pkg/types"
)

// One-byte codes identifying each kind inside its canonical encoding.
const (
	encWithdraw     byte = 0x03
	encTransfer     byte = 0x05
	encChangePubKey byte = 0x07
	encForcedExit   byte = 0x08
	encMintNFT      byte = 0x09
	encWithdrawNFT  byte = 0x0a
	encSwap         byte = 0x0b
	encOrder        byte = 0x6f
)

// writeBigUint appends value left-padded to size bytes. Values wider than
// size are truncated to their low bytes, which cannot happen for protocol
// amounts (bounded at 2^128).
func writeBigUint(buf *bytes.Buffer, value *big.Int, size int) {
	out := make([]byte, size)
	if value != nil {
		value.FillBytes(out)
	}
	buf.Write(out)
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	_ = binary.Write(buf, binary.BigEndian, v)
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	_ = binary.Write(buf, binary.BigEndian, v)
}

func writeTimeRange(buf *bytes.Buffer, tr types.TimeRange) {
	writeUint64(buf, tr.ValidFrom)
	writeUint64(buf, tr.ValidUntil)
}

// EncodeTransfer returns the canonical byte encoding of a Transfer.
func EncodeTransfer(tx *types.Transfer) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(encTransfer)
	writeUint32(buf, uint32(tx.AccountID))
	buf.Write(tx.From.Bytes())
	buf.Write(tx.To.Bytes())
	writeUint32(buf, uint32(tx.Token))
	writeBigUint(buf, tx.Amount, 16)
	writeBigUint(buf, tx.Fee, 16)
	writeUint32(buf, uint32(tx.Nonce))
	writeTimeRange(buf, tx.TimeRange)
	return buf.Bytes()
}

// EncodeWithdraw returns the canonical byte encoding of a Withdraw.
func EncodeWithdraw(tx *types.Withdraw) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(encWithdraw)
	writeUint32(buf, uint32(tx.AccountID))
	buf.Write(tx.From.Bytes())
	buf.Write(tx.To.Bytes())
	writeUint32(buf, uint32(tx.Token))
	writeBigUint(buf, tx.Amount, 16)
	writeBigUint(buf, tx.Fee, 16)
	writeUint32(buf, uint32(tx.Nonce))
	writeTimeRange(buf, tx.TimeRange)
	return buf.Bytes()
}

// EncodeForcedExit returns the canonical byte encoding of a ForcedExit.
func EncodeForcedExit(tx *types.ForcedExit) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(encForcedExit)
	writeUint32(buf, uint32(tx.InitiatorAccountID))
	buf.Write(tx.Target.Bytes())
	writeUint32(buf, uint32(tx.Token))
	writeBigUint(buf, tx.Fee, 16)
	writeUint32(buf, uint32(tx.Nonce))
	writeTimeRange(buf, tx.TimeRange)
	return buf.Bytes()
}

// EncodeChangePubKey returns the canonical byte encoding of a ChangePubKey.
// Authorization data is not part of the L2-signed payload.
func EncodeChangePubKey(tx *types.ChangePubKey) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(encChangePubKey)
	writeUint32(buf, uint32(tx.AccountID))
	buf.Write(tx.Account.Bytes())
	buf.Write(tx.NewPkHash[:])
	writeUint32(buf, uint32(tx.FeeToken))
	writeBigUint(buf, tx.Fee, 16)
	writeUint32(buf, uint32(tx.Nonce))
	writeTimeRange(buf, tx.TimeRange)
	return buf.Bytes()
}

// EncodeOrder returns the canonical byte encoding of a swap Order.
func EncodeOrder(order *types.Order) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(encOrder)
	writeUint32(buf, uint32(order.AccountID))
	buf.Write(order.Recipient.Bytes())
	writeUint32(buf, uint32(order.Nonce))
	writeUint32(buf, uint32(order.TokenSell))
	writeUint32(buf, uint32(order.TokenBuy))
	writeBigUint(buf, order.Ratio[0], 15)
	writeBigUint(buf, order.Ratio[1], 15)
	writeBigUint(buf, order.Amount, 16)
	writeTimeRange(buf, order.TimeRange)
	return buf.Bytes()
}

// EncodeSwap returns the canonical byte encoding of a Swap, covering both
// embedded orders.
func EncodeSwap(tx *types.Swap) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(encSwap)
	writeUint32(buf, uint32(tx.SubmitterID))
	buf.Write(tx.SubmitterAddress.Bytes())
	writeUint32(buf, uint32(tx.Nonce))
	for _, order := range tx.Orders {
		buf.Write(EncodeOrder(order))
	}
	for _, amount := range tx.Amounts {
		writeBigUint(buf, amount, 16)
	}
	writeUint32(buf, uint32(tx.FeeToken))
	writeBigUint(buf, tx.Fee, 16)
	return buf.Bytes()
}

// EncodeMintNFT returns the canonical byte encoding of a MintNFT.
func EncodeMintNFT(tx *types.MintNFT) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(encMintNFT)
	writeUint32(buf, uint32(tx.CreatorID))
	buf.Write(tx.CreatorAddress.Bytes())
	buf.Write(tx.ContentHash.Bytes())
	buf.Write(tx.Recipient.Bytes())
	writeUint32(buf, uint32(tx.FeeToken))
	writeBigUint(buf, tx.Fee, 16)
	writeUint32(buf, uint32(tx.Nonce))
	return buf.Bytes()
}

// EncodeWithdrawNFT returns the canonical byte encoding of a WithdrawNFT.
func EncodeWithdrawNFT(tx *types.WithdrawNFT) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(encWithdrawNFT)
	writeUint32(buf, uint32(tx.AccountID))
	buf.Write(tx.From.Bytes())
	buf.Write(tx.To.Bytes())
	writeUint32(buf, uint32(tx.Token))
	writeUint32(buf, uint32(tx.FeeToken))
	writeBigUint(buf, tx.Fee, 16)
	writeUint32(buf, uint32(tx.Nonce))
	writeTimeRange(buf, tx.TimeRange)
	return buf.Bytes()
}
