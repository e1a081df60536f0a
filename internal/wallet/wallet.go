// Package wallet is the boundary to the external wallet that connects
// addresses and signs/broadcasts payments. Nothing here builds or signs
// transactions itself.
package wallet

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/sha3"
)

// WeiDecimals is the number of decimal places between ether and wei
const WeiDecimals = 18

var (
	ErrNoAccounts     = errors.New("wallet exposes no accounts")
	ErrUnknownAccount = errors.New("account not managed by wallet")
	ErrRejected       = errors.New("transaction rejected by signer")
	ErrInvalidAddress = errors.New("invalid address")
)

// Collaborator is the external wallet
type Collaborator interface {
	// ConnectWallet returns the address to act as. An empty requested address
	// selects the wallet's default account.
	ConnectWallet(ctx context.Context, requested string) (string, error)
	// SendTransaction pays amountWei from one address to another and returns
	// the transaction hash. Failures are *TransactionError.
	SendTransaction(ctx context.Context, from, to string, amountWei *big.Int) (string, error)
}

// TransactionError reports a failed signing or broadcast
type TransactionError struct {
	From string
	To   string
	Err  error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction from %s to %s failed: %v", e.From, e.To, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// EthToWei converts an ether amount to wei, truncating below one wei
func EthToWei(amount decimal.Decimal) *big.Int {
	return amount.Shift(WeiDecimals).BigInt()
}

// WeiToEth converts a wei amount to ether
func WeiToEth(amount *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(amount, -WeiDecimals)
}

// FormatAddress shortens an address for display, e.g. 0xA0A5...646D
func FormatAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// IsHexAddress reports whether s is a 0x-prefixed 20-byte hex string
func IsHexAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(strings.ToLower(s), "0x") {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}

// ChecksumAddress returns the EIP-55 mixed-case form of address
func ChecksumAddress(address string) (string, error) {
	if !IsHexAddress(address) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	lower := strings.ToLower(address[2:])
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := hex.EncodeToString(h.Sum(nil))

	out := []byte(lower)
	for i, c := range out {
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			out[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(out), nil
}
