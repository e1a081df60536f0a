// Package stub provides an in-process wallet for development and tests.
package stub

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"codemarket/internal/domain"
	"codemarket/internal/wallet"

	"golang.org/x/crypto/sha3"
)

// DefaultAccount is used when no accounts are configured
const DefaultAccount = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

// Transfer is a payment accepted by the stub
type Transfer struct {
	From   string
	To     string
	Amount *big.Int
	Hash   string
}

// Wallet implements wallet.Collaborator without any network access.
// When Accounts is empty any requested address is accepted.
type Wallet struct {
	mu       sync.Mutex
	Accounts []string
	// FailWith, when set, makes every SendTransaction fail with this cause
	FailWith  error
	Transfers []Transfer
	nonce     uint64
}

// New creates a stub wallet managing accounts
func New(accounts ...string) *Wallet {
	return &Wallet{Accounts: accounts}
}

// ConnectWallet returns requested if it is managed, or the first account
func (w *Wallet) ConnectWallet(_ context.Context, requested string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.Accounts) == 0 {
		if requested == "" {
			return DefaultAccount, nil
		}
		return requested, nil
	}
	if requested == "" {
		return w.Accounts[0], nil
	}
	for _, a := range w.Accounts {
		if strings.EqualFold(a, requested) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %s", wallet.ErrUnknownAccount, requested)
}

// SendTransaction records the transfer and returns a deterministic hash
func (w *Wallet) SendTransaction(_ context.Context, from, to string, amountWei *big.Int) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if from == "" {
		return "", &wallet.TransactionError{From: from, To: to, Err: domain.ErrWalletDisconnected}
	}
	if w.FailWith != nil {
		return "", &wallet.TransactionError{From: from, To: to, Err: w.FailWith}
	}

	w.nonce++
	h := sha3.NewLegacyKeccak256()
	fmt.Fprintf(h, "%s|%s|%s|%d", strings.ToLower(from), strings.ToLower(to), amountWei.String(), w.nonce)
	hash := "0x" + hex.EncodeToString(h.Sum(nil))

	w.Transfers = append(w.Transfers, Transfer{
		From:   from,
		To:     to,
		Amount: new(big.Int).Set(amountWei),
		Hash:   hash,
	})
	return hash, nil
}

// Sent returns a copy of the accepted transfers
func (w *Wallet) Sent() []Transfer {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Transfer(nil), w.Transfers...)
}

// Fail makes subsequent transactions fail with err; nil restores success
func (w *Wallet) Fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.FailWith = err
}
