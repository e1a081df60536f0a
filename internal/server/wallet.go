package server

import (
	"fmt"

	"codemarket/internal/config"
	"codemarket/internal/wallet"
	"codemarket/internal/wallet/stub"

	"go.uber.org/zap"
)

// NewWallet builds the wallet collaborator selected by cfg.Wallet.Backend
func NewWallet(cfg *config.Config, logger *zap.Logger) (wallet.Collaborator, error) {
	switch cfg.Wallet.Backend {
	case config.WalletBackendRPC:
		logger.Info("Using JSON-RPC wallet", zap.String("rpc_url", cfg.Wallet.RPCURL))
		return wallet.NewRPCClient(cfg.Wallet.RPCURL,
			wallet.WithTimeout(cfg.Wallet.Timeout),
			wallet.WithMaxRetries(cfg.Wallet.MaxRetries),
		), nil

	case config.WalletBackendStub, "":
		if !cfg.IsDevelopment() {
			logger.Warn("Stub wallet in use outside development; payments are not real")
		}
		logger.Info("Using stub wallet", zap.Strings("accounts", cfg.Wallet.StubAccounts))
		return stub.New(cfg.Wallet.StubAccounts...), nil

	default:
		return nil, fmt.Errorf("unknown wallet backend %q", cfg.Wallet.Backend)
	}
}
