package chain

import "context"

// TransferReceipt identifies a transfer accepted by the token service.
type TransferReceipt struct {
	TxID string `json:"tx_id"`
}

// BalanceSource is the authoritative token service. QueryBalance is
// idempotent; Transfer is not guaranteed idempotent at the remote end, so
// every call carries a caller-supplied dedupe id and an indeterminate result
// is reported as Unknown rather than guessed at.
type BalanceSource interface {
	QueryBalance(ctx context.Context, account string) (int64, error)
	Transfer(ctx context.Context, destination string, amount int64, dedupeID string) (TransferReceipt, error)
	ApproveSpender(ctx context.Context, spender string, amount int64) (TransferReceipt, error)
}
