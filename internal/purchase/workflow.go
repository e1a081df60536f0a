// Package purchase coordinates a single confirmed payment for a listing and
// records its receipt.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"codemarket/internal/domain"
	"codemarket/internal/wallet"

	"go.uber.org/zap"
)

// State is a purchase workflow state
type State int

const (
	StateIdle State = iota
	StateAwaitingConfirmation
	StateProcessing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateProcessing:
		return "processing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrNoSelection        = errors.New("no listing awaiting confirmation")
	ErrPurchaseInProgress = errors.New("purchase is being processed")
	ErrPurchasePending    = errors.New("another listing is awaiting confirmation")
)

// Recorder persists completed purchases
type Recorder interface {
	Append(ctx context.Context, purchase domain.Purchase) error
}

// Snapshot is a point-in-time view of a workflow
type Snapshot struct {
	State           State
	Listing         *domain.Listing
	LastTransaction string
	LastError       error
}

// Option configures a Workflow
type Option func(*Workflow)

// WithClock overrides the purchase timestamp source
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.now = now
	}
}

// WithTransitionHook registers fn to observe every state change
func WithTransitionHook(fn func(from, to State)) Option {
	return func(w *Workflow) {
		w.onTransition = fn
	}
}

// Workflow is the purchase state machine for one buyer:
// Idle -> AwaitingConfirmation -> Processing -> Completed|Failed -> Idle.
type Workflow struct {
	buyer        string
	wallet       wallet.Collaborator
	recorder     Recorder
	logger       *zap.Logger
	now          func() time.Time
	onTransition func(from, to State)

	mu       sync.Mutex
	state    State
	selected *domain.Listing
	lastHash string
	lastErr  error
}

// NewWorkflow creates an idle workflow paying from buyer
func NewWorkflow(buyer string, w wallet.Collaborator, recorder Recorder, logger *zap.Logger, opts ...Option) *Workflow {
	wf := &Workflow{
		buyer:    buyer,
		wallet:   w,
		recorder: recorder,
		logger:   logger.With(zap.String("buyer", buyer)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(wf)
	}
	return wf
}

// Begin holds listing for confirmation. Only one listing can be awaiting
// confirmation at a time; Close it first to pick another.
func (w *Workflow) Begin(listing domain.Listing) error {
	if w.buyer == "" {
		return domain.ErrWalletDisconnected
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateProcessing:
		return ErrPurchaseInProgress
	case StateAwaitingConfirmation:
		return ErrPurchasePending
	}

	selected := listing.Clone()
	w.selected = &selected
	w.transition(StateAwaitingConfirmation)
	return nil
}

// Close abandons the pending selection
func (w *Workflow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateProcessing:
		return ErrPurchaseInProgress
	case StateAwaitingConfirmation:
		w.selected = nil
		w.transition(StateIdle)
	}
	return nil
}

// Confirm pays for the selected listing and records the purchase. The lock is
// not held while the wallet works, so Snapshot keeps reporting Processing.
func (w *Workflow) Confirm(ctx context.Context) (*domain.Purchase, error) {
	w.mu.Lock()
	if w.state == StateProcessing {
		w.mu.Unlock()
		return nil, ErrPurchaseInProgress
	}
	if w.state != StateAwaitingConfirmation || w.selected == nil {
		w.mu.Unlock()
		return nil, ErrNoSelection
	}
	listing := w.selected.Clone()
	w.transition(StateProcessing)
	w.mu.Unlock()

	log := w.logger.With(zap.String("listing_id", listing.ID), zap.String("seller", listing.Author))
	log.Info("Submitting payment", zap.String("price", listing.Price.String()))

	hash, err := w.wallet.SendTransaction(ctx, w.buyer, listing.Author, wallet.EthToWei(listing.Price))
	if err != nil {
		var txErr *wallet.TransactionError
		if !errors.As(err, &txErr) {
			err = &wallet.TransactionError{From: w.buyer, To: listing.Author, Err: err}
		}
		log.Warn("Payment failed", zap.Error(err))
		w.finish(StateFailed, "", err)
		return nil, err
	}

	purchase := domain.Purchase{
		Listing:         listing,
		PurchaseDate:    w.now().UTC(),
		TransactionHash: hash,
		BuyerAddress:    w.buyer,
	}

	// The payment is already broadcast; record it even if the caller went away
	if err := w.recorder.Append(context.WithoutCancel(ctx), purchase); err != nil {
		log.Error("Payment sent but purchase not recorded",
			zap.String("tx_hash", hash),
			zap.Error(err),
		)
		err = fmt.Errorf("failed to record purchase %s: %w", hash, err)
		w.finish(StateFailed, hash, err)
		return nil, err
	}

	log.Info("Purchase completed", zap.String("tx_hash", hash))
	w.finish(StateCompleted, hash, nil)
	return &purchase, nil
}

// Snapshot returns the current state and selection
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{State: w.state, LastTransaction: w.lastHash, LastError: w.lastErr}
	if w.selected != nil {
		l := w.selected.Clone()
		s.Listing = &l
	}
	return s
}

// Buyer returns the paying address
func (w *Workflow) Buyer() string {
	return w.buyer
}

func (w *Workflow) finish(outcome State, hash string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastHash = hash
	w.lastErr = err
	w.selected = nil
	w.transition(outcome)
	w.transition(StateIdle)
}

// transition must be called with mu held
func (w *Workflow) transition(to State) {
	from := w.state
	w.state = to
	w.logger.Debug("Purchase workflow transition",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)
	if w.onTransition != nil {
		w.onTransition(from, to)
	}
}
