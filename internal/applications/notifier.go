package applications

import (
	"context"

	"gorm.io/gorm"

	pkgerrors "github.com/gigboardhq/gigboard-backend/pkg/errors"
	"github.com/gigboardhq/gigboard-backend/pkg/outbox"
)

// Notifier receives the domain event describing a committed transition.
// Implementations must be safe to fail: the service logs and swallows any
// error so a broken notifier never changes an operation's outcome.
type Notifier interface {
	Notify(ctx context.Context, event outbox.DomainEvent) error
}

// OutboxNotifier queues the event in the transactional outbox, in a small
// transaction of its own since the business transaction has already
// committed by the time it runs.
type OutboxNotifier struct {
	txRunner TxRunner
	outbox   EventEmitter
}

// NewOutboxNotifier wires the default post-commit notifier.
func NewOutboxNotifier(txRunner TxRunner, emitter EventEmitter) (*OutboxNotifier, error) {
	if txRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outbox emitter is required")
	}
	return &OutboxNotifier{txRunner: txRunner, outbox: emitter}, nil
}

// Notify records the event for the outbox publisher to ship.
func (n *OutboxNotifier) Notify(ctx context.Context, event outbox.DomainEvent) error {
	return n.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return n.outbox.Emit(ctx, tx, event)
	})
}
