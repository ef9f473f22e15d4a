// Package ledger keeps the durable, newest-first history of completed sales.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/ngepos/internal/obs"
	"github.com/noah-isme/ngepos/internal/storage"
)

// DefaultKey is the storage key used by the mobile till, kept so existing
// history loads unchanged.
const DefaultKey = "@ngePOS_transaction_history"

// State is the ledger lifecycle position.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
	Mutating
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Mutating:
		return "mutating"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config wires a Ledger to its store.
type Config struct {
	Store  storage.KV
	Key    string
	Now    func() time.Time
	NewID  func() (string, error)
	Logger zerolog.Logger
}

// Ledger holds the transaction history in memory and writes it through to the
// store on every mutation. It has no internal lock: callers serialize access.
type Ledger struct {
	store  storage.KV
	key    string
	now    func() time.Time
	newID  func() (string, error)
	logger zerolog.Logger

	state   State
	txs     []Transaction
	readErr error
}

// New constructs an Uninitialized ledger.
func New(cfg Config) (*Ledger, error) {
	if cfg.Store == nil {
		return nil, errors.New("ledger: store is required")
	}
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		key = DefaultKey
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = NewTransactionID
	}
	return &Ledger{
		store:  cfg.Store,
		key:    key,
		now:    now,
		newID:  newID,
		logger: cfg.Logger.With().Str("component", "ledger").Logger(),
	}, nil
}

// State returns the lifecycle state.
func (l *Ledger) State() State { return l.state }

// Len returns the number of transactions held in memory.
func (l *Ledger) Len() int { return len(l.txs) }

// Transactions returns a copy of the history, newest first.
func (l *Ledger) Transactions() []Transaction { return cloneAll(l.txs) }

// Load reads the history from the store and returns it newest first. Missing
// or corrupt data yields an empty history and is logged, never returned. A
// failed read keeps whatever was already in memory and is remembered so the
// next Append reads again before writing. Load during a mutation
// returns the current history without touching the store.
func (l *Ledger) Load(ctx context.Context) []Transaction {
	if l.state == Loading || l.state == Mutating {
		return cloneAll(l.txs)
	}
	ctx, span := otel.Tracer("ledger.Ledger").Start(ctx, "Ledger.Load")
	l.state = Loading

	raw, ok, err := l.store.Get(ctx, l.key)
	l.readErr = err
	switch {
	case err != nil:
		l.logger.Error().Err(err).Str("key", l.key).Int("transactions", len(l.txs)).Msg("ledger read failed, keeping in-memory history")
	case !ok:
		l.txs = nil
	default:
		txs, decodeErr := decode(raw)
		if decodeErr != nil {
			l.logger.Warn().Err(decodeErr).Str("key", l.key).Int("bytes", len(raw)).Msg("ledger data corrupt, starting empty")
			l.txs = nil
			err = decodeErr
		} else {
			l.txs = txs
		}
	}
	l.state = Ready
	finish(span, "load", err)
	span.SetAttributes(attribute.Int("ledger.transactions", len(l.txs)))
	return cloneAll(l.txs)
}

// Append finalizes draft, prepends it and persists the full history. On a
// store failure it returns a *PersistenceError and the history is unchanged.
func (l *Ledger) Append(ctx context.Context, draft Draft) (tx Transaction, err error) {
	ctx, span := otel.Tracer("ledger.Ledger").Start(ctx, "Ledger.Append")
	defer func() { finish(span, "append", err) }()

	if err := l.begin(ctx, true); err != nil {
		return Transaction{}, err
	}
	defer func() { l.state = Ready }()

	id, err := l.newID()
	if err != nil {
		return Transaction{}, fmt.Errorf("ledger: generate id: %w", err)
	}
	tx = Transaction{
		ID:            id,
		Items:         slices.Clone(draft.Items),
		TotalAmount:   draft.TotalAmount,
		PaidAmount:    draft.PaidAmount,
		Change:        draft.Change,
		PaymentMethod: draft.PaymentMethod,
		CreatedAt:     l.now().UTC().Truncate(time.Millisecond),
	}
	next := make([]Transaction, 0, len(l.txs)+1)
	next = append(next, tx)
	next = append(next, l.txs...)

	blob, err := json.Marshal(next)
	if err != nil {
		return Transaction{}, &PersistenceError{Op: "encode", Err: err}
	}
	if err := l.store.Set(ctx, l.key, string(blob)); err != nil {
		return Transaction{}, &PersistenceError{Op: "append", Err: err}
	}
	l.txs = next
	span.SetAttributes(attribute.String("ledger.transaction_id", tx.ID))
	return tx.clone(), nil
}

// ClearAll deletes the stored history, then empties memory. On failure the
// in-memory history is left as it was.
func (l *Ledger) ClearAll(ctx context.Context) (err error) {
	ctx, span := otel.Tracer("ledger.Ledger").Start(ctx, "Ledger.ClearAll")
	defer func() { finish(span, "clear", err) }()

	if err := l.begin(ctx, false); err != nil {
		return err
	}
	defer func() { l.state = Ready }()

	if err := l.store.Delete(ctx, l.key); err != nil {
		return &PersistenceError{Op: "clear", Err: err}
	}
	l.txs = nil
	return nil
}

// begin moves the ledger to Mutating. The history is loaded first if it was
// never read. When needHistory is set and the last read failed, the read is
// retried and a still failing store aborts the mutation so the write cannot
// clobber history it never saw.
func (l *Ledger) begin(ctx context.Context, needHistory bool) error {
	switch l.state {
	case Loading, Mutating:
		return ErrBusy
	case Uninitialized:
		l.Load(ctx)
	default:
		if needHistory && l.readErr != nil {
			l.Load(ctx)
		}
	}
	if needHistory && l.readErr != nil {
		return &PersistenceError{Op: "load", Err: l.readErr}
	}
	l.state = Mutating
	return nil
}

func decode(raw string) ([]Transaction, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var txs []Transaction
	if err := json.Unmarshal([]byte(raw), &txs); err != nil {
		return nil, err
	}
	slices.SortStableFunc(txs, func(a, b Transaction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return txs, nil
}

func finish(span trace.Span, op string, err error) {
	obs.ObserveLedgerOp(op, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
