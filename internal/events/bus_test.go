package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ngepos/internal/events"
	"github.com/noah-isme/ngepos/internal/obs"
)

type captureNotifier struct {
	events []events.Event
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return c.err
}

func TestEmitDispatchesEvent(t *testing.T) {
	fixed := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	first := &captureNotifier{}
	second := &captureNotifier{}
	bus := events.Bus{Notifiers: []events.Notifier{first}, Now: func() time.Time { return fixed }}
	bus.Subscribe(second)

	event, err := bus.Emit(context.Background(), events.TopicCartUpdated, map[string]any{"kind": "added", "productId": 1})
	require.NoError(t, err)
	require.Equal(t, events.TopicCartUpdated, event.Topic)
	require.Equal(t, fixed, event.OccurredAt)
	require.JSONEq(t, `{"kind":"added","productId":1}`, string(event.Payload))
	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	require.Equal(t, event, second.events[0])
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	boom := errors.New("push failed")
	failing := &captureNotifier{err: boom}
	after := &captureNotifier{}
	bus := events.Bus{Notifiers: []events.Notifier{failing, nil, after}}

	_, err := bus.Emit(context.Background(), events.TopicLedgerCleared, nil)
	require.ErrorIs(t, err, boom)
	require.Len(t, after.events, 1)
	require.JSONEq(t, `{}`, string(after.events[0].Payload))
}

func TestEmitValidatesInput(t *testing.T) {
	bus := events.Bus{}
	_, err := bus.Emit(context.Background(), "  ", nil)
	require.Error(t, err)

	_, err = bus.Emit(context.Background(), events.TopicCartUpdated, json.RawMessage(`{bad`))
	require.Error(t, err)

	var nilBus *events.Bus
	_, err = nilBus.Emit(context.Background(), events.TopicCartUpdated, nil)
	require.NoError(t, err)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := events.LogNotifier{Logger: zerolog.New(&buf)}
	require.NoError(t, n.Notify(context.Background(), events.Event{
		Topic:   events.TopicTransactionCompleted,
		Payload: json.RawMessage(`{"id":"TRX-1"}`),
	}))
	require.Contains(t, buf.String(), `"topic":"transaction.completed"`)
	require.Contains(t, buf.String(), `"payload":{"id":"TRX-1"}`)
}

func TestMetricsNotifier(t *testing.T) {
	obs.MustRegisterDomainMetrics("ngepos", prometheus.NewRegistry())
	bus := events.Bus{Notifiers: []events.Notifier{events.MetricsNotifier{}}}
	ctx := context.Background()

	beforeAdded := testutil.ToFloat64(obs.CartEventsTotal.WithLabelValues("added"))
	beforeSales := testutil.ToFloat64(obs.SalesAmountTotal)

	_, err := bus.Emit(ctx, events.TopicCartUpdated, map[string]any{"kind": "added"})
	require.NoError(t, err)
	_, err = bus.Emit(ctx, events.TopicTransactionCompleted, map[string]any{"totalAmount": 50000})
	require.NoError(t, err)

	require.Equal(t, beforeAdded+1, testutil.ToFloat64(obs.CartEventsTotal.WithLabelValues("added")))
	require.Equal(t, beforeSales+50000, testutil.ToFloat64(obs.SalesAmountTotal))
}
