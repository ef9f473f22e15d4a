package events

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/noah-isme/ngepos/internal/obs"
)

// LogNotifier writes every event as a structured log line.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n LogNotifier) Notify(_ context.Context, event Event) error {
	n.Logger.Info().
		Str("topic", event.Topic).
		RawJSON("payload", event.Payload).
		Time("occurred_at", event.OccurredAt).
		Msg("domain_event")
	return nil
}

// MetricsNotifier feeds cart and sales counters from events.
type MetricsNotifier struct{}

func (MetricsNotifier) Notify(_ context.Context, event Event) error {
	switch event.Topic {
	case TopicCartUpdated:
		if obs.CartEventsTotal == nil {
			return nil
		}
		var change struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(event.Payload, &change); err != nil {
			return err
		}
		obs.CartEventsTotal.WithLabelValues(change.Kind).Inc()
	case TopicTransactionCompleted:
		if obs.SalesAmountTotal == nil {
			return nil
		}
		var tx struct {
			TotalAmount int64 `json:"totalAmount"`
		}
		if err := json.Unmarshal(event.Payload, &tx); err != nil {
			return err
		}
		obs.SalesAmountTotal.Add(float64(tx.TotalAmount))
	}
	return nil
}
