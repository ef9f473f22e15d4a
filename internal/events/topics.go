package events

// Topics published by the POS session.
const (
	TopicCartUpdated          = "cart.updated"
	TopicTransactionCompleted = "transaction.completed"
	TopicLedgerCleared        = "ledger.cleared"
)

// DefaultTopics returns every topic the session emits.
func DefaultTopics() []string {
	return []string{
		TopicCartUpdated,
		TopicTransactionCompleted,
		TopicLedgerCleared,
	}
}
