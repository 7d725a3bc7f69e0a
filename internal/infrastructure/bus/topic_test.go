package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicMapper_TopicFor(t *testing.T) {
	mapper := NewTopicMapper("ledger.events", []string{
		"JournalEntryPosted",
		"InvoiceReceived",
		"PaymentExecuted",
	})

	t.Run("known types map to kebab-case topics", func(t *testing.T) {
		assert.Equal(t, "ledger.events.journal-entry-posted", mapper.TopicFor("JournalEntryPosted"))
		assert.Equal(t, "ledger.events.invoice-received", mapper.TopicFor("InvoiceReceived"))
		assert.Equal(t, "ledger.events.payment-executed", mapper.TopicFor("PaymentExecuted"))
	})

	t.Run("unknown types land on the unrouted topic", func(t *testing.T) {
		assert.Equal(t, "ledger.events.unrouted", mapper.TopicFor("AccountRenamed"))
		assert.Equal(t, "ledger.events.unrouted", mapper.TopicFor(""))
	})
}

func TestTopicMapper_Topics(t *testing.T) {
	mapper := NewTopicMapper("ledger.events", []string{"JournalEntryPosted", "InvoiceIssued"})

	topics := mapper.Topics()
	assert.Len(t, topics, 3)
	assert.Contains(t, topics, "ledger.events.journal-entry-posted")
	assert.Contains(t, topics, "ledger.events.invoice-issued")
	assert.Contains(t, topics, "ledger.events.unrouted")
}

func TestKebabCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"JournalEntryPosted", "journal-entry-posted"},
		{"InvoiceReceived", "invoice-received"},
		{"Payment", "payment"},
		{"already-kebab", "already-kebab"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, kebabCase(tt.in))
	}
}
