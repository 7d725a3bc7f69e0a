package ledger

import (
	"encoding/json"
	"testing"

	"github.com/airp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadRegistry_Decode(t *testing.T) {
	registry := DefaultPayloadRegistry()

	t.Run("decodes a journal entry", func(t *testing.T) {
		data, err := json.Marshal(&JournalEntryPayload{
			EntryNumber: "JE-1",
			PostingDate: "2025-03-15",
			Currency:    "AED",
			Lines: []JournalEntryLine{
				{LineNumber: 1, AccountCode: "5100", DebitAmount: dec("100")},
				{LineNumber: 2, AccountCode: "2100", CreditAmount: dec("100")},
			},
		})
		require.NoError(t, err)

		payload, err := registry.Decode(EventTypeJournalEntryPosted, data)
		require.NoError(t, err)
		entry, ok := payload.(*JournalEntryPayload)
		require.True(t, ok)
		assert.Equal(t, "JE-1", entry.EntryNumber)
		assert.Len(t, entry.Lines, 2)
	})

	t.Run("unknown event type", func(t *testing.T) {
		_, err := registry.Decode("AccountRenamed", []byte(`{}`))
		assert.ErrorIs(t, err, shared.ErrUnknownEventType)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := registry.Decode(EventTypeJournalEntryPosted, []byte(`{"lines": "not-an-array"`))
		assert.ErrorIs(t, err, shared.ErrPayloadMalformed)
	})

	t.Run("well-formed json failing validation", func(t *testing.T) {
		_, err := registry.Decode(EventTypeJournalEntryPosted, []byte(`{"lines": []}`))
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "EMPTY_ENTRY", ve.Code)
	})
}

func TestPayloadRegistry_Known(t *testing.T) {
	registry := DefaultPayloadRegistry()
	assert.True(t, registry.Known(EventTypeJournalEntryPosted))
	assert.True(t, registry.Known(EventTypeInvoiceReceived))
	assert.True(t, registry.Known(EventTypeInvoiceIssued))
	assert.True(t, registry.Known(EventTypePaymentExecuted))
	assert.False(t, registry.Known("AccountRenamed"))
}

func TestPayloadRegistry_DecodeJournalEntry(t *testing.T) {
	registry := DefaultPayloadRegistry()

	data, err := json.Marshal(&InvoiceReceivedPayload{
		InvoiceID:   uuid.New(),
		VendorID:    uuid.New(),
		GrossAmount: dec("100"),
		DueDate:     "2025-04-30",
	})
	require.NoError(t, err)

	// decoding invoice json through the journal-entry schema fails validation
	_, err = registry.DecodeJournalEntry(data)
	assert.Error(t, err)
}
