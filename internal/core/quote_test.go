package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publimar/internal/core"
)

func draftQuote() core.Quote {
	return core.Quote{
		ID:     1,
		Number: "PRE-2026-00001",
		Client: core.ClientSnapshot{ClientID: 7, Name: "Club Atlético Sur"},
		Items: []core.LineItem{
			{ID: "a", Quantity: 3, UnitPrice: dec("100"), DiscountPercent: dec("10"), Subtotal: dec("270")},
			{ID: "b", Quantity: 1, UnitPrice: dec("50"), Subtotal: dec("50")},
		},
		TaxRatePercent: dec("21"),
		Status:         core.QuoteDraft,
	}
}

func TestQuote_Recalculate(t *testing.T) {
	q := draftQuote()
	q.Recalculate()

	assertDecimal(t, "320", q.Subtotal)
	assertDecimal(t, "67.2", q.TaxAmount)
	assertDecimal(t, "387.2", q.Total)
}

func TestQuote_OperatorLifecycle(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	q := draftQuote()

	// DRAFT → SENT → CONFIRMED
	require.NoError(t, q.MarkSent(now))
	assert.Equal(t, core.QuoteSent, q.Status)
	require.NotNil(t, q.SentAt)

	require.NoError(t, q.Confirm(now.Add(time.Hour)))
	assert.Equal(t, core.QuoteConfirmed, q.Status)
	require.NotNil(t, q.ConfirmedAt)
	assert.Nil(t, q.RejectedAt)

	// Reject after confirmation is not allowed.
	err := q.Reject(now.Add(2 * time.Hour))
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
}

func TestQuote_ConfirmRequiresSent(t *testing.T) {
	now := time.Now()

	q := draftQuote()
	assert.ErrorIs(t, q.Confirm(now), core.ErrInvalidTransition)
	assert.ErrorIs(t, q.Reject(now), core.ErrInvalidTransition)

	require.NoError(t, q.MarkSent(now))
	assert.ErrorIs(t, q.MarkSent(now), core.ErrInvalidTransition, "SENT cannot be re-sent")
	require.NoError(t, q.Reject(now))
	require.NotNil(t, q.RejectedAt)
}

func TestQuote_ResetToDraftKeepsTimestamps(t *testing.T) {
	now := time.Now()
	q := draftQuote()
	require.NoError(t, q.MarkSent(now))
	require.NoError(t, q.Confirm(now))

	confirmedAt := q.ConfirmedAt
	q.ResetToDraft()

	assert.Equal(t, core.QuoteDraft, q.Status)
	assert.Equal(t, confirmedAt, q.ConfirmedAt, "history is a log, reset must not erase it")
	assert.NotNil(t, q.SentAt)

	// A reset quote can travel the machine again.
	require.NoError(t, q.MarkSent(now))
}

func TestQuote_ClientFacingIsPermissive(t *testing.T) {
	now := time.Now()

	// The client link works from DRAFT, unlike the operator path.
	q := draftQuote()
	require.NoError(t, q.ClientConfirm(now, "dale, avancen"))
	assert.Equal(t, core.QuoteConfirmed, q.Status)
	require.Len(t, q.Comments, 1)
	assert.Equal(t, "Club Atlético Sur", q.Comments[0].Author)
	assert.False(t, q.Comments[0].IsInternal)

	// But not once finalized.
	assert.ErrorIs(t, q.ClientReject(now, ""), core.ErrInvalidTransition)

	// Rejection without a comment appends nothing.
	q2 := draftQuote()
	require.NoError(t, q2.MarkSent(now))
	require.NoError(t, q2.ClientReject(now, ""))
	assert.Equal(t, core.QuoteRejected, q2.Status)
	assert.Empty(t, q2.Comments)
}

func TestQuote_Expired(t *testing.T) {
	q := draftQuote()
	assert.False(t, q.Expired(time.Now()), "no validity window set")

	q.ValidUntil = time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.False(t, q.Expired(time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)))
	assert.True(t, q.Expired(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))

	// Expiry is advisory: transitions still work.
	require.NoError(t, q.MarkSent(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)))
}
