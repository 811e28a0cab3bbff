package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publimar/internal/core"
)

func inProcessOrder() core.Order {
	return core.Order{
		ID:          1,
		Number:      "PED-2026-00001",
		Client:      core.ClientSnapshot{ClientID: 7, Name: "Club Atlético Sur"},
		Subtotal:    dec("320"),
		TaxAmount:   dec("67.2"),
		Total:       dec("387.2"),
		Status:      core.OrderInProcess,
		DownPayment: dec("100"),
		Balance:     dec("287.2"),
	}
}

func TestOrder_CompleteAndCancelAreTerminal(t *testing.T) {
	now := time.Now()

	o := inProcessOrder()
	require.NoError(t, o.Complete(now))
	assert.Equal(t, core.OrderCompleted, o.Status)
	require.NotNil(t, o.DeliveredAt)

	assert.ErrorIs(t, o.Complete(now), core.ErrInvalidTransition)
	assert.ErrorIs(t, o.Cancel(), core.ErrInvalidTransition)

	o2 := inProcessOrder()
	require.NoError(t, o2.Cancel())
	assert.Equal(t, core.OrderCancelled, o2.Status)
	assert.Nil(t, o2.DeliveredAt)
	assert.ErrorIs(t, o2.Complete(now), core.ErrInvalidTransition)
	assert.ErrorIs(t, o2.Cancel(), core.ErrInvalidTransition)
}

func TestOrder_RecordPayment(t *testing.T) {
	now := time.Now()
	o := inProcessOrder()

	p, err := o.RecordPayment(dec("87.2"), core.PaymentCash, "", "", now)
	require.NoError(t, err)
	assertDecimal(t, "87.2", p.Amount)
	assertDecimal(t, "200", o.Balance)
	require.Len(t, o.Payments, 1)

	// Exact payoff drives the balance to zero.
	_, err = o.RecordPayment(dec("200"), core.PaymentMercadoPago, "", "", now)
	require.NoError(t, err)
	assertDecimal(t, "0", o.Balance)
	require.Len(t, o.Payments, 2)

	// Nothing left to pay.
	_, err = o.RecordPayment(dec("1"), core.PaymentCash, "", "", now)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestOrder_RecordPaymentValidation(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		amount  string
		method  core.PaymentMethod
		bank    string
		wantErr error
	}{
		{name: "zero amount", amount: "0", method: core.PaymentCash, wantErr: core.ErrInvalidAmount},
		{name: "negative amount", amount: "-5", method: core.PaymentCash, wantErr: core.ErrInvalidAmount},
		{name: "exceeds balance", amount: "250", method: core.PaymentCash, wantErr: core.ErrInvalidAmount},
		{name: "transfer without bank", amount: "50", method: core.PaymentTransfer, wantErr: core.ErrMissingBank},
		{name: "unknown method", amount: "50", method: "IOU", wantErr: core.ErrInvalidInput},
		{name: "transfer with bank", amount: "50", method: core.PaymentTransfer, bank: "Banco Nación"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := inProcessOrder()
			o.Balance = dec("200")

			before := len(o.Payments)
			_, err := o.RecordPayment(dec(tt.amount), tt.method, tt.bank, "", now)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Len(t, o.Payments, before, "failed payment must not touch the ledger")
				assertDecimal(t, "200", o.Balance, "failed payment must not touch the balance")
				return
			}
			require.NoError(t, err)
			assertDecimal(t, "150", o.Balance)
		})
	}
}

func TestOrder_PaymentIndependentOfStatus(t *testing.T) {
	now := time.Now()
	o := inProcessOrder()
	require.NoError(t, o.Complete(now))

	// Payments are not gated on status: the remaining balance of a delivered
	// order can still be collected.
	_, err := o.RecordPayment(dec("287.2"), core.PaymentDebitCard, "", "", now)
	require.NoError(t, err)
	assertDecimal(t, "0", o.Balance)
}

func TestNewOrderFromQuote(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	q := draftQuote()
	q.Recalculate()
	require.NoError(t, q.MarkSent(now))
	require.NoError(t, q.Confirm(now))

	delivery := now.AddDate(0, 0, 14)
	o, err := core.NewOrderFromQuote(q, dec("100"), delivery, now)
	require.NoError(t, err)

	assert.Equal(t, core.OrderInProcess, o.Status)
	assert.Equal(t, q.Client, o.Client)
	assert.Len(t, o.Items, len(q.Items))
	assertDecimal(t, "387.2", o.Total)
	assertDecimal(t, "287.2", o.Balance)
	require.NotNil(t, o.QuoteID)
	assert.Equal(t, q.ID, *o.QuoteID)
	assert.Equal(t, q.Number, o.QuoteNumber)
	require.NotNil(t, o.StartedAt)

	// The source quote keeps its status.
	assert.Equal(t, core.QuoteConfirmed, q.Status)
}

func TestNewOrderFromQuote_DownPaymentBounds(t *testing.T) {
	now := time.Now()
	q := draftQuote()
	q.Recalculate()

	_, err := core.NewOrderFromQuote(q, dec("-1"), time.Time{}, now)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = core.NewOrderFromQuote(q, dec("500"), time.Time{}, now)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	// Full down payment leaves a zero balance.
	o, err := core.NewOrderFromQuote(q, dec("387.2"), time.Time{}, now)
	require.NoError(t, err)
	assertDecimal(t, "0", o.Balance)
}
