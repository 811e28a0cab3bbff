package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus enumerates the quote state machine:
//
//	DRAFT → SENT → CONFIRMED | REJECTED
//	any   → DRAFT (manual reset, timestamps preserved)
type QuoteStatus string

const (
	QuoteDraft     QuoteStatus = "DRAFT"
	QuoteSent      QuoteStatus = "SENT"
	QuoteConfirmed QuoteStatus = "CONFIRMED"
	QuoteRejected  QuoteStatus = "REJECTED"
)

// QuoteComment is one entry in a quote's append-only comment thread.
// IsInternal marks operator notes the client never sees.
type QuoteComment struct {
	ID         int       `json:"id"`
	Author     string    `json:"author"`
	Text       string    `json:"text"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// Quote is a priced proposal sent to a client. Client and product data are
// snapshots, not live references. Subtotal, TaxAmount, and Total are derived;
// Recalculate keeps them consistent after any item or tax-rate change.
type Quote struct {
	ID             int             `json:"id"`
	Number         string          `json:"number"`
	Client         ClientSnapshot  `json:"client"`
	Items          []LineItem      `json:"items"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
	Status         QuoteStatus     `json:"status"`
	ValidUntil     time.Time       `json:"valid_until"`
	SentAt         *time.Time      `json:"sent_at,omitempty"`
	ConfirmedAt    *time.Time      `json:"confirmed_at,omitempty"`
	RejectedAt     *time.Time      `json:"rejected_at,omitempty"`
	Comments       []QuoteComment  `json:"comments,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Recalculate rederives Subtotal, TaxAmount, and Total from the current
// items and tax rate.
func (q *Quote) Recalculate() {
	q.Subtotal = DocumentSubtotal(q.Items)
	q.TaxAmount = TaxAmount(q.Subtotal, q.TaxRatePercent)
	q.Total = Total(q.Subtotal, q.TaxAmount)
}

// Expired reports whether the quote's validity window has passed. Expiry is
// advisory: it never blocks a transition.
func (q *Quote) Expired(now time.Time) bool {
	return !q.ValidUntil.IsZero() && now.After(q.ValidUntil)
}

// MarkSent transitions DRAFT → SENT and stamps SentAt.
func (q *Quote) MarkSent(now time.Time) error {
	if q.Status != QuoteDraft {
		return fmt.Errorf("%w: quote %s cannot be sent from %s", ErrInvalidTransition, q.Number, q.Status)
	}
	q.Status = QuoteSent
	q.SentAt = &now
	return nil
}

// Confirm is the operator-driven SENT → CONFIRMED transition.
func (q *Quote) Confirm(now time.Time) error {
	if q.Status != QuoteSent {
		return fmt.Errorf("%w: quote %s cannot be confirmed from %s", ErrInvalidTransition, q.Number, q.Status)
	}
	q.Status = QuoteConfirmed
	q.ConfirmedAt = &now
	return nil
}

// Reject is the operator-driven SENT → REJECTED transition.
func (q *Quote) Reject(now time.Time) error {
	if q.Status != QuoteSent {
		return fmt.Errorf("%w: quote %s cannot be rejected from %s", ErrInvalidTransition, q.Number, q.Status)
	}
	q.Status = QuoteRejected
	q.RejectedAt = &now
	return nil
}

// ResetToDraft returns the quote to DRAFT from any state so it can be edited
// again. Historical timestamps are a log of what happened, not current-state
// fields, so ConfirmedAt/RejectedAt/SentAt are left untouched.
func (q *Quote) ResetToDraft() {
	q.Status = QuoteDraft
}

// ClientConfirm is the client-facing confirmation reached through a shared
// link. It is deliberately more permissive than the operator path: a client
// may act on a quote still in DRAFT when they were sent a direct link.
func (q *Quote) ClientConfirm(now time.Time, comment string) error {
	if q.Status != QuoteDraft && q.Status != QuoteSent {
		return fmt.Errorf("%w: quote %s already finalized as %s", ErrInvalidTransition, q.Number, q.Status)
	}
	q.Status = QuoteConfirmed
	q.ConfirmedAt = &now
	if comment != "" {
		q.Comments = append(q.Comments, QuoteComment{
			Author:     q.Client.Name,
			Text:       comment,
			IsInternal: false,
			CreatedAt:  now,
		})
	}
	return nil
}

// ClientReject is the client-facing rejection, with the same permissive
// gating as ClientConfirm.
func (q *Quote) ClientReject(now time.Time, comment string) error {
	if q.Status != QuoteDraft && q.Status != QuoteSent {
		return fmt.Errorf("%w: quote %s already finalized as %s", ErrInvalidTransition, q.Number, q.Status)
	}
	q.Status = QuoteRejected
	q.RejectedAt = &now
	if comment != "" {
		q.Comments = append(q.Comments, QuoteComment{
			Author:     q.Client.Name,
			Text:       comment,
			IsInternal: false,
			CreatedAt:  now,
		})
	}
	return nil
}
