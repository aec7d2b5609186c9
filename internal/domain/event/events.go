// Package event defines the domain events the lifecycle emits and the
// dispatcher port the notification fan-out implements. The core never knows
// which channels (email, SMS, push) exist behind the dispatcher.
package event

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Name string

const (
	AgreementCreated Name = "agreement.created"
	Claimed          Name = "agreement.claimed"
	Accepted         Name = "agreement.accepted"
	Rejected         Name = "agreement.rejected"
	Withdrawn        Name = "agreement.withdrawn"
	Funded           Name = "agreement.funded"
	PaymentRecorded  Name = "agreement.payment_recorded"
	PaymentConfirmed Name = "agreement.payment_confirmed"
	Completed        Name = "agreement.completed"
	Overdue          Name = "agreement.overdue"
)

type Event struct {
	Name        Name             `json:"name"`
	AgreementID string           `json:"agreement_id"`
	ActorID     string           `json:"actor_id,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

// Dispatcher fans an event out to whatever notification channels exist.
// Delivery failures are the dispatcher's problem; the lifecycle never blocks
// a state transition on notification success.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event)
}

func New(name Name, agreementID, actorID string, now time.Time) Event {
	return Event{Name: name, AgreementID: agreementID, ActorID: actorID, OccurredAt: now}
}

func NewWithAmount(name Name, agreementID, actorID string, amount decimal.Decimal, now time.Time) Event {
	ev := New(name, agreementID, actorID, now)
	ev.Amount = &amount
	return ev
}
