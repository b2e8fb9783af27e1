package movements

import "time"

// Settlement is the derived payment status of a movement. It is recomputed
// on every read and never stored; the workflow status is a separate field.
type Settlement string

const (
	SettlementSettled Settlement = "SETTLED"
	SettlementOverdue Settlement = "OVERDUE"
	SettlementPending Settlement = "PENDING"
)

// Classify derives the settlement status of a movement from its installment
// set and the reference date. First match wins: settled when nothing is
// left to pay, overdue when any unpaid installment is past due, pending
// otherwise.
func Classify(m Movement, installments []Installment, today time.Time) Settlement {
	pendingAmount := m.TotalAmount.Sub(PaidTotal(installments))

	hasUnpaid := false
	hasOverdue := false
	for _, ins := range installments {
		if ins.IsPaid() {
			continue
		}
		hasUnpaid = true
		if ins.DueDate.Before(today) {
			hasOverdue = true
		}
	}

	switch {
	case pendingAmount.Sign() <= 0 || !hasUnpaid:
		return SettlementSettled
	case hasOverdue:
		return SettlementOverdue
	default:
		return SettlementPending
	}
}
