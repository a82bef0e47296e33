package entity

import (
	"github.com/najmulislamnajim/expire-product-api/internal/shared/apperr"
)

// Status is the canonical current state of an order header. The progress
// booleans and milestone dates on the header are historical breadcrumbs;
// last_status alone answers "where is this order in its lifecycle".
type Status string

const (
	StatusRequest             Status = "request"
	StatusRequestApproved     Status = "request_approved"
	StatusWithdrawalPending   Status = "withdrawal_pending"
	StatusWithdrawalApproval  Status = "withdrawal_approval"
	StatusWithdrawalApproved  Status = "withdrawal_approved"
	StatusReplacementApproval Status = "replacement_approval"
	StatusReplacementApproved Status = "replacement_approved"
	StatusDeliveryPending     Status = "delivery_pending"
	StatusDelivered           Status = "delivered"
)

// lifecycle is the canonical state order. Observed last_status sequences
// must be subsequences of it.
var lifecycle = []Status{
	StatusRequest,
	StatusRequestApproved,
	StatusWithdrawalPending,
	StatusWithdrawalApproval,
	StatusWithdrawalApproved,
	StatusReplacementApproval,
	StatusReplacementApproved,
	StatusDeliveryPending,
	StatusDelivered,
}

// Rank returns the position of s in the lifecycle, or -1 for an unknown
// status.
func (s Status) Rank() int {
	for i, st := range lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Status) Valid() bool {
	return s.Rank() >= 0
}

// Operation names a state-machine transition on an order header.
type Operation string

const (
	OpApproveRequest     Operation = "approve request"
	OpUpdateRequest      Operation = "update request"
	OpAssignWithdrawalDA Operation = "assign withdrawal da"
	OpSaveWithdrawal     Operation = "save withdrawal"
	OpConfirmWithdrawal  Operation = "confirm withdrawal"
	OpCreateReplacement  Operation = "create replacement"
	OpApproveReplacement Operation = "approve replacement"
	OpAssignDeliveryDA   Operation = "assign delivery da"
	OpConfirmDelivery    Operation = "confirm delivery"
)

type transition struct {
	from []Status
	to   Status
}

// transitions is the single source of truth for legal moves. Every
// operation may also fire from the state it produces: repeating an
// approval re-stamps its milestone date and is not an error. Firing
// from any other state is rejected, so no order ever skips a state or
// moves backward.
var transitions = map[Operation]transition{
	OpApproveRequest:     {from: []Status{StatusRequest, StatusRequestApproved}, to: StatusRequestApproved},
	OpUpdateRequest:      {from: []Status{StatusRequest}, to: StatusRequest},
	OpAssignWithdrawalDA: {from: []Status{StatusRequestApproved, StatusWithdrawalPending}, to: StatusWithdrawalPending},
	OpSaveWithdrawal:     {from: []Status{StatusWithdrawalPending, StatusWithdrawalApproval}, to: StatusWithdrawalApproval},
	OpConfirmWithdrawal:  {from: []Status{StatusWithdrawalApproval, StatusWithdrawalApproved}, to: StatusWithdrawalApproved},
	OpCreateReplacement:  {from: []Status{StatusWithdrawalApproved}, to: StatusReplacementApproval},
	OpApproveReplacement: {from: []Status{StatusReplacementApproval, StatusReplacementApproved}, to: StatusReplacementApproved},
	OpAssignDeliveryDA:   {from: []Status{StatusReplacementApproved, StatusDeliveryPending}, to: StatusDeliveryPending},
	OpConfirmDelivery:    {from: []Status{StatusDeliveryPending, StatusDelivered}, to: StatusDelivered},
}

// Transition resolves the target status for op fired from current, or a
// validation error when the move is illegal.
func Transition(op Operation, current Status) (Status, error) {
	tr, ok := transitions[op]
	if !ok {
		return "", apperr.Validationf("unknown operation %q", op)
	}
	for _, from := range tr.from {
		if from == current {
			return tr.to, nil
		}
	}
	return "", apperr.Validationf("cannot %s an order in status %q", op, current)
}

// InvoiceType classifies an order. Stored as the SAP short codes; the
// API accepts the long names.
type InvoiceType string

const (
	InvoiceTypeExpired InvoiceType = "EXP"
	InvoiceTypeGeneral InvoiceType = "GEN"
)

// ParseInvoiceType accepts both long names and stored codes.
func ParseInvoiceType(s string) (InvoiceType, error) {
	switch s {
	case "Expired", "EXP":
		return InvoiceTypeExpired, nil
	case "General", "GEN":
		return InvoiceTypeGeneral, nil
	default:
		return "", apperr.Validationf("invalid invoice type %q", s)
	}
}
