package entity

import (
	"testing"

	"github.com/najmulislamnajim/expire-product-api/internal/shared/apperr"
)

func TestTransitionHappyPath(t *testing.T) {
	steps := []struct {
		op   Operation
		from Status
		want Status
	}{
		{OpApproveRequest, StatusRequest, StatusRequestApproved},
		{OpAssignWithdrawalDA, StatusRequestApproved, StatusWithdrawalPending},
		{OpSaveWithdrawal, StatusWithdrawalPending, StatusWithdrawalApproval},
		{OpConfirmWithdrawal, StatusWithdrawalApproval, StatusWithdrawalApproved},
		{OpCreateReplacement, StatusWithdrawalApproved, StatusReplacementApproval},
		{OpApproveReplacement, StatusReplacementApproval, StatusReplacementApproved},
		{OpAssignDeliveryDA, StatusReplacementApproved, StatusDeliveryPending},
		{OpConfirmDelivery, StatusDeliveryPending, StatusDelivered},
	}
	for _, step := range steps {
		got, err := Transition(step.op, step.from)
		if err != nil {
			t.Fatalf("%s from %s: %v", step.op, step.from, err)
		}
		if got != step.want {
			t.Fatalf("%s from %s = %s, want %s", step.op, step.from, got, step.want)
		}
	}
}

// Repeating an operation in the state it produced is accepted; the
// caller re-stamps the milestone date.
func TestTransitionRepeatIsAccepted(t *testing.T) {
	got, err := Transition(OpApproveRequest, StatusRequestApproved)
	if err != nil {
		t.Fatalf("repeat approve: %v", err)
	}
	if got != StatusRequestApproved {
		t.Fatalf("repeat approve = %s", got)
	}
}

func TestTransitionRejectsSkips(t *testing.T) {
	cases := []struct {
		op   Operation
		from Status
	}{
		{OpConfirmDelivery, StatusRequest},
		{OpCreateReplacement, StatusRequest},
		{OpCreateReplacement, StatusReplacementApproval},
		{OpApproveRequest, StatusDelivered},
		{OpUpdateRequest, StatusRequestApproved},
		{OpSaveWithdrawal, StatusRequest},
	}
	for _, tc := range cases {
		if _, err := Transition(tc.op, tc.from); !apperr.IsValidation(err) {
			t.Fatalf("%s from %s: expected validation error, got %v", tc.op, tc.from, err)
		}
	}
}

// Any sequence of legal transitions yields statuses whose ranks never
// decrease, so the observed history is a subsequence of the lifecycle.
func TestTransitionNeverMovesBackward(t *testing.T) {
	for op, tr := range transitions {
		for _, from := range tr.from {
			if tr.to.Rank() < from.Rank() {
				t.Fatalf("%s moves backward: %s -> %s", op, from, tr.to)
			}
		}
	}
}

func TestParseInvoiceType(t *testing.T) {
	for input, want := range map[string]InvoiceType{
		"Expired": InvoiceTypeExpired,
		"EXP":     InvoiceTypeExpired,
		"General": InvoiceTypeGeneral,
		"GEN":     InvoiceTypeGeneral,
	} {
		got, err := ParseInvoiceType(input)
		if err != nil || got != want {
			t.Fatalf("ParseInvoiceType(%q) = %v, %v", input, got, err)
		}
	}
	if _, err := ParseInvoiceType("Damaged"); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}
}
