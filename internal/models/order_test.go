package models

import "testing"

func TestIsValidOrderStatusTransition(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusCreated, OrderStatusConfirmed, true},
		{OrderStatusCreated, OrderStatusCancelled, true},
		{OrderStatusCreated, OrderStatusCompleted, false},
		{OrderStatusConfirmed, OrderStatusInProgress, true},
		{OrderStatusConfirmed, OrderStatusCompleted, false},
		{OrderStatusInProgress, OrderStatusCompleted, true},
		{OrderStatusInProgress, OrderStatusConfirmed, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusCreated, false},
		{OrderStatusCompleted, OrderStatusCompleted, true},
	}

	for _, tc := range cases {
		if got := IsValidOrderStatusTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("transition %s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}
