package domain

import "testing"

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from RequestStatus
		to   RequestStatus
		ok   bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusOpen, StatusResolved, true},
		{StatusOpen, StatusCancelled, true},
		{StatusInProgress, StatusResolved, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusOpen, false},
		{StatusResolved, StatusOpen, false},
		{StatusResolved, StatusInProgress, false},
		{StatusResolved, StatusCancelled, false},
		{StatusCancelled, StatusOpen, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Fatalf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}
