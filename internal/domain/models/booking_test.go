package models

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		ok       bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
		{BookingStatusCancelled, BookingStatusPending, false},
		// same-state is an idempotent no-op
		{BookingStatusPending, BookingStatusPending, true},
		{BookingStatusConfirmed, BookingStatusConfirmed, true},
		{BookingStatusCancelled, BookingStatusCancelled, true},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.ok {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestServiceBasis(t *testing.T) {
	cases := []struct {
		name string
		svc  Service
		want AvailabilityBasis
	}{
		{"explicit wins over flags", Service{StoredBasis: BasisResource, RequiresStaff: true}, BasisResource},
		{"auto derives both", Service{StoredBasis: BasisAuto, RequiresStaff: true, RequiresResource: true}, BasisBoth},
		{"auto derives staff", Service{StoredBasis: BasisAuto, RequiresStaff: true}, BasisStaff},
		{"empty derives resource", Service{RequiresResource: true}, BasisResource},
		{"empty derives none", Service{}, BasisNone},
	}
	for _, c := range cases {
		if got := c.svc.Basis(); got != c.want {
			t.Errorf("%s: Basis() = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestServiceStepAndCapacityDefaults(t *testing.T) {
	svc := Service{DurationMinutes: 45}
	if svc.StepMinutes() != 45 {
		t.Fatalf("StepMinutes default = %d, want duration 45", svc.StepMinutes())
	}
	svc.SlotIntervalMinutes = 15
	if svc.StepMinutes() != 15 {
		t.Fatalf("StepMinutes = %d, want 15", svc.StepMinutes())
	}
	if svc.Capacity() != 1 {
		t.Fatalf("Capacity default = %d, want 1", svc.Capacity())
	}
}
