package orchestrators

import (
	"context"
	"fmt"
	"testing"

	"communityhub/internal/adapters/storage"
	"communityhub/internal/domain/fault"
	"communityhub/internal/domain/identity"
	"communityhub/internal/domain/slot"
)

var (
	alice = identity.Volunteer{ID: 1, Address: "a@example.com", Name: "Alice"}
	bob   = identity.Volunteer{ID: 2, Address: "b@example.com", Name: "Bob"}
)

func toggle(t *testing.T, store *mockSlotStore, caller identity.Identity, key string) (ToggleBookingResult, error) {
	t.Helper()
	return ExecuteToggleBooking(context.Background(), ToggleBookingInput{Slot: key, Caller: caller},
		ToggleBookingDeps{Slots: store})
}

// TestExecuteToggleBooking_Sequence walks the documented scenario: A books, B is refused,
// A releases, B books.
func TestExecuteToggleBooking_Sequence(t *testing.T) {
	store := newMockSlotStore("Mon-9am-12pm")

	res, err := toggle(t, store, alice, "Mon-9am-12pm")
	if err != nil || res.Action != slot.ActionBooked || res.BookedBy != alice.Address {
		t.Fatalf("A book: %+v, %v", res, err)
	}

	_, err = toggle(t, store, bob, "Mon-9am-12pm")
	fe, ok := fault.As(err)
	if !ok || fe.Kind != fault.KindConflict || fe.Message != "slot already booked by another user" {
		t.Fatalf("B book: expected conflict, got %v", err)
	}
	if store.slots["Mon-9am-12pm"].BookedBy != alice.Address {
		t.Fatal("slot must still belong to A")
	}

	res, err = toggle(t, store, alice, "Mon-9am-12pm")
	if err != nil || res.Action != slot.ActionReleased || res.BookedBy != "" {
		t.Fatalf("A release: %+v, %v", res, err)
	}

	res, err = toggle(t, store, bob, "Mon-9am-12pm")
	if err != nil || res.Action != slot.ActionBooked || store.slots["Mon-9am-12pm"].BookedBy != bob.Address {
		t.Fatalf("B book after release: %+v, %v", res, err)
	}
}

func TestExecuteToggleBooking_UnknownKeyCreated(t *testing.T) {
	store := newMockSlotStore()
	res, err := toggle(t, store, alice, "Sat-4pm-6pm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Action != slot.ActionBooked {
		t.Errorf("expected booked, got %s", res.Action)
	}
	if got := store.slots["Sat-4pm-6pm"].BookedBy; got != alice.Address {
		t.Errorf("BookedBy = %q", got)
	}
}

// TestExecuteToggleBooking_FirstTouchRace simulates the concurrent insert losing on the
// unique constraint.
func TestExecuteToggleBooking_FirstTouchRace(t *testing.T) {
	store := newMockSlotStore()
	store.createErr = fmt.Errorf("create slot: %w", storage.ErrDuplicate)
	_, err := toggle(t, store, bob, "Sun-1pm-3pm")
	if !fault.Is(err, fault.KindConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

// TestExecuteToggleBooking_ConcurrentToggle has A book the slot after B has read it as free.
func TestExecuteToggleBooking_ConcurrentToggle(t *testing.T) {
	store := newMockSlotStore("Mon-9am-12pm")
	store.afterGet = func(m *mockSlotStore) {
		m.slots["Mon-9am-12pm"] = slot.Slot{Key: "Mon-9am-12pm", BookedBy: alice.Address}
	}

	_, err := toggle(t, store, bob, "Mon-9am-12pm")
	fe, ok := fault.As(err)
	if !ok || fe.Kind != fault.KindConflict || fe.Message != MsgSlotChanged {
		t.Fatalf("expected conflict, got %v", err)
	}
	if got := store.slots["Mon-9am-12pm"].BookedBy; got != alice.Address {
		t.Errorf("BookedBy = %q, want A's booking kept", got)
	}
}

func TestExecuteToggleBooking_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input ToggleBookingInput
		kind  fault.Kind
	}{
		{"empty slot", ToggleBookingInput{Slot: "", Caller: alice}, fault.KindValidation},
		{"blank slot", ToggleBookingInput{Slot: "   ", Caller: alice}, fault.KindValidation},
		{"other email", ToggleBookingInput{Slot: "Mon-9am-12pm", Email: "b@example.com", Caller: alice}, fault.KindAuthz},
		{"no caller", ToggleBookingInput{Slot: "Mon-9am-12pm"}, fault.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockSlotStore("Mon-9am-12pm")
			_, err := ExecuteToggleBooking(context.Background(), tt.input, ToggleBookingDeps{Slots: store})
			if err == nil || fault.KindOf(err) != tt.kind {
				t.Errorf("expected %s, got %v", tt.kind, err)
			}
			if store.slots["Mon-9am-12pm"].BookedBy != "" {
				t.Error("slot must stay free")
			}
		})
	}
}

func TestExecuteToggleBooking_OwnEmailAccepted(t *testing.T) {
	store := newMockSlotStore("Tue-1pm-3pm")
	_, err := ExecuteToggleBooking(context.Background(), ToggleBookingInput{
		Slot: "Tue-1pm-3pm", Email: "A@Example.com", Name: "Alice", Caller: alice,
	}, ToggleBookingDeps{Slots: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExecuteResetBookings(t *testing.T) {
	store := newMockSlotStore("Mon-9am-12pm", "Mon-1pm-3pm", "Mon-4pm-6pm")
	toggle(t, store, alice, "Mon-9am-12pm")
	toggle(t, store, bob, "Mon-4pm-6pm")

	n, err := ExecuteResetBookings(context.Background(), ResetBookingsDeps{Slots: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("cleared = %d, want 2", n)
	}
	for k, s := range store.slots {
		if s.BookedBy != "" {
			t.Errorf("%s still booked by %s", k, s.BookedBy)
		}
	}

	n, err = ExecuteResetBookings(context.Background(), ResetBookingsDeps{Slots: store})
	if err != nil || n != 0 {
		t.Errorf("second reset = %d, %v; want 0, nil", n, err)
	}
}
