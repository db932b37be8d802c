package orchestrators

import (
	"context"
	"testing"
	"time"

	"communityhub/internal/domain/fault"
	"communityhub/internal/domain/identity"
)

var eventAdmin = identity.Admin{Address: "admin@communityhub.com"}

func eventInput() EventInput {
	return EventInput{
		ID:          "beach-cleanup",
		Title:       "Beach Cleanup",
		Description: "Bring **gloves**.",
		Date:        "2026-04-11",
		Location:    "Muriwai",
		Poster:      "data:image/png;base64,iVBORw0KGgo=",
		Caller:      eventAdmin,
	}
}

func TestExecuteCreateEvent(t *testing.T) {
	store := newMockEventStore()
	e, err := ExecuteCreateEvent(context.Background(), eventInput(), EventDeps{Events: store, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.Published {
		t.Error("published should default to true")
	}
	if e.CreatedBy != "admin@communityhub.com" || e.ModifiedBy != "admin@communityhub.com" {
		t.Errorf("CreatedBy/ModifiedBy = %s/%s", e.CreatedBy, e.ModifiedBy)
	}
	if !e.Date.Equal(time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v", e.Date)
	}
	if _, ok := store.events["beach-cleanup"]; !ok {
		t.Error("expected event to be persisted")
	}

	if _, err := ExecuteCreateEvent(context.Background(), eventInput(), EventDeps{Events: store, Now: fixedNow}); !fault.Is(err, fault.KindConflict) {
		t.Errorf("duplicate id: expected conflict, got %v", err)
	}
}

func TestExecuteCreateEvent_GeneratedIDAndDraft(t *testing.T) {
	store := newMockEventStore()
	in := eventInput()
	in.ID = ""
	draft := false
	in.Published = &draft

	e, err := ExecuteCreateEvent(context.Background(), in, EventDeps{Events: store, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID != "event_1772625600000" {
		t.Errorf("ID = %s, want event_1772625600000", e.ID)
	}
	if e.Published {
		t.Error("expected a draft")
	}
}

func TestExecuteCreateEvent_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EventInput)
		field  string
	}{
		{"bad id", func(in *EventInput) { in.ID = "Beach Cleanup!" }, "id"},
		{"missing title", func(in *EventInput) { in.Title = "" }, "title"},
		{"blank title", func(in *EventInput) { in.Title = "   " }, "title"},
		{"missing description", func(in *EventInput) { in.Description = "" }, "description"},
		{"bad date", func(in *EventInput) { in.Date = "11/04/2026" }, "date"},
		{"missing location", func(in *EventInput) { in.Location = "" }, "location"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockEventStore()
			in := eventInput()
			tt.mutate(&in)
			_, err := ExecuteCreateEvent(context.Background(), in, EventDeps{Events: store, Now: fixedNow})
			fe, ok := fault.As(err)
			if !ok || fe.Kind != fault.KindValidation {
				t.Fatalf("expected validation fault, got %v", err)
			}
			if !hasField(fe, tt.field) {
				t.Errorf("expected field %q in %+v", tt.field, fe.Fields)
			}
		})
	}
}

// TestExecuteCreateEvent_PosterNotInspected stores any poster payload verbatim.
func TestExecuteCreateEvent_PosterNotInspected(t *testing.T) {
	store := newMockEventStore()
	in := eventInput()
	in.Poster = "not a data url at all"
	e, err := ExecuteCreateEvent(context.Background(), in, EventDeps{Events: store, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Poster != "not a data url at all" {
		t.Errorf("Poster = %q", e.Poster)
	}
}

func TestExecuteUpdateEvent(t *testing.T) {
	store := newMockEventStore()
	created, err := ExecuteCreateEvent(context.Background(), eventInput(), EventDeps{Events: store, Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}

	later := fixedTime.Add(time.Hour)
	editor := identity.Admin{Address: "editor@communityhub.com"}
	in := eventInput()
	in.ID = "ignored-body-id"
	in.Title = "Beach Cleanup (moved)"
	in.Poster = ""
	in.Caller = editor
	draft := false
	in.Published = &draft

	e, err := ExecuteUpdateEvent(context.Background(), "beach-cleanup", in, EventDeps{Events: store, Now: func() time.Time { return later }})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID != "beach-cleanup" || e.Title != "Beach Cleanup (moved)" {
		t.Errorf("unexpected event %+v", e)
	}
	if e.Poster != "" {
		t.Error("poster should be cleared")
	}
	if e.Published {
		t.Error("expected unpublished")
	}
	if e.CreatedBy != created.CreatedBy || !e.CreatedAt.Equal(created.CreatedAt) {
		t.Error("created_by and created_at must not change")
	}
	if e.ModifiedBy != "editor@communityhub.com" || !e.UpdatedAt.Equal(later) {
		t.Errorf("ModifiedBy/UpdatedAt = %s/%v", e.ModifiedBy, e.UpdatedAt)
	}

	// Omitting published keeps the stored value.
	in.Published = nil
	e, err = ExecuteUpdateEvent(context.Background(), "beach-cleanup", in, EventDeps{Events: store, Now: fixedNow})
	if err != nil || e.Published {
		t.Errorf("published should stay false, got %v, %v", e.Published, err)
	}

	if _, err := ExecuteUpdateEvent(context.Background(), "missing", in, EventDeps{Events: store, Now: fixedNow}); !fault.Is(err, fault.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestExecuteDeleteEvent(t *testing.T) {
	store := newMockEventStore()
	if _, err := ExecuteCreateEvent(context.Background(), eventInput(), EventDeps{Events: store, Now: fixedNow}); err != nil {
		t.Fatal(err)
	}
	deps := EventDeps{Events: store, Now: fixedNow}
	if err := ExecuteDeleteEvent(context.Background(), "beach-cleanup", deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ExecuteDeleteEvent(context.Background(), "beach-cleanup", deps); !fault.Is(err, fault.KindNotFound) {
		t.Errorf("second delete: expected not found, got %v", err)
	}
}
