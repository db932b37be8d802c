package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"communityhub/internal/application/apperr"
	"communityhub/internal/application/validate"
	"communityhub/internal/domain/event"
	"communityhub/internal/domain/identity"
)

// EventStore defines the store interface needed by the event orchestrators.
type EventStore interface {
	Get(ctx context.Context, id string) (event.Event, error)
	Create(ctx context.Context, e event.Event) error
	Update(ctx context.Context, e event.Event) error
	Delete(ctx context.Context, id string) error
}

// EventInput carries the fields of an event create or update. On update the path id
// wins over any id in the body. A null or missing poster clears it.
type EventInput struct {
	ID          string            `json:"id" validate:"omitempty,max=64,slug"`
	Title       string            `json:"title" validate:"required,max=200"`
	Description string            `json:"description" validate:"required,max=5000"`
	Date        string            `json:"date" validate:"required,isodate"`
	Location    string            `json:"location" validate:"required,max=200"`
	Poster      string            `json:"poster"`
	Published   *bool             `json:"published"`
	Caller      identity.Identity `json:"-" validate:"required"`
}

// EventDeps holds dependencies for the event orchestrators.
type EventDeps struct {
	Events EventStore
	Now    func() time.Time
}

func (in EventInput) build(id string, now time.Time) (event.Event, error) {
	if err := validate.Struct(in); err != nil {
		return event.Event{}, err
	}
	date, err := time.Parse(event.DateFormat, in.Date)
	if err != nil {
		return event.Event{}, validate.Domain("date", err)
	}
	e := event.Event{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Date:        date,
		Location:    strings.TrimSpace(in.Location),
		Poster:      in.Poster,
		Published:   in.Published == nil || *in.Published,
		CreatedBy:   in.Caller.Email(),
		ModifiedBy:  in.Caller.Email(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.Validate(); err != nil {
		return event.Event{}, validate.Domain(eventField(err), err)
	}
	return e, nil
}

func eventField(err error) string {
	switch {
	case errors.Is(err, event.ErrInvalidID):
		return "id"
	case errors.Is(err, event.ErrEmptyTitle), errors.Is(err, event.ErrTitleTooLong):
		return "title"
	case errors.Is(err, event.ErrEmptyDescription), errors.Is(err, event.ErrDescriptionTooLong):
		return "description"
	case errors.Is(err, event.ErrEmptyDate):
		return "date"
	default:
		return "location"
	}
}

// ExecuteCreateEvent adds an event. The poster is stored as supplied.
// PRE: caller is the administrator
// POST: event persisted with created_by set to the caller; conflict when the id exists
func ExecuteCreateEvent(ctx context.Context, input EventInput, deps EventDeps) (event.Event, error) {
	now := deps.Now()
	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = event.GenerateID(now)
	}
	e, err := input.build(id, now)
	if err != nil {
		return event.Event{}, err
	}
	if err := deps.Events.Create(ctx, e); err != nil {
		return event.Event{}, apperr.FromStore(err, "", "event id already exists")
	}
	slog.Info("event_admin", "event", "created", "id", e.ID, "by", e.CreatedBy, "poster_bytes", len(e.Poster))
	return e, nil
}

// ExecuteUpdateEvent replaces the event addressed by id. Published keeps its stored value
// when the body omits it.
// PRE: caller is the administrator
// POST: event rewritten with modified_by set to the caller; not found when absent
// INVARIANT: created_by and created_at never change
func ExecuteUpdateEvent(ctx context.Context, id string, input EventInput, deps EventDeps) (event.Event, error) {
	id = strings.TrimSpace(id)
	existing, err := deps.Events.Get(ctx, id)
	if err != nil {
		return event.Event{}, apperr.FromStore(err, "event not found", "")
	}
	if input.Published == nil {
		input.Published = &existing.Published
	}
	input.ID = ""
	e, err := input.build(id, deps.Now())
	if err != nil {
		return event.Event{}, err
	}
	e.CreatedBy, e.CreatedAt = existing.CreatedBy, existing.CreatedAt
	if err := deps.Events.Update(ctx, e); err != nil {
		return event.Event{}, apperr.FromStore(err, "event not found", "")
	}
	slog.Info("event_admin", "event", "updated", "id", e.ID, "by", e.ModifiedBy)
	return e, nil
}

// ExecuteDeleteEvent hard-deletes an event.
// PRE: caller is the administrator
// POST: event gone; not found when absent
func ExecuteDeleteEvent(ctx context.Context, id string, deps EventDeps) error {
	id = strings.TrimSpace(id)
	if err := deps.Events.Delete(ctx, id); err != nil {
		return apperr.FromStore(err, "event not found", "")
	}
	slog.Info("event_admin", "event", "deleted", "id", id)
	return nil
}
