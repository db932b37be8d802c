package projections

import (
	"bytes"
	"context"
	"html"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"communityhub/internal/application/apperr"
	"communityhub/internal/domain/event"
)

// mdRenderer turns event descriptions into HTML. Without WithUnsafe raw HTML in the
// source is omitted from the output.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// EventView is an event as sent to clients. Poster is null when absent.
type EventView struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DescriptionHTML string    `json:"description_html"`
	Date            string    `json:"date"`
	Location        string    `json:"location"`
	Poster          *string   `json:"poster"`
	Published       bool      `json:"published"`
	IsPast          bool      `json:"is_past"`
	CreatedBy       string    `json:"created_by"`
	ModifiedBy      string    `json:"modified_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewEventView flattens an event for JSON, rendering the description as of now.
func NewEventView(e event.Event, now time.Time) EventView {
	v := EventView{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		DescriptionHTML: RenderMarkdown(e.Description),
		Date:            e.Date.Format(event.DateFormat),
		Location:        e.Location,
		Published:       e.Published,
		IsPast:          e.IsPast(now),
		CreatedBy:       e.CreatedBy,
		ModifiedBy:      e.ModifiedBy,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
	if e.Poster != "" {
		poster := e.Poster
		v.Poster = &poster
	}
	return v
}

// RenderMarkdown converts md to HTML, falling back to escaped text on a render error.
func RenderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return html.EscapeString(md)
	}
	return buf.String()
}

// EventsDeps holds dependencies for the event queries.
type EventsDeps struct {
	Events EventStore
	Now    func() time.Time
}

// QueryEvents lists published events ascending by date.
// PRE: none
// POST: drafts are never returned
func QueryEvents(ctx context.Context, deps EventsDeps) ([]EventView, error) {
	list, err := deps.Events.ListPublished(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return eventViews(list, deps.Now()), nil
}

// QueryAdminEvents lists every event, drafts included.
// PRE: caller is the administrator
// POST: Returns events ascending by date
func QueryAdminEvents(ctx context.Context, deps EventsDeps) ([]EventView, error) {
	list, err := deps.Events.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return eventViews(list, deps.Now()), nil
}

func eventViews(list []event.Event, now time.Time) []EventView {
	views := make([]EventView, 0, len(list))
	for _, e := range list {
		views = append(views, NewEventView(e, now))
	}
	return views
}
