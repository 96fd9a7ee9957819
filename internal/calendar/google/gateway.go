// Package google implements the calendar gateway on the Google Calendar v3 API.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/harunnryd/planpal/internal/calendar"
	planpalErrors "github.com/harunnryd/planpal/internal/errors"
)

const dateLayout = "2006-01-02"

// Gateway talks to one Google calendar.
type Gateway struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
	pageSize   int64
	mapper     planpalErrors.ErrorMapper
}

type Option func(*Gateway)

// WithLocation sets the zone attached to written events and used to read
// all-day dates.
func WithLocation(loc *time.Location) Option {
	return func(g *Gateway) {
		if loc != nil {
			g.loc = loc
		}
	}
}

func WithPageSize(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.pageSize = int64(n)
		}
	}
}

func New(svc *gcal.Service, calendarID string, opts ...Option) *Gateway {
	if strings.TrimSpace(calendarID) == "" {
		calendarID = "primary"
	}
	g := &Gateway{
		svc:        svc,
		calendarID: calendarID,
		loc:        time.UTC,
		pageSize:   250,
		mapper:     planpalErrors.NewDefaultErrorMapper(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewService builds a Calendar v3 client. Extra client options are appended
// after the token source so callers can point it at another endpoint.
func NewService(ctx context.Context, ts oauth2.TokenSource, extra ...option.ClientOption) (*gcal.Service, error) {
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, extra...)
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return svc, nil
}

// BearerTokenSource wraps an access token obtained by the caller.
func BearerTokenSource(accessToken string) (oauth2.TokenSource, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, planpalErrors.Unauthenticated("missing access token")
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}), nil
}

// ServiceAccountTokenSource reads a service-account JSON key with calendar scope.
func ServiceAccountTokenSource(ctx context.Context, path string) (oauth2.TokenSource, error) {
	if strings.TrimSpace(path) == "" {
		return nil, planpalErrors.Unauthenticated("calendar credentials file is not configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, planpalErrors.WrapWithCategory(err, "read calendar credentials", planpalErrors.ErrUnauthenticated)
	}
	cfg, err := googleoauth.JWTConfigFromJSON(data, gcal.CalendarScope)
	if err != nil {
		return nil, planpalErrors.WrapWithCategory(err, "parse calendar credentials", planpalErrors.ErrUnauthenticated)
	}
	return cfg.TokenSource(ctx), nil
}

func (g *Gateway) ListEvents(ctx context.Context, from time.Time) ([]calendar.Event, error) {
	var events []calendar.Event
	pageToken := ""
	for {
		req := g.svc.Events.List(g.calendarID).
			TimeMin(from.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(g.pageSize)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		resp, err := req.Context(ctx).Do()
		if err != nil {
			return nil, g.mapError("list events", err)
		}
		for _, item := range resp.Items {
			events = append(events, g.toEvent(item))
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return events, nil
}

func (g *Gateway) CreateEvent(ctx context.Context, input calendar.EventInput) (calendar.Event, error) {
	event := &gcal.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Start:       g.dateTime(input.Start, input.TimeZone),
		End:         g.dateTime(input.End, input.TimeZone),
	}

	created, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return calendar.Event{}, g.mapError("create event", err)
	}
	return g.toEvent(created), nil
}

func (g *Gateway) GetEvent(ctx context.Context, id string) (calendar.Event, error) {
	event, err := g.svc.Events.Get(g.calendarID, id).Context(ctx).Do()
	if err != nil {
		return calendar.Event{}, g.mapError(fmt.Sprintf("get event %q", id), err)
	}
	return g.toEvent(event), nil
}

func (g *Gateway) UpdateEvent(ctx context.Context, id string, patch calendar.EventPatch) (calendar.Event, error) {
	existing, err := g.svc.Events.Get(g.calendarID, id).Context(ctx).Do()
	if err != nil {
		return calendar.Event{}, g.mapError(fmt.Sprintf("get event %q", id), err)
	}

	existing.Start = g.dateTime(patch.Start, patch.TimeZone)
	existing.End = g.dateTime(patch.End, patch.TimeZone)

	updated, err := g.svc.Events.Update(g.calendarID, id, existing).Context(ctx).Do()
	if err != nil {
		return calendar.Event{}, g.mapError(fmt.Sprintf("update event %q", id), err)
	}
	return g.toEvent(updated), nil
}

func (g *Gateway) DeleteEvent(ctx context.Context, id string) error {
	if err := g.svc.Events.Delete(g.calendarID, id).Context(ctx).Do(); err != nil {
		return g.mapError(fmt.Sprintf("delete event %q", id), err)
	}
	return nil
}

func (g *Gateway) dateTime(t time.Time, zone string) *gcal.EventDateTime {
	if zone == "" {
		zone = g.loc.String()
	}
	return &gcal.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: zone,
	}
}

func (g *Gateway) toEvent(item *gcal.Event) calendar.Event {
	e := calendar.Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Link:        item.HtmlLink,
	}
	if e.Summary == "" {
		e.Summary = "No Title"
	}

	if item.Start != nil {
		if item.Start.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
				e.Start = t
			}
		} else if item.Start.Date != "" {
			e.AllDay = true
			if t, err := time.ParseInLocation(dateLayout, item.Start.Date, g.loc); err == nil {
				e.Start = t
			}
		}
	}
	if item.End != nil {
		if item.End.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
				e.End = t
			}
		} else if item.End.Date != "" {
			if t, err := time.ParseInLocation(dateLayout, item.End.Date, g.loc); err == nil {
				e.End = t
			}
		}
	}
	return e
}

// statusError exposes the API status code to the shared error mapper.
type statusError struct {
	err  error
	code int
}

func (e statusError) Error() string   { return e.err.Error() }
func (e statusError) Unwrap() error   { return e.err }
func (e statusError) HTTPStatus() int { return e.code }

func (g *Gateway) mapError(op string, err error) error {
	var apiErr *googleapi.Error
	var tokenErr *oauth2.RetrieveError
	switch {
	case errors.As(err, &apiErr):
		err = statusError{err: err, code: apiErr.Code}
	case errors.As(err, &tokenErr) && tokenErr.Response != nil:
		err = statusError{err: err, code: tokenErr.Response.StatusCode}
	}
	return planpalErrors.Wrap(g.mapper.MapError(err), op)
}
