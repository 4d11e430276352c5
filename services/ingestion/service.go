package ingestion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/estafette/estafette-ci-release-status/api"
	"github.com/estafette/estafette-ci-release-status/clients/eventstore"
	"github.com/opentracing/opentracing-go"
	"github.com/rs/zerolog/log"
)

const sentLayout = "2006-01-02T15:04:05"

// Request carries an event as reported by a producer, before validation
type Request struct {
	ReleaseName string
	Sent        string
	EventName   string
	Group       string
	Platform    string
	Results     int
	ChunkNum    int
	ChunkTotal  int
}

// Service records producer events, rejecting duplicates
type Service interface {
	Ingest(ctx context.Context, request Request) (api.ReleaseEvent, error)
}

// NewService returns a new ingestion.Service
func NewService(ctx context.Context, eventstoreClient eventstore.Client) (Service, error) {
	return &service{
		eventstoreClient: eventstoreClient,
	}, nil
}

type service struct {
	eventstoreClient eventstore.Client
}

func (s *service) Ingest(ctx context.Context, request Request) (event api.ReleaseEvent, err error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "Ingest")
	defer span.Finish()
	span.SetTag("release", request.ReleaseName)
	span.SetTag("event", request.EventName)

	event, err = NewEvent(request)
	if err != nil {
		log.Warn().Err(err).Msgf("[%v] Rejected event %v", request.ReleaseName, request.EventName)
		return
	}

	exists, err := s.eventstoreClient.Exists(ctx, event.ReleaseName, event.EventName)
	if err != nil {
		return event, err
	}
	if exists {
		err = fmt.Errorf("%w: (%v, %v)", api.ErrDuplicateEvent, event.ReleaseName, event.EventName)
		log.Warn().Err(err).Msgf("[%v] Rejected event %v", event.ReleaseName, event.EventName)
		return
	}

	// the store constraint still decides when two producers race past the check above
	err = s.eventstoreClient.InsertEvent(ctx, event)
	if err != nil {
		log.Warn().Err(err).Msgf("[%v] Storing event %v failed", event.ReleaseName, event.EventName)
		return
	}

	log.Debug().Msgf("[%v] Added event %v to the release events", event.ReleaseName, event.EventName)

	return event, nil
}

// NewEvent validates a request and turns it into a ReleaseEvent
func NewEvent(request Request) (api.ReleaseEvent, error) {

	releaseName := strings.TrimSpace(request.ReleaseName)
	eventName := strings.TrimSpace(request.EventName)
	group := strings.TrimSpace(request.Group)

	if releaseName == "" {
		return api.ReleaseEvent{}, fmt.Errorf("%w: release name is required", api.ErrInvalidEvent)
	}
	if eventName == "" {
		return api.ReleaseEvent{}, fmt.Errorf("%w: event name is required", api.ErrInvalidEvent)
	}
	if !api.IsKnownGroup(group) {
		return api.ReleaseEvent{}, fmt.Errorf("%w: unknown group %q", api.ErrInvalidEvent, group)
	}
	if request.ChunkNum < 0 || request.ChunkTotal < 0 {
		return api.ReleaseEvent{}, fmt.Errorf("%w: chunk fields can't be negative", api.ErrInvalidEvent)
	}
	if request.ChunkTotal > 0 && request.ChunkNum > request.ChunkTotal {
		return api.ReleaseEvent{}, fmt.Errorf("%w: chunk %v exceeds chunk total %v", api.ErrInvalidEvent, request.ChunkNum, request.ChunkTotal)
	}

	sentAt, err := NormalizeTimestamp(request.Sent)
	if err != nil {
		return api.ReleaseEvent{}, fmt.Errorf("%w: %v", api.ErrInvalidEvent, err)
	}

	return api.ReleaseEvent{
		ReleaseName: releaseName,
		SentAt:      sentAt,
		EventName:   eventName,
		Group:       group,
		Platform:    strings.TrimSpace(request.Platform),
		Results:     request.Results,
		ChunkNum:    request.ChunkNum,
		ChunkTotal:  request.ChunkTotal,
	}, nil
}

// NormalizeTimestamp parses a producer timestamp as naive UTC; a trailing +HH:MM or -HH:MM offset is cut off, not applied
func NormalizeTimestamp(value string) (time.Time, error) {

	value = strings.TrimSpace(value)
	if len(value) >= 6 && strings.ContainsAny(value[len(value)-6:], "+-") {
		value = value[:len(value)-6]
	}

	sentAt, err := time.Parse(sentLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sent %q is not a valid timestamp: %w", value, err)
	}

	return sentAt.UTC(), nil
}
