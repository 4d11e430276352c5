package status

import (
	"context"
	"fmt"

	"github.com/estafette/estafette-ci-release-status/api"
	"github.com/estafette/estafette-ci-release-status/clients/eventstore"
	"github.com/opentracing/opentracing-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Service computes the status of a release from its recorded events
type Service interface {
	ComputeStatus(ctx context.Context, releaseName string) (api.StatusReport, error)
}

// NewService returns a new status.Service
func NewService(ctx context.Context, eventstoreClient eventstore.Client) (Service, error) {
	return &service{
		eventstoreClient: eventstoreClient,
	}, nil
}

type service struct {
	eventstoreClient eventstore.Client
}

func (s *service) ComputeStatus(ctx context.Context, releaseName string) (report api.StatusReport, err error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "ComputeStatus")
	defer span.Finish()
	span.SetTag("release", releaseName)

	// fetch all events in one snapshot and the declared platforms side by side
	var events []api.ReleaseEvent
	var platforms []string
	var platformsErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		events, err = s.eventstoreClient.EventsFor(gctx, releaseName, "")
		return
	})
	g.Go(func() error {
		// configuration errors only matter once the release is known to exist
		platforms, platformsErr = s.eventstoreClient.PlatformsFor(gctx, releaseName)
		return nil
	})
	if err = g.Wait(); err != nil {
		return report, fmt.Errorf("fetching events for %v failed: %w", releaseName, err)
	}

	if len(events) == 0 {
		return report, fmt.Errorf("%w: no events recorded for %v", api.ErrNotFound, releaseName)
	}
	if platformsErr != nil {
		return report, fmt.Errorf("fetching platforms for %v failed: %w", releaseName, platformsErr)
	}

	log.Debug().Msgf("[%v] Computing status from %v events for platforms %v", releaseName, len(events), platforms)

	return Compute(releaseName, events, platforms), nil
}

// Compute reduces the events of a release into a status report; it has no side effects
func Compute(releaseName string, events []api.ReleaseEvent, platforms []string) api.StatusReport {

	byGroup := make(map[string][]api.ReleaseEvent, len(api.KnownGroups))
	for _, e := range events {
		byGroup[e.Group] = append(byGroup[e.Group], e)
	}

	return api.StatusReport{
		Name:        releaseName,
		Tag:         reduceBoolean(byGroup[api.GroupTag]),
		Build:       reduceChunked(api.GroupBuild, byGroup[api.GroupBuild], platforms, chunkedOptions{atomic: true}),
		Repack:      reduceChunked(api.GroupRepack, byGroup[api.GroupRepack], platforms, chunkedOptions{}),
		Update:      reduceBoolean(byGroup[api.GroupUpdate]),
		ReleaseTest: reduceBoolean(byGroup[api.GroupReleaseTest]),
		Release:     reduceRelease(byGroup[api.GroupUpdateVerify], byGroup[api.GroupRelease], platforms),
		PostRelease: reducePostRelease(events),
	}
}
