package status

import (
	"math"
	"strings"

	"github.com/estafette/estafette-ci-release-status/api"
	"github.com/rs/zerolog/log"
)

const (
	completeMarker    = "complete"
	postReleaseMarker = "postrelease"
)

// roundProgress rounds to two decimals
func roundProgress(value float64) float64 {
	return math.Round(value*100) / 100
}

// reduceBoolean reports a stage that is signalled by a single terminal event
func reduceBoolean(events []api.ReleaseEvent) api.StageStatus {
	if len(events) > 0 {
		return api.StageStatus{Complete: true, Progress: 1.00}
	}
	return api.StageStatus{Complete: false, Progress: 0.00}
}

// reducePostRelease looks at all events of a release, regardless of group
func reducePostRelease(events []api.ReleaseEvent) api.StageStatus {
	for _, e := range events {
		if strings.Contains(e.EventName, postReleaseMarker) {
			return api.StageStatus{Complete: true, Progress: 1.00}
		}
	}
	return api.StageStatus{Complete: false, Progress: 0.00}
}

type chunkedOptions struct {
	// atomic treats every event as the single chunk of its platform
	atomic bool
}

type platformState struct {
	complete      bool
	completeEvent bool
	num           int
	total         int
	progress      float64
}

// reduceChunked folds the events of a fan-out stage into per platform and stage progress
func reduceChunked(group string, events []api.ReleaseEvent, platforms []string, options chunkedOptions) api.StageStatus {

	states := make(map[string]*platformState, len(platforms))
	for _, p := range platforms {
		state := &platformState{}
		if options.atomic {
			state.total = 1
		}
		states[p] = state
	}

	for _, e := range events {
		state, ok := states[e.Platform]
		if !ok {
			log.Debug().Msgf("[%v] Ignoring event %v for undeclared platform %q", group, e.EventName, e.Platform)
			continue
		}

		if options.atomic {
			state.num = 1
			state.total = 1
			state.progress = 1.00
			continue
		}

		if strings.Contains(e.EventName, completeMarker) {
			state.completeEvent = true
			continue
		}

		state.total = e.ChunkTotal
		state.num++
		if e.ChunkTotal > 0 {
			state.progress += 1.00 / float64(e.ChunkTotal)
		}
	}

	stage := api.StageStatus{
		Platforms: make(map[string]api.PlatformStatus, len(platforms)),
	}

	allComplete := true
	sumNum, sumTotal := 0, 0
	for _, p := range platforms {
		state := states[p]

		state.complete = state.completeEvent || (state.total > 0 && state.num >= state.total)
		if state.completeEvent {
			state.progress = 1.00
		}
		state.progress = roundProgress(math.Min(state.progress, 1.00))

		// a platform completed without any known chunk total counts as one finished chunk
		num, total := state.num, state.total
		if state.complete && total == 0 {
			total = 1
		}
		if state.complete || num > total {
			num = total
		}
		sumNum += num
		sumTotal += total

		if !state.complete {
			allComplete = false
		}

		stage.Platforms[p] = api.PlatformStatus{
			Complete: state.complete,
			Chunks: api.Chunks{
				Num:   state.num,
				Total: state.total,
			},
			Progress: state.progress,
		}
	}

	if sumTotal > 0 {
		stage.Progress = roundProgress(float64(sumNum) / float64(sumTotal))
	}
	stage.Complete = len(platforms) > 0 && allComplete && stage.Progress == 1.00

	return stage
}

// reduceRelease derives the ready-for-release stage from update verify chunks; any event in the release group marks it shipped.
// Without a release event the stage may still complete once every platform finished update verify.
func reduceRelease(updateVerifyEvents, releaseEvents []api.ReleaseEvent, platforms []string) api.StageStatus {
	stage := reduceChunked(api.GroupUpdateVerify, updateVerifyEvents, platforms, chunkedOptions{})
	if len(releaseEvents) > 0 {
		stage.Complete = true
		stage.Progress = 1.00
	}
	return stage
}
