package eventstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/estafette/estafette-ci-release-status/api"
	"github.com/stretchr/testify/assert"
)

func TestInsertEvent(t *testing.T) {

	t.Run("RejectsSecondInsertWithSameReleaseAndEventName", func(t *testing.T) {

		ctx := context.Background()
		client := getClient(t)

		original := api.ReleaseEvent{
			ReleaseName: "firefox-99.0-build1",
			SentAt:      time.Date(2022, 3, 1, 10, 0, 0, 0, time.UTC),
			EventName:   "build_linux",
			Group:       api.GroupBuild,
			Platform:    "linux",
			Results:     0,
		}
		err := client.InsertEvent(ctx, original)
		assert.Nil(t, err)

		duplicate := original
		duplicate.Platform = "win"
		duplicate.Results = 2

		// act
		err = client.InsertEvent(ctx, duplicate)

		assert.True(t, errors.Is(err, api.ErrDuplicateEvent))
		events, err := client.EventsFor(ctx, "firefox-99.0-build1", "")
		assert.Nil(t, err)
		if assert.Equal(t, 1, len(events)) {
			assert.Equal(t, original, events[0])
		}
	})

	t.Run("AcceptsExactlyOneOfConcurrentDuplicateInserts", func(t *testing.T) {

		ctx := context.Background()
		client := getClient(t)

		event := api.ReleaseEvent{
			ReleaseName: "firefox-99.0-build1",
			SentAt:      time.Date(2022, 3, 1, 10, 0, 0, 0, time.UTC),
			EventName:   "repack_complete",
			Group:       api.GroupRepack,
			Platform:    "linux",
		}

		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- client.InsertEvent(ctx, event)
			}()
		}
		wg.Wait()
		close(errs)

		accepted, rejected := 0, 0
		for err := range errs {
			if err == nil {
				accepted++
			} else if errors.Is(err, api.ErrDuplicateEvent) {
				rejected++
			}
		}

		assert.Equal(t, 1, accepted)
		assert.Equal(t, 7, rejected)
	})
}

func TestExists(t *testing.T) {

	t.Run("ReturnsFalseForUnknownEvent", func(t *testing.T) {

		client := getClient(t)

		// act
		exists, err := client.Exists(context.Background(), "firefox-99.0-build1", "build_linux")

		assert.Nil(t, err)
		assert.False(t, exists)
	})

	t.Run("ReturnsTrueForRecordedEvent", func(t *testing.T) {

		ctx := context.Background()
		client := getClient(t)
		_ = client.InsertEvent(ctx, api.ReleaseEvent{ReleaseName: "firefox-99.0-build1", EventName: "build_linux", SentAt: time.Now()})

		// act
		exists, err := client.Exists(ctx, "firefox-99.0-build1", "build_linux")

		assert.Nil(t, err)
		assert.True(t, exists)
	})
}

func TestEventsFor(t *testing.T) {

	t.Run("ReturnsEventsInArrivalOrderFilteredByGroup", func(t *testing.T) {

		ctx := context.Background()
		client := getClient(t)
		sent := time.Date(2018, 5, 1, 12, 0, 0, 0, time.UTC)
		_ = client.InsertEvent(ctx, api.ReleaseEvent{ReleaseName: "firefox-60.0-build1", EventName: "repack_2", Group: api.GroupRepack, Platform: "linux64", ChunkNum: 2, ChunkTotal: 2, SentAt: sent})
		_ = client.InsertEvent(ctx, api.ReleaseEvent{ReleaseName: "firefox-60.0-build1", EventName: "tag", Group: api.GroupTag, SentAt: sent})
		_ = client.InsertEvent(ctx, api.ReleaseEvent{ReleaseName: "firefox-60.0-build1", EventName: "repack_1", Group: api.GroupRepack, Platform: "linux64", ChunkNum: 1, ChunkTotal: 2, SentAt: sent})
		_ = client.InsertEvent(ctx, api.ReleaseEvent{ReleaseName: "firefox-61.0-build1", EventName: "repack_1", Group: api.GroupRepack, Platform: "linux64", ChunkNum: 1, ChunkTotal: 2, SentAt: sent})

		// act
		events, err := client.EventsFor(ctx, "firefox-60.0-build1", api.GroupRepack)

		assert.Nil(t, err)
		if assert.Equal(t, 2, len(events)) {
			assert.Equal(t, "repack_2", events[0].EventName)
			assert.Equal(t, "repack_1", events[1].EventName)
			assert.Equal(t, 2, events[1].ChunkTotal)
			assert.Equal(t, sent, events[1].SentAt)
		}
	})

	t.Run("ReturnsAllGroupsWhenGroupIsEmpty", func(t *testing.T) {

		ctx := context.Background()
		client := getClient(t)
		_ = client.InsertEvent(ctx, api.ReleaseEvent{ReleaseName: "firefox-60.0-build1", EventName: "tag", Group: api.GroupTag, SentAt: time.Now()})
		_ = client.InsertEvent(ctx, api.ReleaseEvent{ReleaseName: "firefox-60.0-build1", EventName: "postrelease_bouncer", SentAt: time.Now()})

		// act
		events, err := client.EventsFor(ctx, "firefox-60.0-build1", "")

		assert.Nil(t, err)
		assert.Equal(t, 2, len(events))
		assert.Equal(t, "", events[1].Group)
	})

	t.Run("ReturnsEmptySliceForUnknownRelease", func(t *testing.T) {

		client := getClient(t)

		// act
		events, err := client.EventsFor(context.Background(), "firefox-1.0-build1", "")

		assert.Nil(t, err)
		assert.Equal(t, 0, len(events))
	})
}

func TestPlatformsFor(t *testing.T) {

	t.Run("ReturnsDeclaredPlatforms", func(t *testing.T) {

		ctx := context.Background()
		client := getClient(t)
		err := client.InsertRelease(ctx, getRelease("60.0", 1, `["linux64","win64"]`))
		assert.Nil(t, err)

		// act
		platforms, err := client.PlatformsFor(ctx, "firefox-60.0-build1")

		assert.Nil(t, err)
		assert.Equal(t, []string{"linux64", "win64"}, platforms)
	})

	t.Run("ReturnsConfigurationErrorWhenReleaseIsUnknown", func(t *testing.T) {

		client := getClient(t)

		// act
		_, err := client.PlatformsFor(context.Background(), "firefox-60.0-build1")

		assert.True(t, errors.Is(err, api.ErrConfiguration))
	})

	t.Run("ReturnsConfigurationErrorWhenPlatformsAreMissing", func(t *testing.T) {

		ctx := context.Background()
		client := getClient(t)
		_ = client.InsertRelease(ctx, getRelease("60.0", 1, ""))

		// act
		_, err := client.PlatformsFor(ctx, "firefox-60.0-build1")

		assert.True(t, errors.Is(err, api.ErrConfiguration))
	})

	t.Run("ReturnsConfigurationErrorWhenPlatformsAreMalformed", func(t *testing.T) {

		ctx := context.Background()
		client := getClient(t)
		_ = client.InsertRelease(ctx, getRelease("60.0", 1, `["linux64",`))

		// act
		_, err := client.PlatformsFor(ctx, "firefox-60.0-build1")

		assert.True(t, errors.Is(err, api.ErrConfiguration))
	})
}

func TestReleases(t *testing.T) {

	t.Run("GetReleaseReturnsInsertedThunderbirdRelease", func(t *testing.T) {

		ctx := context.Background()
		client := getClient(t)
		wait := 5
		release := api.Release{
			Product: api.ProductThunderbird,
			Core: api.ReleaseCore{
				Submitter:       "releng",
				SubmittedAt:     time.Date(2017, 4, 1, 8, 0, 0, 0, time.UTC),
				Version:         "52.1.0",
				BuildNumber:     2,
				Branch:          "releases/comm-esr52",
				MozillaRevision: "abcdef",
				L10nChangesets:  "{}",
				EnUSPlatforms:   `["linux","win32"]`,
			},
			Desktop:     &api.DesktopFields{Partials: "52.0.1build1", PromptWaitTime: &wait},
			Thunderbird: &api.ThunderbirdFields{CommRevision: "123456", CommRelbranch: "COMM52_RELBRANCH"},
		}
		err := client.InsertRelease(ctx, release)
		assert.Nil(t, err)

		// act
		stored, err := client.GetRelease(ctx, "thunderbird-52.1.0-build2")

		assert.Nil(t, err)
		assert.Equal(t, release, stored)
	})

	t.Run("GetReleaseReturnsNotFoundForUnknownRelease", func(t *testing.T) {

		client := getClient(t)

		// act
		_, err := client.GetRelease(context.Background(), "fennec-45.0-build1")

		assert.True(t, errors.Is(err, api.ErrNotFound))
	})

	t.Run("InsertReleaseRejectsExistingName", func(t *testing.T) {

		ctx := context.Background()
		client := getClient(t)
		_ = client.InsertRelease(ctx, getRelease("60.0", 1, `["linux64"]`))

		// act
		err := client.InsertRelease(ctx, getRelease("60.0", 1, `["win64"]`))

		assert.NotNil(t, err)
	})

	t.Run("ListReleasesFiltersOnReady", func(t *testing.T) {

		ctx := context.Background()
		client := getClient(t)
		ready := getRelease("60.0", 1, `["linux64"]`)
		ready.Core.Ready = true
		_ = client.InsertRelease(ctx, ready)
		_ = client.InsertRelease(ctx, getRelease("60.0", 2, `["linux64"]`))
		filter := true

		// act
		releases, err := client.ListReleases(ctx, &filter, nil)

		assert.Nil(t, err)
		if assert.Equal(t, 1, len(releases)) {
			assert.Equal(t, "firefox-60.0-build1", releases[0].Name())
		}
	})

	t.Run("MaxBuildNumberReturnsHighestBuildForVersion", func(t *testing.T) {

		ctx := context.Background()
		client := getClient(t)
		_ = client.InsertRelease(ctx, getRelease("60.0", 1, `["linux64"]`))
		_ = client.InsertRelease(ctx, getRelease("60.0", 3, `["linux64"]`))
		_ = client.InsertRelease(ctx, getRelease("61.0", 7, `["linux64"]`))

		// act
		max, err := client.MaxBuildNumber(ctx, api.ProductFirefox, "60.0")

		assert.Nil(t, err)
		assert.Equal(t, 3, max)
	})

	t.Run("MaxBuildNumberReturnsZeroForUnknownVersion", func(t *testing.T) {

		client := getClient(t)

		// act
		max, err := client.MaxBuildNumber(context.Background(), api.ProductFirefox, "60.0")

		assert.Nil(t, err)
		assert.Equal(t, 0, max)
	})
}

func TestUpMigration(t *testing.T) {

	t.Run("ReturnsSectionBetweenMarkers", func(t *testing.T) {

		// act
		up := upMigration("-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;\n")

		assert.Equal(t, "\nCREATE TABLE a (id INTEGER);\n", up)
	})

	t.Run("ReturnsWholeContentWithoutMarkers", func(t *testing.T) {

		// act
		up := upMigration("CREATE TABLE a (id INTEGER);")

		assert.Equal(t, "CREATE TABLE a (id INTEGER);", up)
	})
}

func TestNewClient(t *testing.T) {

	t.Run("ReopensExistingDatabaseWithoutReapplyingMigrations", func(t *testing.T) {

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "status.db")
		client, err := NewClient(ctx, path)
		assert.Nil(t, err)
		_ = client.InsertEvent(ctx, api.ReleaseEvent{ReleaseName: "firefox-60.0-build1", EventName: "tag", Group: api.GroupTag, SentAt: time.Now()})
		_ = client.Close()

		// act
		client, err = NewClient(ctx, path)

		assert.Nil(t, err)
		defer client.Close()
		exists, err := client.Exists(ctx, "firefox-60.0-build1", "tag")
		assert.Nil(t, err)
		assert.True(t, exists)
	})

	t.Run("ReturnsErrorForEmptyPath", func(t *testing.T) {

		// act
		_, err := NewClient(context.Background(), " ")

		assert.NotNil(t, err)
	})
}

func getClient(t *testing.T) Client {
	client, err := NewClient(context.Background(), filepath.Join(t.TempDir(), "status.db"))
	if err != nil {
		t.Fatalf("opening event store failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func getRelease(version string, buildNumber int, platforms string) api.Release {
	return api.Release{
		Product: api.ProductFirefox,
		Core: api.ReleaseCore{
			Submitter:       "releng",
			SubmittedAt:     time.Date(2018, 5, 1, 8, buildNumber, 0, 0, time.UTC),
			Version:         version,
			BuildNumber:     buildNumber,
			Branch:          "releases/mozilla-release",
			MozillaRevision: "abcdef",
			L10nChangesets:  "{}",
			EnUSPlatforms:   platforms,
		},
		Desktop: &api.DesktopFields{},
	}
}
