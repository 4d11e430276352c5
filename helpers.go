package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/estafette/estafette-ci-release-status/api"
	"github.com/estafette/estafette-ci-release-status/clients/eventstore"
)

// newRelease builds a release record from the release add flags
func newRelease(ctx context.Context, eventstoreClient eventstore.Client, submitter string) (release api.Release, err error) {

	product, err := api.ParseProduct(*releaseAddProduct)
	if err != nil {
		return
	}

	buildNumber := *releaseAddBuildNumber
	if buildNumber <= 0 {
		max, err := eventstoreClient.MaxBuildNumber(ctx, product, *releaseAddVersion)
		if err != nil {
			return release, err
		}
		buildNumber = max + 1
	}

	platforms, err := api.FormatPlatforms(*releaseAddPlatforms)
	if err != nil {
		return
	}

	if submitter == "" {
		submitter = os.Getenv("USER")
	}

	release = api.Release{
		Product: product,
		Core: api.ReleaseCore{
			Submitter:        submitter,
			SubmittedAt:      time.Now().UTC(),
			Version:          *releaseAddVersion,
			BuildNumber:      buildNumber,
			Branch:           *releaseAddBranch,
			MozillaRevision:  *releaseAddRevision,
			MozillaRelbranch: *releaseAddRelbranch,
			L10nChangesets:   *releaseAddL10n,
			EnUSPlatforms:    platforms,
			Comment:          *releaseAddComment,
		},
	}

	if product.IsDesktop() {
		release.Desktop = &api.DesktopFields{Partials: *releaseAddPartials}
		if *releaseAddPromptWaitTime > 0 {
			wait := *releaseAddPromptWaitTime
			release.Desktop.PromptWaitTime = &wait
		}
	}
	if product == api.ProductThunderbird {
		release.Thunderbird = &api.ThunderbirdFields{
			CommRevision:  *releaseAddCommRevision,
			CommRelbranch: *releaseAddCommRelbranch,
		}
	}

	return release, release.Validate()
}

// parseOptionalBool returns nil for an empty value
func parseOptionalBool(value string) (*bool, error) {
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
