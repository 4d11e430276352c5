package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/alecthomas/kingpin"
	"github.com/estafette/estafette-ci-release-status/api"
	"github.com/estafette/estafette-ci-release-status/clients/eventstore"
	"github.com/estafette/estafette-ci-release-status/config"
	"github.com/estafette/estafette-ci-release-status/services/evaluation"
	"github.com/estafette/estafette-ci-release-status/services/ingestion"
	"github.com/estafette/estafette-ci-release-status/services/status"
	foundation "github.com/estafette/estafette-foundation"
	"github.com/rs/zerolog/log"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

var (
	appgroup  string
	app       string
	version   string
	branch    string
	revision  string
	buildDate string
)

var (
	cli = kingpin.New("estafette-ci-release-status", "Tracks release events and reports the progress of every release stage.")

	configPath   = cli.Flag("config", "Path to the yaml config file.").Envar("RELEASE_STATUS_CONFIG").Default("release-status.yaml").String()
	databasePath = cli.Flag("database", "Path to the sqlite database; overrides the config file.").String()

	statusCmd     = cli.Command("status", "Compute the status of a release.")
	statusRelease = statusCmd.Arg("release", "Release name, like firefox-60.0-build1.").Required().String()
	statusFormat  = statusCmd.Flag("format", "Output format, table or json.").Enum(config.OutputFormatTable, config.OutputFormatJSON)
	statusWhen    = statusCmd.Flag("when", "Gate expression like \"build_complete && repack >= 0.5\"; exits non-zero when false.").String()

	eventsCmd     = cli.Command("events", "List the recorded events of a release.")
	eventsRelease = eventsCmd.Arg("release", "Release name.").Required().String()
	eventsGroup   = eventsCmd.Flag("group", "Only list events of this group.").String()

	ingestCmd        = cli.Command("ingest", "Record a release event.")
	ingestRelease    = ingestCmd.Flag("release", "Release name.").Required().String()
	ingestEvent      = ingestCmd.Flag("event", "Event name, like repack_complete.").Required().String()
	ingestSent       = ingestCmd.Flag("sent", "Time the event was sent, like 2018-05-01T12:30:00+02:00.").Required().String()
	ingestGroup      = ingestCmd.Flag("group", "Stage the event belongs to.").String()
	ingestPlatform   = ingestCmd.Flag("platform", "Platform the event applies to.").String()
	ingestResults    = ingestCmd.Flag("results", "Result code reported by the producer.").Default("0").Int()
	ingestChunkNum   = ingestCmd.Flag("chunk-num", "1-based chunk index.").Default("0").Int()
	ingestChunkTotal = ingestCmd.Flag("chunk-total", "Total number of chunks.").Default("0").Int()

	releaseCmd = cli.Command("release", "Manage release records.")

	releaseAddCmd            = releaseCmd.Command("add", "Add a release record.")
	releaseAddProduct        = releaseAddCmd.Flag("product", "Product: firefox, thunderbird or fennec.").Required().Enum(string(api.ProductFirefox), string(api.ProductThunderbird), string(api.ProductFennec))
	releaseAddVersion        = releaseAddCmd.Flag("version", "Version, like 60.0.").Required().String()
	releaseAddBuildNumber    = releaseAddCmd.Flag("build-number", "Build number; defaults to one above the highest known build of the version.").Int()
	releaseAddBranch         = releaseAddCmd.Flag("branch", "Branch the release is built from.").Required().String()
	releaseAddRevision       = releaseAddCmd.Flag("mozilla-revision", "Revision the release is built from.").Required().String()
	releaseAddRelbranch      = releaseAddCmd.Flag("mozilla-relbranch", "Relbranch the release is built from.").String()
	releaseAddPlatforms      = releaseAddCmd.Flag("platform", "Declared en-US platform; repeat for every platform.").Required().Strings()
	releaseAddL10n           = releaseAddCmd.Flag("l10n-changesets", "L10n changesets.").Default("{}").String()
	releaseAddPartials       = releaseAddCmd.Flag("partials", "Partial updates, desktop products only.").String()
	releaseAddPromptWaitTime = releaseAddCmd.Flag("prompt-wait-time", "Prompt wait time, desktop products only.").Int()
	releaseAddCommRevision   = releaseAddCmd.Flag("comm-revision", "Comm revision, thunderbird only.").String()
	releaseAddCommRelbranch  = releaseAddCmd.Flag("comm-relbranch", "Comm relbranch, thunderbird only.").String()
	releaseAddComment        = releaseAddCmd.Flag("comment", "Free form comment.").String()

	releaseListCmd      = releaseCmd.Command("list", "List release records.")
	releaseListReady    = releaseListCmd.Flag("ready", "Filter on the ready flag.").String()
	releaseListComplete = releaseListCmd.Flag("complete", "Filter on the complete flag.").String()
)

func main() {

	cli.Version(version)
	command := kingpin.MustParse(cli.Parse(os.Args[1:]))

	applicationInfo := foundation.NewApplicationInfo(appgroup, app, version, branch, revision, buildDate)
	foundation.InitLoggingFromEnv(applicationInfo)

	closer := initJaeger(cli.Name)
	defer closer.Close()

	cfg, err := config.Read(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Reading configuration failed")
	}
	if *databasePath != "" {
		cfg.DatabasePath = *databasePath
	}

	ctx := context.Background()

	eventstoreClient, err := eventstore.NewClient(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msgf("Opening event store %v failed", cfg.DatabasePath)
	}
	defer eventstoreClient.Close()

	statusService, err := status.NewService(ctx, eventstoreClient)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating status service failed")
	}
	ingestionService, err := ingestion.NewService(ctx, eventstoreClient)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating ingestion service failed")
	}
	evaluationService, err := evaluation.NewService(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating evaluation service failed")
	}

	switch command {
	case statusCmd.FullCommand():
		format := cfg.OutputFormat
		if *statusFormat != "" {
			format = *statusFormat
		}
		exitCode := runStatus(ctx, os.Stdout, statusService, evaluationService, *statusRelease, format, *statusWhen)
		if exitCode != 0 {
			closer.Close()
			eventstoreClient.Close()
			os.Exit(exitCode)
		}

	case eventsCmd.FullCommand():
		events, err := eventstoreClient.EventsFor(ctx, *eventsRelease, *eventsGroup)
		if err != nil {
			log.Fatal().Err(err).Msgf("Listing events for %v failed", *eventsRelease)
		}
		renderEvents(os.Stdout, events)

	case ingestCmd.FullCommand():
		event, err := ingestionService.Ingest(ctx, ingestion.Request{
			ReleaseName: *ingestRelease,
			Sent:        *ingestSent,
			EventName:   *ingestEvent,
			Group:       *ingestGroup,
			Platform:    *ingestPlatform,
			Results:     *ingestResults,
			ChunkNum:    *ingestChunkNum,
			ChunkTotal:  *ingestChunkTotal,
		})
		if err != nil {
			log.Fatal().Err(err).Msgf("Ingesting event %v for %v failed", *ingestEvent, *ingestRelease)
		}
		log.Info().Msgf("[%v] Recorded event %v", event.ReleaseName, event.EventName)

	case releaseAddCmd.FullCommand():
		release, err := newRelease(ctx, eventstoreClient, cfg.Submitter)
		if err != nil {
			log.Fatal().Err(err).Msg("Preparing release record failed")
		}
		if err := eventstoreClient.InsertRelease(ctx, release); err != nil {
			log.Fatal().Err(err).Msgf("Adding release %v failed", release.Name())
		}
		log.Info().Msgf("Added release %v", release.Name())

	case releaseListCmd.FullCommand():
		ready, err := parseOptionalBool(*releaseListReady)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid --ready flag")
		}
		complete, err := parseOptionalBool(*releaseListComplete)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid --complete flag")
		}
		releases, err := eventstoreClient.ListReleases(ctx, ready, complete)
		if err != nil {
			log.Fatal().Err(err).Msg("Listing releases failed")
		}
		renderReleases(os.Stdout, releases)
	}
}

// runStatus prints the status of a release and returns the process exit code
func runStatus(ctx context.Context, w io.Writer, statusService status.Service, evaluationService evaluation.Service, releaseName, format, when string) int {

	report, err := statusService.ComputeStatus(ctx, releaseName)
	switch {
	case errors.Is(err, api.ErrNotFound):
		log.Error().Err(err).Msgf("No status available for %v", releaseName)
		return 2
	case errors.Is(err, api.ErrConfiguration):
		log.Error().Err(err).Msgf("Release %v is misprovisioned", releaseName)
		return 3
	case err != nil:
		log.Error().Err(err).Msgf("Computing status for %v failed", releaseName)
		return 1
	}

	if err := renderStatus(w, report, format); err != nil {
		log.Error().Err(err).Msg("Rendering status failed")
		return 1
	}

	if when == "" {
		return 0
	}

	passed, err := evaluationService.Evaluate(releaseName, when, evaluationService.GetParameters(report))
	if err != nil {
		log.Error().Err(err).Msgf("Evaluating gate \"%v\" failed", when)
		return 1
	}
	if !passed {
		return 4
	}

	return 0
}

func initJaeger(service string) io.Closer {

	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Generating Jaeger config from environment variables failed")
	}

	closer, err := cfg.InitGlobalTracer(service, jaegercfg.Logger(jaeger.StdLogger))
	if err != nil {
		log.Fatal().Err(err).Msg("Generating Jaeger tracer failed")
	}

	return closer
}
