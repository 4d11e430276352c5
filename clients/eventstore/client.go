package eventstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/estafette/estafette-ci-release-status/api"
	"github.com/estafette/estafette-ci-release-status/clients/eventstore/migrations"
	"github.com/opentracing/opentracing-go"
	"github.com/rs/zerolog/log"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Client reads and records release events and the release records they belong to
//
//go:generate mockgen -package=eventstore -destination ./mock.go -source=client.go
type Client interface {
	EventsFor(ctx context.Context, releaseName, group string) ([]api.ReleaseEvent, error)
	Exists(ctx context.Context, releaseName, eventName string) (bool, error)
	PlatformsFor(ctx context.Context, releaseName string) ([]string, error)
	InsertEvent(ctx context.Context, event api.ReleaseEvent) error
	InsertRelease(ctx context.Context, release api.Release) error
	GetRelease(ctx context.Context, releaseName string) (api.Release, error)
	ListReleases(ctx context.Context, ready, complete *bool) ([]api.Release, error)
	MaxBuildNumber(ctx context.Context, product api.Product, version string) (int, error)
	Close() error
}

// NewClient opens the sqlite database at path and brings its schema up to date
func NewClient(ctx context.Context, path string) (Client, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log.Debug().Msgf("Opened event store at %v", path)

	return &client{
		db: db,
	}, nil
}

type client struct {
	db *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func (c *client) EventsFor(ctx context.Context, releaseName, group string) (events []api.ReleaseEvent, err error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "EventStore::EventsFor")
	defer span.Finish()
	span.SetTag("release", releaseName)
	span.SetTag("group", group)

	query := `SELECT name, sent, event_name, platform, results, chunk_num, chunk_total, event_group FROM release_events WHERE name = ?`
	args := []interface{}{releaseName}
	if group != "" {
		query += ` AND event_group = ?`
		args = append(args, group)
	}
	query += ` ORDER BY seq`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query release events: %w", err)
	}
	defer rows.Close()

	events = []api.ReleaseEvent{}
	for rows.Next() {
		var e api.ReleaseEvent
		var sent int64
		var platform, eventGroup sql.NullString
		if err := rows.Scan(&e.ReleaseName, &sent, &e.EventName, &platform, &e.Results, &e.ChunkNum, &e.ChunkTotal, &eventGroup); err != nil {
			return nil, fmt.Errorf("scan release event: %w", err)
		}
		e.SentAt = fromMillis(sent)
		e.Platform = platform.String
		e.Group = eventGroup.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate release events: %w", err)
	}

	return events, nil
}

func (c *client) Exists(ctx context.Context, releaseName, eventName string) (bool, error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "EventStore::Exists")
	defer span.Finish()

	var found int
	err := c.db.QueryRowContext(ctx, `SELECT 1 FROM release_events WHERE name = ? AND event_name = ?`, releaseName, eventName).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check release event: %w", err)
	}

	return true, nil
}

func (c *client) PlatformsFor(ctx context.Context, releaseName string) ([]string, error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "EventStore::PlatformsFor")
	defer span.Finish()

	var raw sql.NullString
	err := c.db.QueryRowContext(ctx, `SELECT en_us_platforms FROM releases WHERE name = ?`, releaseName).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no release record for %v", api.ErrConfiguration, releaseName)
	}
	if err != nil {
		return nil, fmt.Errorf("query release platforms: %w", err)
	}

	return api.ParsePlatforms(raw.String)
}

func (c *client) InsertEvent(ctx context.Context, event api.ReleaseEvent) error {

	span, ctx := opentracing.StartSpanFromContext(ctx, "EventStore::InsertEvent")
	defer span.Finish()

	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO release_events (name, sent, event_name, platform, results, chunk_num, chunk_total, event_group) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ReleaseName,
		toMillis(event.SentAt),
		event.EventName,
		nullString(event.Platform),
		event.Results,
		event.ChunkNum,
		event.ChunkTotal,
		nullString(event.Group),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: (%v, %v)", api.ErrDuplicateEvent, event.ReleaseName, event.EventName)
		}
		return fmt.Errorf("insert release event: %w", err)
	}

	return nil
}

func (c *client) InsertRelease(ctx context.Context, release api.Release) error {

	span, ctx := opentracing.StartSpanFromContext(ctx, "EventStore::InsertRelease")
	defer span.Finish()

	if err := release.Validate(); err != nil {
		return err
	}

	submittedAt := release.Core.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}

	var partials, commRevision, commRelbranch sql.NullString
	var promptWaitTime sql.NullInt64
	if release.Desktop != nil {
		partials = nullString(release.Desktop.Partials)
		if release.Desktop.PromptWaitTime != nil {
			promptWaitTime = sql.NullInt64{Int64: int64(*release.Desktop.PromptWaitTime), Valid: true}
		}
	}
	if release.Thunderbird != nil {
		commRevision = nullString(release.Thunderbird.CommRevision)
		commRelbranch = nullString(release.Thunderbird.CommRelbranch)
	}

	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO releases (
		   name, product, submitter, submitted_at, version, build_number, branch, mozilla_revision,
		   mozilla_relbranch, l10n_changesets, dashboard_check, en_us_platforms, comment, ready, complete, status,
		   partials, prompt_wait_time, comm_revision, comm_relbranch
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		release.Name(),
		string(release.Product),
		release.Core.Submitter,
		toMillis(submittedAt),
		strings.TrimSpace(release.Core.Version),
		release.Core.BuildNumber,
		strings.TrimSpace(release.Core.Branch),
		strings.TrimSpace(release.Core.MozillaRevision),
		nullString(release.Core.MozillaRelbranch),
		release.Core.L10nChangesets,
		release.Core.DashboardCheck,
		nullString(release.Core.EnUSPlatforms),
		nullString(release.Core.Comment),
		release.Core.Ready,
		release.Core.Complete,
		release.Core.Status,
		partials,
		promptWaitTime,
		commRevision,
		commRelbranch,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("release %v already exists", release.Name())
		}
		return fmt.Errorf("insert release: %w", err)
	}

	return nil
}

const releaseColumns = `product, submitter, submitted_at, version, build_number, branch, mozilla_revision,
	mozilla_relbranch, l10n_changesets, dashboard_check, en_us_platforms, comment, ready, complete, status,
	partials, prompt_wait_time, comm_revision, comm_relbranch`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRelease(row rowScanner) (release api.Release, err error) {

	var product string
	var submittedAt int64
	var mozillaRelbranch, enUSPlatforms, comment, partials, commRevision, commRelbranch sql.NullString
	var promptWaitTime sql.NullInt64

	err = row.Scan(
		&product,
		&release.Core.Submitter,
		&submittedAt,
		&release.Core.Version,
		&release.Core.BuildNumber,
		&release.Core.Branch,
		&release.Core.MozillaRevision,
		&mozillaRelbranch,
		&release.Core.L10nChangesets,
		&release.Core.DashboardCheck,
		&enUSPlatforms,
		&comment,
		&release.Core.Ready,
		&release.Core.Complete,
		&release.Core.Status,
		&partials,
		&promptWaitTime,
		&commRevision,
		&commRelbranch,
	)
	if err != nil {
		return
	}

	release.Product = api.Product(product)
	release.Core.SubmittedAt = fromMillis(submittedAt)
	release.Core.MozillaRelbranch = mozillaRelbranch.String
	release.Core.EnUSPlatforms = enUSPlatforms.String
	release.Core.Comment = comment.String

	if release.Product.IsDesktop() {
		release.Desktop = desktopFields(partials, promptWaitTime)
	}
	if release.Product == api.ProductThunderbird {
		release.Thunderbird = &api.ThunderbirdFields{
			CommRevision:  commRevision.String,
			CommRelbranch: commRelbranch.String,
		}
	}

	return release, nil
}

func desktopFields(partials sql.NullString, promptWaitTime sql.NullInt64) *api.DesktopFields {
	fields := &api.DesktopFields{Partials: partials.String}
	if promptWaitTime.Valid {
		wait := int(promptWaitTime.Int64)
		fields.PromptWaitTime = &wait
	}
	return fields
}

func (c *client) GetRelease(ctx context.Context, releaseName string) (api.Release, error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "EventStore::GetRelease")
	defer span.Finish()

	release, err := scanRelease(c.db.QueryRowContext(ctx, `SELECT `+releaseColumns+` FROM releases WHERE name = ?`, releaseName))
	if errors.Is(err, sql.ErrNoRows) {
		return api.Release{}, fmt.Errorf("%w: %v", api.ErrNotFound, releaseName)
	}
	if err != nil {
		return api.Release{}, fmt.Errorf("get release: %w", err)
	}

	return release, nil
}

func (c *client) ListReleases(ctx context.Context, ready, complete *bool) ([]api.Release, error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "EventStore::ListReleases")
	defer span.Finish()

	query := `SELECT ` + releaseColumns + ` FROM releases`
	conditions := []string{}
	args := []interface{}{}
	if ready != nil {
		conditions = append(conditions, `ready = ?`)
		args = append(args, *ready)
	}
	if complete != nil {
		conditions = append(conditions, `complete = ?`)
		args = append(args, *complete)
	}
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, ` AND `)
	}
	query += ` ORDER BY submitted_at DESC, name`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query releases: %w", err)
	}
	defer rows.Close()

	releases := []api.Release{}
	for rows.Next() {
		release, err := scanRelease(rows)
		if err != nil {
			return nil, fmt.Errorf("scan release: %w", err)
		}
		releases = append(releases, release)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate releases: %w", err)
	}

	return releases, nil
}

func (c *client) MaxBuildNumber(ctx context.Context, product api.Product, version string) (int, error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "EventStore::MaxBuildNumber")
	defer span.Finish()

	var max sql.NullInt64
	err := c.db.QueryRowContext(ctx, `SELECT MAX(build_number) FROM releases WHERE product = ? AND version = ?`, string(product), strings.TrimSpace(version)).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("query max build number: %w", err)
	}

	return int(max.Int64), nil
}

func (c *client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
