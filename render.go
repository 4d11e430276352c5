package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/estafette/estafette-ci-release-status/api"
	"github.com/estafette/estafette-ci-release-status/config"
	"github.com/logrusorgru/aurora"
	"github.com/olekukonko/tablewriter"
)

func renderStatus(w io.Writer, report api.StatusReport, format string) error {

	if format == config.OutputFormatJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	fmt.Fprintf(w, "%v\n", report.Name)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Stage", "Platform", "Chunks", "Progress", "Complete"})

	stages := report.Stages()
	for _, name := range api.StageNames {
		stage := stages[name]
		table.Append([]string{name, "", "", formatProgress(stage.Progress), formatComplete(stage.Complete)})

		platforms := make([]string, 0, len(stage.Platforms))
		for p := range stage.Platforms {
			platforms = append(platforms, p)
		}
		sort.Strings(platforms)

		for _, p := range platforms {
			platform := stage.Platforms[p]
			table.Append([]string{"", p, fmt.Sprintf("%v/%v", platform.Chunks.Num, platform.Chunks.Total), formatProgress(platform.Progress), formatComplete(platform.Complete)})
		}
	}

	table.Render()

	return nil
}

func renderEvents(w io.Writer, events []api.ReleaseEvent) {

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Sent", "Event", "Group", "Platform", "Results", "Chunk"})

	for _, e := range events {
		table.Append([]string{
			e.SentAt.Format("2006-01-02T15:04:05"),
			e.EventName,
			e.Group,
			e.Platform,
			strconv.Itoa(e.Results),
			fmt.Sprintf("%v/%v", e.ChunkNum, e.ChunkTotal),
		})
	}

	table.Render()
}

func renderReleases(w io.Writer, releases []api.Release) {

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Submitter", "Submitted", "Branch", "Platforms", "Ready", "Complete"})

	for _, r := range releases {
		table.Append([]string{
			r.Name(),
			r.Core.Submitter,
			r.Core.SubmittedAt.Format("2006-01-02T15:04:05Z07:00"),
			r.Core.Branch,
			r.Core.EnUSPlatforms,
			formatComplete(r.Core.Ready),
			formatComplete(r.Core.Complete),
		})
	}

	table.Render()
}

func formatProgress(progress float64) string {
	return fmt.Sprintf("%.0f%%", progress*100)
}

func formatComplete(complete bool) string {
	if complete {
		return aurora.Green("yes").String()
	}
	return aurora.Gray(12, "no").String()
}
