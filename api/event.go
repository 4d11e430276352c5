package api

import "time"

// Group names a stage of the release pipeline that events report against
const (
	GroupTag          = "tag"
	GroupBuild        = "build"
	GroupRepack       = "repack"
	GroupUpdate       = "update"
	GroupReleaseTest  = "releasetest"
	GroupUpdateVerify = "update_verify"
	GroupRelease      = "release"
	GroupPostRelease  = "postrelease"
)

// KnownGroups lists every group an event can be filed under; an empty group is allowed as well
var KnownGroups = []string{
	GroupTag,
	GroupBuild,
	GroupRepack,
	GroupUpdate,
	GroupReleaseTest,
	GroupUpdateVerify,
	GroupRelease,
	GroupPostRelease,
}

// IsKnownGroup returns true for an empty group or one of KnownGroups
func IsKnownGroup(group string) bool {
	if group == "" {
		return true
	}
	for _, g := range KnownGroups {
		if g == group {
			return true
		}
	}
	return false
}

// ReleaseEvent is a single fact reported by release automation; the pair ReleaseName and EventName is unique
type ReleaseEvent struct {
	ReleaseName string    `json:"name"`
	SentAt      time.Time `json:"sent"`
	EventName   string    `json:"event_name"`
	Group       string    `json:"group,omitempty"`
	Platform    string    `json:"platform,omitempty"`
	Results     int       `json:"results"`
	ChunkNum    int       `json:"chunkNum"`
	ChunkTotal  int       `json:"chunkTotal"`
}
