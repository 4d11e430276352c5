package api

// Chunks counts the fan-out units reported for one platform of a stage
type Chunks struct {
	Num   int `json:"num"`
	Total int `json:"total"`
}

// PlatformStatus is the progress of a single platform within a chunked stage
type PlatformStatus struct {
	Complete bool    `json:"complete"`
	Chunks   Chunks  `json:"chunks"`
	Progress float64 `json:"progress"`
}

// StageStatus is the progress of one stage; Platforms is only set for chunked stages
type StageStatus struct {
	Complete  bool                      `json:"complete"`
	Progress  float64                   `json:"progress"`
	Platforms map[string]PlatformStatus `json:"platforms,omitempty"`
}

// StatusReport is the derived status of a release; it is never stored
type StatusReport struct {
	Name        string      `json:"name"`
	Tag         StageStatus `json:"tag"`
	Build       StageStatus `json:"build"`
	Repack      StageStatus `json:"repack"`
	Update      StageStatus `json:"update"`
	ReleaseTest StageStatus `json:"releasetest"`
	Release     StageStatus `json:"release"`
	PostRelease StageStatus `json:"postrelease"`
}

// StageNames lists the stages of a StatusReport in pipeline order
var StageNames = []string{
	GroupTag,
	GroupBuild,
	GroupRepack,
	GroupUpdate,
	GroupReleaseTest,
	GroupRelease,
	GroupPostRelease,
}

// Stages returns the stages of the report keyed by stage name
func (r StatusReport) Stages() map[string]StageStatus {
	return map[string]StageStatus{
		GroupTag:         r.Tag,
		GroupBuild:       r.Build,
		GroupRepack:      r.Repack,
		GroupUpdate:      r.Update,
		GroupReleaseTest: r.ReleaseTest,
		GroupRelease:     r.Release,
		GroupPostRelease: r.PostRelease,
	}
}

// Complete returns true once every stage is complete
func (r StatusReport) Complete() bool {
	for _, s := range r.Stages() {
		if !s.Complete {
			return false
		}
	}
	return true
}
