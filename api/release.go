package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Product identifies which kind of release a record describes
type Product string

const (
	ProductFirefox     Product = "firefox"
	ProductThunderbird Product = "thunderbird"
	ProductFennec      Product = "fennec"
)

// IsDesktop returns true for products that ship partial updates
func (p Product) IsDesktop() bool {
	return p == ProductFirefox || p == ProductThunderbird
}

// ParseProduct maps a product name onto a known Product
func ParseProduct(value string) (Product, error) {
	switch Product(strings.ToLower(strings.TrimSpace(value))) {
	case ProductFirefox:
		return ProductFirefox, nil
	case ProductThunderbird:
		return ProductThunderbird, nil
	case ProductFennec:
		return ProductFennec, nil
	}
	return "", fmt.Errorf("unknown product %q", value)
}

// ProductFromReleaseName derives the product from the prefix of a release name like firefox-60.0-build1
func ProductFromReleaseName(releaseName string) (Product, error) {
	name := strings.ToLower(releaseName)
	for _, p := range []Product{ProductFennec, ProductFirefox, ProductThunderbird} {
		if strings.HasPrefix(name, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("can't find release product for release %v", releaseName)
}

// ReleaseName builds the canonical name of a release
func ReleaseName(product Product, version string, buildNumber int) string {
	return fmt.Sprintf("%v-%v-build%v", product, strings.TrimSpace(version), buildNumber)
}

// ReleaseCore holds the fields every product's release record carries
type ReleaseCore struct {
	Submitter        string    `json:"submitter" yaml:"submitter"`
	SubmittedAt      time.Time `json:"submittedAt" yaml:"submittedAt"`
	Version          string    `json:"version" yaml:"version"`
	BuildNumber      int       `json:"buildNumber" yaml:"buildNumber"`
	Branch           string    `json:"branch" yaml:"branch"`
	MozillaRevision  string    `json:"mozillaRevision" yaml:"mozillaRevision"`
	MozillaRelbranch string    `json:"mozillaRelbranch,omitempty" yaml:"mozillaRelbranch,omitempty"`
	L10nChangesets   string    `json:"l10nChangesets" yaml:"l10nChangesets"`
	DashboardCheck   bool      `json:"dashboardCheck" yaml:"dashboardCheck"`
	EnUSPlatforms    string    `json:"enUSPlatforms,omitempty" yaml:"enUSPlatforms,omitempty"`
	Comment          string    `json:"comment,omitempty" yaml:"comment,omitempty"`
	Ready            bool      `json:"ready" yaml:"ready"`
	Complete         bool      `json:"complete" yaml:"complete"`
	Status           string    `json:"status" yaml:"status"`
}

// DesktopFields are carried by firefox and thunderbird releases
type DesktopFields struct {
	Partials       string `json:"partials,omitempty" yaml:"partials,omitempty"`
	PromptWaitTime *int   `json:"promptWaitTime,omitempty" yaml:"promptWaitTime,omitempty"`
}

// ThunderbirdFields are carried by thunderbird releases only
type ThunderbirdFields struct {
	CommRevision  string `json:"commRevision,omitempty" yaml:"commRevision,omitempty"`
	CommRelbranch string `json:"commRelbranch,omitempty" yaml:"commRelbranch,omitempty"`
}

// Release is a release record; Product decides which of the optional payloads are set
type Release struct {
	Product     Product            `json:"product"`
	Core        ReleaseCore        `json:"core"`
	Desktop     *DesktopFields     `json:"desktop,omitempty"`
	Thunderbird *ThunderbirdFields `json:"thunderbird,omitempty"`
}

// Name returns the canonical release name
func (r Release) Name() string {
	return ReleaseName(r.Product, r.Core.Version, r.Core.BuildNumber)
}

// Validate checks that the product specific payloads match the product
func (r Release) Validate() error {
	if _, err := ParseProduct(string(r.Product)); err != nil {
		return err
	}
	if strings.TrimSpace(r.Core.Version) == "" {
		return fmt.Errorf("version is required")
	}
	if r.Core.BuildNumber <= 0 {
		return fmt.Errorf("build number must be greater than zero")
	}
	if !r.Product.IsDesktop() && r.Desktop != nil {
		return fmt.Errorf("%v releases have no desktop fields", r.Product)
	}
	if r.Product != ProductThunderbird && r.Thunderbird != nil {
		return fmt.Errorf("%v releases have no thunderbird fields", r.Product)
	}
	return nil
}

// Platforms parses the declared en-US platform list
func (r Release) Platforms() ([]string, error) {
	return ParsePlatforms(r.Core.EnUSPlatforms)
}

// ParsePlatforms decodes a json encoded platform list; missing, empty or malformed lists are configuration errors
func ParsePlatforms(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: no platforms declared", ErrConfiguration)
	}

	var platforms []string
	if err := json.Unmarshal([]byte(raw), &platforms); err != nil {
		return nil, fmt.Errorf("%w: platforms %q can't be parsed: %v", ErrConfiguration, raw, err)
	}
	if len(platforms) == 0 {
		return nil, fmt.Errorf("%w: no platforms declared", ErrConfiguration)
	}

	seen := make(map[string]bool, len(platforms))
	ordered := make([]string, 0, len(platforms))
	for _, p := range platforms {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("%w: platforms %q contain an empty value", ErrConfiguration, raw)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		ordered = append(ordered, p)
	}

	return ordered, nil
}

// FormatPlatforms encodes a platform list the way it is stored on a release record
func FormatPlatforms(platforms []string) (string, error) {
	bytes, err := json.Marshal(platforms)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
