package hubimport

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"forge-service/internal/semver"
)

var sptLabelPattern = regexp.MustCompile(`(?i)^\s*spt(?:-aki)?\s+v?(\d+\.\d+(?:\.\d+)?(?:-[0-9a-z.]+)?)\s*$`)

// SptVersionFromLabel extracts the version from a Hub label such as
// "SPT 3.9.0". The bool is false for labels that do not name a version.
func SptVersionFromLabel(label string) (string, bool) {
	m := sptLabelPattern.FindStringSubmatch(label)
	if m == nil {
		return "", false
	}
	version, err := semver.Canonical(m[1])
	if err != nil {
		return "", false
	}
	return version, true
}

// ConstraintFromLabels derives an SPT version constraint from the labels on
// a Hub version: "~X.Y.0" for one label, an inclusive range for several.
// Labels that are not versions are ignored; no versions yields "".
func ConstraintFromLabels(labels []string) string {
	seen := map[string]bool{}
	var versions []string
	for _, l := range labels {
		v, ok := SptVersionFromLabel(l)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		versions = append(versions, v)
	}

	switch len(versions) {
	case 0:
		return ""
	case 1:
		parts, err := semver.Parse(versions[0])
		if err != nil {
			return ""
		}
		return fmt.Sprintf("~%d.%d.0", parts.Major, parts.Minor)
	}

	sort.Slice(versions, func(i, j int) bool {
		return semver.Compare(versions[i], versions[j]) < 0
	})
	return fmt.Sprintf(">=%s <=%s", versions[0], versions[len(versions)-1])
}

// LicenseResolver maps Hub license ids to Forge license ids, falling back to
// a case-insensitive name match for licenses imported under another id.
type LicenseResolver struct {
	byHubID map[int64]int64
	byName  map[string]int64
}

func NewLicenseResolver() *LicenseResolver {
	return &LicenseResolver{byHubID: map[int64]int64{}, byName: map[string]int64{}}
}

func (r *LicenseResolver) Add(hubID, forgeID int64, name string) {
	r.byHubID[hubID] = forgeID
	if key := normalizeLicenseName(name); key != "" {
		r.byName[key] = forgeID
	}
}

// Resolve returns nil when neither the id nor the name is known.
func (r *LicenseResolver) Resolve(hubID int64, name string) *int64 {
	if id, ok := r.byHubID[hubID]; ok && hubID != 0 {
		return &id
	}
	if id, ok := r.byName[normalizeLicenseName(name)]; ok {
		return &id
	}
	return nil
}

func normalizeLicenseName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// StripPasswordPrefix returns a bcrypt hash usable by the Forge, or "" for
// legacy hash formats that cannot be verified. Woltlab stores bcrypt hashes
// as "Bcrypt:$2y$...".
func StripPasswordPrefix(hash string) string {
	hash = strings.TrimSpace(hash)
	if i := strings.Index(hash, ":"); i > 0 && !strings.HasPrefix(hash, "$") {
		if !strings.EqualFold(hash[:i], "bcrypt") {
			return ""
		}
		hash = hash[i+1:]
	}
	if !strings.HasPrefix(hash, "$2") {
		return ""
	}
	return hash
}
