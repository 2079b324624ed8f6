// Package semver wraps Masterminds/semver with the version and constraint
// conventions used across the Forge and the legacy Hub data.
package semver

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	msemver "github.com/Masterminds/semver/v3"

	"forge-service/internal/core/domain"
)

var (
	wildcardPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.[xX*]$`)
	exactPattern    = regexp.MustCompile(`^v?\d+(\.\d+){0,2}(-[0-9A-Za-z.-]+)?$`)
)

// Parse accepts loose version strings ("v1.2", "1.2.3-beta.1") and returns
// their components.
func Parse(version string) (domain.VersionParts, error) {
	v, err := msemver.NewVersion(strings.TrimSpace(version))
	if err != nil {
		return domain.VersionParts{}, fmt.Errorf("%w: %q", domain.ErrInvalidVersion, version)
	}
	return domain.VersionParts{
		Major: int64(v.Major()),
		Minor: int64(v.Minor()),
		Patch: int64(v.Patch()),
		Label: v.Prerelease(),
	}, nil
}

// Canonical returns the normalised "X.Y.Z[-label]" form of version.
func Canonical(version string) (string, error) {
	v, err := msemver.NewVersion(strings.TrimSpace(version))
	if err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidVersion, version)
	}
	return v.String(), nil
}

// NormalizeConstraint cleans up a user or Hub supplied constraint. Empty
// means any version, "3.8.x" becomes "~3.8.0", a bare "1.2.3" pins with
// "=1.2.3" and HTML escaped operators are restored.
func NormalizeConstraint(raw string) string {
	c := strings.TrimSpace(raw)
	c = strings.NewReplacer("&gt;", ">", "&lt;", "<", "&amp;", "&").Replace(c)
	if c == "" {
		return "*"
	}
	if m := wildcardPattern.FindStringSubmatch(c); m != nil {
		return fmt.Sprintf("~%s.%s.0", m[1], m[2])
	}
	if exactPattern.MatchString(c) {
		return "=" + c
	}
	return c
}

// ValidateConstraint reports whether raw parses as a constraint.
func ValidateConstraint(raw string) error {
	if _, err := msemver.NewConstraint(NormalizeConstraint(raw)); err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidConstraint, raw)
	}
	return nil
}

// Satisfies reports whether version matches constraint.
func Satisfies(constraint, version string) (bool, error) {
	c, err := msemver.NewConstraint(NormalizeConstraint(constraint))
	if err != nil {
		return false, fmt.Errorf("%w: %q", domain.ErrInvalidConstraint, constraint)
	}
	v, err := msemver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("%w: %q", domain.ErrInvalidVersion, version)
	}
	return c.Check(v), nil
}

// Matching returns every entry of versions that satisfies constraint, highest
// first. Unparseable versions are ignored.
func Matching(constraint string, versions []string) ([]string, error) {
	c, err := msemver.NewConstraint(NormalizeConstraint(constraint))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidConstraint, constraint)
	}

	type pair struct {
		raw string
		v   *msemver.Version
	}
	var matched []pair
	for _, raw := range versions {
		v, err := msemver.NewVersion(raw)
		if err != nil {
			continue
		}
		if c.Check(v) {
			matched = append(matched, pair{raw: raw, v: v})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].v.GreaterThan(matched[j].v)
	})

	out := make([]string, 0, len(matched))
	for _, p := range matched {
		out = append(out, p.raw)
	}
	return out, nil
}

// Latest returns the highest version satisfying constraint.
func Latest(constraint string, versions []string) (string, bool, error) {
	matched, err := Matching(constraint, versions)
	if err != nil {
		return "", false, err
	}
	if len(matched) == 0 {
		return "", false, nil
	}
	return matched[0], true, nil
}

// Compare orders two versions like strings.Compare. Unparseable versions sort
// before parseable ones.
func Compare(a, b string) int {
	va, errA := msemver.NewVersion(a)
	vb, errB := msemver.NewVersion(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return va.Compare(vb)
}
