// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersions orders two version strings. Versions that both parse as
// semantic versions are compared semantically; otherwise they are compared
// lexically. The empty version sorts before every other version.
func CompareVersions(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		if c := va.Compare(vb); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

// SortVersions returns a copy of versions ordered newest first.
func SortVersions(versions []string) []string {
	sorted := slices.Clone(versions)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return CompareVersions(b, a)
	})
	return sorted
}

// MatchesConstraint reports whether version satisfies a semver constraint
// such as "^1.2" or ">=1.0, <2.0". Unparseable versions never match.
func MatchesConstraint(version, constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, err
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, nil
	}
	return c.Check(v), nil
}
