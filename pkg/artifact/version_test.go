// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"slices"
	"testing"
)

func TestSortVersions(t *testing.T) {
	t.Parallel()

	got := SortVersions([]string{"1.2.0", "1.10.0", "", "1.9", "2.0.0-rc.1", "2.0.0"})
	want := []string{"2.0.0", "2.0.0-rc.1", "1.10.0", "1.9", "1.2.0", ""}
	if !slices.Equal(got, want) {
		t.Errorf("SortVersions() = %v, want %v", got, want)
	}
}

func TestCompareVersions_NonSemver(t *testing.T) {
	t.Parallel()

	if CompareVersions("beta", "alpha") <= 0 {
		t.Error("non-semver versions should compare lexically")
	}
	if CompareVersions("1.0", "1.0") != 0 {
		t.Error("equal versions should compare to zero")
	}
}

func TestMatchesConstraint(t *testing.T) {
	t.Parallel()

	ok, err := MatchesConstraint("1.4.2", "^1.2")
	if err != nil || !ok {
		t.Errorf("MatchesConstraint(1.4.2, ^1.2) = %v, %v", ok, err)
	}
	ok, err = MatchesConstraint("not-a-version", "^1.2")
	if err != nil || ok {
		t.Errorf("MatchesConstraint(not-a-version) = %v, %v", ok, err)
	}
	if _, err := MatchesConstraint("1.0.0", "!!"); err == nil {
		t.Error("expected constraint parse error")
	}
}
