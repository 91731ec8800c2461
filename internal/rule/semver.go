package rule

import (
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// Only strict X.Y.Z versions participate in ordering. Build metadata,
// prereleases and vendor-specific strings are ignorable, not errors.
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// IsSemver reports whether v is a strict major.minor.patch version.
func IsSemver(v string) bool {
	return semverPattern.MatchString(v)
}

func parseValid(versions []string) []*semver.Version {
	var res []*semver.Version
	for _, v := range versions {
		if !IsSemver(v) {
			continue
		}
		parsed, err := semver.NewVersion(v)
		if err != nil {
			continue
		}
		res = append(res, parsed)
	}
	return res
}

// FindLatestVersion returns the maximum version under semantic ordering.
// Non-semver strings are skipped; ok is false when nothing valid remains.
func FindLatestVersion(versions []string) (string, bool) {
	valid := parseValid(versions)
	if len(valid) == 0 {
		return "", false
	}

	latest := valid[0]
	for _, v := range valid[1:] {
		if v.GreaterThan(latest) {
			latest = v
		}
	}
	return latest.String(), true
}

// FindPreviousVersion returns the largest version strictly less than cur.
func FindPreviousVersion(cur string, versions []string) (string, bool) {
	curVer, err := semver.NewVersion(cur)
	if err != nil {
		return "", false
	}

	var prev *semver.Version
	for _, v := range parseValid(versions) {
		if !v.LessThan(curVer) {
			continue
		}
		if prev == nil || v.GreaterThan(prev) {
			prev = v
		}
	}
	if prev == nil {
		return "", false
	}
	return prev.String(), true
}

// versionGreater reports a > b under semantic ordering. Either side being
// non-semver means no ordering exists and the comparison is false.
func versionGreater(a, b string) bool {
	if !IsSemver(a) || !IsSemver(b) {
		return false
	}
	av, err := semver.NewVersion(a)
	if err != nil {
		return false
	}
	bv, err := semver.NewVersion(b)
	if err != nil {
		return false
	}
	return av.GreaterThan(bv)
}
