package toolcheck

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// versionPattern matches the first dotted version number in probe
// output, tolerating tool banners like "git version 2.43.0" or
// "v18.19.1 (lts)".
var versionPattern = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?)`)

// ExtractVersion pulls the first version-shaped token out of raw probe
// output. Returns an empty string when none is found.
func ExtractVersion(output string) string {
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return ""
	}
	return m[1]
}

// ValidateVersion applies the version policy: the observed version must
// share the required version's major number and be at least the required
// version. A different major fails even when numerically newer, since
// major bumps signal breaking changes.
func ValidateVersion(observed, required string) (bool, error) {
	obs, err := semver.NewVersion(observed)
	if err != nil {
		return false, fmt.Errorf("parsing observed version %q: %w", observed, err)
	}
	req, err := semver.NewVersion(required)
	if err != nil {
		return false, fmt.Errorf("parsing required version %q: %w", required, err)
	}
	return obs.Major() == req.Major() && !obs.LessThan(req), nil
}
