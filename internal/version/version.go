// Package version checks a template's requires constraint against the
// running generator version.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Dev is the version reported by builds without release ldflags.
const Dev = "dev"

// IncompatibleError is returned when the generator does not satisfy a
// template's constraint.
type IncompatibleError struct {
	Constraint string
	Current    string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("template requires version %s, running %s", e.Constraint, e.Current)
}

// Check reports whether current satisfies constraint. An empty constraint
// always passes, as does a development build.
func Check(constraint, current string) error {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("parsing requires constraint %q: %w", constraint, err)
	}
	if current == "" || current == Dev {
		return nil
	}
	v, err := parseSemver(current)
	if err != nil {
		return fmt.Errorf("parsing current version %q: %w", current, err)
	}
	if !c.Check(v) {
		return &IncompatibleError{Constraint: constraint, Current: current}
	}
	return nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	return semver.NewVersion(version)
}
