package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Version information for the gotoc CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Major, Minor and Patch make up the semantic version.
	Major = "0"
	Minor = "1"
	Patch = "0"

	// Suffix is appended to the version, e.g. "-dev" or "-rc.1".
	Suffix = "-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Plain is the undecorated version string.
func Plain() string {
	return Major + "." + Minor + "." + Patch + Suffix
}

// Colored renders the version with each component highlighted. Colors are
// dropped when color.NoColor is set.
func Colored() string {
	return versionMajorColor.Sprint(Major) + "." + versionMinorColor.Sprint(Minor) + "." + versionPatchColor.Sprint(Patch) + Suffix
}

// Describe is the multi-line report printed by `gotoc version`.
func Describe(colored bool) string {
	var b strings.Builder
	v := Plain()
	if colored {
		v = Colored()
	}
	fmt.Fprintf(&b, "gotoc %s\n", v)
	if GitCommit != "" {
		fmt.Fprintf(&b, "commit: %s\n", GitCommit)
	}
	if BuildDate != "" {
		fmt.Fprintf(&b, "built:  %s\n", BuildDate)
	}
	return b.String()
}
