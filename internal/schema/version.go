package schema

import "fmt"

// APIVersion selects interpreter behavior for a mod. All steps of one
// pipeline run under a single version; mixing is rejected at load time and
// again by the resolver when it encounters evidence of the wrong mode.
type APIVersion string

const (
	// V1 is the legacy implicit-templating mode: plain string config values
	// are rendered as templates without explicit expression wrapping.
	V1 APIVersion = "v1"
	// V2 introduces explicit data flow: config values are only treated as
	// dynamic when wrapped in a tagged Expression.
	V2 APIVersion = "v2"
	// V3 additionally autoescapes template output and requires explicit
	// renderer handoff for sub-panels.
	V3 APIVersion = "v3"
)

// ParseAPIVersion validates a version string from configuration.
func ParseAPIVersion(s string) (APIVersion, error) {
	switch v := APIVersion(s); v {
	case V1, V2, V3:
		return v, nil
	default:
		return "", fmt.Errorf("unsupported apiVersion %q (expected v1, v2, or v3)", s)
	}
}

// VersionOptions are the behavior flags the interpreter derives from an
// APIVersion.
type VersionOptions struct {
	// ExplicitDataFlow is true when config values require Expression
	// wrapping (v2+). When false, plain strings are implicit templates.
	ExplicitDataFlow bool

	// ExplicitRender is true when renderer sub-pipelines must be invoked
	// through the renderer callback rather than the plain one (v3).
	ExplicitRender bool

	// AutoescapeTemplates is true when template engines HTML-escape their
	// interpolations by default (v3).
	AutoescapeTemplates bool
}

// Options returns the behavior flags for the version. Calling it on an
// unparsed, invalid version is a programmer error.
func (v APIVersion) Options() VersionOptions {
	switch v {
	case V1:
		return VersionOptions{}
	case V2:
		return VersionOptions{ExplicitDataFlow: true}
	case V3:
		return VersionOptions{ExplicitDataFlow: true, ExplicitRender: true, AutoescapeTemplates: true}
	default:
		panic(fmt.Sprintf("schema: options requested for invalid apiVersion %q", v))
	}
}
