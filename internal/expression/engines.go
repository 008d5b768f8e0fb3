package expression

import (
	"strings"

	"github.com/aymerick/raymond"
	"github.com/cbroglie/mustache"
	"github.com/flosch/pongo2/v6"

	"github.com/modkit/brickflow/internal/fault"
	"github.com/modkit/brickflow/internal/schema"
)

// renderTemplate renders a template string against the execution context
// with the engine named by tag. The result is always a string.
func renderTemplate(tag schema.Tag, template string, ectx map[string]any, autoescape bool) (string, error) {
	vars := templateVars(ectx)

	switch tag {
	case schema.TagMustache:
		out, err := mustache.Render(template, vars)
		if err != nil {
			return "", fault.Businessf("mustache template failed: %w", err)
		}
		return out, nil

	case schema.TagHandlebars:
		out, err := raymond.Render(template, vars)
		if err != nil {
			return "", fault.Businessf("handlebars template failed: %w", err)
		}
		return out, nil

	case schema.TagNunjucks:
		src := template
		if !autoescape {
			// pongo2 autoescapes by default; older apiVersions expect raw
			// interpolation, so the whole template is wrapped instead of
			// flipping the engine-wide switch.
			src = "{% autoescape off %}" + template + "{% endautoescape %}"
		}
		tpl, err := pongo2.FromString(src)
		if err != nil {
			return "", fault.Businessf("nunjucks template failed to parse: %w", err)
		}
		out, err := tpl.Execute(pongo2.Context(vars))
		if err != nil {
			return "", fault.Businessf("nunjucks template failed: %w", err)
		}
		return out, nil

	default:
		panic("expression: renderTemplate called with non-template tag " + string(tag))
	}
}

// templateVars prepares the execution context for the template engines.
// Context keys carry a leading "@" ("@input", "@options", output keys), and
// not every engine tolerates that in a variable name, so each such key is
// additionally exposed under its bare alias. Existing bare keys win over
// aliases.
func templateVars(ectx map[string]any) map[string]any {
	vars := make(map[string]any, len(ectx)*2)
	for k, v := range ectx {
		vars[k] = v
	}
	for k, v := range ectx {
		alias := strings.TrimPrefix(k, "@")
		if alias == k {
			continue
		}
		if _, taken := vars[alias]; !taken {
			vars[alias] = v
		}
	}
	return vars
}
