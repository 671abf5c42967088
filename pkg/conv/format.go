package conv

import (
	"fmt"
	"regexp"
	"strings"
)

// namedVerb matches "%%" or a named substitution such as "%(nick)s" or "%(count)5d".
var namedVerb = regexp.MustCompile(`%%|%\(([^)]+)\)([-+# 0-9.]*)([a-zA-Z])`)

// Format applies printf-style positional substitution. Text without args is
// returned verbatim so literal percent signs survive.
func Format(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// FormatNamed resolves "%(name)verb" substitutions from values. The "s" verb
// prints any value the way %v does. Unknown names render as "%!verb(MISSING name)".
func FormatNamed(format string, values map[string]any) string {
	if len(values) == 0 {
		return format
	}

	return namedVerb.ReplaceAllStringFunc(format, func(m string) string {
		if m == "%%" {
			return "%"
		}

		parts := namedVerb.FindStringSubmatch(m)
		name, flags, verb := parts[1], parts[2], parts[3]
		value, ok := values[name]
		if !ok {
			return fmt.Sprintf("%%!%s(MISSING %s)", verb, name)
		}
		if verb == "s" {
			verb = "v"
		}
		return fmt.Sprintf("%"+flags+verb, value)
	})
}

// Lines splits outbound text into lines, accepting both \n and \r\n.
func Lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
