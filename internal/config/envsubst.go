package config

import (
	"os"
	"regexp"
	"strings"
)

// varPattern matches ${NAME}, ${NAME:-default} and ${NAME:?message}.
var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

func substituteEnvVars(content string) (string, []string) {
	return substituteVars(content, nil)
}

// substituteVars replaces variable references with values from the process
// environment, then from fallback. Unresolved references without a default
// are left as-is and reported in missing. Empty values count as unset for the
// :- and :? forms. Whole-line # comments are copied through untouched.
func substituteVars(content string, fallback map[string]string) (string, []string) {
	var missing []string
	seen := make(map[string]bool)

	lookup := func(name string) (string, bool) {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}
		v, ok := fallback[name]
		return v, ok
	}

	replace := func(match string) string {
		groups := varPattern.FindStringSubmatch(match)
		name, op, arg := groups[1], groups[2], groups[3]

		value, ok := lookup(name)
		switch op {
		case ":-":
			if !ok || value == "" {
				return arg
			}
			return value
		case ":?":
			if !ok || value == "" {
				if !seen[name] {
					seen[name] = true
					if arg != "" {
						missing = append(missing, name+" ("+arg+")")
					} else {
						missing = append(missing, name)
					}
				}
				return match
			}
			return value
		default:
			if !ok {
				if !seen[name] {
					seen[name] = true
					missing = append(missing, name)
				}
				return match
			}
			return value
		}
	}

	lines := strings.SplitAfter(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines[i] = varPattern.ReplaceAllStringFunc(line, replace)
	}
	return strings.Join(lines, ""), missing
}
