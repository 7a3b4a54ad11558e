package pipeline

import "strings"

// ParseTrigger splits the renderer's output list into paths. The list is
// newline separated; surrounding whitespace and blank lines are dropped and
// CRLF line endings are tolerated.
func ParseTrigger(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Outputs returns args when given, otherwise the paths listed in the trigger
// environment variable. lookup is normally os.LookupEnv.
func Outputs(args []string, env string, lookup func(string) (string, bool)) []string {
	if len(args) > 0 {
		return args
	}
	raw, ok := lookup(env)
	if !ok {
		return nil
	}
	return ParseTrigger(raw)
}
