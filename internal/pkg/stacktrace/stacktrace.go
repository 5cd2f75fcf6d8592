package stacktrace

import "strings"

// InternalPaths returns the "internal/..." file:line frames of a raw stack
// trace, dropping runtime and third-party frames.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, ".go:") {
			continue
		}

		idx := strings.Index(line, "/internal/")
		if idx == -1 {
			continue
		}

		frame := line[idx+1:]
		if sp := strings.IndexByte(frame, ' '); sp != -1 {
			frame = frame[:sp]
		}
		paths = append(paths, frame)
	}

	return paths
}
