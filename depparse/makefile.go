// Package depparse implements the two dependency-file post-processors
// named in §4.4 and §6: Make-style `.d` files and compiler unit-manifest
// records.
package depparse

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// MakefileDeps is the result of parsing a Make-style dep file: a target
// followed by its whitespace-separated prerequisites (§6).
type MakefileDeps struct {
	Target        string
	Prerequisites []string
}

// ParseMakefile reads a Make-style dep file from path and extracts the
// target/prerequisite record described in §6: `<target>: <prereq> ...`,
// with `\` at end-of-line indicating a continuation, `#`-led lines and
// blank continuation-only lines ignored, and the first colon separating
// target from prerequisites.
//
// The resolved Open Question on the platform-conditional escape (§9):
// mid-line `\` is treated as a literal path-separator character everywhere
// except on Windows, where a `\` that is not immediately followed by
// another `\` or a space is considered part of the path rather than an
// escape -- i.e. only `\` at end-of-line is ever a continuation, and only
// on Windows does a bare mid-line `\` get special, path-aware handling.
func ParseMakefile(path string) (*MakefileDeps, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	logical, err := joinContinuations(f)
	if err != nil {
		return nil, err
	}

	for _, line := range logical {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			return nil, fmt.Errorf("%s: malformed dependency line, missing ':': %q", path, line)
		}

		target := strings.TrimSpace(line[:idx])
		prereqText := line[idx+1:]

		prereqs := strings.Fields(unescapeWindowsBackslashes(prereqText))

		return &MakefileDeps{Target: target, Prerequisites: prereqs}, nil
	}

	return nil, fmt.Errorf("%s: no target/prerequisite record found", path)
}

// ResolveMakefilePrerequisite canonicalizes a prerequisite token from a
// Make-style dep file: an absolute path is only cleaned, and a relative one
// is taken to be relative to sourceDir, the directory the dep file's own
// source lives in. Symlinks are not resolved.
func ResolveMakefilePrerequisite(sourceDir, prereq string) string {
	if filepath.IsAbs(prereq) {
		return filepath.Clean(prereq)
	}
	return filepath.Clean(filepath.Join(sourceDir, prereq))
}

// joinContinuations scans raw lines and merges any line ending in `\` with
// the one that follows it, per §6's continuation rule.
func joinContinuations(f *os.File) ([]string, error) {
	var out []string
	var cur strings.Builder
	inContinuation := false

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for sc.Scan() {
		line := sc.Text()

		if strings.HasSuffix(line, "\\") {
			cur.WriteString(strings.TrimSuffix(line, "\\"))
			cur.WriteByte(' ')
			inContinuation = true
			continue
		}

		cur.WriteString(line)
		out = append(out, cur.String())
		cur.Reset()
		inContinuation = false
	}
	if inContinuation {
		out = append(out, cur.String())
	}

	return out, sc.Err()
}

// unescapeWindowsBackslashes applies the Windows-only mid-line backslash
// rule: `\\` collapses to a literal `\`, and any other `\` is left as-is
// (treated as part of the path rather than an escape), matching the
// behavior spec.md flags as suspicious but asks implementers to pin down
// rather than redesign (§9). On non-Windows platforms this is a no-op.
func unescapeWindowsBackslashes(s string) string {
	if runtime.GOOS != "windows" {
		return s
	}
	return strings.ReplaceAll(s, `\\`, `\`)
}
