package respfile

import (
	"fmt"
	"os"
)

// Format selects one of the response-file layouts a compiler's argument
// file convention might expect (§4.2, §6).
type Format int

const (
	// FormatPlain writes one argument per line, no quoting.
	FormatPlain Format = iota

	// FormatQuoted wraps the whole list in `INPUT ( ... )`, one quoted
	// argument per line, matching §6's "Response-file format produced
	// (quoted form)".
	FormatQuoted
)

// Write creates a fresh temp file under dir (os.CreateTemp's usual rules
// apply when dir == ""), writes args to it in the given format, registers
// the path with reg so it is cleaned up at driver exit, and returns the
// path.
func Write(reg *Registry, dir, pattern string, format Format, args []string) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("creating response file: %w", err)
	}
	path := f.Name()
	reg.Register(path)

	if err := writeFormat(f, format, args); err != nil {
		f.Close()
		return "", fmt.Errorf("writing response file %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing response file %s: %w", path, err)
	}

	return path, nil
}

func writeFormat(f *os.File, format Format, args []string) error {
	switch format {
	case FormatQuoted:
		if _, err := fmt.Fprintln(f, "INPUT ("); err != nil {
			return err
		}
		for _, a := range args {
			if _, err := fmt.Fprintf(f, "\"%s\"\n", a); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintln(f, ")")
		return err
	default:
		for _, a := range args {
			if _, err := fmt.Fprintln(f, a); err != nil {
				return err
			}
		}
		return nil
	}
}
