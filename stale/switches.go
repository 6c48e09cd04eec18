// Package stale implements the staleness oracle and the switches-file
// protocol described in §4.4 and §6.
package stale

import (
	"bufio"
	"fmt"
	"os"
	"time"
)

// timestampLayout is the opaque byte-string representation of a file
// timestamp stamped into line 1 of a switches file (§6: "object-file
// timestamp as an opaque byte string equal to the implementation's
// file-stamp representation"). Nanosecond RFC3339 gives an exact,
// monotonic-safe-enough textual round trip through a plain text file.
const timestampLayout = time.RFC3339Nano

// WriteSwitchesFile writes the switches-file format described in §6: line
// 1 is the object timestamp, lines 2..K are argv exactly as passed (no
// quoting), lines K+1..end are the trailing required switches.
//
// A write failure here is the one I/O error §7 calls fatal ("disk full"):
// the caller is expected to treat a non-nil error as fatal to the whole
// compilation phase, not just this source.
func WriteSwitchesFile(path string, objTimestamp time.Time, argv, trailingSwitches []string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("disk full or unwritable switches file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintln(w, objTimestamp.UTC().Format(timestampLayout)); err != nil {
		return fmt.Errorf("disk full writing switches file %s: %w", path, err)
	}
	for _, a := range argv {
		if _, err := fmt.Fprintln(w, a); err != nil {
			return fmt.Errorf("disk full writing switches file %s: %w", path, err)
		}
	}
	for _, t := range trailingSwitches {
		if _, err := fmt.Fprintln(w, t); err != nil {
			return fmt.Errorf("disk full writing switches file %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("disk full writing switches file %s: %w", path, err)
	}
	return nil
}

// SwitchesFile is the parsed contents of a switches file.
type SwitchesFile struct {
	ObjTimestamp time.Time
	Argv         []string
	Trailing     []string
}

// ReadSwitchesFile reads and parses a switches file written by
// WriteSwitchesFile. trailingCount is how many of the last lines belong to
// Trailing (the rest of the non-timestamp lines are Argv) -- the file itself
// doesn't delimit the two, so the caller (which knows the current language
// config's trailing-switch count) must supply it.
func ReadSwitchesFile(path string, trailingCount int) (*SwitchesFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("switches file %s is empty", path)
	}

	ts, err := time.Parse(timestampLayout, lines[0])
	if err != nil {
		return nil, fmt.Errorf("switches file %s: bad timestamp: %w", path, err)
	}

	rest := lines[1:]
	if trailingCount > len(rest) {
		return nil, fmt.Errorf("switches file %s: shorter than expected trailing-switch count", path)
	}

	split := len(rest) - trailingCount
	return &SwitchesFile{
		ObjTimestamp: ts,
		Argv:         rest[:split],
		Trailing:     rest[split:],
	}, nil
}
