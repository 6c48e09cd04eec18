package depparse

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// UsedUnit is a sub-record of a unit manifest naming one imported unit's
// source and dep-file basenames (§6).
type UsedUnit struct {
	UnitName       string
	SourceBasename string
	DepBasename    string
}

// SubunitDependency is a subunit dependency record, only present when
// no_split_units is in effect (§6): a subunit's name, its parent unit's
// name, and the subunit's own source basename.
type SubunitDependency struct {
	SubunitName    string
	ParentUnit     string
	SourceBasename string
}

// UnitManifest is the parsed structured record produced by compilers using
// the UnitManifest dependency kind (§6, §4.4.i of the original spec).
type UnitManifest struct {
	Unit     string
	Used     []UsedUnit
	Subunits []SubunitDependency
}

// ParseUnitManifest reads a unit-manifest dep file. Lines are tagged by
// their first field:
//
//	U <unit>                                   -- the compiled unit itself
//	W <unit> <source-basename> <dep-basename>   -- a used ("with"ed) unit
//	D <subunit> <parent-unit> <source-basename> -- a subunit dependency
//
// D records are only honored when noSplitUnits is true, matching §6's
// "when no_split_units is in effect" qualifier; otherwise they are
// ignored, as they would be had the compiler not been asked to produce
// them.
func ParseUnitManifest(path string, noSplitUnits bool) (*UnitManifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := &UnitManifest{}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "U":
			if len(fields) != 2 {
				return nil, fmt.Errorf("%s:%d: malformed U record", path, lineNo)
			}
			m.Unit = fields[1]
		case "W":
			if len(fields) != 4 {
				return nil, fmt.Errorf("%s:%d: malformed W record", path, lineNo)
			}
			m.Used = append(m.Used, UsedUnit{
				UnitName:       fields[1],
				SourceBasename: fields[2],
				DepBasename:    fields[3],
			})
		case "D":
			if !noSplitUnits {
				continue
			}
			if len(fields) != 4 {
				return nil, fmt.Errorf("%s:%d: malformed D record", path, lineNo)
			}
			m.Subunits = append(m.Subunits, SubunitDependency{
				SubunitName:    fields[1],
				ParentUnit:     fields[2],
				SourceBasename: fields[3],
			})
		default:
			return nil, fmt.Errorf("%s:%d: unknown record kind %q", path, lineNo, fields[0])
		}
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}
	if m.Unit == "" {
		return nil, fmt.Errorf("%s: missing U record", path)
	}

	return m, nil
}

// UsedSourceBasenames returns the source basenames of every used unit plus
// every subunit dependency's source, for use by the staleness oracle (§4.4
// step 3: "declares a source whose current timestamp is newer than the
// dep's own") and by the supervisor's closure computation (§4.9).
func (m *UnitManifest) UsedSourceBasenames() []string {
	out := make([]string, 0, len(m.Used)+len(m.Subunits))
	for _, u := range m.Used {
		out = append(out, u.SourceBasename)
	}
	for _, s := range m.Subunits {
		out = append(out, s.SourceBasename)
	}
	return out
}
