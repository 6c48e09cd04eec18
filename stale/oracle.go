package stale

import (
	"os"
	"path/filepath"
	"time"

	"forge/depparse"
	"forge/model"
)

// Decision is the result of running the oracle against one source: whether
// it must be recompiled, and -- when the language's dep kind is
// UnitManifest and a dep file was found and parsed along the way -- the
// manifest, so the supervisor doesn't have to parse it twice.
type Decision struct {
	MustCompile bool
	Manifest    *depparse.UnitManifest
}

// Params carries the inputs the oracle needs beyond the Source itself: the
// owning Tree (to resolve discovered dependency paths back to Sources), the
// run-wide always-compile override, whether check-switches consultation is
// enabled, the current argv/trailing switches that would be used if a
// compile is spawned, and whether the language was configured with
// no_split_units (affecting whether D records in a unit manifest count).
type Params struct {
	Tree             *model.Tree
	AlwaysCompile    bool
	CheckSwitches    bool
	Argv             []string
	TrailingSwitches []string
	NoSplitUnits     bool
}

// Decide runs the five-step staleness decision described in §4.4:
//
//  1. a source belonging to an externally-built project is never recompiled
//     unless always-compile is set;
//  2. a missing object file, or one older than its source, forces
//     recompilation;
//  3. a missing, unreadable, or stale-relative-to-its-declared-dependencies
//     dep file forces recompilation;
//  4. when check-switches is enabled, a switches file that disagrees with
//     the object's current timestamp or the switches that would be used
//     forces recompilation;
//  5. otherwise the source is up to date.
func Decide(src *model.Source, p Params) (Decision, error) {
	if src.Project.ExternallyBuilt && !p.AlwaysCompile {
		return Decision{MustCompile: false}, nil
	}

	objInfo, err := os.Stat(src.ObjPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Decision{MustCompile: true}, nil
		}
		return Decision{}, err
	}
	if objInfo.ModTime().Before(src.SrcTimestamp) {
		return Decision{MustCompile: true}, nil
	}

	manifest, depsStale, err := checkDepFile(src, p, objInfo.ModTime())
	if err != nil {
		return Decision{}, err
	}
	if depsStale {
		return Decision{MustCompile: true, Manifest: manifest}, nil
	}

	if p.CheckSwitches {
		stale, err := checkSwitchesFile(src, p, objInfo.ModTime())
		if err != nil {
			return Decision{}, err
		}
		if stale {
			return Decision{MustCompile: true, Manifest: manifest}, nil
		}
	}

	return Decision{MustCompile: false, Manifest: manifest}, nil
}

// checkDepFile implements step 3. A missing or unreadable dep file forces
// recompilation, matching the conservative reading of §4.4: the driver has
// no way to know the source's dependencies are still satisfied, so it must
// assume they are not.
func checkDepFile(src *model.Source, p Params, objModTime time.Time) (*depparse.UnitManifest, bool, error) {
	switch src.Language.Config.DepKind {
	case model.DependencyKindNone:
		return nil, false, nil

	case model.DependencyKindMakefile:
		deps, err := depparse.ParseMakefile(src.DepPath)
		if err != nil {
			return nil, true, nil
		}
		sourceDir := filepath.Dir(src.AbsPath)
		for _, prereq := range deps.Prerequisites {
			abs := depparse.ResolveMakefilePrerequisite(sourceDir, prereq)
			if depSrc, ok := p.Tree.SourceByAbsPath(abs); ok {
				if depSrc.SrcTimestamp.After(objModTime) {
					return nil, true, nil
				}
			}
		}
		return nil, false, nil

	case model.DependencyKindUnitManifest:
		manifest, err := depparse.ParseUnitManifest(src.DepPath, p.NoSplitUnits)
		if err != nil {
			return nil, true, nil
		}
		for _, basename := range manifest.UsedSourceBasenames() {
			for _, depSrc := range p.Tree.SourcesByBasename(basename) {
				if depSrc.SrcTimestamp.After(objModTime) {
					return manifest, true, nil
				}
			}
		}
		return manifest, false, nil

	default:
		return nil, false, nil
	}
}

// checkSwitchesFile implements step 4: the recorded object timestamp and
// switches must match exactly, or the source is treated as stale.
func checkSwitchesFile(src *model.Source, p Params, objModTime time.Time) (bool, error) {
	sf, err := ReadSwitchesFile(src.SwitchesPath, len(p.TrailingSwitches))
	if err != nil {
		return true, nil
	}
	if !sf.ObjTimestamp.Equal(objModTime) {
		return true, nil
	}
	if !stringsEqual(sf.Argv, p.Argv) {
		return true, nil
	}
	if !stringsEqual(sf.Trailing, p.TrailingSwitches) {
		return true, nil
	}
	return false, nil
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
