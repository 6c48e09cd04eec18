// Package legality implements the import-legality checker described in
// §4.10: classifying a dependency source discovered by a dep-parser against
// the importing project's import graph.
package legality

import (
	"sync"

	"forge/model"
)

// Checker classifies discovered dependencies against a project's import
// graph, caching each (owner, dependency) pairing it has already resolved
// so a dep file naming the same prerequisite across many sources in one
// project doesn't repeat the walk over imports_visited. A single Checker is
// shared by every in-flight compile goroutine the supervisor spawns (§4.9),
// so cache is guarded by cacheMu rather than relying on the single-threaded
// scheduling model §5 describes for the supervisor's own state.
type Checker struct {
	// indirectImports mirrors the run-wide `indirect_imports` flag (§6):
	// when false, a dependency reachable only through a chain of imports
	// (not a direct `with`) is disallowed, matching §4.10's third bullet.
	indirectImports bool

	cache   map[checkerKey]model.ImportClassification
	cacheMu sync.Mutex
}

type checkerKey struct {
	owner *model.Project
	dep   *model.Source
}

// NewChecker creates an empty Checker honoring the given indirect_imports
// policy (§4.10, §6).
func NewChecker(indirectImports bool) *Checker {
	return &Checker{indirectImports: indirectImports, cache: map[checkerKey]model.ImportClassification{}}
}

// Classify determines how owner, the project whose source declared a
// dependency on dep, is permitted to use it:
//
//   - ClassSameProject: dep belongs to owner itself.
//   - ClassExtended: dep's project and owner are related by extension.
//   - ClassDirectlyImported: owner directly `with`s dep's project (or one of
//     its extenders), and dep is in that project's published interface.
//   - ClassIndirectlyImported: indirect imports are enabled, dep's project
//     is transitively reachable from owner's imports, and dep is published.
//   - ClassInterfaceHidden: dep's project is reachable (directly, or
//     transitively with indirect imports enabled) but dep itself is not part
//     of its published interface.
//   - ClassDisallowed: none of the above -- owner has no path to dep's
//     project, or only an indirect one while indirect imports are disabled.
func (c *Checker) Classify(owner *model.Project, dep *model.Source) model.ImportClassification {
	key := checkerKey{owner: owner, dep: dep}

	c.cacheMu.Lock()
	if cls, ok := c.cache[key]; ok {
		c.cacheMu.Unlock()
		return cls
	}
	c.cacheMu.Unlock()

	cls := c.classify(owner, dep)

	c.cacheMu.Lock()
	c.cache[key] = cls
	c.cacheMu.Unlock()
	return cls
}

func (c *Checker) classify(owner *model.Project, dep *model.Source) model.ImportClassification {
	depProj := dep.Project

	if owner.ExtensionRelated(depProj) {
		if owner.ID == depProj.ID {
			return model.ClassSameProject
		}
		return model.ClassExtended
	}

	if owner.DirectlyImports(depProj) {
		if dep.InInterfaces {
			return model.ClassDirectlyImported
		}
		return model.ClassInterfaceHidden
	}

	if !c.indirectImports {
		return model.ClassDisallowed
	}

	for _, reachable := range owner.TransitiveImports() {
		if reachable.ID == depProj.ID {
			if dep.InInterfaces {
				return model.ClassIndirectlyImported
			}
			return model.ClassInterfaceHidden
		}
	}

	return model.ClassDisallowed
}
