package model

import "forge/common"

// Project is a unit of the build graph: it owns an object directory, a set
// of Languages (each with its own Sources), and the import/extension/
// aggregation edges that connect it to the rest of the tree (§3).
type Project struct {
	// ID is a stable numeric identifier derived from the project's root
	// directory, used as the key into a Tree's depGraph-style arenas (§9).
	ID uint

	// Name is the project's declared name.
	Name string

	// Qualifier is one of Standard, Library, Abstract, Aggregate, or
	// AggregateLibrary.
	Qualifier Qualifier

	// Dir is the project's root directory; ObjDir is the object directory
	// compiles for this project are written into.
	Dir    string
	ObjDir string

	// LibKind is only meaningful when Qualifier names a library project.
	LibKind LibraryKind

	// Languages lists the languages this project declares sources in.
	Languages []*Language

	// Imports lists the projects directly imported (`with`ed) by this one.
	Imports []*Project

	// Extends is the single project this one extends, if any (an
	// "inherits and overrides" relation; see the glossary).
	Extends *Project

	// Aggregates lists the projects aggregated by this one. Only
	// meaningful when Qualifier.IsAggregate().
	Aggregates []*Project

	// ExternallyBuilt marks a project whose sources are assumed already
	// compiled; the staleness oracle skips it unless always-compile is set
	// (§4.4 step 1).
	ExternallyBuilt bool

	// InEncapsulatedLib is propagated down through imports of a standalone
	// encapsulated library by the project-graph iterator (§4.11c).
	InEncapsulatedLib bool

	// transitiveImports is a cache of this project's transitive import
	// closure, populated lazily by the legality checker (§4.10) and the
	// supervisor's include-path resolution (§4.6).
	transitiveImports []*Project
	transitiveCached  bool

	// ConfigChecked guards one-shot config-file generation per project per
	// run (§4.7). GeneratedConfigPath caches the path MaterializeConfigFile
	// produced, so later compiles of the same project reuse it instead of
	// regenerating it.
	ConfigChecked       bool
	GeneratedConfigPath string

	// extendedBy is the inverse of Extends: the project that extends this
	// one, if any. Maintained by SetExtends so UltimateExtender can walk
	// forward without re-scanning the whole tree.
	extendedBy *Project
}

// NewProject creates a Project with a stable ID derived from its directory.
func NewProject(name, dir, objDir string, qualifier Qualifier) *Project {
	return &Project{
		ID:        common.GenerateIDFromPath(dir),
		Name:      name,
		Dir:       dir,
		ObjDir:    objDir,
		Qualifier: qualifier,
	}
}

// UltimateExtender walks the Extends chain to the last project in it -- the
// project whose object directory actually owns compiled output for sources
// declared anywhere in the chain (§3's `object_project` invariant).
func (p *Project) UltimateExtender() *Project {
	cur := p
	for cur.extendedBy != nil {
		cur = cur.extendedBy
	}
	return cur
}

// SetExtends records that p extends parent, maintaining the inverse link
// used by UltimateExtender.
func (p *Project) SetExtends(parent *Project) {
	p.Extends = parent
	parent.extendedBy = p
}

// TransitiveImports returns, computing and caching on first use, every
// project transitively reachable from p via Imports (following each
// imported project's own UltimateExtender, per §4.11b).
func (p *Project) TransitiveImports() []*Project {
	if p.transitiveCached {
		return p.transitiveImports
	}

	seen := map[uint]bool{p.ID: true}
	var out []*Project

	var walk func(proj *Project)
	walk = func(proj *Project) {
		for _, imp := range proj.Imports {
			target := imp
			if !target.Qualifier.IsAggregate() {
				target = target.UltimateExtender()
			}

			if seen[target.ID] {
				continue
			}
			seen[target.ID] = true
			out = append(out, target)
			walk(target)
		}
	}
	walk(p)

	p.transitiveImports = out
	p.transitiveCached = true
	return out
}

// DirectlyImports reports whether p directly imports target, either itself
// or via any of target's extenders (§4.10's "through any `with`ed project
// or its extenders").
func (p *Project) DirectlyImports(target *Project) bool {
	for _, imp := range p.Imports {
		if imp.ID == target.ID {
			return true
		}
		for cur := imp; cur != nil; cur = cur.extendedBy {
			if cur.ID == target.ID {
				return true
			}
		}
	}
	return false
}

// ExtensionRelated reports whether p and other are the same project or one
// extends the other, directly or transitively (§4.10's "same project (or
// either extends the other)").
func (p *Project) ExtensionRelated(other *Project) bool {
	if p.ID == other.ID {
		return true
	}
	for cur := p.Extends; cur != nil; cur = cur.Extends {
		if cur.ID == other.ID {
			return true
		}
	}
	for cur := other.Extends; cur != nil; cur = cur.Extends {
		if cur.ID == p.ID {
			return true
		}
	}
	return false
}
