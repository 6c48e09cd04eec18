package model

import "sort"

// Tree is the resolved project tree produced by the (external, out-of-
// scope) project loader: a root project plus every project transitively
// reachable from it, along with the lookup indexes the driver needs to
// classify dependencies discovered by the dep-parsers (§4.9, §4.10).
type Tree struct {
	Root *Project

	// Projects indexes every project in the tree by ID.
	Projects map[uint]*Project

	// byBasename is the "tree's file-name hash" §4.9 refers to: a source's
	// plain basename maps to every Source sharing it, since two projects
	// may each declare a file with the same name.
	byBasename map[string][]*Source

	// byAbsPath indexes sources by their absolute, canonicalized path --
	// what the Makefile dep-parser needs to resolve a prerequisite path
	// back to a Source (§4.4.ii).
	byAbsPath map[string]*Source
}

// NewTree builds an (initially empty) Tree rooted at root. Call AddProject
// and IndexSource once every Project/Language/Source has been attached to
// populate the lookup maps.
func NewTree(root *Project) *Tree {
	return &Tree{
		Root:       root,
		Projects:   map[uint]*Project{root.ID: root},
		byBasename: map[string][]*Source{},
		byAbsPath:  map[string]*Source{},
	}
}

// AddProject registers proj in the tree's project index.
func (t *Tree) AddProject(proj *Project) {
	t.Projects[proj.ID] = proj
}

// IndexSource registers src in the tree's basename and abs-path indexes.
// Called once per source as projects are loaded.
func (t *Tree) IndexSource(src *Source) {
	t.byBasename[src.Basename] = append(t.byBasename[src.Basename], src)
	t.byAbsPath[src.AbsPath] = src
}

// SourcesByBasename returns every known source sharing basename.
func (t *Tree) SourcesByBasename(basename string) []*Source {
	return t.byBasename[basename]
}

// SourceByAbsPath returns the source at exactly absPath, if any.
func (t *Tree) SourceByAbsPath(absPath string) (*Source, bool) {
	s, ok := t.byAbsPath[absPath]
	return s, ok
}

// AllSources returns every source in the tree, in a stable order (by
// project ID then declaration order), for iteration convenience (e.g.
// seeding the initial compile queue).
func (t *Tree) AllSources() []*Source {
	ids := make([]uint, 0, len(t.Projects))
	for id := range t.Projects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []*Source
	for _, id := range ids {
		proj := t.Projects[id]
		for _, lang := range proj.Languages {
			out = append(out, lang.Sources...)
		}
	}
	return out
}
