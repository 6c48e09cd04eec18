package model

import (
	"path/filepath"
	"strings"
	"time"
)

// Unit carries the spec/body-file pointers for a source that belongs to a
// named compilation unit (§3).
type Unit struct {
	Name     string
	SpecFile *Source
	BodyFile *Source
}

// Source is a single input file tracked by the driver (§3). A Source
// belongs to exactly one Language, which belongs to exactly one Project.
type Source struct {
	// Basename is the file's basename on disk; DisplayBasename is used in
	// diagnostics and may differ (e.g. case-normalized).
	Basename        string
	DisplayBasename string

	// AbsPath is the source's absolute path.
	AbsPath string

	Kind SourceKind

	// Unit is set when this source belongs to a named compilation unit.
	Unit *Unit

	// Index distinguishes members of a multi-unit file (0 means "not a
	// multi-unit member", per §4.5 step 15).
	Index int

	// Project is the owning project; ObjectProject is
	// Project.UltimateExtender(), cached once resolved (§3's invariant).
	Project       *Project
	ObjectProject *Project

	// Language is the owning language.
	Language *Language

	// ObjPath, DepPath, SwitchesPath are the resolved output paths under
	// ObjectProject's object directory.
	ObjPath      string
	DepPath      string
	SwitchesPath string

	// SrcTimestamp, ObjTimestamp, DepTimestamp are the last-observed
	// modification times used by the staleness oracle (§4.4).
	SrcTimestamp time.Time
	ObjTimestamp time.Time
	DepTimestamp time.Time

	// LocallyRemoved marks a source that has been deleted from disk but is
	// still referenced by stale metadata.
	LocallyRemoved bool

	// InInterfaces marks a source as belonging to its project's published
	// interface set; used by the legality checker (§4.10).
	InInterfaces bool

	// ReplacedBy points to the source that supersedes this one, if any
	// (e.g. a body file replacing a separately-compiled spec).
	ReplacedBy *Source

	// Compilable caches whether this source is actually compilable; set to
	// Yes/No only after SrcTimestamp has been observed (§3's invariant).
	Compilable Compilability

	// NextInLanguage links this source to the next one declared in the
	// same Language, preserving declaration order independent of any
	// slice reslicing the queue may do.
	NextInLanguage *Source

	// LastSwitches is the argv recorded at the last successful compile,
	// truncated to `last_switches_for_file` elements (§4.5's closing
	// paragraph, §6's switches-file format).
	LastSwitches []string
}

// ResolveObjectProject sets ObjectProject and the Obj/Dep/Switches paths
// derived from it, per §3's "object_project = ultimate_extending(project)"
// invariant. objSuffix is the language's configured object-file suffix; it
// replaces the source basename's own extension (foo.c -> foo.o).
func (s *Source) ResolveObjectProject(objSuffix string) {
	s.ObjectProject = s.Project.UltimateExtender()

	stem := strings.TrimSuffix(s.Basename, filepath.Ext(s.Basename))
	if s.Unit != nil && s.Unit.Name != "" {
		stem = s.Unit.Name
	}

	dir := s.ObjectProject.ObjDir
	s.ObjPath = filepath.Join(dir, stem+objSuffix)
	s.DepPath = filepath.Join(dir, stem+".d")
	s.SwitchesPath = filepath.Join(dir, stem+".switches")
}
