package model

// Qualifier is the closed set of project qualifiers a Project may carry.
type Qualifier int

const (
	QualifierStandard Qualifier = iota
	QualifierLibrary
	QualifierAbstract
	QualifierAggregate
	QualifierAggregateLibrary
)

func (q Qualifier) IsAggregate() bool {
	return q == QualifierAggregate || q == QualifierAggregateLibrary
}

// LibraryKind is the closed set of library kinds a library Project may
// declare.
type LibraryKind int

const (
	LibraryKindNone LibraryKind = iota
	LibraryKindStatic
	LibraryKindDynamic
	LibraryKindRelocatable
	LibraryKindStaticPic
)

// DependencyKind selects which dep-file grammar a language's compiler
// produces, per §4.4 / §6.
type DependencyKind int

const (
	DependencyKindNone DependencyKind = iota
	DependencyKindMakefile
	DependencyKindUnitManifest
)

// PathSyntax picks how a source's path is rendered when passed to the
// compiler (the source-name switch, §4.5 step 13).
type PathSyntax int

const (
	PathSyntaxCanonical PathSyntax = iota
	PathSyntaxHost
)

// Casing is the naming-data casing image used by config-file pattern
// expansion (§4.7's `%c`).
type Casing int

const (
	CasingLower Casing = iota
	CasingUpper
	CasingAsDeclared
)

// SourceKind is the closed set of kinds a Source may have.
type SourceKind int

const (
	SourceKindSpec SourceKind = iota
	SourceKindImpl
	SourceKindSeparate
)

// Compilability is the tri-state cache on a Source described in §3's
// invariants: it is only ever set to Yes/No after the source's timestamp
// has actually been observed.
type Compilability int

const (
	CompilabilityUnknown Compilability = iota
	CompilabilityYes
	CompilabilityNo
)

// ProcessPurpose distinguishes the two reasons the supervisor spawns a
// child process for a given source, per §3's ProcessRecord and §4.9's
// re-enqueue-as-DependencyExtraction step.
type ProcessPurpose int

const (
	PurposeCompilation ProcessPurpose = iota
	PurposeDependencyExtraction
)

// ImportClassification is the result of classifying a dependency discovered
// in a dep file against the owning project's import graph, per §4.10.
type ImportClassification int

const (
	ClassSameProject ImportClassification = iota
	ClassExtended
	ClassDirectlyImported
	ClassIndirectlyImported
	ClassInterfaceHidden
	ClassDisallowed
)

func (c ImportClassification) Allowed() bool {
	switch c {
	case ClassSameProject, ClassExtended, ClassDirectlyImported, ClassIndirectlyImported:
		return true
	default:
		return false
	}
}
