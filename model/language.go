package model

// Language is one of a Project's declared languages: an ordered list of
// Sources plus the LanguageConfig describing how to compile them (§3).
type Language struct {
	Name    string
	Sources []*Source
	Config  *LanguageConfig

	// mappingFilePool is the per-language stack of reusable mapping-file
	// paths described in §4.8 and §5's "shared resources" (accessed only
	// from the supervisor, so no locking is needed).
	mappingFilePool []string
}

// PopMappingFile removes and returns a mapping-file path from the pool, or
// ("", false) if the pool is empty.
func (l *Language) PopMappingFile() (string, bool) {
	n := len(l.mappingFilePool)
	if n == 0 {
		return "", false
	}
	path := l.mappingFilePool[n-1]
	l.mappingFilePool = l.mappingFilePool[:n-1]
	return path, true
}

// PushMappingFile returns a mapping-file path to the pool for reuse once a
// compile finishes with it.
func (l *Language) PushMappingFile(path string) {
	l.mappingFilePool = append(l.mappingFilePool, path)
}

// ConfigFilePatterns names the per-naming-scheme body/spec pattern
// expansion templates used by §4.7's config-file materialization.
type ConfigFilePatterns struct {
	Spec  string
	Body  string
	Index string
}

// NamingData carries the per-language naming convention used both by config
// -file pattern expansion (§4.7) and by source classification.
type NamingData struct {
	SpecSuffix     string
	BodySuffix     string
	DotReplacement string
	Casing         Casing
}

// LanguageConfig is the compiler configuration attached to a Language (§3).
type LanguageConfig struct {
	// CompilerDriver is the path to the compiler executable.
	CompilerDriver string

	// LeadingSwitches and TrailingSwitches are required switches placed at
	// the start and end of every argv built for this language (§4.5 steps
	// 1 and 12).
	LeadingSwitches  []string
	TrailingSwitches []string

	// DepKind selects which dependency-artifact grammar this language's
	// compiler produces.
	DepKind DependencyKind

	// DepOptionTemplate is the dependency-generation switch template
	// (§4.5 step 8). A "{}" placeholder marks where the dep-file path is
	// substituted; its position (joined to the previous token vs. a
	// trailing standalone value) is determined by whether "{}" appears
	// immediately after non-whitespace.
	DepOptionTemplate string

	// SourceFileSwitchTemplate and ObjectFileSwitchTemplate are templates
	// for the source-name and object-file switches (§4.5 steps 13-14). A
	// "{}" placeholder marks the substitution point; an empty
	// ObjectFileSwitchTemplate falls back to `-o <obj>` for multi-unit
	// members, per §4.5 step 14.
	SourceFileSwitchTemplate string
	ObjectFileSwitchTemplate string

	// MultiUnitSwitchTemplate is applied when source.Index != 0 (§4.5 step
	// 15).
	MultiUnitSwitchTemplate string

	// IncludeOptionTemplate, IncludePathEnvVar, IncludePathFileEnvVar
	// select one of the three include-path delivery disciplines (§4.6).
	IncludeOptionTemplate string
	IncludePathEnvVar     string
	IncludePathFileEnvVar string

	// MappingFileSwitchTemplate and ConfigFileSwitchTemplate are templates
	// for the mapping-file and config-file switches (§4.5 steps 10-11).
	MappingFileSwitchTemplate string
	ConfigFileSwitchTemplate  string

	// PICOptions is emitted when the project is a non-static library
	// (§4.5 step 4).
	PICOptions []string

	// CompatibleLanguages is the set of language names whose object
	// directories should be added to this language's include-path set
	// (§4.6).
	CompatibleLanguages []string

	// PathSyntax controls how a source path is rendered for the
	// source-name switch (§4.5 step 13).
	PathSyntax PathSyntax

	// ConfigFilePatterns is non-nil for languages that support config-file
	// generation (§4.7).
	ConfigFilePatterns *ConfigFilePatterns

	// GlobalConfigFile and LocalConfigFile are the (project-directory
	// relative) paths of the user-specified config files copied verbatim
	// into the generated config file, per §4.7(a)-(b) (`Builder.
	// Global_Config_File` and `Compiler.Local_Config_File`).
	GlobalConfigFile string
	LocalConfigFile  string

	// ObjectSuffix is the file extension that replaces a source basename's
	// own extension to form its object file name (e.g. ".o").
	ObjectSuffix string

	// Naming carries the per-language naming convention (§4.7).
	Naming NamingData

	// DefaultSwitches is `Compiler'Switches(<language>)`: the switches used
	// for any source without a per-file override (§4.5 step 5).
	DefaultSwitches []string

	// PerFileSwitches is `Compiler'Switches(<file>)`: an override of
	// DefaultSwitches keyed by source basename (§4.5 step 5).
	PerFileSwitches map[string][]string

	// ComputeDependency, when set, means the compiler does not emit a dep
	// file itself; the supervisor must re-spawn a separate
	// dependency-builder tool after a successful compile (§4.9).
	ComputeDependency bool

	// DependencyBuilderPath and DependencyBuilderArgs describe the
	// external tool to invoke when ComputeDependency is set; its stdout
	// is redirected to the dep file.
	DependencyBuilderPath string
	DependencyBuilderArgs []string
}
