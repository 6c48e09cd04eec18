package model

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"forge/common"
)

// tomlProjectFile mirrors chai/src/mods/load.go's tomlModuleFile shape: a
// single top-level table wrapping the project's declared attributes.
type tomlProjectFile struct {
	Project *tomlProject `toml:"project"`
}

type tomlProject struct {
	Name            string          `toml:"name"`
	Qualifier       string          `toml:"qualifier"`
	ObjectDir       string          `toml:"object-dir"`
	LibraryKind     string          `toml:"library-kind,omitempty"`
	ExternallyBuilt bool            `toml:"externally-built,omitempty"`
	Imports         []string        `toml:"imports,omitempty"`
	Extends         string          `toml:"extends,omitempty"`
	Aggregates      []string        `toml:"aggregates,omitempty"`
	Languages       []*tomlLanguage `toml:"languages"`
}

type tomlLanguage struct {
	Name                  string              `toml:"name"`
	Sources               []string            `toml:"sources"`
	CompilerDriver        string              `toml:"compiler-driver"`
	LeadingSwitches       []string            `toml:"leading-switches,omitempty"`
	TrailingSwitches      []string            `toml:"trailing-switches,omitempty"`
	DefaultSwitches       []string            `toml:"default-switches,omitempty"`
	PerFileSwitches       map[string][]string `toml:"per-file-switches,omitempty"`
	DepKind               string              `toml:"dep-kind,omitempty"`
	DepOptionTemplate     string              `toml:"dep-option-template,omitempty"`
	SourceFileSwitch      string              `toml:"source-file-switch-template,omitempty"`
	ObjectFileSwitch      string              `toml:"object-file-switch-template,omitempty"`
	MultiUnitSwitch       string              `toml:"multi-unit-switch-template,omitempty"`
	IncludeOption         string              `toml:"include-option-template,omitempty"`
	IncludePathEnvVar     string              `toml:"include-path-env-var,omitempty"`
	IncludePathFileVar    string              `toml:"include-path-file-env-var,omitempty"`
	MappingFileSwitch     string              `toml:"mapping-file-switch-template,omitempty"`
	ConfigFileSwitch      string              `toml:"config-file-switch-template,omitempty"`
	ConfigPatterns        *tomlConfigPatterns `toml:"config-patterns,omitempty"`
	GlobalConfigFile      string              `toml:"global-config-file,omitempty"`
	LocalConfigFile       string              `toml:"local-config-file,omitempty"`
	PICOptions            []string            `toml:"pic-options,omitempty"`
	CompatibleLanguages   []string            `toml:"compatible-languages,omitempty"`
	PathSyntax            string              `toml:"path-syntax,omitempty"`
	ObjectSuffix          string              `toml:"object-suffix"`
	SpecSuffix            string              `toml:"spec-suffix,omitempty"`
	BodySuffix            string              `toml:"body-suffix,omitempty"`
	DotReplacement        string              `toml:"dot-replacement,omitempty"`
	Casing                string              `toml:"casing,omitempty"`
	ComputeDependency     bool                `toml:"compute-dependency,omitempty"`
	DependencyBuilder     string              `toml:"dependency-builder,omitempty"`
	DependencyBuilderArgs []string            `toml:"dependency-builder-args,omitempty"`
}

// tomlConfigPatterns mirrors ConfigFilePatterns for the §4.7(c) naming-scheme
// spec/body/index pattern templates.
type tomlConfigPatterns struct {
	Spec  string `toml:"spec,omitempty"`
	Body  string `toml:"body,omitempty"`
	Index string `toml:"index,omitempty"`
}

var qualifierNames = map[string]Qualifier{
	"standard":          QualifierStandard,
	"library":           QualifierLibrary,
	"abstract":          QualifierAbstract,
	"aggregate":         QualifierAggregate,
	"aggregate_library": QualifierAggregateLibrary,
}

var libraryKindNames = map[string]LibraryKind{
	"static":      LibraryKindStatic,
	"dynamic":     LibraryKindDynamic,
	"relocatable": LibraryKindRelocatable,
	"static-pic":  LibraryKindStaticPic,
}

var depKindNames = map[string]DependencyKind{
	"":             DependencyKindNone,
	"none":         DependencyKindNone,
	"makefile":     DependencyKindMakefile,
	"unit_manifest": DependencyKindUnitManifest,
}

var pathSyntaxNames = map[string]PathSyntax{
	"":          PathSyntaxCanonical,
	"canonical": PathSyntaxCanonical,
	"host":      PathSyntaxHost,
}

var casingNames = map[string]Casing{
	"":            CasingAsDeclared,
	"as-declared": CasingAsDeclared,
	"lower":       CasingLower,
	"upper":       CasingUpper,
}

// LoadTree loads the project rooted at rootPath (a path to a
// forge-project.toml file or to a directory containing one) and every
// project it transitively imports, extends, or aggregates, returning the
// resolved Tree described in §3. This is the driver's own minimal stand-in
// for the (out-of-scope, per §1) project-description-language resolver:
// just enough to turn a handful of flat TOML files into the in-memory
// model the scheduler consumes.
func LoadTree(rootPath string) (*Tree, error) {
	loaded := map[string]*Project{}

	root, err := loadProjectRec(rootPath, loaded)
	if err != nil {
		return nil, err
	}

	tree := NewTree(root)
	for _, proj := range loaded {
		tree.AddProject(proj)
		for _, lang := range proj.Languages {
			for _, src := range lang.Sources {
				tree.IndexSource(src)
			}
		}
	}

	return tree, nil
}

func loadProjectRec(path string, loaded map[string]*Project) (*Project, error) {
	dir, file, err := resolveProjectFile(path)
	if err != nil {
		return nil, err
	}

	if proj, ok := loaded[file]; ok {
		return proj, nil
	}

	buf, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}

	tpf := &tomlProjectFile{}
	if err := toml.Unmarshal(buf, tpf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	if tpf.Project == nil {
		return nil, fmt.Errorf("%s: missing [project] table", file)
	}
	tp := tpf.Project

	qualifier, ok := qualifierNames[tp.Qualifier]
	if !ok {
		return nil, fmt.Errorf("%s: unknown qualifier %q", file, tp.Qualifier)
	}

	objDir := tp.ObjectDir
	if objDir == "" {
		objDir = filepath.Join(dir, "obj")
	} else if !filepath.IsAbs(objDir) {
		objDir = filepath.Join(dir, objDir)
	}

	proj := NewProject(tp.Name, dir, objDir, qualifier)
	proj.ExternallyBuilt = tp.ExternallyBuilt
	if tp.LibraryKind != "" {
		kind, ok := libraryKindNames[tp.LibraryKind]
		if !ok {
			return nil, fmt.Errorf("%s: unknown library-kind %q", file, tp.LibraryKind)
		}
		proj.LibKind = kind
	}

	// Register before recursing into imports/extends so that import
	// cycles resolve to the in-progress Project instead of recursing
	// forever.
	loaded[file] = proj

	for _, lt := range tp.Languages {
		lang, err := buildLanguage(proj, dir, lt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		proj.Languages = append(proj.Languages, lang)
	}

	for _, rel := range tp.Imports {
		imp, err := loadProjectRec(filepath.Join(dir, rel), loaded)
		if err != nil {
			return nil, err
		}
		proj.Imports = append(proj.Imports, imp)
	}

	if tp.Extends != "" {
		parent, err := loadProjectRec(filepath.Join(dir, tp.Extends), loaded)
		if err != nil {
			return nil, err
		}
		proj.SetExtends(parent)
	}

	for _, rel := range tp.Aggregates {
		agg, err := loadProjectRec(filepath.Join(dir, rel), loaded)
		if err != nil {
			return nil, err
		}
		proj.Aggregates = append(proj.Aggregates, agg)
	}

	return proj, nil
}

func buildLanguage(proj *Project, projDir string, tl *tomlLanguage) (*Language, error) {
	depKind, ok := depKindNames[tl.DepKind]
	if !ok {
		return nil, fmt.Errorf("unknown dep-kind %q", tl.DepKind)
	}
	syntax, ok := pathSyntaxNames[tl.PathSyntax]
	if !ok {
		return nil, fmt.Errorf("unknown path-syntax %q", tl.PathSyntax)
	}
	casing, ok := casingNames[tl.Casing]
	if !ok {
		return nil, fmt.Errorf("unknown casing %q", tl.Casing)
	}

	cfg := &LanguageConfig{
		CompilerDriver:            tl.CompilerDriver,
		LeadingSwitches:           tl.LeadingSwitches,
		TrailingSwitches:          tl.TrailingSwitches,
		DefaultSwitches:           tl.DefaultSwitches,
		PerFileSwitches:           tl.PerFileSwitches,
		DepKind:                   depKind,
		DepOptionTemplate:         tl.DepOptionTemplate,
		SourceFileSwitchTemplate:  tl.SourceFileSwitch,
		ObjectFileSwitchTemplate:  tl.ObjectFileSwitch,
		MultiUnitSwitchTemplate:   tl.MultiUnitSwitch,
		IncludeOptionTemplate:     tl.IncludeOption,
		IncludePathEnvVar:         tl.IncludePathEnvVar,
		IncludePathFileEnvVar:     tl.IncludePathFileVar,
		MappingFileSwitchTemplate: tl.MappingFileSwitch,
		ConfigFileSwitchTemplate:  tl.ConfigFileSwitch,
		GlobalConfigFile:          tl.GlobalConfigFile,
		LocalConfigFile:           tl.LocalConfigFile,
		PICOptions:                tl.PICOptions,
		CompatibleLanguages:       tl.CompatibleLanguages,
		PathSyntax:                syntax,
		ObjectSuffix:              tl.ObjectSuffix,
		ComputeDependency:         tl.ComputeDependency,
		Naming: NamingData{
			SpecSuffix:     tl.SpecSuffix,
			BodySuffix:     tl.BodySuffix,
			DotReplacement: tl.DotReplacement,
			Casing:         casing,
		},
	}
	if tl.ConfigPatterns != nil {
		cfg.ConfigFilePatterns = &ConfigFilePatterns{
			Spec:  tl.ConfigPatterns.Spec,
			Body:  tl.ConfigPatterns.Body,
			Index: tl.ConfigPatterns.Index,
		}
	}
	if tl.DependencyBuilder != "" {
		cfg.DependencyBuilderPath = tl.DependencyBuilder
		cfg.DependencyBuilderArgs = tl.DependencyBuilderArgs
	}

	lang := &Language{Name: tl.Name, Config: cfg}

	var prev *Source
	for _, rel := range tl.Sources {
		abs := filepath.Join(projDir, rel)

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("statting source %s: %w", abs, err)
		}

		src := &Source{
			Basename:        filepath.Base(abs),
			DisplayBasename: filepath.Base(abs),
			AbsPath:         abs,
			Project:         proj,
			Language:        lang,
			InInterfaces:    true,
			SrcTimestamp:    info.ModTime(),
		}
		src.ResolveObjectProject(cfg.ObjectSuffix)
		lang.Sources = append(lang.Sources, src)

		if prev != nil {
			prev.NextInLanguage = src
		}
		prev = src
	}

	return lang, nil
}

// resolveProjectFile accepts either a direct path to a project file or a
// directory containing common.ProjectFileName, and returns the containing
// directory and the absolute file path. It does not resolve symlinks (see
// DESIGN.md's Open Question decision).
func resolveProjectFile(path string) (dir, file string, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", "", err
	}

	if info.IsDir() {
		return abs, filepath.Join(abs, common.ProjectFileName), nil
	}

	return filepath.Dir(abs), abs, nil
}
