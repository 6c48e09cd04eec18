// Package cmdline implements the deterministic command-line assembly
// described in §4.5: turning a Source and its Language's configuration into
// the argv a compiler process should be spawned with, plus the supporting
// include-path (§4.6), config-file (§4.7), and mapping-file (§4.8) delivery
// mechanisms that feed switches into it.
package cmdline

import (
	"path/filepath"
	"strconv"
	"strings"

	"forge/model"
)

// Options carries everything Assemble needs beyond what's already reachable
// from the Source's Language.Config: the pieces that vary per invocation
// rather than per language.
type Options struct {
	Source *model.Source

	// BuilderAllLanguages and BuilderPerLanguage are the project's
	// builder-level default switches (§4.5 steps 2-3): the former applies
	// to every language the project declares, the latter only to this
	// source's language.
	BuilderAllLanguages []string
	BuilderPerLanguage  []string

	// InvocationAllLanguages and InvocationPerLanguage are the compile
	// switches supplied with this build invocation, grouped by target
	// language (§4.5 steps 6-7, §6's "per-invocation switches grouped by
	// target language").
	InvocationAllLanguages []string
	InvocationPerLanguage  []string

	// IncludeSwitches is the already-expanded include-path switch sequence
	// for this language, produced by ResolveIncludePaths (§4.6).
	IncludeSwitches []string

	// MappingFilePath and ConfigFilePath are empty when the language has no
	// mapping-file or config-file mechanism, or none was needed this run.
	MappingFilePath string
	ConfigFilePath  string

	// GenerateDepFile requests the dependency-generation switch, when the
	// language's config supplies one inline (as opposed to requiring a
	// separate dependency-builder re-spawn, §4.9).
	GenerateDepFile bool
}

// Assemble builds the full argv for spawning the compiler on one source, in
// the 15-step order fixed by §4.5. Prefix returns the same switches minus
// the trailing-switches-through-multi-unit-index tail (steps 12-15); it is
// what the switches file records (§6) since the source/object paths and
// multi-unit index never change for a given source and so would only ever
// add noise to a staleness comparison.
func Assemble(opts Options) []string {
	src := opts.Source
	cfg := src.Language.Config

	argv := Prefix(opts)

	argv = append(argv, cfg.TrailingSwitches...) // step 12

	argv = append(argv, expandTemplate(cfg.SourceFileSwitchTemplate, sourcePathFor(src, cfg.PathSyntax))...) // step 13

	switch {
	case cfg.ObjectFileSwitchTemplate != "": // step 14
		argv = append(argv, expandTemplate(cfg.ObjectFileSwitchTemplate, src.ObjPath)...)
	case src.Index != 0:
		// A multi-unit member with no configured object-file switch falls
		// back to a plain -o, since the compiler has no other way to know
		// which of the unit's members this invocation is writing (§4.5).
		argv = append(argv, "-o", src.ObjPath)
	}

	if src.Index != 0 && cfg.MultiUnitSwitchTemplate != "" {
		argv = append(argv, expandTemplate(cfg.MultiUnitSwitchTemplate, strconv.Itoa(src.Index))...) // step 15
	}

	return argv
}

// Prefix builds steps 1-11 of §4.5: everything up to and including the
// mapping-file switch, excluding the trailing switches and the
// source/object/multi-unit tail that Assemble appends afterward.
func Prefix(opts Options) []string {
	src := opts.Source
	cfg := src.Language.Config

	var argv []string
	argv = append(argv, cfg.CompilerDriver)
	argv = append(argv, cfg.LeadingSwitches...)      // step 1
	argv = append(argv, opts.BuilderAllLanguages...) // step 2
	argv = append(argv, opts.BuilderPerLanguage...)  // step 3

	if needsPIC(src.ObjectProject, cfg) {
		argv = append(argv, cfg.PICOptions...) // step 4
	}

	argv = append(argv, sourceOverrides(src, cfg)...)   // step 5
	argv = append(argv, opts.InvocationAllLanguages...) // step 6
	argv = append(argv, opts.InvocationPerLanguage...)  // step 7

	if opts.GenerateDepFile && cfg.DepOptionTemplate != "" {
		argv = append(argv, expandTemplate(cfg.DepOptionTemplate, src.DepPath)...) // step 8
	}

	argv = append(argv, opts.IncludeSwitches...) // step 9

	if opts.ConfigFilePath != "" && cfg.ConfigFileSwitchTemplate != "" {
		argv = append(argv, expandTemplate(cfg.ConfigFileSwitchTemplate, opts.ConfigFilePath)...) // step 10
	}

	if opts.MappingFilePath != "" && cfg.MappingFileSwitchTemplate != "" {
		argv = append(argv, expandTemplate(cfg.MappingFileSwitchTemplate, opts.MappingFilePath)...) // step 11
	}

	return argv
}

// sourceOverrides returns the per-source switch override configured for
// src's basename (`Compiler'Switches(<file>)`), falling back to the
// language's default compiler switches (`Compiler'Switches(<language>)`)
// when no per-file override exists (§4.5 step 5).
func sourceOverrides(src *model.Source, cfg *model.LanguageConfig) []string {
	if override, ok := cfg.PerFileSwitches[src.Basename]; ok {
		return override
	}
	return cfg.DefaultSwitches
}

func needsPIC(proj *model.Project, cfg *model.LanguageConfig) bool {
	if proj.Qualifier != model.QualifierLibrary && proj.Qualifier != model.QualifierAggregateLibrary {
		return false
	}
	return proj.LibKind != model.LibraryKindNone && proj.LibKind != model.LibraryKindStatic
}

func sourcePathFor(src *model.Source, syntax model.PathSyntax) string {
	if syntax == model.PathSyntaxCanonical {
		return filepath.ToSlash(src.AbsPath)
	}
	return src.AbsPath
}

// expandTemplate splits template on whitespace and substitutes value for
// every "{}" placeholder found within each resulting token, so a template
// like "-MF{}" yields a single joined token while "-o {}" yields two
// independent ones.
func expandTemplate(template, value string) []string {
	if strings.TrimSpace(template) == "" {
		return nil
	}
	fields := strings.Fields(template)
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.ReplaceAll(f, "{}", value)
	}
	return out
}
