package cmdline

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"forge/model"
	"forge/respfile"
)

// ExpandConfigPattern expands one of a language's ConfigFilePatterns
// templates, substituting:
//
//	%b  naming's body-file suffix
//	%s  naming's spec-file suffix
//	%d  naming's dot-replacement string
//	%c  naming's casing image
//	%%  a literal "%"
//
// per §4.7(c). Any other "%x" sequence passes through unchanged.
func ExpandConfigPattern(pattern string, naming model.NamingData) string {
	return expandPercent(pattern, map[byte]string{
		'b': naming.BodySuffix,
		's': naming.SpecSuffix,
		'd': naming.DotReplacement,
		'c': casingImage(naming.Casing),
	})
}

// casingImage names naming.Casing for %c substitution (§4.7(c)).
func casingImage(casing model.Casing) string {
	switch casing {
	case model.CasingLower:
		return "lower"
	case model.CasingUpper:
		return "upper"
	default:
		return "as-declared"
	}
}

// ExpandSourcePattern expands a per-source config declaration for src,
// substituting %u (unit name), %f (file basename), %i (multi-unit index),
// and %% (a literal "%"), per §4.7(d).
func ExpandSourcePattern(pattern string, src *model.Source) string {
	unit := src.Basename
	if src.Unit != nil && src.Unit.Name != "" {
		unit = src.Unit.Name
	}

	return expandPercent(pattern, map[byte]string{
		'u': unit,
		'f': src.Basename,
		'i': strconv.Itoa(src.Index),
	})
}

func expandPercent(pattern string, subs map[byte]string) string {
	var out strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '%' || i+1 >= len(pattern) {
			out.WriteByte(pattern[i])
			continue
		}
		if pattern[i+1] == '%' {
			out.WriteByte('%')
			i++
			continue
		}
		if sub, ok := subs[pattern[i+1]]; ok {
			out.WriteString(sub)
			i++
			continue
		}
		out.WriteByte(pattern[i])
	}
	return out.String()
}

// MaterializeConfigFile generates proj's per-project config file for lang,
// if it hasn't already been done this run (proj.ConfigChecked guards the
// one-shot behavior described in §4.7), aggregating:
//
//	(a) the copied content of Builder.Global_Config_File, if configured
//	(b) the copied content of Compiler.Local_Config_File, if configured
//	(c) the naming-scheme spec/body pattern expansions for the project
//	(d) a per-source declaration for every source in lang
//
// and returns the generated file's path (empty if the language has no
// config-file support at all). The path is cached on proj so repeat calls
// within the same run are free.
func MaterializeConfigFile(proj *model.Project, lang *model.Language, reg *respfile.Registry, dir string) (string, error) {
	if proj.ConfigChecked {
		return proj.GeneratedConfigPath, nil
	}
	defer func() { proj.ConfigChecked = true }()

	cfg := lang.Config
	patterns := cfg.ConfigFilePatterns
	if patterns == nil {
		return "", nil
	}

	var buf strings.Builder
	for _, rel := range []string{cfg.GlobalConfigFile, cfg.LocalConfigFile} {
		if rel == "" {
			continue
		}
		content, err := os.ReadFile(configFileFor(proj, rel))
		if err != nil {
			return "", err
		}
		buf.Write(content)
	}

	naming := cfg.Naming
	if patterns.Spec != "" {
		buf.WriteString(ExpandConfigPattern(patterns.Spec, naming))
		buf.WriteByte('\n')
	}
	if patterns.Body != "" {
		buf.WriteString(ExpandConfigPattern(patterns.Body, naming))
		buf.WriteByte('\n')
	}

	if patterns.Index != "" {
		for _, src := range lang.Sources {
			buf.WriteString(ExpandSourcePattern(patterns.Index, src))
			buf.WriteByte('\n')
		}
	}

	path, err := respfile.Write(reg, dir, "config-*.txt", respfile.FormatPlain, []string{buf.String()})
	if err != nil {
		return "", err
	}

	proj.GeneratedConfigPath = path
	return path, nil
}

// configFileFor resolves a config file path named relative to proj's
// directory. It does not resolve symlinks (see DESIGN.md's Open Question
// decision): a literal filepath.Join, matching how the rest of the driver
// locates project-relative files.
func configFileFor(proj *model.Project, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(proj.Dir, rel)
}
