package cmdline

import (
	"path/filepath"
	"strings"

	"forge/model"
	"forge/respfile"
)

// IncludeResult is the outcome of resolving a language's configured
// include-path delivery discipline (§4.6) for one compile: either argv
// switches to append, or an environment variable to set on the spawned
// process, never both.
type IncludeResult struct {
	Switches []string
	Env      map[string]string
}

// ResolveIncludePaths picks among the three include-path delivery
// disciplines a language may be configured with, in priority order:
//
//  1. a repeated switch (IncludeOptionTemplate), one per path;
//  2. an environment variable naming a response file that lists the paths,
//     one per line (IncludePathFileEnvVar), for compilers whose command
//     line or environment can't hold arbitrarily many paths directly;
//  3. a single environment variable holding every path joined by the
//     platform's path-list separator (IncludePathEnvVar).
//
// A language with none of the three configured gets no include-path
// delivery at all -- it simply doesn't support cross-project includes.
func ResolveIncludePaths(cfg *model.LanguageConfig, paths []string, reg *respfile.Registry, tempDir string) (IncludeResult, error) {
	switch {
	case cfg.IncludeOptionTemplate != "":
		var switches []string
		for _, p := range paths {
			switches = append(switches, expandTemplate(cfg.IncludeOptionTemplate, p)...)
		}
		return IncludeResult{Switches: switches}, nil

	case cfg.IncludePathFileEnvVar != "":
		path, err := respfile.Write(reg, tempDir, "includes-*.txt", respfile.FormatPlain, paths)
		if err != nil {
			return IncludeResult{}, err
		}
		return IncludeResult{Env: map[string]string{cfg.IncludePathFileEnvVar: path}}, nil

	case cfg.IncludePathEnvVar != "":
		joined := strings.Join(paths, string(filepath.ListSeparator))
		return IncludeResult{Env: map[string]string{cfg.IncludePathEnvVar: joined}}, nil

	default:
		return IncludeResult{}, nil
	}
}

// CompatibleObjectDirs returns proj's own object directory plus the object
// directory of every project in transitiveImports that declares a language
// whose name appears in cfg's CompatibleLanguages -- the include-path set a
// compile of this language should see (§4.6).
func CompatibleObjectDirs(proj *model.Project, transitiveImports []*model.Project, cfg *model.LanguageConfig) []string {
	dirs := []string{proj.ObjDir}
	for _, imp := range transitiveImports {
		for _, lang := range imp.Languages {
			for _, compatible := range cfg.CompatibleLanguages {
				if lang.Name == compatible {
					dirs = append(dirs, imp.ObjDir)
				}
			}
		}
	}
	return dirs
}
