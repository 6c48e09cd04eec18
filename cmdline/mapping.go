package cmdline

import (
	"forge/model"
	"forge/respfile"
)

// AcquireMappingFile returns a mapping-file path for a compile of lang,
// reusing one from the language's pool if available (§4.8) and otherwise
// allocating a fresh one via reg, seeded with initialContents.
func AcquireMappingFile(lang *model.Language, reg *respfile.Registry, dir string, initialContents []string) (string, error) {
	if path, ok := lang.PopMappingFile(); ok {
		return path, nil
	}
	return respfile.Write(reg, dir, "mapping-*.txt", respfile.FormatPlain, initialContents)
}

// ReleaseMappingFile returns path to lang's mapping-file pool once the
// compile that acquired it has finished, win or lose, so a later compile of
// the same language can reuse it instead of allocating another temp file.
func ReleaseMappingFile(lang *model.Language, path string) {
	lang.PushMappingFile(path)
}
