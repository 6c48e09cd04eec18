package cmdline

import (
	"os"
	"testing"

	"forge/model"
	"forge/respfile"
)

func TestAcquireMappingFileReusesPool(t *testing.T) {
	lang := &model.Language{Name: "x"}
	lang.PushMappingFile("/existing/mapping.txt")

	reg := respfile.NewRegistry(true)
	path, err := AcquireMappingFile(lang, reg, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("AcquireMappingFile: %v", err)
	}
	if path != "/existing/mapping.txt" {
		t.Fatalf("expected pooled path reused, got %q", path)
	}
}

func TestAcquireMappingFileAllocatesWhenPoolEmpty(t *testing.T) {
	lang := &model.Language{Name: "x"}
	reg := respfile.NewRegistry(true)
	dir := t.TempDir()

	path, err := AcquireMappingFile(lang, reg, dir, []string{"unit_a"})
	if err != nil {
		t.Fatalf("AcquireMappingFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected allocated mapping file to exist: %v", err)
	}

	ReleaseMappingFile(lang, path)
	reused, ok := lang.PopMappingFile()
	if !ok || reused != path {
		t.Fatalf("expected released path to be back in the pool, got %q ok=%v", reused, ok)
	}
}
