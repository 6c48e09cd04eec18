package cmdline

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"forge/model"
	"forge/respfile"
)

func TestResolveIncludePathsSwitchDiscipline(t *testing.T) {
	cfg := &model.LanguageConfig{IncludeOptionTemplate: "-I{}"}
	got, err := ResolveIncludePaths(cfg, []string{"/a", "/b"}, nil, "")
	if err != nil {
		t.Fatalf("ResolveIncludePaths: %v", err)
	}
	want := []string{"-I/a", "-I/b"}
	if !reflect.DeepEqual(got.Switches, want) {
		t.Fatalf("switches = %v, want %v", got.Switches, want)
	}
	if got.Env != nil {
		t.Fatalf("expected no env vars, got %v", got.Env)
	}
}

func TestResolveIncludePathsEnvDiscipline(t *testing.T) {
	cfg := &model.LanguageConfig{IncludePathEnvVar: "XINCLUDE"}
	got, err := ResolveIncludePaths(cfg, []string{"/a", "/b"}, nil, "")
	if err != nil {
		t.Fatalf("ResolveIncludePaths: %v", err)
	}
	want := "/a" + string(filepath.ListSeparator) + "/b"
	if got.Env["XINCLUDE"] != want {
		t.Fatalf("env = %v, want XINCLUDE=%q", got.Env, want)
	}
	if got.Switches != nil {
		t.Fatalf("expected no switches, got %v", got.Switches)
	}
}

func TestResolveIncludePathsFileDiscipline(t *testing.T) {
	cfg := &model.LanguageConfig{IncludePathFileEnvVar: "XINCLUDE_FILE"}
	reg := respfile.NewRegistry(true)
	dir := t.TempDir()

	got, err := ResolveIncludePaths(cfg, []string{"/a", "/b"}, reg, dir)
	if err != nil {
		t.Fatalf("ResolveIncludePaths: %v", err)
	}
	path, ok := got.Env["XINCLUDE_FILE"]
	if !ok {
		t.Fatalf("expected XINCLUDE_FILE env var, got %v", got.Env)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading response file: %v", err)
	}
	if string(contents) != "/a\n/b\n" {
		t.Fatalf("response file contents = %q", contents)
	}
}

func TestCompatibleObjectDirs(t *testing.T) {
	owner := model.NewProject("owner", "/owner", "/owner/obj", model.QualifierStandard)
	dep := model.NewProject("dep", "/dep", "/dep/obj", model.QualifierLibrary)
	dep.Languages = append(dep.Languages, &model.Language{Name: "c"})

	cfg := &model.LanguageConfig{CompatibleLanguages: []string{"c"}}
	got := CompatibleObjectDirs(owner, []*model.Project{dep}, cfg)
	want := []string{"/owner/obj", "/dep/obj"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
