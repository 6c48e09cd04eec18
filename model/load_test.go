package model_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"forge/model"
	"forge/stale"
)

func writeFixtureProject(t *testing.T, dir string) (projectFile, sourceFile string) {
	t.Helper()

	sourceFile = filepath.Join(dir, "foo.x")
	if err := os.WriteFile(sourceFile, []byte("body"), 0644); err != nil {
		t.Fatalf("writing source fixture: %v", err)
	}

	projectFile = filepath.Join(dir, "forge-project.toml")
	toml := "[project]\n" +
		"name = \"p\"\n" +
		"qualifier = \"standard\"\n" +
		"object-dir = \"obj\"\n" +
		"\n" +
		"[[project.languages]]\n" +
		"name = \"x\"\n" +
		"sources = [\"foo.x\"]\n" +
		"compiler-driver = \"/bin/true\"\n" +
		"object-suffix = \".o\"\n"
	if err := os.WriteFile(projectFile, []byte(toml), 0644); err != nil {
		t.Fatalf("writing project fixture: %v", err)
	}

	return projectFile, sourceFile
}

func TestLoadTreeWiresLanguageConfigSurface(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "foo.x"), []byte("body"), 0644); err != nil {
		t.Fatalf("writing source fixture: %v", err)
	}

	toml := "[project]\n" +
		"name = \"p\"\n" +
		"qualifier = \"standard\"\n" +
		"object-dir = \"obj\"\n" +
		"\n" +
		"[[project.languages]]\n" +
		"name = \"x\"\n" +
		"sources = [\"foo.x\"]\n" +
		"compiler-driver = \"/bin/true\"\n" +
		"object-suffix = \".o\"\n" +
		"casing = \"upper\"\n" +
		"default-switches = [\"-O1\"]\n" +
		"dependency-builder = \"/bin/depgen\"\n" +
		"dependency-builder-args = [\"--mode\", \"scan\"]\n" +
		"global-config-file = \"global.cfg\"\n" +
		"\n" +
		"[project.languages.per-file-switches]\n" +
		"\"foo.x\" = [\"-O2\"]\n" +
		"\n" +
		"[project.languages.config-patterns]\n" +
		"spec = \"%b.spec\"\n" +
		"body = \"%b.body\"\n" +
		"index = \"%u.idx\"\n"
	if err := os.WriteFile(filepath.Join(dir, "forge-project.toml"), []byte(toml), 0644); err != nil {
		t.Fatalf("writing project fixture: %v", err)
	}

	tree, err := model.LoadTree(dir)
	if err != nil {
		t.Fatalf("LoadTree: %v", err)
	}

	cfg := tree.Root.Languages[0].Config
	if cfg.Naming.Casing != model.CasingUpper {
		t.Fatalf("Casing = %v, want CasingUpper", cfg.Naming.Casing)
	}
	if len(cfg.DefaultSwitches) != 1 || cfg.DefaultSwitches[0] != "-O1" {
		t.Fatalf("DefaultSwitches = %v", cfg.DefaultSwitches)
	}
	if got := cfg.PerFileSwitches["foo.x"]; len(got) != 1 || got[0] != "-O2" {
		t.Fatalf("PerFileSwitches[foo.x] = %v", got)
	}
	if cfg.DependencyBuilderPath != "/bin/depgen" {
		t.Fatalf("DependencyBuilderPath = %q", cfg.DependencyBuilderPath)
	}
	if len(cfg.DependencyBuilderArgs) != 2 || cfg.DependencyBuilderArgs[0] != "--mode" {
		t.Fatalf("DependencyBuilderArgs = %v", cfg.DependencyBuilderArgs)
	}
	if cfg.GlobalConfigFile != "global.cfg" {
		t.Fatalf("GlobalConfigFile = %q", cfg.GlobalConfigFile)
	}
	if cfg.ConfigFilePatterns == nil || cfg.ConfigFilePatterns.Spec != "%b.spec" {
		t.Fatalf("ConfigFilePatterns = %+v", cfg.ConfigFilePatterns)
	}
}

func TestLoadTreeSetsSourceTimestamp(t *testing.T) {
	dir := t.TempDir()
	_, sourceFile := writeFixtureProject(t, dir)

	srcInfo, err := os.Stat(sourceFile)
	if err != nil {
		t.Fatalf("stat source fixture: %v", err)
	}

	tree, err := model.LoadTree(dir)
	if err != nil {
		t.Fatalf("LoadTree: %v", err)
	}

	src := tree.Root.Languages[0].Sources[0]
	if !src.SrcTimestamp.Equal(srcInfo.ModTime()) {
		t.Fatalf("SrcTimestamp = %v, want %v", src.SrcTimestamp, srcInfo.ModTime())
	}
}

func TestLoadTreeStalenessTriggersOnTouchedSource(t *testing.T) {
	dir := t.TempDir()
	_, sourceFile := writeFixtureProject(t, dir)

	tree, err := model.LoadTree(dir)
	if err != nil {
		t.Fatalf("LoadTree: %v", err)
	}
	src := tree.Root.Languages[0].Sources[0]

	// Write an object file newer than the source as it currently stands.
	if err := os.MkdirAll(filepath.Dir(src.ObjPath), 0755); err != nil {
		t.Fatalf("mkdir obj dir: %v", err)
	}
	if err := os.WriteFile(src.ObjPath, []byte("obj"), 0644); err != nil {
		t.Fatalf("writing object: %v", err)
	}
	future := src.SrcTimestamp.Add(time.Hour)
	if err := os.Chtimes(src.ObjPath, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	d, err := stale.Decide(src, stale.Params{Tree: tree})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.MustCompile {
		t.Fatalf("expected up-to-date object to be skipped before the source is touched")
	}

	// Touch the source so it postdates the object, then reload the tree the
	// way a real `forgec build` invocation would and confirm step 2 of the
	// staleness oracle (§4.4) now fires.
	touched := future.Add(time.Hour)
	if err := os.Chtimes(sourceFile, touched, touched); err != nil {
		t.Fatalf("chtimes source: %v", err)
	}

	tree, err = model.LoadTree(dir)
	if err != nil {
		t.Fatalf("LoadTree (reload): %v", err)
	}
	src = tree.Root.Languages[0].Sources[0]

	d, err = stale.Decide(src, stale.Params{Tree: tree})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if !d.MustCompile {
		t.Fatalf("expected a source edited after its object file to force recompile")
	}
}
