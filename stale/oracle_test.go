package stale

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"forge/model"
)

func newTestSource(t *testing.T, dir string, depKind model.DependencyKind) (*model.Source, *model.Tree) {
	t.Helper()
	proj := model.NewProject("p", dir, dir, model.QualifierStandard)
	tree := model.NewTree(proj)

	lang := &model.Language{
		Name:   "x",
		Config: &model.LanguageConfig{DepKind: depKind, ObjectSuffix: ".o"},
	}
	proj.Languages = append(proj.Languages, lang)

	srcPath := filepath.Join(dir, "foo.x")
	if err := os.WriteFile(srcPath, []byte("body"), 0644); err != nil {
		t.Fatalf("writing source: %v", err)
	}
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		t.Fatalf("stat source: %v", err)
	}

	src := &model.Source{
		Basename:     "foo.x",
		AbsPath:      srcPath,
		Project:      proj,
		Language:     lang,
		SrcTimestamp: srcInfo.ModTime(),
	}
	src.ResolveObjectProject(".o")
	lang.Sources = append(lang.Sources, src)
	tree.IndexSource(src)

	return src, tree
}

func TestDecideMissingObjectForcesCompile(t *testing.T) {
	dir := t.TempDir()
	src, tree := newTestSource(t, dir, model.DependencyKindNone)

	d, err := Decide(src, Params{Tree: tree})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if !d.MustCompile {
		t.Fatalf("expected MustCompile=true for missing object file")
	}
}

func TestDecideExternallyBuiltSkipped(t *testing.T) {
	dir := t.TempDir()
	src, tree := newTestSource(t, dir, model.DependencyKindNone)
	src.Project.ExternallyBuilt = true

	d, err := Decide(src, Params{Tree: tree})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.MustCompile {
		t.Fatalf("expected externally-built source to be skipped")
	}
}

func TestDecideUpToDateObjectNoDeps(t *testing.T) {
	dir := t.TempDir()
	src, tree := newTestSource(t, dir, model.DependencyKindNone)

	future := time.Now().Add(time.Hour)
	if err := os.WriteFile(src.ObjPath, []byte("obj"), 0644); err != nil {
		t.Fatalf("writing object: %v", err)
	}
	if err := os.Chtimes(src.ObjPath, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	d, err := Decide(src, Params{Tree: tree})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.MustCompile {
		t.Fatalf("expected up-to-date source with no dep kind to be skipped")
	}
}

func TestDecideStaleDependencyViaMakefile(t *testing.T) {
	dir := t.TempDir()
	src, tree := newTestSource(t, dir, model.DependencyKindMakefile)

	future := time.Now().Add(time.Hour)
	if err := os.WriteFile(src.ObjPath, []byte("obj"), 0644); err != nil {
		t.Fatalf("writing object: %v", err)
	}
	if err := os.Chtimes(src.ObjPath, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	depPath := filepath.Join(dir, "bar.x")
	if err := os.WriteFile(depPath, []byte("dep"), 0644); err != nil {
		t.Fatalf("writing dep source: %v", err)
	}
	depInfo, err := os.Stat(depPath)
	if err != nil {
		t.Fatalf("stat dep: %v", err)
	}

	depProj := src.Project
	depSrc := &model.Source{
		Basename:     "bar.x",
		AbsPath:      depPath,
		Project:      depProj,
		SrcTimestamp: depInfo.ModTime().Add(2 * time.Hour),
	}
	tree.IndexSource(depSrc)

	if err := os.WriteFile(src.DepPath, []byte("foo.o: foo.x bar.x\n"), 0644); err != nil {
		t.Fatalf("writing dep file: %v", err)
	}

	d, err := Decide(src, Params{Tree: tree})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if !d.MustCompile {
		t.Fatalf("expected stale dependency (bar.x newer than object) to force recompile")
	}
}

func TestDecideCheckSwitchesDetectsArgvChange(t *testing.T) {
	dir := t.TempDir()
	src, tree := newTestSource(t, dir, model.DependencyKindNone)

	future := time.Now().Add(time.Hour)
	if err := os.WriteFile(src.ObjPath, []byte("obj"), 0644); err != nil {
		t.Fatalf("writing object: %v", err)
	}
	if err := os.Chtimes(src.ObjPath, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	objInfo, err := os.Stat(src.ObjPath)
	if err != nil {
		t.Fatalf("stat object: %v", err)
	}

	if err := WriteSwitchesFile(src.SwitchesPath, objInfo.ModTime(), []string{"-O2"}, nil); err != nil {
		t.Fatalf("WriteSwitchesFile: %v", err)
	}

	d, err := Decide(src, Params{Tree: tree, CheckSwitches: true, Argv: []string{"-O0"}})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if !d.MustCompile {
		t.Fatalf("expected argv change to force recompile under check-switches")
	}

	d, err = Decide(src, Params{Tree: tree, CheckSwitches: true, Argv: []string{"-O2"}})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.MustCompile {
		t.Fatalf("expected matching argv to leave source up to date")
	}
}
