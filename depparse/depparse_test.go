package depparse

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestParseMakefileBasic(t *testing.T) {
	path := writeTemp(t, "foo.d", "foo.o: foo.c foo.h bar.h\n")

	deps, err := ParseMakefile(path)
	if err != nil {
		t.Fatalf("ParseMakefile: %v", err)
	}
	if deps.Target != "foo.o" {
		t.Fatalf("target = %q, want foo.o", deps.Target)
	}
	want := []string{"foo.c", "foo.h", "bar.h"}
	if len(deps.Prerequisites) != len(want) {
		t.Fatalf("prerequisites = %v, want %v", deps.Prerequisites, want)
	}
	for i, p := range want {
		if deps.Prerequisites[i] != p {
			t.Fatalf("prerequisites[%d] = %q, want %q", i, deps.Prerequisites[i], p)
		}
	}
}

func TestParseMakefileContinuation(t *testing.T) {
	path := writeTemp(t, "foo.d", "foo.o: foo.c \\\n  foo.h \\\n  bar.h\n")

	deps, err := ParseMakefile(path)
	if err != nil {
		t.Fatalf("ParseMakefile: %v", err)
	}
	want := []string{"foo.c", "foo.h", "bar.h"}
	if len(deps.Prerequisites) != len(want) {
		t.Fatalf("prerequisites = %v, want %v", deps.Prerequisites, want)
	}
	for i, p := range want {
		if deps.Prerequisites[i] != p {
			t.Fatalf("prerequisites[%d] = %q, want %q", i, deps.Prerequisites[i], p)
		}
	}
}

func TestParseMakefileSkipsCommentsAndBlankLines(t *testing.T) {
	path := writeTemp(t, "foo.d", "# generated\n\nfoo.o: foo.c\n")

	deps, err := ParseMakefile(path)
	if err != nil {
		t.Fatalf("ParseMakefile: %v", err)
	}
	if deps.Target != "foo.o" || len(deps.Prerequisites) != 1 || deps.Prerequisites[0] != "foo.c" {
		t.Fatalf("unexpected result: %+v", deps)
	}
}

func TestParseMakefileMissingColon(t *testing.T) {
	path := writeTemp(t, "foo.d", "foo.o foo.c\n")

	if _, err := ParseMakefile(path); err == nil {
		t.Fatalf("expected error for missing ':'")
	}
}

func TestParseUnitManifestBasic(t *testing.T) {
	contents := "U main\n" +
		"W pkg_a pkg_a.ads pkg_a.u\n" +
		"W pkg_b pkg_b.ads pkg_b.u\n"
	path := writeTemp(t, "main.u", contents)

	m, err := ParseUnitManifest(path, false)
	if err != nil {
		t.Fatalf("ParseUnitManifest: %v", err)
	}
	if m.Unit != "main" {
		t.Fatalf("unit = %q, want main", m.Unit)
	}
	if len(m.Used) != 2 {
		t.Fatalf("used = %+v, want 2 entries", m.Used)
	}
	if m.Used[0].UnitName != "pkg_a" || m.Used[0].SourceBasename != "pkg_a.ads" || m.Used[0].DepBasename != "pkg_a.u" {
		t.Fatalf("unexpected first used record: %+v", m.Used[0])
	}
}

func TestParseUnitManifestSubunitsRespectFlag(t *testing.T) {
	contents := "U main\n" +
		"W pkg_a pkg_a.ads pkg_a.u\n" +
		"D sub_a main sub_a.adb\n"
	path := writeTemp(t, "main.u", contents)

	withoutFlag, err := ParseUnitManifest(path, false)
	if err != nil {
		t.Fatalf("ParseUnitManifest: %v", err)
	}
	if len(withoutFlag.Subunits) != 0 {
		t.Fatalf("expected D records ignored without no_split_units, got %+v", withoutFlag.Subunits)
	}

	withFlag, err := ParseUnitManifest(path, true)
	if err != nil {
		t.Fatalf("ParseUnitManifest: %v", err)
	}
	if len(withFlag.Subunits) != 1 {
		t.Fatalf("expected 1 subunit record, got %+v", withFlag.Subunits)
	}
	got := withFlag.Subunits[0]
	want := SubunitDependency{SubunitName: "sub_a", ParentUnit: "main", SourceBasename: "sub_a.adb"}
	if got != want {
		t.Fatalf("subunit record = %+v, want %+v", got, want)
	}
}

func TestParseUnitManifestRequiresURecord(t *testing.T) {
	path := writeTemp(t, "main.u", "W pkg_a pkg_a.ads pkg_a.u\n")

	if _, err := ParseUnitManifest(path, false); err == nil {
		t.Fatalf("expected error for missing U record")
	}
}

func TestUsedSourceBasenamesIncludesSubunits(t *testing.T) {
	m := &UnitManifest{
		Unit: "main",
		Used: []UsedUnit{{UnitName: "pkg_a", SourceBasename: "pkg_a.ads", DepBasename: "pkg_a.u"}},
		Subunits: []SubunitDependency{
			{SubunitName: "sub_a", ParentUnit: "main", SourceBasename: "sub_a.adb"},
		},
	}
	got := m.UsedSourceBasenames()
	want := []string{"pkg_a.ads", "sub_a.adb"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
