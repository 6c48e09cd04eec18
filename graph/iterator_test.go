package graph

import (
	"testing"

	"forge/model"
)

func newProj(name string, q model.Qualifier) *model.Project {
	return model.NewProject(name, "/"+name, "/"+name+"/obj", q)
}

func TestWalkPreOrderVisitsEachProjectOnce(t *testing.T) {
	root := newProj("root", model.QualifierStandard)
	a := newProj("a", model.QualifierLibrary)
	b := newProj("b", model.QualifierLibrary)
	shared := newProj("shared", model.QualifierLibrary)

	root.Imports = append(root.Imports, a, b)
	a.Imports = append(a.Imports, shared)
	b.Imports = append(b.Imports, shared)

	var order []string
	Walk(root, PreOrder, func(proj *model.Project, ctx Context) {
		order = append(order, proj.Name)
	})

	if len(order) != 4 {
		t.Fatalf("expected 4 visits (root, a, b, shared), got %v", order)
	}
	if order[0] != "root" {
		t.Fatalf("expected root visited first in pre-order, got %v", order)
	}

	seen := map[string]int{}
	for _, n := range order {
		seen[n]++
	}
	if seen["shared"] != 1 {
		t.Fatalf("expected shared visited exactly once, got %d (order=%v)", seen["shared"], order)
	}
}

func TestWalkPostOrderVisitsChildrenFirst(t *testing.T) {
	root := newProj("root", model.QualifierStandard)
	child := newProj("child", model.QualifierLibrary)
	root.Imports = append(root.Imports, child)

	var order []string
	Walk(root, PostOrder, func(proj *model.Project, ctx Context) {
		order = append(order, proj.Name)
	})

	if len(order) != 2 || order[0] != "child" || order[1] != "root" {
		t.Fatalf("expected [child root], got %v", order)
	}
}

func TestWalkDescendsAggregates(t *testing.T) {
	root := newProj("root", model.QualifierAggregate)
	member := newProj("member", model.QualifierStandard)
	root.Aggregates = append(root.Aggregates, member)

	visited := map[string]bool{}
	Walk(root, PreOrder, func(proj *model.Project, ctx Context) {
		visited[proj.Name] = true
	})

	if !visited["member"] {
		t.Fatalf("expected aggregate member to be visited")
	}
}

func TestWalkRedirectsExtendedImportToUltimateExtender(t *testing.T) {
	root := newProj("root", model.QualifierStandard)
	base := newProj("base", model.QualifierLibrary)
	ext := newProj("ext", model.QualifierLibrary)
	ext.SetExtends(base)

	root.Imports = append(root.Imports, base)

	visited := map[string]bool{}
	Walk(root, PreOrder, func(proj *model.Project, ctx Context) {
		visited[proj.Name] = true
	})

	if visited["base"] {
		t.Fatalf("expected extended base project to be redirected, not visited directly")
	}
	if !visited["ext"] {
		t.Fatalf("expected ultimate extender 'ext' to be visited")
	}
}

func TestWalkPropagatesInEncapsulatedLib(t *testing.T) {
	root := newProj("root", model.QualifierStandard)
	lib := newProj("lib", model.QualifierLibrary)
	lib.InEncapsulatedLib = true
	inner := newProj("inner", model.QualifierLibrary)
	lib.Imports = append(lib.Imports, inner)
	root.Imports = append(root.Imports, lib)

	var innerCtx Context
	Walk(root, PreOrder, func(proj *model.Project, ctx Context) {
		if proj.Name == "inner" {
			innerCtx = ctx
		}
	})

	if !innerCtx.InEncapsulatedLib {
		t.Fatalf("expected InEncapsulatedLib to propagate down to inner")
	}
}
