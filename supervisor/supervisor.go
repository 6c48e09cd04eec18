// Package supervisor implements the bounded-parallelism process supervisor
// described in §4.9: it drains the compile queue, consults the staleness
// oracle, spawns compiler (and, where configured, dependency-builder)
// processes, and routes their output through dependency parsing and
// import-legality checking.
package supervisor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"

	"forge/cmdline"
	"forge/depparse"
	"forge/diagnostics"
	"forge/legality"
	"forge/model"
	"forge/queue"
	"forge/respfile"
	"forge/stale"
)

// Config carries the run-wide parameters that shape scheduling (§4.9).
type Config struct {
	MaxParallelism int
	FailFast       bool
	AlwaysCompile  bool
	CheckSwitches  bool
	NoSplitUnits   bool
	TempDir        string
}

// Supervisor owns the compile queue and dispatches compiler processes
// against it under a bounded-parallelism semaphore.
type Supervisor struct {
	cfg     Config
	tree    *model.Tree
	checker *legality.Checker
	reg     *respfile.Registry

	q      *queue.Queue
	qmu    sync.Mutex
	sem    *semaphore.Weighted
	notify chan struct{}

	// pathCache avoids re-running exec.LookPath for the same compiler or
	// dependency-builder executable on every single spawn, which otherwise
	// dominates wall-clock time on a tree with many small sources (§9).
	pathCache   map[string]string
	pathCacheMu sync.Mutex
}

// New creates a Supervisor that will schedule compiles against tree.
func New(tree *model.Tree, checker *legality.Checker, reg *respfile.Registry, cfg Config) *Supervisor {
	if cfg.MaxParallelism <= 0 {
		cfg.MaxParallelism = 1
	}
	return &Supervisor{
		cfg:       cfg,
		tree:      tree,
		checker:   checker,
		reg:       reg,
		q:         queue.New(),
		sem:       semaphore.NewWeighted(int64(cfg.MaxParallelism)),
		notify:    make(chan struct{}, 1),
		pathCache: map[string]string{},
	}
}

// Seed enqueues every source in the tree for staleness evaluation.
func (s *Supervisor) Seed() {
	for _, src := range s.tree.AllSources() {
		s.q.Push(queue.Entry{Source: src, Tree: s.tree})
	}
}

// Run drains the queue, compiling every source the staleness oracle marks
// as needing it, honoring MaxParallelism and the fail-fast policy. It
// returns whether the run completed with zero logged errors.
func (s *Supervisor) Run(ctx context.Context) (bool, error) {
	var wg sync.WaitGroup

	for {
		if s.cfg.FailFast && !diagnostics.ShouldProceed() {
			break
		}

		s.qmu.Lock()
		entry, ok := s.q.Extract()
		remaining := s.q.Len()
		blocked := s.q.IsVirtuallyEmpty()
		s.qmu.Unlock()

		if !ok {
			if remaining == 0 {
				break
			}
			if blocked {
				select {
				case <-s.notify:
					continue
				case <-ctx.Done():
					wg.Wait()
					return false, ctx.Err()
				}
			}
			continue
		}

		if err := s.sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return false, err
		}

		wg.Add(1)
		go func(e queue.Entry) {
			defer wg.Done()
			defer s.sem.Release(1)
			defer s.free(e)
			s.compileOne(ctx, e)
		}(entry)
	}

	wg.Wait()
	return diagnostics.ShouldProceed(), nil
}

func (s *Supervisor) free(e queue.Entry) {
	s.qmu.Lock()
	s.q.MarkFree(e.Source.ObjectProject.ObjDir)
	s.qmu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Supervisor) lookPath(name string) (string, error) {
	s.pathCacheMu.Lock()
	defer s.pathCacheMu.Unlock()

	if resolved, ok := s.pathCache[name]; ok {
		return resolved, nil
	}
	resolved, err := exec.LookPath(name)
	if err != nil {
		return "", err
	}
	s.pathCache[name] = resolved
	return resolved, nil
}

// compileOne evaluates one queue entry against the staleness oracle and,
// if it's stale, spawns the compiler and post-processes its output.
func (s *Supervisor) compileOne(ctx context.Context, entry queue.Entry) {
	src := entry.Source
	cfg := src.Language.Config

	comparisonArgv := cmdline.Prefix(cmdline.Options{
		Source:          src,
		GenerateDepFile: cfg.DepKind != model.DependencyKindNone && !cfg.ComputeDependency,
	})

	decision, err := stale.Decide(src, stale.Params{
		Tree:             entry.Tree,
		AlwaysCompile:    s.cfg.AlwaysCompile,
		CheckSwitches:    s.cfg.CheckSwitches,
		Argv:             comparisonArgv,
		TrailingSwitches: cfg.TrailingSwitches,
		NoSplitUnits:     s.cfg.NoSplitUnits,
	})
	if err != nil {
		diagnostics.LogCompileFailure(src.AbsPath, err)
		return
	}
	if !decision.MustCompile {
		return
	}

	if err := s.runCompile(ctx, src, cfg); err != nil {
		diagnostics.LogCompileFailure(src.AbsPath, err)
		return
	}

	discovered, err := s.resolveDependencies(ctx, entry, cfg)
	if err != nil {
		diagnostics.LogDepFileError(src.DepPath, err)
		return
	}

	s.classifyAndEnqueue(entry, discovered)

	objInfo, err := os.Stat(src.ObjPath)
	if err != nil {
		diagnostics.LogCompileFailure(src.AbsPath, err)
		return
	}
	if err := stale.WriteSwitchesFile(src.SwitchesPath, objInfo.ModTime(), comparisonArgv, cfg.TrailingSwitches); err != nil {
		diagnostics.LogFatal(err.Error())
		return
	}
	src.LastSwitches = comparisonArgv
}

func (s *Supervisor) runCompile(ctx context.Context, src *model.Source, cfg *model.LanguageConfig) error {
	var mappingPath string
	if cfg.MappingFileSwitchTemplate != "" {
		path, err := cmdline.AcquireMappingFile(src.Language, s.reg, s.cfg.TempDir, nil)
		if err != nil {
			return err
		}
		mappingPath = path
		defer cmdline.ReleaseMappingFile(src.Language, path)
	}

	var configPath string
	if cfg.ConfigFilePatterns != nil {
		path, err := cmdline.MaterializeConfigFile(src.Project, src.Language, s.reg, s.cfg.TempDir)
		if err != nil {
			diagnostics.LogFatal("generating config file: " + err.Error())
			return err
		}
		configPath = path
	}

	transitive := src.Project.TransitiveImports()
	includes, err := cmdline.ResolveIncludePaths(
		cfg,
		cmdline.CompatibleObjectDirs(src.Project, transitive, cfg),
		s.reg,
		s.cfg.TempDir,
	)
	if err != nil {
		return err
	}

	argv := cmdline.Assemble(cmdline.Options{
		Source:          src,
		IncludeSwitches: includes.Switches,
		MappingFilePath: mappingPath,
		ConfigFilePath:  configPath,
		GenerateDepFile: cfg.DepKind != model.DependencyKindNone && !cfg.ComputeDependency,
	})

	resolved, err := s.lookPath(argv[0])
	if err != nil {
		diagnostics.LogFatal("compiler driver " + argv[0] + ": " + err.Error())
		return err
	}

	cmd := exec.CommandContext(ctx, resolved, argv[1:]...)
	if len(includes.Env) > 0 {
		env := os.Environ()
		for k, v := range includes.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			diagnostics.LogFatal("spawning " + resolved + ": " + err.Error())
		}
		if stderr.Len() > 0 {
			return errorWithOutput(err, stderr.String())
		}
		return err
	}
	return nil
}

// resolveDependencies parses the dep file a compile just produced -- either
// directly (most compilers write it as a side effect) or by re-spawning a
// configured dependency-builder tool when the language requires a separate
// process for it (§4.9) -- and resolves every declared dependency back to a
// Source in the tree, regardless of which dep-file grammar produced it.
func (s *Supervisor) resolveDependencies(ctx context.Context, entry queue.Entry, cfg *model.LanguageConfig) ([]*model.Source, error) {
	if cfg.DepKind == model.DependencyKindNone {
		return nil, nil
	}
	src := entry.Source

	if cfg.ComputeDependency {
		resolved, err := s.lookPath(cfg.DependencyBuilderPath)
		if err != nil {
			return nil, err
		}
		cmd := exec.CommandContext(ctx, resolved, cfg.DependencyBuilderArgs...)
		out, err := os.OpenFile(src.DepPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, err
		}
		defer out.Close()
		cmd.Stdout = out
		if err := cmd.Run(); err != nil {
			return nil, err
		}
	}

	switch cfg.DepKind {
	case model.DependencyKindMakefile:
		deps, err := depparse.ParseMakefile(src.DepPath)
		if err != nil {
			return nil, err
		}
		sourceDir := filepath.Dir(src.AbsPath)
		var found []*model.Source
		for _, prereq := range deps.Prerequisites {
			abs := depparse.ResolveMakefilePrerequisite(sourceDir, prereq)
			if depSrc, ok := entry.Tree.SourceByAbsPath(abs); ok {
				found = append(found, depSrc)
			}
		}
		return found, nil

	case model.DependencyKindUnitManifest:
		manifest, err := depparse.ParseUnitManifest(src.DepPath, s.cfg.NoSplitUnits)
		if err != nil {
			return nil, err
		}
		var found []*model.Source
		for _, basename := range manifest.UsedSourceBasenames() {
			found = append(found, entry.Tree.SourcesByBasename(basename)...)
		}
		return found, nil

	default:
		return nil, nil
	}
}

// classifyAndEnqueue runs the import-legality checker against every
// dependency source a dep-parser discovered, logging violations, and
// enqueues every allowed dependency not yet in the tree's compile queue
// (§4.3, §4.10).
func (s *Supervisor) classifyAndEnqueue(entry queue.Entry, discovered []*model.Source) {
	if len(discovered) == 0 {
		return
	}

	var newlyReachable []*model.Source
	for _, depSrc := range discovered {
		class := s.checker.Classify(entry.Source.Project, depSrc)
		if !class.Allowed() {
			diagnostics.LogImportViolation(entry.Source.AbsPath, depSrc.AbsPath, class)
			forceRecompile(entry.Source)
			continue
		}
		newlyReachable = append(newlyReachable, depSrc)
	}

	if len(newlyReachable) > 0 {
		s.qmu.Lock()
		s.q.InsertTransitiveDependencies(entry.Tree, newlyReachable)
		s.qmu.Unlock()

		select {
		case s.notify <- struct{}{}:
		default:
		}
	}
}

// forceRecompile deletes src's produced object, dep, and switches files so
// the next run treats it as stale and recompiles it, per §7's handling of an
// import-legality violation discovered post-compile.
func forceRecompile(src *model.Source) {
	for _, path := range []string{src.ObjPath, src.DepPath, src.SwitchesPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			diagnostics.LogWarning("Cleanup", "failed to remove "+path+" after import-legality violation: "+err.Error())
		}
	}
}

func errorWithOutput(err error, output string) error {
	return &compileError{underlying: err, output: output}
}

type compileError struct {
	underlying error
	output     string
}

func (e *compileError) Error() string {
	return e.underlying.Error() + ": " + e.output
}

func (e *compileError) Unwrap() error { return e.underlying }
