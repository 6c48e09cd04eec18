package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ComedicChimera/olive"

	"forge/diagnostics"
	"forge/graph"
	"forge/legality"
	"forge/model"
	"forge/respfile"
	"forge/supervisor"
)

func main() {
	cli := olive.NewCLI("forgec", "forgec drives compilation for forge projects", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the driver log level", false, []string{"silent", "error", "warning", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	buildCmd := cli.AddSubcommand("build", "compile a project and everything it depends on", true)
	buildCmd.AddPrimaryArg("project-path", "the path to the project to build", true)
	buildCmd.AddStringArg("parallelism", "j", "the maximum number of compiler processes to run at once", false)
	buildCmd.AddStringArg("temp-dir", "t", "the directory to write response files and other scratch output to", false)
	buildCmd.AddFlag("fail-fast", "ff", "stop dispatching new compiles as soon as one fails")
	buildCmd.AddFlag("always-compile", "a", "recompile every source regardless of staleness")
	buildCmd.AddFlag("check-switches", "cs", "additionally treat a changed command line as cause to recompile")
	buildCmd.AddFlag("no-split-units", "nsu", "honor subunit dependency records in unit-manifest dep files")
	buildCmd.AddFlag("keep-temps", "kt", "leave response files and other scratch output on disk after the build")
	buildCmd.AddFlag("indirect-imports", "ii", "allow a discovered dependency reachable only through a chain of imports")

	cli.AddSubcommand("version", "print the forgec version", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		diagnostics.PrintErrorMessage("CLI Usage Error", err)
		os.Exit(1)
	}

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		if !execBuildCommand(subResult, result.Arguments["loglevel"].(string)) {
			os.Exit(1)
		}
	case "version":
		diagnostics.PrintInfoMessage("forgec Version", forgeVersion())
	default:
		diagnostics.PrintErrorMessage("CLI Usage Error", errors.New("expected a subcommand"))
		os.Exit(1)
	}
}

// execBuildCommand loads the project tree rooted at the given path and
// drives a full compile of it, returning whether the build succeeded.
func execBuildCommand(result *olive.ArgParseResult, loglevel string) bool {
	projectRelPath, _ := result.PrimaryArg()

	projectPath, err := filepath.Abs(projectRelPath)
	if err != nil {
		diagnostics.PrintErrorMessage("Path Error", err)
		return false
	}

	tree, err := model.LoadTree(projectPath)
	if err != nil {
		diagnostics.PrintErrorMessage("Project Load Error", err)
		return false
	}

	parallelism := 1
	if v, ok := result.Arguments["parallelism"]; ok {
		n, err := strconv.Atoi(v.(string))
		if err != nil || n <= 0 {
			diagnostics.PrintErrorMessage("Argument Error", fmt.Errorf("invalid -parallelism value %q", v))
			return false
		}
		parallelism = n
	}

	tempDir := tree.Root.ObjDir
	if v, ok := result.Arguments["temp-dir"]; ok {
		tempDir = v.(string)
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		diagnostics.PrintErrorMessage("Path Error", err)
		return false
	}

	diagnostics.Initialize(tree.Root.Dir, loglevel)
	diagnostics.DisplayBuildHeader(tree.Root.Name, parallelism)

	logProjectGraph(tree.Root)

	reg := respfile.NewRegistry(result.HasFlag("keep-temps"))
	defer reg.Cleanup()

	sup := supervisor.New(tree, legality.NewChecker(result.HasFlag("indirect-imports")), reg, supervisor.Config{
		MaxParallelism: parallelism,
		FailFast:       result.HasFlag("fail-fast"),
		AlwaysCompile:  result.HasFlag("always-compile"),
		CheckSwitches:  result.HasFlag("check-switches"),
		NoSplitUnits:   result.HasFlag("no-split-units"),
		TempDir:        tempDir,
	})

	diagnostics.BeginPhase("Compiling")
	sup.Seed()
	ok, err := sup.Run(context.Background())
	if err != nil {
		diagnostics.EndPhase(false)
		diagnostics.PrintErrorMessage("Build Error", err)
		return false
	}
	diagnostics.EndPhase(ok)

	return diagnostics.Summary()
}

// logProjectGraph walks the project graph once up front so the driver's
// verbose output lists every project the build will touch before any
// compiling starts, rather than only as each source happens to be reached.
func logProjectGraph(root *model.Project) {
	graph.Walk(root, graph.PreOrder, func(proj *model.Project, _ graph.Context) {
		diagnostics.PrintInfoMessage("Project", proj.Name)
	})
}

func forgeVersion() string {
	return "0.1.0"
}
