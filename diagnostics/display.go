package diagnostics

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"forge/common"
	"forge/model"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// PrintErrorMessage prints a tagged error to the console.
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintWarningMessage prints a tagged warning to the console.
func PrintWarningMessage(tag, msg string) {
	WarnStyleBG.Print(tag)
	WarnColorFG.Println(" " + msg)
}

// PrintInfoMessage prints a tagged informational message to the console.
func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

type compileFailureMessage struct {
	SourcePath string
	Err        error
}

func (m *compileFailureMessage) isError() bool { return true }
func (m *compileFailureMessage) display() {
	PrintErrorMessage("Compile Error ("+m.SourcePath+")", m.Err)
}

type depFileErrorMessage struct {
	DepPath string
	Err     error
}

func (m *depFileErrorMessage) isError() bool { return true }
func (m *depFileErrorMessage) display() {
	PrintErrorMessage("Dependency File Error ("+m.DepPath+")", m.Err)
}

type importViolationMessage struct {
	SourcePath     string
	DependencyPath string
	Class          model.ImportClassification
}

func (m *importViolationMessage) isError() bool { return true }
func (m *importViolationMessage) display() {
	reason := "no import path to"
	if m.Class == model.ClassInterfaceHidden {
		reason = "an un-published source of"
	}
	ErrorStyleBG.Print("Import Violation")
	ErrorColorFG.Printf(" %s has %s %s\n", m.SourcePath, reason, m.DependencyPath)
}

type configErrorMessage struct {
	Kind    string
	Message string
}

func (m *configErrorMessage) isError() bool { return true }
func (m *configErrorMessage) display() {
	ErrorStyleBG.Print(m.Kind + " Error")
	ErrorColorFG.Println(" " + m.Message)
}

type warningMessage struct {
	Kind    string
	Message string
}

func (m *warningMessage) isError() bool { return false }
func (m *warningMessage) display()      { PrintWarningMessage(m.Kind, m.Message) }

// DisplayBuildHeader prints the banner shown once at the start of a build.
func DisplayBuildHeader(rootProjectName string, maxParallelism int) {
	fmt.Print("forge ")
	InfoColorFG.Print("v" + common.DriverVersion)
	fmt.Print(" -- project: ")
	InfoColorFG.Print(rootProjectName)
	fmt.Printf(" (parallelism %d)\n", maxParallelism)
}

var (
	phaseSpinner   *pterm.SpinnerPrinter
	currentPhase   string
	phaseStartTime time.Time
)

const maxPhaseLength = len("Compiling")

// BeginPhase starts the spinner for a named build phase (e.g. "Compiling",
// "Checking").
func BeginPhase(phase string) {
	currentPhase = phase
	phaseText := phase + "..." + strings.Repeat(" ", maxPhaseLength-len(phase)+2)
	phaseSpinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(InfoColorFG))

	phaseSpinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix:       pterm.Prefix{Style: SuccessStyleBG, Text: "Done"},
	}
	phaseSpinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix:       pterm.Prefix{Style: ErrorStyleBG, Text: "Fail"},
	}

	phaseSpinner.Start(phaseText)
	phaseStartTime = time.Now()
}

// EndPhase stops the active phase spinner, if any, reporting success or
// failure as given.
func EndPhase(success bool) {
	if phaseSpinner == nil {
		return
	}
	padded := currentPhase + strings.Repeat(" ", maxPhaseLength-len(currentPhase)+2)
	if success {
		phaseSpinner.Success(padded, fmt.Sprintf("(%.3fs)", time.Since(phaseStartTime).Seconds()))
	} else {
		phaseSpinner.Fail(padded)
	}
	phaseSpinner = nil
}

// DisplayBuildFinished prints the closing summary line.
func DisplayBuildFinished(success bool, errorCount, warningCount int) {
	fmt.Print("\n")
	if success {
		SuccessColorFG.Print("Build succeeded ")
	} else {
		ErrorColorFG.Print("Build failed ")
	}

	fmt.Print("(")
	switch errorCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Print(" errors, ")
	case 1:
		ErrorColorFG.Print(1)
		fmt.Print(" error, ")
	default:
		ErrorColorFG.Print(errorCount)
		fmt.Print(" errors, ")
	}

	switch warningCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Println(" warnings)")
	case 1:
		WarnColorFG.Print(1)
		fmt.Println(" warning)")
	default:
		WarnColorFG.Print(warningCount)
		fmt.Println(" warnings)")
	}
}
