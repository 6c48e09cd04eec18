package common

// ProjectFileName is the name of the TOML file that describes a project
// within its root directory.
const ProjectFileName = "forge-project.toml"

// DriverVersion is the version of the compilation driver itself (not the
// projects it builds).
const DriverVersion = "0.1.0"

// SwitchesFileSuffix and DepFileSuffix name the driver-produced and
// compiler-produced artifacts that sit next to an object file.
const (
	SwitchesFileSuffix = ".switches"
	DepFileSuffix      = ".d"
)
