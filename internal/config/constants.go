package config

const SourceFileExt = ".rl"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".rl", ".ril"}

// OutputFileExt is the extension of generated module text.
const OutputFileExt = ".wat"

// ConfigFileName is the per-project configuration file.
const ConfigFileName = "ril.yaml"

// Built-in function names
const (
	PrintFuncName = "print"
	ExitFuncName  = "exit"
)

// DefaultMemoryPages is the linear-memory size declared in generated
// modules when ril.yaml does not override it (one 64KiB page).
const DefaultMemoryPages = 1
