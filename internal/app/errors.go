package app

import (
	"errors"
	"fmt"
)

// Stage names the startup step that failed.
type Stage string

const (
	StageConfig             Stage = "config"
	StageMissingDatabaseURI Stage = "missing_database_uri"
	StageLogger             Stage = "logger"
	StageDatabase           Stage = "database"
	StageListen             Stage = "listen"
)

// StartupError is a fatal startup failure. The process is expected to exit
// with ExitCode and let its supervisor restart it.
type StartupError struct {
	Stage Stage
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup failed at %s stage: %v", e.Stage, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// ExitCode is the process exit status for this failure.
func (e *StartupError) ExitCode() int {
	return 1
}

// ExitCode maps the result of NewApplication or Run to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var startupErr *StartupError
	if errors.As(err, &startupErr) {
		return startupErr.ExitCode()
	}
	return 1
}
