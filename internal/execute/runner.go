package execute

import (
	"bytes"
	"context"
	"io"
	"os/exec"
)

// RunResult carries the captured output of a finished subprocess.
type RunResult struct {
	Stdout []byte
	Stderr []byte
}

// Runner abstracts subprocess execution so tests never spawn real
// processes. Implementations must honor ctx cancellation by terminating
// the child.
type Runner interface {
	Run(ctx context.Context, command string, args []string, stdout, stderr io.Writer) (RunResult, error)
}

// CmdRunner executes commands with os/exec.
type CmdRunner struct{}

func (CmdRunner) Run(ctx context.Context, command string, args []string, stdout, stderr io.Writer) (RunResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = io.Writer(&outBuf)
	if stdout != nil {
		cmd.Stdout = io.MultiWriter(&outBuf, stdout)
	}
	cmd.Stderr = io.Writer(&errBuf)
	if stderr != nil {
		cmd.Stderr = io.MultiWriter(&errBuf, stderr)
	}

	err := cmd.Run()
	return RunResult{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes()}, err
}

var _ Runner = CmdRunner{}
