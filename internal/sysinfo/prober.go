package sysinfo

import (
	"context"
	"os/exec"
)

// CmdProber runs package-manager queries as real subprocesses.
type CmdProber struct{}

func (CmdProber) Output(ctx context.Context, command string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, command, args...).Output()
}

var _ Prober = CmdProber{}
