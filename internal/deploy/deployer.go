package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultTimeout = 10 * time.Minute

	// how long to wait for children holding the output pipes after the script is killed
	waitDelay = 2 * time.Second
)

// Output is what the deploy script wrote.
type Output struct {
	Stdout string
	Stderr string
}

type Deployer interface {
	Deploy(ctx context.Context) (Output, error)
}

// ScriptDeployer runs `bash <Script>` inside WorkDir.
type ScriptDeployer struct {
	Script  string
	WorkDir string
	Timeout time.Duration
}

func NewScriptDeployer(script, workDir string) *ScriptDeployer {
	return &ScriptDeployer{
		Script:  script,
		WorkDir: workDir,
		Timeout: DefaultTimeout,
	}
}

// Deploy blocks until the script exits. The script outlives a cancelled
// caller context, it is only stopped by the timeout.
func (d *ScriptDeployer) Deploy(ctx context.Context) (Output, error) {
	if d.Script == "" {
		return Output{}, errors.New("deploy script not set")
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "bash", d.Script)
	cmd.Dir = d.WorkDir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	out := Output{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		return out, fmt.Errorf("run %s: %w", d.Script, err)
	}

	log.Infof("deploy script %s finished in %s", d.Script, time.Since(start))
	return out, nil
}
