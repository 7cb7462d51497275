package invoke

import (
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/rbright/dialogbridge/internal/stream"
)

// execProcess adapts a started exec.Cmd to stream.Process.
//
// Wait reaps through os.Process instead of exec.Cmd.Wait so the pipes stay readable after
// exit; Release owns closing them.
type execProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser

	releaseOnce sync.Once
	releaseErr  error
}

// startProcess wires output pipes and starts cmd.
func startProcess(cmd *exec.Cmd) (*execProcess, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		_ = stdout.Close()
		return nil, fmt.Errorf("open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }
func (p *execProcess) Stderr() io.Reader { return p.stderr }

func (p *execProcess) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *execProcess) Wait() (stream.ExitStatus, error) {
	state, err := p.cmd.Process.Wait()
	if err != nil {
		return stream.ExitStatus{}, err
	}
	if !state.Exited() {
		return stream.ExitStatus{Code: -1, Exited: false}, nil
	}
	return stream.ExitStatus{Code: state.ExitCode(), Exited: true}, nil
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}

func (p *execProcess) Release() error {
	p.releaseOnce.Do(func() {
		errOut := p.stdout.Close()
		errErr := p.stderr.Close()
		if errOut != nil {
			p.releaseErr = errOut
			return
		}
		p.releaseErr = errErr
	})
	return p.releaseErr
}
