package worker

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// Proc is a subprocess running on a pseudo-terminal. Join waits for the
// process to exit; Release kills it if still running, closes the pty, and
// reaps it. Output is captured from the pty as the process runs.
type Proc struct {
	cmd *exec.Cmd
	tty *os.File

	done    chan struct{}
	waitErr error

	mu       sync.Mutex
	out      bytes.Buffer
	released bool
}

// StartCommand starts name with args on a fresh pty.
func StartCommand(name string, args ...string) (*Proc, error) {
	cmd := exec.Command(name, args...)
	tty, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	p := &Proc{cmd: cmd, tty: tty, done: make(chan struct{})}

	go func() {
		// The pty read fails with EIO once the child exits; that is the
		// normal end-of-output signal, not an error worth keeping.
		_, _ = io.Copy(procWriter{p}, tty)
		p.waitErr = cmd.Wait()
		close(p.done)
	}()

	return p, nil
}

type procWriter struct{ p *Proc }

func (w procWriter) Write(b []byte) (int, error) {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	return w.p.out.Write(b)
}

// Join blocks until the process exits and returns its wait error.
func (p *Proc) Join() error {
	<-p.done
	return p.waitErr
}

// Output returns everything the process has written to the pty so far.
func (p *Proc) Output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.String()
}

// Releasable implements hold.Resource.
func (p *Proc) Releasable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.released
}

// Release implements hold.Resource. It kills the process if still running,
// closes the pty, and blocks until the process is reaped. Only the first
// call has effect.
func (p *Proc) Release() error {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return nil
	}
	p.released = true
	p.mu.Unlock()

	select {
	case <-p.done:
	default:
		_ = p.cmd.Process.Kill()
	}
	_ = p.tty.Close()
	<-p.done
	return nil
}
