// Package agentio provides the I/O abstraction a deployment handler uses to
// touch its target. The harness only ever hands out local I/O; the connection
// URI exists so handlers can observe whether they would run locally or as root
// over the network.
package agentio

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// URIs recognized by GetIO.
const (
	LocalURI = "local:"
	RootURI  = "ssh://root@localhost"
)

// IO is the file and command surface exposed to handlers.
type IO interface {
	FileExists(path string) bool
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, content []byte, mode os.FileMode) error
	Run(command string, args ...string) (stdout string, stderr string, err error)
	// Remote reports whether this I/O stands in for a remote (root over
	// network) execution mode.
	Remote() bool
}

// GetIO returns the I/O implementation for the given connection URI and
// version. Credentials are accepted for interface parity with a real agent but
// are unused by the mock. Unknown URI schemes are an error.
func GetIO(credentials any, uri string, version int) (IO, error) {
	_ = credentials
	_ = version
	switch {
	case uri == "" || uri == LocalURI:
		return &localIO{}, nil
	case uri == RootURI, strings.HasPrefix(uri, "ssh://"):
		// Remote execution is mocked: same local backend, flagged remote.
		return &localIO{remote: true}, nil
	default:
		return nil, fmt.Errorf("unsupported connection uri %q", uri)
	}
}

type localIO struct {
	remote bool
}

func (l *localIO) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (l *localIO) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (l *localIO) WriteFile(path string, content []byte, mode os.FileMode) error {
	return os.WriteFile(path, content, mode)
}

func (l *localIO) Run(command string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func (l *localIO) Remote() bool {
	return l.remote
}
