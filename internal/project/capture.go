package project

import (
	"io"
	"os"
)

// outputCapture temporarily replaces the process stdout and stderr with pipes,
// standing in for the test runner's own capture while a compile runs.
type outputCapture struct {
	origOut, origErr *os.File
	outW, errW       *os.File
	outC, errC       chan string
}

func startCapture() (*outputCapture, error) {
	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return nil, err
	}

	c := &outputCapture{
		origOut: os.Stdout,
		origErr: os.Stderr,
		outW:    outW,
		errW:    errW,
		outC:    make(chan string, 1),
		errC:    make(chan string, 1),
	}

	go drain(outR, c.outC)
	go drain(errR, c.errC)

	os.Stdout = outW
	os.Stderr = errW
	return c, nil
}

func drain(r *os.File, out chan<- string) {
	data, _ := io.ReadAll(r)
	r.Close()
	out <- string(data)
}

// stop restores the original streams and returns everything captured.
func (c *outputCapture) stop() (stdout, stderr string) {
	os.Stdout = c.origOut
	os.Stderr = c.origErr
	c.outW.Close()
	c.errW.Close()
	return <-c.outC, <-c.errC
}
