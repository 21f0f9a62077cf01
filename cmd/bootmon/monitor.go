package main

import (
	"bytes"
	"io"
)

type status uint8

const (
	pending status = iota
	ready
	failed
)

const (
	red   = "\x1b[31m"
	green = "\x1b[32m"
	reset = "\x1b[0m"
)

var (
	readyLine  = []byte("[bringup] ready")
	failedLine = []byte("[main] error: bring-up failed")
)

// monitor splits console bytes into lines and tracks the boot outcome.
type monitor struct {
	out     io.Writer
	partial []byte
	state   status
}

// feed consumes p and returns the boot status so far. Once ready or failed
// the status does not change.
func (m *monitor) feed(p []byte) status {
	m.partial = append(m.partial, p...)
	for {
		i := bytes.IndexByte(m.partial, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimRight(m.partial[:i], "\r")
		m.line(line)
		m.partial = m.partial[i+1:]
	}
	return m.state
}

func (m *monitor) line(l []byte) {
	colour := ""
	switch {
	case bytes.HasPrefix(l, failedLine):
		colour = red
		if m.state == pending {
			m.state = failed
		}
	case bytes.HasPrefix(l, readyLine):
		colour = green
		if m.state == pending {
			m.state = ready
		}
	case bytes.Contains(l, []byte("] error: ")):
		colour = red
	}
	if colour != "" {
		io.WriteString(m.out, colour)
		m.out.Write(l)
		io.WriteString(m.out, reset+"\n")
		return
	}
	m.out.Write(l)
	io.WriteString(m.out, "\n")
}
