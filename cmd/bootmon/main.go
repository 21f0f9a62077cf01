// Command bootmon watches the board's console UART during boot. It echoes the
// log, colouring errors, and exits 0 once bring-up reports ready or 1 if it
// reports a failure or the timeout passes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"go.bug.st/serial"
)

func main() {
	port := flag.String("port", "", "serial port (default: first found)")
	baud := flag.Int("baud", 115200, "baud rate")
	timeout := flag.Duration("timeout", 10*time.Second, "give up after this long")
	follow := flag.Bool("follow", false, "keep printing after bring-up completes")
	flag.Parse()

	out := colorable.NewColorableStdout()
	if err := run(out, *port, *baud, *timeout, *follow); err != nil {
		fmt.Fprintln(colorable.NewColorableStderr(), "bootmon:", err)
		os.Exit(1)
	}
}

func run(out io.Writer, name string, baud int, timeout time.Duration, follow bool) error {
	if name == "" {
		ports, err := serial.GetPortsList()
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			return errors.New("no serial ports found")
		}
		name = ports[0]
	}
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer p.Close()
	if err := p.SetReadTimeout(100 * time.Millisecond); err != nil {
		return err
	}

	m := &monitor{out: out}
	deadline := time.Now().Add(timeout)
	buf := make([]byte, 256)
	for follow || time.Now().Before(deadline) {
		n, err := p.Read(buf)
		if err != nil {
			return err
		}
		switch m.feed(buf[:n]) {
		case failed:
			return errors.New("bring-up failed")
		case ready:
			if !follow {
				return nil
			}
		}
	}
	return errors.New("timed out waiting for bring-up")
}
