// Command pinmap validates a board layout and prints the pin assignments.
//
//	pinmap                 # default GFX Pack layout
//	pinmap -f board.yaml   # layout file, missing fields take defaults
//	pinmap -dump           # print the default layout as YAML
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"gfxpack-go/services/bringup"
	"gfxpack-go/services/bringup/layoutfile"
)

func main() {
	file := flag.String("f", "", "layout YAML file")
	dump := flag.Bool("dump", false, "print the layout as YAML and exit")
	flag.Parse()

	if err := run(os.Stdout, *file, *dump); err != nil {
		fmt.Fprintln(os.Stderr, "pinmap:", err)
		os.Exit(1)
	}
}

func run(w io.Writer, file string, dump bool) error {
	l := bringup.DefaultLayout()
	if file != "" {
		var err error
		if l, err = layoutfile.Load(file); err != nil {
			return err
		}
	} else if err := l.Validate(); err != nil {
		return err
	}

	if dump {
		data, err := layoutfile.Marshal(l)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	as := l.Assignments()
	sort.Slice(as, func(i, j int) bool { return as[i].Pin < as[j].Pin })
	for _, a := range as {
		fmt.Fprintf(w, "GP%-2d  %s\n", a.Pin, a.Name)
	}
	fmt.Fprintf(w, "spi0  mode %d  %d Hz\n", l.SPIMode, l.SPIRateHz)
	fmt.Fprintf(w, "pwm   %d Hz\n", l.PWMFreqHz)
	return nil
}
