// Command jsonbrowse is an interactive terminal browser for tree-structured
// JSON data: load a document from a file or standard input, then navigate,
// expand/collapse, and search it with modal keybindings.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cansyan/jsonbrowse/internal/app"
	"github.com/cansyan/jsonbrowse/internal/term"
	"github.com/cansyan/jsonbrowse/internal/value"
)

func main() {
	debugPath := flag.String("debug", "", "write diagnostic logging to this file (absent by default)")
	flag.Parse()

	if err := run(*debugPath); err != nil {
		fmt.Fprintf(os.Stderr, "jsonbrowse: %v\n", err)
		os.Exit(1)
	}
}

func run(debugPath string) error {
	args := flag.Args()
	if len(args) > 1 {
		return fmt.Errorf("usage: jsonbrowse [-debug path] [file]")
	}

	log.SetOutput(io.Discard)
	debug := debugPath != ""
	if debug {
		f, err := os.OpenFile(debugPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening debug log %s: %w", debugPath, err)
		}
		defer f.Close()
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		log.SetOutput(f)
	}

	input := os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()
		input = f
	}

	doc, err := value.Parse(input)
	if err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	log.Printf("parsed document with %d top-level entries", doc.Len())

	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("opening controlling terminal: %w", err)
	}
	defer tty.Close()

	dev, err := term.Open(tty)
	if err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer dev.Close()

	a := app.New(dev, doc, debug)
	return a.Run()
}
