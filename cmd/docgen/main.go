package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vk/mainframe/internal/docgen"
)

// main is the entrypoint for docgen, which renders the host API document as
// Markdown.
func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("docgen", flag.ContinueOnError)
	urlFlag := flagSet.String("url", "", "URL of the host API JSON document.")
	outFlag := flagSet.String("out", "", "Output file. Empty writes to stdout.")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if *urlFlag == "" {
		flagSet.Usage()
		return fmt.Errorf("-url is required")
	}

	doc, err := docgen.Fetch(*urlFlag)
	if err != nil {
		return err
	}

	out := os.Stdout
	if *outFlag != "" {
		f, err := os.Create(*outFlag)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return docgen.Render(out, doc)
}
