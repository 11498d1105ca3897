package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/mainframe/internal/ctxlog"
	"github.com/vk/mainframe/internal/linker"
)

// main is the entrypoint for mflink, the source-tree mirroring tool.
func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("mflink", flag.ContinueOnError)
	flagSet.Usage = func() {
		fmt.Fprint(flagSet.Output(), `
mflink - mirrors a script working copy into the host's storage directory.

Options:
`)
		flagSet.PrintDefaults()
	}

	srcFlag := flagSet.String("src", "", "Source directory (your working copy).")
	dstFlag := flagSet.String("dst", "", "Destination directory (the host's sandboxed storage).")
	watchFlag := flagSet.Bool("watch", false, "Keep running and re-mirror on changes.")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if *srcFlag == "" || *dstFlag == "" {
		flagSet.Usage()
		return fmt.Errorf("both -src and -dst are required")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if !*watchFlag {
		copied, err := linker.Mirror(*srcFlag, *dstFlag)
		if err != nil {
			return err
		}
		logger.Info("Mirror complete.", "files", copied)
		return nil
	}

	watcher, err := linker.NewWatcher(*srcFlag, *dstFlag)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = ctxlog.WithLogger(ctx, logger)

	logger.Info("Watching for changes.", "src", *srcFlag, "dst", *dstFlag)
	if err := watcher.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
