package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/lumavm/stack-trace/capture"
	"github.com/lumavm/stack-trace/shapes"
	"github.com/lumavm/stack-trace/snapfile"
	"github.com/lumavm/stack-trace/unwind"
)

func main() {
	var (
		snapFile    = flag.String("snap", "", "Path to snapshot fixture file")
		profileFile = flag.String("profile", "", "Shape profile file (optional, defaults to built-in)")
		targetName  = flag.String("target", "main", "Target name used in the trace header")
		skip        = flag.Int("skip", 0, "Leading frames to skip")
		capacity    = flag.Int("capacity", capture.DefaultCapacity, "Max trace entries")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *snapFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: tracedump -snap <file.yaml> [-profile shapes.yaml] [-skip n]")
		fmt.Fprintln(os.Stderr, "       tracedump -snap <file.yaml> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			capture.SetLogger(logger)
			unwind.SetLogger(logger)
		}
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*snapFile, *profileFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*snapFile, *profileFile, *targetName, *skip, *capacity); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadProfile(path string) (*shapes.Compiled, error) {
	if path == "" {
		return shapes.Default().Compile()
	}
	return shapes.NewLoader().Load(path)
}

func run(snapFile, profileFile, targetName string, skip, capacity int) error {
	profile, err := loadProfile(profileFile)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	snap, err := snapfile.LoadFile(snapFile)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	fmt.Printf("Snapshot: %s\n", snapFile)
	fmt.Printf("Physical frames: %d\n", snap.FrameCount())

	c := capture.New(profile, capture.WithCapacity(capacity))
	traces, err := c.CaptureAll(context.Background(), []capture.Target{
		{Name: targetName, Source: snap, Skip: skip},
	})
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	tr := traces[0]

	fmt.Printf("\nTrace %s (target %s)\n", tr.ID, tr.Target)
	fmt.Printf("Fingerprint: %s\n", tr.Fingerprint)
	if tr.HasAsync {
		fmt.Printf("Reconstructed through the awaiter chain\n")
	}
	if tr.Truncated {
		fmt.Printf("Truncated at %d entries\n", len(tr.Entries))
	}

	fmt.Printf("\n")
	for i, e := range tr.Entries {
		marker := ""
		if e.CatchError {
			marker = "  (error handler)"
		}
		fmt.Printf("  #%-3d %s +0x%x%s\n", i, e.Code.Name(), e.PC, marker)
	}
	return nil
}
