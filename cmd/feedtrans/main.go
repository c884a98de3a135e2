package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"feedtrans/internal/cli"
	"feedtrans/internal/csvfile"
	"feedtrans/internal/jobs"
	"feedtrans/internal/pricing"
	"feedtrans/internal/progress"
	"feedtrans/internal/store"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	cmd.SilenceUsage = true

	// Handle --estimate flag
	if flags.Estimate {
		return printEstimate(flags, args)
	}

	if flags.Language == "" {
		return fmt.Errorf("target language is required (use --language)")
	}

	key, err := cli.KeyForProvider(flags.Provider)
	if err != nil {
		return err
	}

	opts := jobs.Options{
		SessionID:  flags.SessionID,
		Language:   flags.Language,
		Provider:   flags.Provider,
		APIKey:     key,
		Model:      flags.Model,
		Tier:       flags.Tier,
		Parallel:   flags.Parallel,
		CharBudget: flags.CharBudget,
		TestMode:   flags.TestMode,
		TestLines:  flags.TestLines,
		SplitBytes: flags.SplitBytes,
	}

	if !flags.NoHistory {
		st, err := store.Open(flags.StoreDir)
		if err != nil {
			return fmt.Errorf("failed to open run history: %w", err)
		}
		defer st.Close()
		opts.Store = st
	}

	if !flags.Quiet {
		opts.Log = os.Stderr
		opts.Events = printEvent
	}

	inputs, closeInputs, err := openInputs(args)
	if err != nil {
		return err
	}
	defer closeInputs()

	job := jobs.New(opts)
	outcome, err := job.Run(cmd.Context(), inputs)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(flags.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, result := range outcome.Results {
		for _, part := range result.Parts {
			path := filepath.Join(flags.OutputDir, part.Name)
			if err := os.WriteFile(path, []byte(part.Content), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", part.Name, err)
			}
			fmt.Printf("Wrote %s\n", path)
		}
	}

	fmt.Printf("\nDone in %s: %d lines (%d unique), %d requests, cache hit %.1f%%, ~$%.4f\n",
		outcome.Duration.Round(time.Millisecond),
		outcome.Original, outcome.Unique,
		outcome.Stats.RequestCount, outcome.Stats.HitRate, outcome.Stats.EstimatedCost)
	return nil
}

func printEvent(ev progress.Event) {
	switch ev.Type {
	case progress.TypeInit:
		fmt.Printf("Translating %d file(s): %d lines, %d unique texts in %d batches\n",
			ev.FileCount, ev.TotalLines, ev.UniqueLines, ev.BatchCount)
	case progress.TypeFileStart:
		fmt.Printf("[%d/%d] %s\n", ev.FileIndex+1, ev.FileCount, ev.File)
	case progress.TypeProgress:
		fmt.Printf("\r  %d/%d (%.0f%%)", ev.Done, ev.Total, ev.Percent)
	case progress.TypeFileComplete:
		fmt.Printf("\n[%d/%d] %s done\n", ev.FileIndex+1, ev.FileCount, ev.File)
	case progress.TypeError:
		fmt.Fprintf(os.Stderr, "Error: %s\n", ev.Message)
	}
}

func openInputs(paths []string) ([]jobs.Input, func(), error) {
	var inputs []jobs.Input
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		files = append(files, f)
		inputs = append(inputs, jobs.Input{Name: filepath.Base(path), Reader: f})
	}
	return inputs, closeAll, nil
}

func printEstimate(flags *cli.Flags, paths []string) error {
	var totalLines, totalChars int
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		parsed, err := csvfile.Parse(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for _, item := range parsed.Sources {
			totalLines++
			totalChars += len(item.Text)
		}
	}

	est := pricing.EstimateRun(flags.Provider, totalLines, totalChars)
	fmt.Printf("Files:          %d\n", len(paths))
	fmt.Printf("Source lines:   %d\n", est.Lines)
	fmt.Printf("Source chars:   %d\n", est.Chars)
	fmt.Printf("Input tokens:   ~%d\n", est.InputTokens)
	fmt.Printf("Output tokens:  ~%d\n", est.OutputTokens)
	fmt.Printf("Estimated cost: ~$%.4f (%s)\n", est.Cost, flags.Provider)
	fmt.Printf("Estimated time: ~%d min\n", est.Minutes)
	return nil
}
