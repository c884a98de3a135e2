// Package jobs orchestrates a full translation run: parse the feed files,
// collapse duplicate texts, plan batches, translate them concurrently
// under a bounded controller, and assemble the translated CSVs. Progress
// streams out as events; batch results land incrementally in a temp store
// so partial work survives a failed run.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"feedtrans/internal/batchplan"
	"feedtrans/internal/csvfile"
	"feedtrans/internal/dedup"
	"feedtrans/internal/parallel"
	"feedtrans/internal/progress"
	"feedtrans/internal/provider"
	"feedtrans/internal/store"
)

// Job states, in order of transition. Completed and Failed are terminal.
type State string

const (
	StateInit        State = "init"
	StateParsing     State = "parsing"
	StateTranslating State = "translating"
	StateFinalizing  State = "finalizing"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
)

// DefaultTestLines caps translated lines per file in test mode.
const DefaultTestLines = 10

// Options configures one translation run.
type Options struct {
	SessionID  string // generated when empty
	Language   string
	Provider   string // deepseek, openai or gemini
	APIKey     string
	Model      string // optional model override
	Tier       int    // OpenAI rate-limit tier
	Parallel   int    // concurrency ceiling override, 0 = provider default
	CharBudget int    // batch packing budget, 0 = default
	TestMode   bool
	TestLines  int // lines per file in test mode, 0 = DefaultTestLines
	SplitBytes int // split outputs larger than this, 0 = never split

	TempDir string        // incremental JSONL store, empty = system temp
	Store   *store.Store  // optional run persistence
	Hub     *progress.Hub // optional per-session event fan-out
	Events  func(progress.Event)
	Log     io.Writer // operational log, nil = discard

	// Translator overrides the provider client, used by tests.
	Translator provider.Translator
}

// Input is one feed file to translate.
type Input struct {
	Name   string
	Reader io.Reader
}

// FileResult is one translated output file.
type FileResult struct {
	OriginalName   string
	TranslatedName string
	Parts          []csvfile.Part
	Lines          int
	Unique         int
}

// Outcome summarizes a completed run.
type Outcome struct {
	SessionID string
	Duration  time.Duration
	Results   []FileResult
	Stats     provider.Snapshot
	Original  int // source lines before deduplication
	Unique    int // texts actually translated
}

// Job is a single translation run. Create it with New and drive it once
// with Run; the state is observable concurrently.
type Job struct {
	opts  Options
	stats *provider.Stats
	log   io.Writer

	mu    sync.Mutex
	state State
}

func New(opts Options) *Job {
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if opts.TempDir == "" {
		opts.TempDir = filepath.Join(os.TempDir(), "feedtrans")
	}
	if opts.TestLines <= 0 {
		opts.TestLines = DefaultTestLines
	}
	log := opts.Log
	if log == nil {
		log = io.Discard
	}
	return &Job{
		opts:  opts,
		stats: &provider.Stats{},
		log:   log,
		state: StateInit,
	}
}

// SessionID returns the run's session identifier.
func (j *Job) SessionID() string { return j.opts.SessionID }

// State returns the job's current state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

func (j *Job) setState(s State) {
	j.mu.Lock()
	j.state = s
	j.mu.Unlock()
}

func (j *Job) logf(format string, args ...any) {
	fmt.Fprintf(j.log, format+"\n", args...)
}

func (j *Job) emit(ev progress.Event) {
	ev.SessionID = j.opts.SessionID
	if j.opts.Events != nil {
		j.opts.Events(ev)
	}
	if j.opts.Hub != nil {
		j.opts.Hub.Send(j.opts.SessionID, ev)
	}
}

type fileData struct {
	name    string
	rows    [][]string
	result  dedup.Result
	batches []batchplan.Batch
}

// Run executes the whole job. Temp files are removed on both terminal
// states; an error is reported as an error event before it returns.
func (j *Job) Run(ctx context.Context, inputs []Input) (*Outcome, error) {
	start := time.Now()
	outcome, err := j.run(ctx, start, inputs)
	if err != nil {
		j.setState(StateFailed)
		j.logf("[Job] Failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
		j.emit(progress.Event{Type: progress.TypeError, Message: err.Error()})
		return nil, err
	}
	j.setState(StateCompleted)
	return outcome, nil
}

func (j *Job) run(ctx context.Context, start time.Time, inputs []Input) (*Outcome, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input files")
	}

	translator := j.opts.Translator
	if translator == nil {
		var err error
		translator, err = provider.New(ctx, &provider.Config{
			Provider: j.opts.Provider,
			APIKey:   j.opts.APIKey,
			Language: j.opts.Language,
			Model:    j.opts.Model,
			Tier:     j.opts.Tier,
			Stats:    j.stats,
		})
		if err != nil {
			return nil, err
		}
	}

	temp, err := newTempStore(j.opts.TempDir, j.opts.SessionID)
	if err != nil {
		return nil, err
	}
	defer temp.Cleanup()

	reporter := progress.NewReporter(j.emit)

	// Parse everything up front so the init event can carry global totals.
	j.setState(StateParsing)
	files, totalOriginal, totalUnique, err := j.parse(inputs)
	if err != nil {
		return nil, err
	}

	saved := dedup.Result{TotalOriginal: totalOriginal, TotalUnique: totalUnique}.SavedPercent()
	j.logf("[Dedup] %d lines -> %d unique (%.1f%% saved)", totalOriginal, totalUnique, saved)
	reporter.Emit(progress.Event{
		Type:        progress.TypeInit,
		FileCount:   len(files),
		TotalLines:  totalOriginal,
		UniqueLines: totalUnique,
		BatchCount:  countBatches(files),
	})

	j.setState(StateTranslating)
	controller := j.controller()
	var processed counter

	var results []FileResult
	for fileIndex, fd := range files {
		reporter.Emit(progress.Event{
			Type:      progress.TypeFileStart,
			File:      fd.name,
			FileIndex: fileIndex,
			FileCount: len(files),
		})
		j.logf("[File %d/%d] %s - %d unique texts in %d batches",
			fileIndex+1, len(files), fd.name, fd.result.TotalUnique, len(fd.batches))

		if err := j.translateFile(ctx, translator, controller, temp, reporter, fileIndex, fd, &processed, totalUnique); err != nil {
			return nil, err
		}
		reporter.Final(processed.get(), totalUnique)

		result, err := j.finalizeFile(temp, fileIndex, fd)
		if err != nil {
			return nil, err
		}
		results = append(results, result)

		reporter.Emit(progress.Event{
			Type:      progress.TypeFileComplete,
			File:      fd.name,
			FileIndex: fileIndex,
			FileCount: len(files),
		})
	}

	j.setState(StateFinalizing)
	stats := j.stats.Snapshot(translator.Name())
	duration := time.Since(start)

	if err := j.persist(results, stats, duration); err != nil {
		return nil, err
	}

	outputs := make([]string, 0, len(results))
	for _, r := range results {
		for _, p := range r.Parts {
			outputs = append(outputs, p.Name)
		}
	}
	reporter.Emit(progress.Event{
		Type:    progress.TypeComplete,
		Outputs: outputs,
		Stats:   stats,
	})
	j.logf("[Job] Completed in %s - %d requests, cache hit %.1f%%, ~$%.4f",
		duration.Round(time.Second), stats.RequestCount, stats.HitRate, stats.EstimatedCost)

	return &Outcome{
		SessionID: j.opts.SessionID,
		Duration:  duration,
		Results:   results,
		Stats:     stats,
		Original:  totalOriginal,
		Unique:    totalUnique,
	}, nil
}

func (j *Job) parse(inputs []Input) ([]fileData, int, int, error) {
	var files []fileData
	var totalOriginal, totalUnique int
	for _, in := range inputs {
		f, err := csvfile.Parse(in.Reader)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("%s: %w", in.Name, err)
		}

		sources := f.Sources
		if j.opts.TestMode && len(sources) > j.opts.TestLines {
			sources = sources[:j.opts.TestLines]
			j.logf("[TestMode] %s limited to %d lines", in.Name, len(sources))
		}

		result := dedup.Dedupe(sources)
		files = append(files, fileData{
			name:    in.Name,
			rows:    f.Rows,
			result:  result,
			batches: batchplan.Plan(result.Items, j.opts.CharBudget),
		})
		totalOriginal += result.TotalOriginal
		totalUnique += result.TotalUnique
	}
	return files, totalOriginal, totalUnique, nil
}

// translateFile runs the file's batches concurrently under the controller
// and joins them. A failed batch records sentinel translations for its
// texts instead of failing the file; only context cancellation aborts.
func (j *Job) translateFile(ctx context.Context, translator provider.Translator, controller parallel.Controller, temp *tempStore, reporter *progress.Reporter, fileIndex int, fd fileData, processed *counter, totalUnique int) error {
	var wg sync.WaitGroup
	for _, batch := range fd.batches {
		if err := controller.Acquire(ctx); err != nil {
			wg.Wait()
			return err
		}
		batch := batch
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer controller.Release()

			res, err := translator.Translate(ctx, provider.Request{
				Texts:  batch.Texts,
				Markup: batch.Markup,
			})
			for i, item := range batch.Items {
				translation := ""
				if err != nil {
					translation = fmt.Sprintf("[ERREUR: %s]", err)
				} else if i < len(res.Translations) {
					translation = res.Translations[i]
				}
				if aerr := temp.Append(fileIndex, tempEntry{
					Text:        item.Text,
					Translation: translation,
					Rows:        item.Rows,
				}); aerr != nil {
					j.logf("[Temp] Append failed: %v", aerr)
				}
				reporter.Progress(processed.inc(), totalUnique)
			}
			if err != nil {
				j.logf("[Batch] %s: %v", fd.name, err)
			}
		}()
	}
	wg.Wait()
	return ctx.Err()
}

func (j *Job) finalizeFile(temp *tempStore, fileIndex int, fd fileData) (FileResult, error) {
	translations, err := temp.Load(fileIndex)
	if err != nil {
		return FileResult{}, err
	}

	csvfile.InsertTranslations(fd.rows, translations)
	csvfile.NormalizeHandles(fd.rows)
	content := csvfile.Generate(fd.rows)

	suffix := "_" + j.opts.Language
	if j.opts.TestMode {
		suffix = "_TEST_" + j.opts.Language
	}
	name := strings.TrimSuffix(fd.name, ".csv") + suffix + ".csv"

	return FileResult{
		OriginalName:   fd.name,
		TranslatedName: name,
		Parts:          csvfile.SplitIfOversized(name, content, j.opts.SplitBytes),
		Lines:          fd.result.TotalOriginal,
		Unique:         fd.result.TotalUnique,
	}, nil
}

func (j *Job) persist(results []FileResult, stats provider.Snapshot, duration time.Duration) error {
	if j.opts.Store == nil {
		return nil
	}

	var files []store.File
	for _, r := range results {
		for _, p := range r.Parts {
			files = append(files, store.File{Name: p.Name, Content: p.Content})
		}
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return j.opts.Store.Save(&store.Record{
		SessionID: j.opts.SessionID,
		Language:  j.opts.Language,
		Provider:  j.opts.Provider,
		Duration:  duration,
		Stats:     statsJSON,
	}, files)
}

// controller picks the concurrency gate for the provider: DeepSeek runs
// wide open under a fixed ceiling, OpenAI ramps up within its tier, Gemini
// gets a conservative fixed ceiling.
func (j *Job) controller() parallel.Controller {
	if j.opts.Parallel > 0 {
		return parallel.Fixed(j.opts.Parallel)
	}
	switch j.opts.Provider {
	case "openai":
		tier := provider.TierFor(j.opts.Tier)
		j.logf("[RampUp] Tier %d: %d -> %d parallel, +%d every %s",
			j.opts.Tier, tier.Ramp.Initial, tier.MaxParallel, tier.Ramp.Step, tier.Ramp.Delay)
		return parallel.NewRamp(parallel.RampConfig{
			Initial: tier.Ramp.Initial,
			Max:     tier.MaxParallel,
			Step:    tier.Ramp.Step,
			Delay:   tier.Ramp.Delay,
		})
	case "gemini":
		return parallel.Fixed(8)
	default:
		return parallel.Fixed(provider.DeepSeekMaxParallel)
	}
}

func countBatches(files []fileData) int {
	var n int
	for _, fd := range files {
		n += len(fd.batches)
	}
	return n
}

// counter is a concurrency-safe progress count.
type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) inc() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.n
}

func (c *counter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
