package jobs

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"feedtrans/internal/progress"
	"feedtrans/internal/provider"
	"feedtrans/internal/store"
)

// stubTranslator prefixes every text so outputs are recognizable, and can
// be told to fail batches containing a trigger text.
type stubTranslator struct {
	mu       sync.Mutex
	failOn   string
	requests int
	seen     []string
}

func (s *stubTranslator) Name() string { return "stub" }

func (s *stubTranslator) Translate(_ context.Context, req provider.Request) (*provider.Result, error) {
	s.mu.Lock()
	s.requests++
	s.seen = append(s.seen, req.Texts...)
	s.mu.Unlock()

	out := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if s.failOn != "" && text == s.failOn {
			return nil, fmt.Errorf("stub refused %q", text)
		}
		out[i] = "FR:" + text
	}
	return &provider.Result{Translations: out}, nil
}

func feedCSV(sources ...string) string {
	var b strings.Builder
	b.WriteString("ID,A,B,C,D,E,Source,Target\n")
	for i, s := range sources {
		fmt.Fprintf(&b, "%d,,,,,,\"%s\",\n", i+1, s)
	}
	return b.String()
}

type eventLog struct {
	mu     sync.Mutex
	events []progress.Event
}

func (l *eventLog) record(ev progress.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) types() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var types []string
	for _, ev := range l.events {
		types = append(types, ev.Type)
	}
	return types
}

func TestRun_TranslatesAndDeduplicates(t *testing.T) {
	stub := &stubTranslator{}
	log := &eventLog{}
	job := New(Options{
		Language:   "fr",
		Provider:   "deepseek",
		TempDir:    t.TempDir(),
		Events:     log.record,
		Translator: stub,
	})

	feed := feedCSV("Blue shirt", "Red socks", "Blue shirt", "Blue shirt")
	outcome, err := job.Run(context.Background(), []Input{
		{Name: "products.csv", Reader: strings.NewReader(feed)},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if job.State() != StateCompleted {
		t.Errorf("State = %s, want completed", job.State())
	}
	if outcome.Original != 4 || outcome.Unique != 2 {
		t.Errorf("Counts = %d/%d, want 4/2", outcome.Original, outcome.Unique)
	}
	if len(stub.seen) != 2 {
		t.Errorf("Translator saw %d texts, want 2 (duplicates collapsed)", len(stub.seen))
	}

	if len(outcome.Results) != 1 {
		t.Fatalf("Got %d results, want 1", len(outcome.Results))
	}
	r := outcome.Results[0]
	if r.TranslatedName != "products_fr.csv" {
		t.Errorf("TranslatedName = %q", r.TranslatedName)
	}
	content := r.Parts[0].Content
	if strings.Count(content, `"FR:Blue shirt"`) != 3 {
		t.Errorf("Duplicate rows not all filled:\n%s", content)
	}
	if !strings.Contains(content, `"FR:Red socks"`) {
		t.Errorf("Missing translation:\n%s", content)
	}
}

func TestRun_EventSequence(t *testing.T) {
	log := &eventLog{}
	job := New(Options{
		Language:   "de",
		Provider:   "deepseek",
		TempDir:    t.TempDir(),
		Events:     log.record,
		Translator: &stubTranslator{},
	})

	_, err := job.Run(context.Background(), []Input{
		{Name: "a.csv", Reader: strings.NewReader(feedCSV("one", "two"))},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	types := log.types()
	if types[0] != progress.TypeInit {
		t.Errorf("First event = %s, want init", types[0])
	}
	if types[len(types)-1] != progress.TypeComplete {
		t.Errorf("Last event = %s, want complete", types[len(types)-1])
	}

	var sawStart, sawProgress, sawFileComplete bool
	for _, typ := range types {
		switch typ {
		case progress.TypeFileStart:
			sawStart = true
		case progress.TypeProgress:
			sawProgress = true
		case progress.TypeFileComplete:
			sawFileComplete = true
		}
	}
	if !sawStart || !sawProgress || !sawFileComplete {
		t.Errorf("Event types = %v, missing file_start/progress/file_complete", types)
	}
}

func TestRun_FailedBatchWritesSentinel(t *testing.T) {
	job := New(Options{
		Language:   "fr",
		Provider:   "deepseek",
		TempDir:    t.TempDir(),
		CharBudget: 1, // every text in its own batch
		Translator: &stubTranslator{failOn: "broken text"},
	})

	feed := feedCSV("good text", "broken text")
	outcome, err := job.Run(context.Background(), []Input{
		{Name: "feed.csv", Reader: strings.NewReader(feed)},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	content := outcome.Results[0].Parts[0].Content
	if !strings.Contains(content, `"FR:good text"`) {
		t.Errorf("Good batch missing:\n%s", content)
	}
	if !strings.Contains(content, "[ERREUR: ") {
		t.Errorf("Sentinel missing for failed batch:\n%s", content)
	}
	if job.State() != StateCompleted {
		t.Errorf("State = %s, a failed batch must not fail the job", job.State())
	}
}

func TestRun_TestModeCapsAndRenames(t *testing.T) {
	stub := &stubTranslator{}
	job := New(Options{
		Language:   "es",
		Provider:   "deepseek",
		TempDir:    t.TempDir(),
		TestMode:   true,
		TestLines:  2,
		Translator: stub,
	})

	feed := feedCSV("one", "two", "three", "four")
	outcome, err := job.Run(context.Background(), []Input{
		{Name: "big.csv", Reader: strings.NewReader(feed)},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if outcome.Unique != 2 {
		t.Errorf("Unique = %d, want capped at 2", outcome.Unique)
	}
	if got := outcome.Results[0].TranslatedName; got != "big_TEST_es.csv" {
		t.Errorf("TranslatedName = %q, want big_TEST_es.csv", got)
	}
	content := outcome.Results[0].Parts[0].Content
	if strings.Contains(content, "FR:three") {
		t.Errorf("Line beyond the cap was translated:\n%s", content)
	}
}

func TestRun_CleansTempFiles(t *testing.T) {
	dir := t.TempDir()
	job := New(Options{
		Language:   "fr",
		Provider:   "deepseek",
		TempDir:    dir,
		Translator: &stubTranslator{},
	})

	_, err := job.Run(context.Background(), []Input{
		{Name: "a.csv", Reader: strings.NewReader(feedCSV("x"))},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), job.SessionID()) {
			t.Errorf("Temp file %s survived the run", e.Name())
		}
	}
}

func TestRun_PersistsToStore(t *testing.T) {
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	job := New(Options{
		Language:   "it",
		Provider:   "deepseek",
		TempDir:    t.TempDir(),
		Store:      s,
		Translator: &stubTranslator{},
	})
	_, err = job.Run(context.Background(), []Input{
		{Name: "shop.csv", Reader: strings.NewReader(feedCSV("ciao"))},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rec, err := s.Session(job.SessionID())
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if rec.Language != "it" || len(rec.Files) != 1 || rec.Files[0] != "shop_it.csv" {
		t.Errorf("Record = %+v", rec)
	}
	content, err := s.FileContent(job.SessionID(), "shop_it.csv")
	if err != nil {
		t.Fatalf("FileContent failed: %v", err)
	}
	if !strings.Contains(content, `"FR:ciao"`) {
		t.Errorf("Stored content = %q", content)
	}
}

func TestRun_NoInputs(t *testing.T) {
	job := New(Options{Language: "fr", Provider: "deepseek", TempDir: t.TempDir(), Translator: &stubTranslator{}})
	if _, err := job.Run(context.Background(), nil); err == nil {
		t.Error("Expected error for empty input list")
	}
	if job.State() != StateFailed {
		t.Errorf("State = %s, want failed", job.State())
	}
}

func TestRun_ErrorEmitsErrorEvent(t *testing.T) {
	log := &eventLog{}
	job := New(Options{
		Language:   "fr",
		Provider:   "deepseek",
		TempDir:    t.TempDir(),
		Events:     log.record,
		Translator: &stubTranslator{},
	})

	_, err := job.Run(context.Background(), []Input{
		{Name: "bad.csv", Reader: strings.NewReader("")},
	})
	if err == nil {
		t.Fatal("Expected error for empty CSV")
	}

	types := log.types()
	if len(types) == 0 || types[len(types)-1] != progress.TypeError {
		t.Errorf("Events = %v, want trailing error event", types)
	}
}

func TestRun_SplitsOversizedOutput(t *testing.T) {
	long := strings.Repeat("lorem ipsum dolor ", 20)
	var sources []string
	for i := 0; i < 20; i++ {
		sources = append(sources, fmt.Sprintf("%s %d", long, i))
	}

	job := New(Options{
		Language:   "fr",
		Provider:   "deepseek",
		TempDir:    t.TempDir(),
		SplitBytes: 2000,
		Translator: &stubTranslator{},
	})
	outcome, err := job.Run(context.Background(), []Input{
		{Name: "huge.csv", Reader: strings.NewReader(feedCSV(sources...))},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	parts := outcome.Results[0].Parts
	if len(parts) < 2 {
		t.Fatalf("Got %d parts, want several", len(parts))
	}
	if parts[0].Name != "huge_fr_part1.csv" {
		t.Errorf("First part name = %q", parts[0].Name)
	}
}
