package ingest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/docgraph/internal/normalize"
	"github.com/pdiddy/docgraph/pkg/types"
)

func writeEmailDump(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "threads.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIngestEmails(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	path := writeEmailDump(t,
		`{"thread_id": "t-1", "subject": "island logistics", "messages": [`+
			`{"sender": "J [jeevacation@gmail.com]", "recipients": ["Ghislaine <gm@example.com>"], "body": "see attached"},`+
			`{"sender": "Ghislaine <gm@example.com>", "recipients": "J [jeevacation@gmail.com]", "body": "done"}]}`,
		`{"thread_id": 42, "messages": [{"sender": "noreply@calendar.example.com", "body": "reminder"}]}`,
	)

	var buf bytes.Buffer
	summary, err := IngestEmails(ctx, st, path, normalize.DefaultAliasTable(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Ingested != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v (output: %s)", summary, buf.String())
	}

	// Thread 1: the address canonicalizes J to jeffrey epstein, twice;
	// Ghislaine resolves by alias, twice.
	stats, err := st.TopEntities(ctx, types.LabelPerson, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	byName := make(map[string]types.EntityStat)
	for _, s := range stats {
		byName[s.Entity] = s
	}
	if byName["jeffrey epstein"].Mentions != 2 {
		t.Errorf("expected 2 epstein mentions, got %+v", byName)
	}
	if byName["ghislaine maxwell"].Mentions != 2 {
		t.Errorf("expected 2 maxwell mentions, got %+v", byName)
	}

	// The automated sender in thread 42 contributes nothing.
	if _, ok := byName["noreply"]; ok {
		t.Error("automated sender must be filtered")
	}

	// Numeric thread ids become documents too.
	doc, err := st.Document(ctx, "thread/42")
	if err != nil {
		t.Fatal(err)
	}
	if doc == nil || doc.SourceTag != "emails" {
		t.Errorf("expected thread/42 document, got %+v", doc)
	}
}

func TestIngestEmailsIdempotent(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	path := writeEmailDump(t,
		`{"thread_id": "t-1", "subject": "s", "messages": [{"sender": "Reid Weingarten <rw@law.com>", "body": "b"}]}`,
	)

	var buf bytes.Buffer
	if _, err := IngestEmails(ctx, st, path, normalize.DefaultAliasTable(), &buf); err != nil {
		t.Fatal(err)
	}
	summary, err := IngestEmails(ctx, st, path, normalize.DefaultAliasTable(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 || summary.Ingested != 0 {
		t.Errorf("rerun should skip the existing thread: %+v", summary)
	}
}

func TestIngestEmailsBadLine(t *testing.T) {
	st := testStore(t)

	path := writeEmailDump(t, `{not json`)

	var buf bytes.Buffer
	summary, err := IngestEmails(context.Background(), st, path, nil, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 1 {
		t.Errorf("expected 1 parse failure, got %+v", summary)
	}
}

func TestThreadTextIncludesSubjectAndBodies(t *testing.T) {
	thread := &emailThread{
		Subject: "island logistics",
		Messages: []emailMessage{
			{Body: "first"},
			{},
			{Body: "second"},
		},
	}
	got := threadText(thread)
	want := "island logistics\n\nfirst\n\nsecond"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
