// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pdiddy/docgraph/internal/normalize"
	"github.com/pdiddy/docgraph/internal/store"
	"github.com/pdiddy/docgraph/pkg/types"
)

const emailSourceTag = "emails"

// stringList accepts either a JSON string or an array of strings; the
// email dumps are inconsistent about which they use.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "" {
			*l = []string{s}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

type emailMessage struct {
	Sender     stringList `json:"sender"`
	Recipients stringList `json:"recipients"`
	CC         stringList `json:"cc"`
	Body       string     `json:"body"`
}

// flexID accepts a JSON string or number.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

type emailThread struct {
	ThreadID flexID         `json:"thread_id"`
	Subject  string         `json:"subject"`
	Messages []emailMessage `json:"messages"`
}

// IngestEmails reads a JSONL dump of email threads and stores each
// thread as one document with PERSON observations for its participants.
// Automated senders are dropped; existing threads are skipped.
func IngestEmails(ctx context.Context, st *store.Store, path string, aliases *normalize.AliasTable, w io.Writer) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("opening email dump: %w", err)
	}
	defer f.Close()

	var summary Summary
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		var thread emailThread
		if err := json.Unmarshal([]byte(line), &thread); err != nil {
			fmt.Fprintf(w, "failed  line %d: parse error: %v\n", lineNo, err)
			summary.Failed++
			continue
		}

		id := string(thread.ThreadID)
		if id == "" {
			id = fmt.Sprintf("line-%d", lineNo)
		}
		relPath := "thread/" + id

		obs := threadObservations(&thread, aliases)
		_, created, err := st.CreateTextDocument(ctx, relPath, emailSourceTag, threadText(&thread), "email", obs)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", relPath, err)
			summary.Failed++
			continue
		}
		if !created {
			fmt.Fprintf(w, "skipped %s\n", relPath)
			summary.Skipped++
			continue
		}

		fmt.Fprintf(w, "ingested %s (%d participants)\n", relPath, len(obs))
		summary.Ingested++
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("reading email dump: %w", err)
	}

	fmt.Fprintf(w, "\ningested: %d, skipped: %d, failed: %d\n",
		summary.Ingested, summary.Skipped, summary.Failed)
	return summary, nil
}

// threadText flattens a thread into searchable text: subject first,
// then message bodies in order.
func threadText(thread *emailThread) string {
	parts := make([]string, 0, len(thread.Messages)+1)
	if thread.Subject != "" {
		parts = append(parts, thread.Subject)
	}
	for _, m := range thread.Messages {
		if m.Body != "" {
			parts = append(parts, m.Body)
		}
	}
	return strings.Join(parts, "\n\n")
}

// threadObservations resolves every participant across the thread's
// messages to a canonical person, counting appearances.
func threadObservations(thread *emailThread, aliases *normalize.AliasTable) []types.Observation {
	counts := make(map[string]int)
	for _, m := range thread.Messages {
		for _, raw := range append(append(append(stringList{}, m.Sender...), m.Recipients...), m.CC...) {
			name, email := normalize.ParseParticipant(raw)
			if name == "" && email == "" {
				continue
			}
			if normalize.IsAutomatedSender(name, email) {
				continue
			}
			canonical, ok := normalize.NormalizeParticipant(name, email, aliases)
			if !ok {
				continue
			}
			counts[canonical]++
		}
	}

	obs := make([]types.Observation, 0, len(counts))
	for entity, n := range counts {
		obs = append(obs, types.Observation{Entity: entity, Label: types.LabelPerson, Count: n})
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].Entity < obs[j].Entity })
	return obs
}
