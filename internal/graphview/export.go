package graphview

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON renders the full snapshot as indented JSON.
func (v *View) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// ExportNames writes one JSON object per node, a line-oriented format
// downstream visualizations stream instead of loading whole.
func (v *View) ExportNames(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, n := range v.Nodes {
		entry := map[string]any{
			"name":       n.Entity,
			"mentions":   n.Mentions,
			"file_count": n.Documents,
		}
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("encoding node %s: %w", n.Entity, err)
		}
	}
	return nil
}

// ExportEdges writes one JSON object per edge in source/target/weight
// form.
func (v *View) ExportEdges(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, e := range v.Edges {
		entry := map[string]any{
			"source": e.EntityA,
			"target": e.EntityB,
			"weight": e.DocCount,
		}
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("encoding edge %s|%s: %w", e.EntityA, e.EntityB, err)
		}
	}
	return nil
}
