// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExtractionStatus records how far text extraction got for a document.
type ExtractionStatus string

const (
	// ExtractionPending marks a cataloged document not yet attempted.
	ExtractionPending ExtractionStatus = "pending"

	// ExtractionText marks a document with cached extracted text.
	ExtractionText ExtractionStatus = "text"

	// ExtractionNeedsOCR marks a document whose direct extraction timed out
	// or produced no text; it needs an alternate extraction pass.
	ExtractionNeedsOCR ExtractionStatus = "needs_ocr"

	// ExtractionFailed marks a document whose extraction hit an I/O error.
	ExtractionFailed ExtractionStatus = "failed"
)

// EntityLabel classifies an entity mention (spaCy-style label set).
type EntityLabel string

const (
	LabelPerson EntityLabel = "PERSON"
	LabelOrg    EntityLabel = "ORG"
	LabelPlace  EntityLabel = "GPE"
)

// Document is one unit of ingested text: a cataloged corpus file or an
// email thread. Immutable after creation except for ExtractionStatus.
type Document struct {
	// ID is the store-assigned row id.
	ID int64 `json:"id" yaml:"id"`

	// RelPath locates the document relative to the corpus root. Email
	// threads use the synthetic form "thread/<thread_id>".
	RelPath string `json:"rel_path" yaml:"rel_path"`

	// SourceTag identifies the release/dataset the document came from
	// (e.g. "dataset-8", "emails").
	SourceTag string `json:"source_tag" yaml:"source_tag"`

	// Size is the raw file size in bytes, or the character length for
	// email threads.
	Size int64 `json:"size" yaml:"size"`

	// ExtractionStatus records the text-extraction outcome.
	ExtractionStatus ExtractionStatus `json:"extraction_status" yaml:"extraction_status"`
}

// Observation is one (document, canonical entity, label) triple with the
// number of mentions inside that document. Unique per (document, entity).
type Observation struct {
	Entity string      `json:"entity" yaml:"entity"`
	Label  EntityLabel `json:"label" yaml:"label"`
	Count  int         `json:"count" yaml:"count"`
}

// EntityStat is an aggregate over a canonical entity: how many distinct
// documents mention it and how many mentions in total.
type EntityStat struct {
	Entity    string      `json:"entity" yaml:"entity"`
	Label     EntityLabel `json:"label" yaml:"label"`
	Documents int         `json:"documents" yaml:"documents"`
	Mentions  int         `json:"mentions" yaml:"mentions"`
}

// Edge is one undirected co-occurrence pair. EntityA < EntityB under
// lexical order so each pair is stored exactly once.
type Edge struct {
	EntityA  string `json:"entity_a" yaml:"entity_a"`
	EntityB  string `json:"entity_b" yaml:"entity_b"`
	DocCount int    `json:"doc_count" yaml:"doc_count"`
}

// Neighbor is a co-occurring entity with the number of shared documents.
type Neighbor struct {
	Entity   string `json:"entity" yaml:"entity"`
	DocCount int    `json:"doc_count" yaml:"doc_count"`
}

// DocumentHit is a document matching an entity or keyword query, with a
// context snippet centered on the first match.
type DocumentHit struct {
	DocumentID int64  `json:"document_id" yaml:"document_id"`
	RelPath    string `json:"rel_path" yaml:"rel_path"`
	SourceTag  string `json:"source_tag" yaml:"source_tag"`
	Snippet    string `json:"snippet" yaml:"snippet"`
}

// StoreStatus aggregates per-stage counts for the status command.
type StoreStatus struct {
	Documents    int            `json:"documents" yaml:"documents"`
	WithText     int            `json:"with_text" yaml:"with_text"`
	NeedsOCR     int            `json:"needs_ocr" yaml:"needs_ocr"`
	Failed       int            `json:"failed" yaml:"failed"`
	Observations int            `json:"observations" yaml:"observations"`
	Entities     int            `json:"entities" yaml:"entities"`
	Edges        int            `json:"edges" yaml:"edges"`
	KeywordHits  int            `json:"keyword_hits" yaml:"keyword_hits"`
	SourceTags   map[string]int `json:"source_tags" yaml:"source_tags"`
}
