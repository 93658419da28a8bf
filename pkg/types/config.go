package types

import "time"

// StoreConfig holds settings shared by every stage that opens the database.
type StoreConfig struct {
	// DBPath is the path to the SQLite database file (default "docgraph.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// CorpusConfig describes the on-disk document corpus that catalog walks.
type CorpusConfig struct {
	// Root is the directory containing the released documents.
	Root string `json:"root" yaml:"root"`

	// SourceTag labels every document found under Root (e.g. "dataset-8").
	SourceTag string `json:"source_tag" yaml:"source_tag"`

	// Extensions lists the file extensions to catalog (default ".txt", ".md").
	Extensions []string `json:"extensions" yaml:"extensions"`
}

// IngestConfig holds settings for the ingest stage.
type IngestConfig struct {
	// Workers is the number of concurrent extraction workers (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// CommitEvery is the number of documents per write transaction (default 50).
	CommitEvery int `json:"commit_every" yaml:"commit_every"`

	// ExtractTimeout bounds text extraction per document; documents that
	// exceed it are marked needs_ocr (default 30s).
	ExtractTimeout time.Duration `json:"extract_timeout" yaml:"extract_timeout"`

	// MaxTextChars truncates cached text beyond this length (default 50000).
	MaxTextChars int `json:"max_text_chars" yaml:"max_text_chars"`

	// AliasFile is an optional YAML file of canonicalization aliases.
	AliasFile string `json:"alias_file,omitempty" yaml:"alias_file,omitempty"`

	// DictionaryFile is an optional file of entity surface forms for the
	// dictionary tagger, one "LABEL<TAB>name" per line.
	DictionaryFile string `json:"dictionary_file,omitempty" yaml:"dictionary_file,omitempty"`
}

// AggregateConfig holds settings for co-occurrence aggregation.
type AggregateConfig struct {
	// Label restricts aggregation to one entity label; empty means all.
	Label EntityLabel `json:"label,omitempty" yaml:"label,omitempty"`

	// MinDocuments is the minimum distinct-document count for an entity
	// to participate in pairs (default 2).
	MinDocuments int `json:"min_documents" yaml:"min_documents"`

	// MaxEntitiesPerDoc skips pair generation for documents mentioning
	// more entities than this, bounding quadratic blowup (default 500).
	MaxEntitiesPerDoc int `json:"max_entities_per_doc" yaml:"max_entities_per_doc"`
}

// GraphConfig holds settings for building the graph view.
type GraphConfig struct {
	// Label restricts the view to one entity label; empty means all.
	Label EntityLabel `json:"label,omitempty" yaml:"label,omitempty"`

	// MaxNodes caps the view at the top-N entities by document count
	// (default 100). Seeds are always included on top of the cap.
	MaxNodes int `json:"max_nodes" yaml:"max_nodes"`

	// MinDocuments drops entities observed in fewer documents from the
	// ranked scan (default 1, no floor). Seeds bypass it.
	MinDocuments int `json:"min_documents" yaml:"min_documents"`

	// MinWeight drops edges between two non-seed nodes below this shared
	// document count (default 2).
	MinWeight int `json:"min_weight" yaml:"min_weight"`

	// SeedEdgeFloor is the lower edge threshold applied when either
	// endpoint is a seed (default 1).
	SeedEdgeFloor int `json:"seed_edge_floor" yaml:"seed_edge_floor"`

	// Seeds lists canonical entities always kept in the view.
	Seeds []string `json:"seeds,omitempty" yaml:"seeds,omitempty"`

	// PrimarySubjects lists the entities rendered largest regardless of
	// their counts. Implicitly part of Seeds.
	PrimarySubjects []string `json:"primary_subjects,omitempty" yaml:"primary_subjects,omitempty"`
}

// KeywordSearchConfig holds settings for the keyword scan stage.
type KeywordSearchConfig struct {
	// ContextChars is the snippet radius around the first match (default 150).
	ContextChars int `json:"context_chars" yaml:"context_chars"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Store     StoreConfig         `json:"store" yaml:"store"`
	Corpus    CorpusConfig        `json:"corpus" yaml:"corpus"`
	Ingest    IngestConfig        `json:"ingest" yaml:"ingest"`
	Aggregate AggregateConfig     `json:"aggregate" yaml:"aggregate"`
	Graph     GraphConfig         `json:"graph" yaml:"graph"`
	Search    KeywordSearchConfig `json:"search" yaml:"search"`
}
