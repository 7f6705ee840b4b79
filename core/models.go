package core

import "time"

// ContentID is a deterministic identifier for a stored asset, rendered in the
// UUID shape expected by vector store backends.
type ContentID string

// AssetKind categorizes an asset within the matching workflow.
type AssetKind string

const (
	// AssetKindSource is an original input asset.
	AssetKindSource AssetKind = "source"
	// AssetKindGenerated is an asset produced from a source.
	AssetKindGenerated AssetKind = "generated"
	// AssetKindReference is supporting material, never paired.
	AssetKindReference AssetKind = "reference"
)

// Metadata keys attached to stored embedding records.
const (
	MetaFilename    = "filename"
	MetaKind        = "kind"
	MetaDescription = "description"
	MetaProvenance  = "provenance"
)

// Asset is a reference to one visual item registered for ingestion.
// Assets are immutable once created.
type Asset struct {
	URI       string // Stable string key, the basis for the content ID
	Filename  string
	ByteSize  int64
	Kind      AssetKind
	CreatedAt time.Time
}

// Descriptor is a textual description of an asset together with its
// embedding vector. Descriptors are immutable once produced.
type Descriptor struct {
	Text      string
	Embedding []float32
}

// EmbeddingRecord is the unit persisted in the vector store.
// Re-ingesting the same URI overwrites the record (last write wins).
type EmbeddingRecord struct {
	ContentID ContentID
	Vector    []float32
	Metadata  map[string]string
}

// Pair matches a source asset to its best generated candidates.
// Pairs are computed on demand and never persisted by this module.
type Pair struct {
	SourceContentID  ContentID
	TargetContentIDs []ContentID // Ordered best-first, up to topK entries
	Confidence       float64     // Mean final score of the selected targets
	NeedsReview      bool
}

// ProvenanceTuple is the minimal record emitted per successfully stored
// asset for an external collaborator to persist.
type ProvenanceTuple struct {
	ContentID   ContentID
	URI         string
	Kind        AssetKind
	Description string
	ByteSize    int64
}
