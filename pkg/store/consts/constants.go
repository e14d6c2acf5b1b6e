package consts

const (
	// DefaultDBName is the default database name.
	DefaultDBName = "corpus"

	// TableNamePassages is the default table/collection name for passages.
	TableNamePassages = "passages"

	// Column names
	ColContent    = "content"
	ColSource     = "source"
	ColChunkIndex = "chunk_index"
	ColIngestedAt = "ingested_at"
	ColVector     = "vector"

	// Neo4j specific
	LabelSource   = "Source"
	LabelPassage  = "Passage"
	RelHasPassage = "HAS_PASSAGE"
)
