package store

import (
	"fmt"

	"github.com/google/uuid"
)

// PassageID derives a stable UUID for a passage from its provenance and
// content. External engines that require UUID keys (Qdrant in particular)
// use this so that ids do not change between ingestion runs.
func PassageID(source string, chunkIndex int, text string) string {
	name := fmt.Sprintf("%s#%d\n%s", source, chunkIndex, text)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
