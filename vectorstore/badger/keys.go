package badger

import "github.com/poiesic/assetmatch/core"

// Key prefix for embedding records. Content ids are UUID-shaped strings,
// so plain string concatenation yields stable, collision-free keys.
const embeddingRecordPrefix = "embrec"

// makeRecordKey generates a key for an embedding record by content id.
func makeRecordKey(id core.ContentID) []byte {
	return []byte(embeddingRecordPrefix + ":" + string(id))
}
