package badger

import (
	"fmt"

	"github.com/poiesic/cortex/core"
)

// Key prefixes for different data types
const (
	itemPrefix    = "ctxitm"
	itemIDSeq     = "ctxitmseq"
	projectPrefix = "ctxprj"
)

// makeItemKey generates a key for a context item by ID.
func makeItemKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", itemPrefix, id))
}

// itemScanPrefix is the prefix covering item records but not the ID
// sequence key.
func itemScanPrefix() []byte {
	return []byte(itemPrefix + ":")
}

// makeProjectKey generates a key for a project by its string ID.
func makeProjectKey(id string) []byte {
	return []byte(projectPrefix + ":" + id)
}

// projectScanPrefix is the prefix covering all project records.
func projectScanPrefix() []byte {
	return []byte(projectPrefix + ":")
}
