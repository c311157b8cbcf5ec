package checksum

import (
	"strings"

	"github.com/google/uuid"
)

// NamespaceExtraction is the UUID namespace for extraction identities,
// derived from "genmeta/extraction/v1" under the URL namespace.
var NamespaceExtraction = uuid.NewSHA1(uuid.NameSpaceURL, []byte("genmeta/extraction/v1"))

// ExtractionID returns a deterministic UUID v5 for an extraction. The same
// image bytes always produce the same id, wherever the file lives. An empty
// digest (direct input without image bytes) falls back to the metadata
// checksum.
func ExtractionID(imageDigest, metadataDigest string) uuid.UUID {
	key := strings.ToLower(imageDigest)
	if key == "" {
		key = "metadata:" + strings.ToLower(metadataDigest)
	}
	return uuid.NewSHA1(NamespaceExtraction, []byte(key))
}
