// Package checksum hashes image files and metadata text.
//
// Two checksums are computed:
//
//   - Raw checksum: hash of the exact bytes (the image digest shown to users)
//   - Normalized checksum: hash of metadata text after normalization, used
//     to drop a sidecar file that repeats what the image already embeds
//
// ExtractionID derives a stable UUID v5 from the image digest so repeated
// runs over the same file report the same id.
//
// # Example Usage
//
//	calculator := checksum.New()
//	digest := calculator.CalculateRaw(imageBytes)
//	same := calculator.CalculateNormalized(a) == calculator.CalculateNormalized(b)
//	id := checksum.ExtractionID(digest, "")
//
// # Thread Safety
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
