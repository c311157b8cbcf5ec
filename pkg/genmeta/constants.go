package genmeta

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess           = 0  // Extraction completed (even if no metadata was found)
	ExitGeneralError      = 1  // Unknown or unclassified error
	ExitUsageError        = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic             = 3  // Internal panic (unexpected crash)
	ExitConfigError       = 10 // Invalid configuration
	ExitNotFound          = 20 // No image or metadata source located
	ExitUnsupportedFormat = 21 // Unrecognized file extension or encoding
	ExitWriteError        = 22 // Report could not be written
)

// Placeholders used by the report formatter. They must never be equal.
const (
	PlaceholderAbsent = "N/A"
	PlaceholderEmpty  = "(Empty)"
	NoMetadataMessage = "No metadata found"
)

const (
	// DefaultOutputFilename is the report filename used when none is configured.
	DefaultOutputFilename = "metadata_report.txt"

	// MaxMetadataSize bounds a single metadata blob. Larger chunks are ignored.
	MaxMetadataSize = 16 * 1024 * 1024

	// MaxLinkDepth bounds edge following in workflow graphs.
	MaxLinkDepth = 16
)

// SupportedImageExtensions lists the image extensions the locator accepts.
var SupportedImageExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// SidecarExtensions lists sidecar extensions in lookup order.
var SidecarExtensions = []string{".json", ".txt"}
