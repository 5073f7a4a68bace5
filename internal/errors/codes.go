// Package errors provides structured error handling for searchcore.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Cache store errors
//   - 3XX: Embedding / network errors
//   - 4XX: Validation errors
//   - 5XX: Index and internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryCache indicates cache-store errors. Always recoverable: the
	// cache is an optimization, never a dependency.
	CategoryCache Category = "CACHE"
	// CategoryNetwork indicates embedding and other network errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates index and unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates the request must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed but the process continues.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Cache store errors (200-299)
	ErrCodeCacheRead       = "ERR_201_CACHE_READ"
	ErrCodeCacheWrite      = "ERR_202_CACHE_WRITE"
	ErrCodeCacheDelete     = "ERR_203_CACHE_DELETE"
	ErrCodeCacheCorrupt    = "ERR_204_CACHE_ENTRY_CORRUPT"
	ErrCodeFingerprintScan = "ERR_205_FINGERPRINT_SCAN"

	// Embedding / network errors (300-399)
	ErrCodeEmbeddingFailed    = "ERR_301_EMBEDDING_FAILED"
	ErrCodeNetworkTimeout     = "ERR_302_NETWORK_TIMEOUT"
	ErrCodeNetworkUnavailable = "ERR_303_NETWORK_UNAVAILABLE"

	// Validation errors (400-499)
	ErrCodeInvalidQuery = "ERR_401_INVALID_QUERY"
	ErrCodeQueryEmpty   = "ERR_402_QUERY_EMPTY"
	ErrCodeInvalidScope = "ERR_403_INVALID_SCOPE"

	// Index and internal errors (500-599)
	ErrCodeInternal      = "ERR_501_INTERNAL"
	ErrCodeIndexQuery    = "ERR_502_INDEX_QUERY_FAILED"
	ErrCodeIndexClosed   = "ERR_503_INDEX_CLOSED"
	ErrCodeMetadataQuery = "ERR_504_METADATA_QUERY_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryCache
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeEmbeddingFailed, ErrCodeInvalidScope:
		// No meaningful fallback exists for either.
		return SeverityFatal
	}

	if categoryFromCode(code) == CategoryCache {
		// Cache malfunctions degrade latency, never correctness.
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeNetworkTimeout, ErrCodeNetworkUnavailable, ErrCodeCacheRead, ErrCodeCacheWrite:
		return true
	default:
		return false
	}
}
