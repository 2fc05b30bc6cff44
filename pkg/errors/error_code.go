package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidProposal      ErrorCode = 102
	ErrCodeInvalidTarget        ErrorCode = 103
	ErrCodeInvalidStop          ErrorCode = 104
	ErrCodeInsufficientData     ErrorCode = 105
	ErrCodeInvalidPeriod        ErrorCode = 106
	ErrCodeInvalidBarSeries     ErrorCode = 107

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202

	// Analysis errors (300-399)
	ErrCodeSwingDetectionFailed ErrorCode = 300
	ErrCodeFeatureComputation   ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeStrategyNotFound      ErrorCode = 400
	ErrCodeStrategyAlreadyExists ErrorCode = 401
	ErrCodeStrategySignalFailed  ErrorCode = 402

	// Position errors (500-599)
	ErrCodePositionNotFound ErrorCode = 500
	ErrCodeDuplicateSignal  ErrorCode = 501

	// Simulation errors (600-699)
	ErrCodeSimulationFailed     ErrorCode = 600
	ErrCodeSimulationNoStrategy ErrorCode = 601

	// Storage errors (700-799)
	ErrCodeStoreInitFailed ErrorCode = 700
	ErrCodeStoreLoadFailed ErrorCode = 701
	ErrCodeStoreSaveFailed ErrorCode = 702
	ErrCodeMalformedRow    ErrorCode = 703
	ErrCodeExportFailed    ErrorCode = 704
)
