package errors

import "net/http"

// ErrorCode is a string identifier for a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeExternalService    ErrorCode = "COMMON_012"
	ErrCodeNotImplemented     ErrorCode = "COMMON_013"
)

// Listing module error codes.
const (
	ErrCodeListingInvalidURL      ErrorCode = "LST_001"
	ErrCodeListingFetchFailed     ErrorCode = "LST_002"
	ErrCodeListingBlockedByRobots ErrorCode = "LST_003"
	ErrCodeListingParseFailed     ErrorCode = "LST_004"
	ErrCodeScoreNotFound          ErrorCode = "LST_005"
	ErrCodeScorePersistFailed     ErrorCode = "LST_006"
)

// Geo module error codes.
const (
	ErrCodeGeoInvalidZip    ErrorCode = "GEO_001"
	ErrCodeGeoLookupFailed  ErrorCode = "GEO_002"
	ErrCodeGeoNotResolvable ErrorCode = "GEO_003"
)

// Messaging module error codes.
const (
	ErrCodePublishFailed  ErrorCode = "MSG_001"
	ErrCodeConsumeFailed  ErrorCode = "MSG_002"
	ErrCodeProducerClosed ErrorCode = "MSG_003"
)

// CodeOK is the sentinel code returned by GetCode for a nil error.
const CodeOK = ErrorCode("OK")

// CodeUnknown is returned by GetCode when no AppError is present in the chain.
const CodeUnknown = ErrorCode("UNKNOWN")

// httpStatusByCode maps error codes to HTTP status codes for the API layer.
var httpStatusByCode = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeListingInvalidURL:      http.StatusBadRequest,
	ErrCodeListingFetchFailed:     http.StatusBadGateway,
	ErrCodeListingBlockedByRobots: http.StatusBadGateway,
	ErrCodeListingParseFailed:     http.StatusUnprocessableEntity,
	ErrCodeScoreNotFound:          http.StatusNotFound,
	ErrCodeScorePersistFailed:     http.StatusInternalServerError,

	ErrCodeGeoInvalidZip:    http.StatusBadRequest,
	ErrCodeGeoLookupFailed:  http.StatusBadGateway,
	ErrCodeGeoNotResolvable: http.StatusUnprocessableEntity,

	ErrCodePublishFailed:  http.StatusInternalServerError,
	ErrCodeConsumeFailed:  http.StatusInternalServerError,
	ErrCodeProducerClosed: http.StatusServiceUnavailable,
}

// HTTPStatus returns the HTTP status code associated with c.
// Unknown codes map to 500.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := httpStatusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}
