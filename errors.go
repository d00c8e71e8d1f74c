// FILE: lixenwraith/lconfig/errors.go
package lconfig

import (
	stderrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for LCONFIG operations
const (
	ErrCodeMissingDevice       = "LCONFIG_MISSING_DEVICE"
	ErrCodeUnrecognizedParam   = "LCONFIG_UNRECOGNIZED_PARAMETER"
	ErrCodeUnrecognizedState   = "LCONFIG_UNRECOGNIZED_STATE"
	ErrCodeConversion          = "LCONFIG_CONVERSION"
	ErrCodeIncompletePair      = "LCONFIG_INCOMPLETE_PAIR"
	ErrCodeColumnMismatch      = "LCONFIG_COLUMN_MISMATCH"
	ErrCodeMissingChannel      = "LCONFIG_MISSING_CHANNEL"
	ErrCodeLabelNotFound       = "LCONFIG_LABEL_NOT_FOUND"
	ErrCodeParameterNotFound   = "LCONFIG_PARAMETER_NOT_FOUND"
	ErrCodeSampleRateUnset     = "LCONFIG_SAMPLE_RATE_UNSET"
	ErrCodeNoData              = "LCONFIG_NO_DATA"
	ErrCodeFileNotFound        = "LCONFIG_FILE_NOT_FOUND"
	ErrCodeIO                  = "LCONFIG_IO"
	ErrCodeSyntax              = "LCONFIG_SYNTAX"
	ErrCodeInvalidArgument     = "LCONFIG_INVALID_ARGUMENT"
	ErrCodeInvalidDefaults     = "LCONFIG_INVALID_DEFAULTS"
	ErrCodeValidationFailed    = "LCONFIG_VALIDATION_FAILED"
	ErrCodeDefaultsNotFound    = "LCONFIG_DEFAULTS_NOT_FOUND"
	ErrCodeInvalidEnumDomain   = "LCONFIG_INVALID_ENUM_DOMAIN"
	ErrCodeDuplicateParameter  = "LCONFIG_DUPLICATE_PARAMETER"
	ErrCodeUnsupportedEncoding = "LCONFIG_UNSUPPORTED_FORMAT"
)

// HasCode reports whether any error in err's chain carries the given code.
func HasCode(err error, code string) bool {
	for err != nil {
		if coder, ok := err.(errors.ErrorCoder); ok && string(coder.ErrorCode()) == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Code returns the code of the outermost coded error in err's chain, or "".
func Code(err error) string {
	var coder errors.ErrorCoder
	if stderrors.As(err, &coder) {
		return string(coder.ErrorCode())
	}
	return ""
}

// annotate adds a context entry to a coded error; other errors pass through.
func annotate(err error, key string, value any) error {
	if e, ok := err.(*errors.Error); ok {
		return e.WithContext(key, value)
	}
	return err
}
