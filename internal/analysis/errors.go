package analysis

import "errors"

var (
	// ErrUnparseableResponse means the model answered with something that is not a JSON object.
	ErrUnparseableResponse = errors.New("AI response unparseable")
	// ErrSchemaViolation means the JSON parsed but required fields are missing or invalid.
	ErrSchemaViolation = errors.New("AI response does not match the analysis schema")
)

// IsParseError reports whether err belongs to the parse family.
func IsParseError(err error) bool {
	return errors.Is(err, ErrUnparseableResponse) || errors.Is(err, ErrSchemaViolation)
}
