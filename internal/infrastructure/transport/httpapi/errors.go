package httpapi

import "errors"

var (
	errMethodNotAllowed = errors.New("method not allowed")
	errMissingService   = errors.New("missing service query parameter")
)
