package controlapi

import "errors"

// errNotFound indicates a control-surface request named a service that is
// not present in the current configuration.
var errNotFound = errors.New("not found")
