package services

import "errors"

// ErrAnalysisNotFound is returned when no live session matches the
// requested analysis id; expired and evicted sessions report the same.
var ErrAnalysisNotFound = errors.New("analysis not found")
