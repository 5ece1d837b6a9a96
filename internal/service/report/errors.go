package report

import "errors"

var (
	// ErrMissingQuestion means the feedback survey lacks one of the
	// questions every report is built on. It is a configuration error.
	ErrMissingQuestion = errors.New("required survey question missing")
	ErrClinicNotFound  = errors.New("clinic not found")
	ErrRegionNotFound  = errors.New("region not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrNoActiveSurvey  = errors.New("no active patient feedback survey")
	ErrDigestDisabled  = errors.New("digest email is disabled")
	ErrExportDisabled  = errors.New("object storage is not configured")
)
