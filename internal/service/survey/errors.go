package survey

import "errors"

var (
	ErrVisitNotFound    = errors.New("visit not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrNoActiveSurvey   = errors.New("no active patient feedback survey")
	ErrEmptyResponse    = errors.New("response is empty")
)
