package usecase

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrTagInvalidPayload marks a body that is not valid JSON for its event kind
	ErrTagInvalidPayload = goerr.NewTag("invalid_payload")
	// ErrTagInternal marks failures while preparing the dispatch
	ErrTagInternal = goerr.NewTag("internal")
)
