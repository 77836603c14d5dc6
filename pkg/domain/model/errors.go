package model

import "github.com/m-mizutani/goerr/v2"

// Error tags shared across layers so controllers can map failures to responses
var (
	ErrTagNotFound         = goerr.NewTag("not_found")
	ErrTagInvalidRequest   = goerr.NewTag("invalid_request")
	ErrTagLLMNotConfigured = goerr.NewTag("llm_not_configured")
	ErrTagLLMFailure       = goerr.NewTag("llm_failure")
)

// Sentinel errors for domain operations
var (
	ErrLLMNotConfigured = goerr.New("LLM client is not configured", goerr.T(ErrTagLLMNotConfigured))
)
