package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Transport errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrNoResponse         = fmt.Errorf("no response from server")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrNotFound           = fmt.Errorf("not found")

	// Wizard preconditions
	ErrArticleRequired  = fmt.Errorf("article must be processed first")
	ErrImageRequired    = fmt.Errorf("you must first generate an image before adding a logo or frame")
	ErrNoBulletPoints   = fmt.Errorf("no bullet points available")
	ErrNoPlatforms      = fmt.Errorf("select at least one platform")
	ErrGenerationFailed = fmt.Errorf("generation failed")
	ErrStaleWrite       = fmt.Errorf("project was reset while the operation was running")

	// Persistence errors
	ErrInvalidState = fmt.Errorf("invalid persisted state")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
