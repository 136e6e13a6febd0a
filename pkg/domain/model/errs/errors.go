package errs

import "github.com/m-mizutani/goerr/v2"

// Failure taxonomy of the sync core. Every error raised below the
// workflow boundary carries exactly one of these tags so the boundary
// can convert it to a displayable message without inspecting causes.
var (
	// TagValidation marks a rejected user input (empty required field).
	// Recoverable, surfaced inline, leaves no state machine.
	TagValidation = goerr.NewTag("validation")

	// TagSubscription marks a live stream that could not attach, e.g.
	// subscribing before identity issuance completed.
	TagSubscription = goerr.NewTag("subscription")

	// TagWrite marks a failed append. Not retried automatically; the
	// user must resubmit.
	TagWrite = goerr.NewTag("write")

	// TagEnrichment marks a failed or unparseable completion call. The
	// upstream diagnostic text is preserved verbatim in the cause chain.
	TagEnrichment = goerr.NewTag("enrichment")
)

var (
	ErrGateLocked         = goerr.New("access gate is locked")
	ErrIdentityNotReady   = goerr.New("identity is not established yet", goerr.T(TagSubscription))
	ErrSubmitInFlight     = goerr.New("a submission is already in progress")
	ErrFeedbackIncomplete = goerr.New("report feedback is missing or incomplete", goerr.T(TagWrite))
)
