package orderdto

// NotificationAck is the outcome of handling one payment notification. Only
// Success and Message reach the provider; Outcome feeds logs and metrics.
type NotificationAck struct {
	Success bool
	Message string
	Outcome string
}

const (
	OutcomePaid               = "paid"
	OutcomeDuplicate          = "duplicate"
	OutcomeVerificationFailed = "verification_failed"
	OutcomeAmountMismatch     = "amount_mismatch"
	OutcomeNotFound           = "not_found"
	OutcomeInvalidState       = "invalid_state"
	OutcomeError              = "error"
)
