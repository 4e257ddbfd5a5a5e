package orchestrator

// Outcome classifies a Result
type Outcome string

const (
	// OutcomeSuccess means net use reported success
	OutcomeSuccess Outcome = "success"

	// OutcomeFailure means net use wrote to stderr, or the operation could
	// not be attempted (table unreadable, no free letter, invalid value)
	OutcomeFailure Outcome = "failure"

	// OutcomeConflict means the target letter is already in use
	OutcomeConflict Outcome = "conflict"

	// OutcomeNoOp means nothing needed doing (already mounted, not mounted)
	OutcomeNoOp Outcome = "noop"

	// OutcomeAmbiguous means net use wrote nothing at all
	OutcomeAmbiguous Outcome = "ambiguous"

	// OutcomeNotConfigured means the section is unknown or not mount-ready
	OutcomeNotConfigured Outcome = "not_configured"
)

// Result is the outcome of one orchestrator operation
type Result struct {
	Outcome Outcome

	// Message is the notification text, at most MaxMessageLength runes
	Message string

	// Letter is the drive letter involved, when there is exactly one
	Letter string
}

// String returns the notification text
func (r Result) String() string {
	return r.Message
}

// OK reports whether the desired state was reached: either the command
// succeeded or nothing needed doing.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess || r.Outcome == OutcomeNoOp
}
