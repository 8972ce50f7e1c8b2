package domain

import "time"

// SubmitState is where a draft is in the submit flow.
type SubmitState string

const (
	SubmitIdle       SubmitState = "idle"
	SubmitValidating SubmitState = "validating"
	SubmitSubmitting SubmitState = "submitting"
)

// SubmitOutcome is the result of the last finished attempt.
type SubmitOutcome string

const (
	OutcomeNone    SubmitOutcome = ""
	OutcomeInvalid SubmitOutcome = "invalid"
	OutcomeSuccess SubmitOutcome = "success"
	OutcomeFailure SubmitOutcome = "failure"
)

// Submission tracks Idle -> Validating -> (Invalid | Submitting -> Success | Failure) -> Idle.
type Submission struct {
	State   SubmitState   `json:"state"`
	Outcome SubmitOutcome `json:"outcome,omitempty"`
	// Banner is the general submit error, shown apart from field errors.
	Banner    string    `json:"banner,omitempty"`
	Attempt   int       `json:"attempt"`
	StartedAt time.Time `json:"startedAt,omitempty"`
}

// Busy is true while controls must stay disabled.
func (s *Submission) Busy() bool {
	return s.State == SubmitValidating || s.State == SubmitSubmitting
}

func (s *Submission) BeginValidation() error {
	if s.Busy() {
		return ErrSubmitInProgress
	}
	s.State = SubmitValidating
	s.Outcome = OutcomeNone
	s.Banner = ""
	return nil
}

func (s *Submission) MarkInvalid() {
	s.State = SubmitIdle
	s.Outcome = OutcomeInvalid
}

// BeginSubmit moves a validated draft to Submitting and returns the attempt number.
func (s *Submission) BeginSubmit(now time.Time) int {
	s.State = SubmitSubmitting
	s.Attempt++
	s.StartedAt = now
	return s.Attempt
}

// ExpireStale fails a submission that has been running longer than timeout.
// Such a state is left behind when the process handling it died.
func (s *Submission) ExpireStale(now time.Time, timeout time.Duration) bool {
	if s.State != SubmitSubmitting || now.Sub(s.StartedAt) <= timeout {
		return false
	}
	s.Fail("The previous submission did not finish. Please try again.")
	return true
}

func (s *Submission) Succeed() {
	s.State = SubmitIdle
	s.Outcome = OutcomeSuccess
	s.Banner = ""
}

// Fail returns the draft to an editable state with banner shown.
func (s *Submission) Fail(banner string) {
	s.State = SubmitIdle
	s.Outcome = OutcomeFailure
	s.Banner = banner
}

func (s *Submission) DismissBanner() {
	s.Banner = ""
}
