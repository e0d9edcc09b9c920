package purchase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Vittorix99/mcp-website-sub001/src/types"
)

const DefaultRequestTimeout = 15 * time.Second

// ParticipantVerifier asks the backend whether participants may buy tickets for an event.
// A structured rejection is a result with Valid=false, not an error.
type ParticipantVerifier interface {
	VerifyParticipants(ctx context.Context, eventID string, mode types.PurchaseMode, participants []types.Participant) (*types.EligibilityResult, error)
}

// ErrorReporter receives every failure surfaced to the buyer.
type ErrorReporter func(err error)

type EligibilityChecker struct {
	verifier ParticipantVerifier
	timeout  time.Duration
	report   ErrorReporter

	mu      sync.Mutex
	seq     uint64
	loading bool
	result  *types.EligibilityResult
}

func NewEligibilityChecker(verifier ParticipantVerifier, timeout time.Duration, report ErrorReporter) *EligibilityChecker {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &EligibilityChecker{verifier: verifier, timeout: timeout, report: report}
}

// Check never returns an error: transport failures become a single generic message
// and rejections are forwarded as the server sent them.
func (c *EligibilityChecker) Check(ctx context.Context, eventID string, mode types.PurchaseMode, participants []types.Participant) types.EligibilityResult {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.loading = true
	c.result = nil
	c.mu.Unlock()

	res, reportErr := c.run(ctx, eventID, mode, participants)

	c.mu.Lock()
	if seq == c.seq {
		c.loading = false
		c.result = &res
	}
	c.mu.Unlock()

	if reportErr != nil && c.report != nil {
		c.report(reportErr)
	}
	return res
}

func (c *EligibilityChecker) run(ctx context.Context, eventID string, mode types.PurchaseMode, participants []types.Participant) (types.EligibilityResult, error) {
	if len(participants) == 0 {
		err := &EligibilityError{Errors: []string{"At least one participant is required."}}
		return types.EligibilityResult{Valid: false, Errors: err.Errors}, err
	}
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.verifier.VerifyParticipants(cctx, eventID, mode, participants)
	if err == nil && out == nil {
		err = errors.New("empty eligibility response")
	}
	if err != nil {
		return types.EligibilityResult{Valid: false, Errors: []string{NetworkErrorMessage}}, err
	}
	if out.Valid {
		return types.EligibilityResult{Valid: true}, nil
	}
	errs := append([]string(nil), out.Errors...)
	if len(errs) == 0 {
		errs = []string{EligibilityFailedNotice}
	}
	return types.EligibilityResult{Valid: false, Errors: errs}, &EligibilityError{Errors: errs}
}

func (c *EligibilityChecker) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Result returns the outcome of the latest completed check, or nil.
func (c *EligibilityChecker) Result() *types.EligibilityResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil
	}
	r := *c.result
	r.Errors = append([]string(nil), c.result.Errors...)
	return &r
}

// Reset drops the latest result, e.g. after the participants changed.
func (c *EligibilityChecker) Reset() {
	c.mu.Lock()
	c.seq++
	c.loading = false
	c.result = nil
	c.mu.Unlock()
}
