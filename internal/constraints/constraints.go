// Package constraints validates cargo decisions against timing rules.
//
// Violations are non-fatal by default: the optimizer logs them and attaches
// them to the strategy. Strict mode promotes them to rejection.
package constraints

import (
	"fmt"
	"time"

	"github.com/REP-LNG-Traders/portfolio-sub000/internal/config"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/errors"
	"github.com/REP-LNG-Traders/portfolio-sub000/internal/models"
)

// Rule names attached to violations.
const (
	RuleDeadlineMandatory = "DEADLINE_MANDATORY"
	RuleDeadlineOptional  = "DEADLINE_OPTIONAL"
	RuleDeadlineConfirm   = "DEADLINE_CONFIRM"
	RuleNoticeMin         = "NOTICE_MIN"
	RuleNoticeMax         = "NOTICE_MAX"
)

// Validator checks decisions against calendar deadlines and counterparty
// advance-notice windows. Read-only after construction.
type Validator struct {
	deadlines config.DeadlineConfig
	parties   map[string]models.Counterparty
}

// NewValidator builds a validator from validated configuration.
func NewValidator(cfg *config.Config) *Validator {
	parties := make(map[string]models.Counterparty)
	for _, cp := range cfg.CounterpartyList() {
		parties[cp.Name] = cp
	}
	return &Validator{
		deadlines: cfg.Deadlines,
		parties:   parties,
	}
}

// Check returns every violation for the decision relative to decisionDate.
// An empty slice means the decision is compliant.
func (v *Validator) Check(decision models.CargoDecision, decisionDate time.Time) []models.Violation {
	var violations []models.Violation

	offset := v.deadlines.MandatoryOffsetMonths
	rule := RuleDeadlineMandatory
	if decision.Type == models.CargoOptional {
		offset = v.deadlines.OptionalOffsetMonths
		rule = RuleDeadlineOptional
	}

	if deadline := monthEnd(decision.Month.AddMonths(-offset)); decisionDate.After(deadline) {
		violations = append(violations, models.Violation{
			Month: decision.Month,
			Rule:  rule,
			Detail: fmt.Sprintf("decision on %s is past the M-%d deadline %s",
				decisionDate.Format("2006-01-02"), offset, deadline.Format("2006-01-02")),
		})
	}

	// Cancellations need no sale confirmation and no buyer notice.
	if decision.Action == models.ActionCancel {
		return violations
	}

	if deadline := monthEnd(decision.Month.AddMonths(-v.deadlines.ConfirmOffsetMonths)); decisionDate.After(deadline) {
		violations = append(violations, models.Violation{
			Month: decision.Month,
			Rule:  RuleDeadlineConfirm,
			Detail: fmt.Sprintf("sale confirmation on %s is past the M-%d deadline %s",
				decisionDate.Format("2006-01-02"), v.deadlines.ConfirmOffsetMonths, deadline.Format("2006-01-02")),
		})
	}

	if party, ok := v.parties[decision.Counterparty]; ok {
		noticeDays := int(decision.Month.Date().Sub(decisionDate).Hours() / 24)
		if noticeDays < party.MinNoticeDays {
			violations = append(violations, models.Violation{
				Month: decision.Month,
				Rule:  RuleNoticeMin,
				Detail: fmt.Sprintf("%s requires %d days notice, got %d",
					party.Name, party.MinNoticeDays, noticeDays),
			})
		} else if party.MaxNoticeDays > 0 && noticeDays > party.MaxNoticeDays {
			violations = append(violations, models.Violation{
				Month: decision.Month,
				Rule:  RuleNoticeMax,
				Detail: fmt.Sprintf("%s prefers at most %d days notice, got %d",
					party.Name, party.MaxNoticeDays, noticeDays),
			})
		}
	}

	return violations
}

// Fatal converts a violation list into a strict-mode error, or nil when the
// list is empty.
func Fatal(violations []models.Violation) error {
	if len(violations) == 0 {
		return nil
	}
	first := violations[0]
	return errors.NewConstraintError(first.Month.String(), first.Rule, first.Detail)
}

// monthEnd returns the last instant of the given month's last day.
func monthEnd(m models.Month) time.Time {
	return m.Date().AddDate(0, 1, 0).Add(-time.Second)
}
