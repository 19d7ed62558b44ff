package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Decision is the arbitration outcome of one disagreement.
type Decision string

const (
	// DecisionPending is the implicit state of a disagreement without a record.
	DecisionPending Decision = "pending"
	// DecisionAutomatedCorrect (CAS A): the automated label was right, the gold
	// standard is corrected to it.
	DecisionAutomatedCorrect Decision = "automated_correct"
	// DecisionManualCorrect (CAS B): the manual label stands.
	DecisionManualCorrect Decision = "manual_correct"
	// DecisionAmbiguous (CAS C): both labels are defensible.
	DecisionAmbiguous Decision = "ambiguous"
)

// ParseDecision accepts only the three terminal decisions.
func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionAutomatedCorrect, DecisionManualCorrect, DecisionAmbiguous:
		return Decision(s), nil
	default:
		return "", fmt.Errorf("unknown decision %q", s)
	}
}

func (d Decision) IsTerminal() bool {
	switch d {
	case DecisionAutomatedCorrect, DecisionManualCorrect, DecisionAmbiguous:
		return true
	default:
		return false
	}
}

// Case is the short analyst-facing name of a decision.
func (d Decision) Case() string {
	switch d {
	case DecisionAutomatedCorrect:
		return "CAS A"
	case DecisionManualCorrect:
		return "CAS B"
	case DecisionAmbiguous:
		return "CAS C"
	default:
		return "pending"
	}
}

type DisagreementValidation struct {
	ID                  uuid.UUID `json:"validation_id"`
	RunID               uuid.UUID `json:"run_id"`
	ItemID              int64     `json:"item_id"`
	GoldStandardID      string    `json:"gold_standard_id"`
	ManualLabel         string    `json:"manual_label"`
	AutomatedLabel      string    `json:"automated_label"`
	AutomatedConfidence *float64  `json:"automated_confidence,omitempty"`
	AutomatedRationale  string    `json:"automated_rationale,omitempty"`
	Decision            Decision  `json:"decision"`
	CorrectedLabel      string    `json:"corrected_label,omitempty"`
	Comment             string    `json:"comment"`
	Verbatim            string    `json:"verbatim,omitempty"`
	ContextBefore       string    `json:"context_before,omitempty"`
	ContextAfter        string    `json:"context_after,omitempty"`
	ValidatedBy         string    `json:"validated_by"`
	ValidatedAt         time.Time `json:"validated_at"`
}

// ValidationInput is what an analyst submits for one pending disagreement.
// The labels may be omitted, they are read from the run.
type ValidationInput struct {
	RunID               uuid.UUID `json:"run_id" validate:"required"`
	ItemID              int64     `json:"item_id" validate:"required"`
	ManualLabel         string    `json:"manual_label,omitempty"`
	AutomatedLabel      string    `json:"automated_label,omitempty"`
	AutomatedConfidence *float64  `json:"automated_confidence,omitempty" validate:"omitempty,min=0,max=1"`
	AutomatedRationale  string    `json:"automated_rationale,omitempty"`
	Decision            Decision  `json:"decision" validate:"required,oneof=automated_correct manual_correct ambiguous"`
	CorrectedLabel      string    `json:"corrected_label,omitempty"`
	Comment             string    `json:"comment" validate:"required,min=10"`
	ValidatedBy         string    `json:"validated_by,omitempty"`
	Verbatim            string    `json:"verbatim,omitempty"`
	ContextBefore       string    `json:"context_before,omitempty"`
	ContextAfter        string    `json:"context_after,omitempty"`
}

type PendingDisagreement struct {
	RunAnnotation
}

type PendingList struct {
	RunID   uuid.UUID             `json:"run_id"`
	Items   []PendingDisagreement `json:"items"`
	Message string                `json:"message,omitempty"`
}

// CorrectedAgreement is produced by the store-side aggregation for a run.
type CorrectedAgreement struct {
	RunID            uuid.UUID `json:"run_id"`
	KappaRaw         float64   `json:"kappa_raw"`
	KappaCorrected   float64   `json:"kappa_corrected"`
	AutomatedCorrect int       `json:"cas_a_count"`
	ManualCorrect    int       `json:"cas_b_count"`
	Ambiguous        int       `json:"cas_c_count"`
	Pending          int       `json:"pending_count"`
}

func (c CorrectedAgreement) Validated() int {
	return c.AutomatedCorrect + c.ManualCorrect + c.Ambiguous
}

// RunUpdate derives the scalars cached on the run record. Only CAS B counts as
// an unjustified disagreement: the automated label was genuinely wrong.
func (c CorrectedAgreement) RunUpdate() RunAgreementUpdate {
	return RunAgreementUpdate{
		KappaCorrected:           c.KappaCorrected,
		ValidatedDisagreements:   c.Validated(),
		UnjustifiedDisagreements: c.ManualCorrect,
	}
}

type ValidationOutcome struct {
	Validation DisagreementValidation `json:"validation"`
	Correction *PairVersion           `json:"correction,omitempty"`
	Agreement  CorrectedAgreement     `json:"agreement"`
}

type ValidationRollback struct {
	Validation DisagreementValidation `json:"validation"`
	Version    *RollbackOutcome       `json:"version,omitempty"`
	Agreement  CorrectedAgreement     `json:"agreement"`
}

type ValidationStats struct {
	RunID              uuid.UUID `json:"run_id"`
	TotalDisagreements int       `json:"total_disagreements"`
	TotalValidated     int       `json:"total_validated"`
	Pending            int       `json:"pending"`
	AutomatedCorrect   int       `json:"cas_a_count"`
	ManualCorrect      int       `json:"cas_b_count"`
	Ambiguous          int       `json:"cas_c_count"`
	AutomatedPct       float64   `json:"cas_a_percentage"`
	ManualPct          float64   `json:"cas_b_percentage"`
	AmbiguousPct       float64   `json:"cas_c_percentage"`
	KappaRaw           float64   `json:"kappa_raw"`
	KappaCorrected     float64   `json:"kappa_corrected"`
	KappaImprovement   float64   `json:"kappa_improvement"`
}
