package domain

import (
	"time"

	"github.com/google/uuid"
)

// Item is an annotated adjacent turn pair. Items are owned by the ingestion
// pipeline and only read here.
type Item struct {
	ID              int64  `json:"item_id" yaml:"id"`
	CallID          string `json:"call_id" yaml:"call_id"`
	StrategyLabel   string `json:"strategy_label,omitempty" yaml:"strategy_label"`
	ReactionLabel   string `json:"reaction_label,omitempty" yaml:"reaction_label"`
	AdvisorVerbatim string `json:"advisor_verbatim,omitempty" yaml:"advisor_verbatim"`
	ClientVerbatim  string `json:"client_verbatim,omitempty" yaml:"client_verbatim"`
	ContextBefore   string `json:"context_before,omitempty" yaml:"context_before"`
	ContextAfter    string `json:"context_after,omitempty" yaml:"context_after"`
}

// Verbatim picks the turn a variable labels.
func (i Item) Verbatim(v Variable) string {
	if v == VariableX {
		return i.AdvisorVerbatim
	}
	return i.ClientVerbatim
}

// Run is a test run comparing an automated classifier against a gold standard.
type Run struct {
	ID                       uuid.UUID `json:"run_id"`
	GoldStandardID           string    `json:"gold_standard_id"`
	Variable                 Variable  `json:"variable"`
	Kappa                    float64   `json:"kappa"`
	KappaCorrected           *float64  `json:"kappa_corrected,omitempty"`
	ValidatedDisagreements   int       `json:"validated_disagreements"`
	UnjustifiedDisagreements int       `json:"unjustified_disagreements"`
	CreatedAt                time.Time `json:"created_at"`
}

// RunAnnotation pairs the manual and automated label of one item in a run.
type RunAnnotation struct {
	RunID               uuid.UUID `json:"run_id"`
	ItemID              int64     `json:"item_id"`
	CallID              string    `json:"call_id,omitempty"`
	ManualLabel         string    `json:"manual_label"`
	AutomatedLabel      string    `json:"automated_label"`
	AutomatedConfidence *float64  `json:"automated_confidence,omitempty"`
	AutomatedRationale  string    `json:"automated_rationale,omitempty"`
	Verbatim            string    `json:"verbatim,omitempty"`
	ContextBefore       string    `json:"context_before,omitempty"`
	ContextAfter        string    `json:"context_after,omitempty"`
}

func (a RunAnnotation) IsDisagreement() bool {
	return a.ManualLabel != a.AutomatedLabel
}

// RunAgreementUpdate is written onto the run after every validation change.
type RunAgreementUpdate struct {
	KappaCorrected           float64
	ValidatedDisagreements   int
	UnjustifiedDisagreements int
}
