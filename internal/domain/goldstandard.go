package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Variable names which side of an adjacent turn pair a gold standard labels.
type Variable string

const (
	// VariableX labels the advisor's strategy.
	VariableX Variable = "X"
	// VariableY labels the client's reaction.
	VariableY Variable = "Y"
)

func ParseVariable(s string) (Variable, error) {
	switch Variable(s) {
	case VariableX, VariableY:
		return Variable(s), nil
	default:
		return "", fmt.Errorf("unknown variable %q, expected X or Y", s)
	}
}

// Modality is what the annotator had access to while labelling.
type Modality string

const (
	ModalityAudio     Modality = "audio"
	ModalityTextOnly  Modality = "text_only"
	ModalityAudioText Modality = "audio_text"
)

func ParseModality(s string) (Modality, error) {
	switch Modality(s) {
	case ModalityAudio, ModalityTextOnly, ModalityAudioText:
		return Modality(s), nil
	default:
		return "", fmt.Errorf("unknown modality %q", s)
	}
}

// SystemValidator is recorded as validated_by on labels copied automatically.
const SystemValidator = "system"

type GoldStandard struct {
	ID               string    `json:"gold_standard_id" validate:"required,max=100"`
	Name             string    `json:"name" validate:"required"`
	Description      string    `json:"description,omitempty"`
	Variable         Variable  `json:"variable" validate:"required,oneof=X Y"`
	Modality         Modality  `json:"modality" validate:"required,oneof=audio text_only audio_text"`
	AnnotatorName    string    `json:"annotator_name,omitempty"`
	MethodologyNotes string    `json:"methodology_notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// GoldStandardMetadata holds the only mutable fields of a GoldStandard.
type GoldStandardMetadata struct {
	Name             *string `json:"name,omitempty"`
	Description      *string `json:"description,omitempty"`
	MethodologyNotes *string `json:"methodology_notes,omitempty"`
}

func (m GoldStandardMetadata) Apply(gs *GoldStandard) {
	if m.Name != nil {
		gs.Name = *m.Name
	}
	if m.Description != nil {
		gs.Description = *m.Description
	}
	if m.MethodologyNotes != nil {
		gs.MethodologyNotes = *m.MethodologyNotes
	}
}

// PairVersion is one label of one item under one gold standard. Exactly one
// version per (ItemID, GoldStandardID) has IsCurrent set.
type PairVersion struct {
	ID              uuid.UUID `json:"version_id"`
	ItemID          int64     `json:"item_id"`
	GoldStandardID  string    `json:"gold_standard_id"`
	Label           string    `json:"label"`
	Version         int       `json:"version"`
	IsCurrent       bool      `json:"is_current"`
	ValidatedAt     time.Time `json:"validated_at"`
	ValidatedBy     string    `json:"validated_by"`
	ValidationNotes string    `json:"validation_notes,omitempty"`
	Confidence      *float64  `json:"confidence,omitempty"`
}

// Audit describes who produced a label and why.
type Audit struct {
	ValidatedBy string
	Notes       string
	Confidence  *float64
	At          time.Time
}

// NextVersion builds the successor of v carrying a new label. It does not touch v.
func (v PairVersion) NextVersion(label string, audit Audit) PairVersion {
	return PairVersion{
		ID:              uuid.New(),
		ItemID:          v.ItemID,
		GoldStandardID:  v.GoldStandardID,
		Label:           label,
		Version:         v.Version + 1,
		IsCurrent:       true,
		ValidatedAt:     audit.At,
		ValidatedBy:     audit.ValidatedBy,
		ValidationNotes: audit.Notes,
		Confidence:      audit.Confidence,
	}
}

// InitialVersion builds version 1 for an item.
func InitialVersion(itemID int64, goldStandardID, label string, audit Audit) PairVersion {
	return PairVersion{
		ID:              uuid.New(),
		ItemID:          itemID,
		GoldStandardID:  goldStandardID,
		Label:           label,
		Version:         1,
		IsCurrent:       true,
		ValidatedAt:     audit.At,
		ValidatedBy:     audit.ValidatedBy,
		ValidationNotes: audit.Notes,
		Confidence:      audit.Confidence,
	}
}

type RollbackOutcome struct {
	RolledBack bool         `json:"rolled_back"`
	Removed    *PairVersion `json:"removed,omitempty"`
	Current    *PairVersion `json:"current,omitempty"`
}

type Completeness struct {
	GoldStandardID string  `json:"gold_standard_id"`
	TotalItems     int     `json:"total_items"`
	AnnotatedItems int     `json:"annotated_items"`
	MissingItemIDs []int64 `json:"missing_item_ids"`
	Percentage     float64 `json:"completeness_percentage"`
	IsComplete     bool    `json:"is_complete"`
}

type ReviewItem struct {
	ItemID         int64  `json:"item_id"`
	SourceLabel    string `json:"source_label"`
	PredictedLabel string `json:"predicted_label,omitempty"`
}

type DerivationResult struct {
	GoldStandard         GoldStandard `json:"gold_standard"`
	CopiedCount          int          `json:"copied_count"`
	ToReviewCount        int          `json:"to_review_count"`
	ToReview             []ReviewItem `json:"to_review"`
	EstimatedTimeMinutes int          `json:"estimated_time_minutes"`
}

type GoldStandardStats struct {
	GoldStandardID string         `json:"gold_standard_id"`
	TotalItems     int            `json:"total_items"`
	ByLabel        map[string]int `json:"by_label"`
	Corrected      int            `json:"corrected_items"`
	MeanConfidence *float64       `json:"mean_confidence,omitempty"`
	LastUpdated    *time.Time     `json:"last_updated,omitempty"`
}
