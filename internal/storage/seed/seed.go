// Package seed loads gold standards, items and runs from a YAML file into any
// store backend.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/DjordjeVuckovic/agreement-lab/internal/storage"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type Target interface {
	storage.GoldStandardRepository
	storage.VersionRepository
	storage.Ingestor
}

// File is the YAML layout accepted by LoadFile.
type File struct {
	Items         []domain.Item  `yaml:"items"`
	GoldStandards []GoldStandard `yaml:"gold_standards"`
	Runs          []Run          `yaml:"runs"`
}

type GoldStandard struct {
	ID               string           `yaml:"id"`
	Name             string           `yaml:"name"`
	Description      string           `yaml:"description"`
	Variable         string           `yaml:"variable"`
	Modality         string           `yaml:"modality"`
	AnnotatorName    string           `yaml:"annotator_name"`
	MethodologyNotes string           `yaml:"methodology_notes"`
	Labels           map[int64]string `yaml:"labels"`
}

type Run struct {
	ID             string       `yaml:"id"`
	GoldStandardID string       `yaml:"gold_standard_id"`
	Annotations    []Annotation `yaml:"annotations"`
}

type Annotation struct {
	ItemID     int64    `yaml:"item_id"`
	Manual     string   `yaml:"manual"`
	Automated  string   `yaml:"automated"`
	Confidence *float64 `yaml:"confidence"`
	Rationale  string   `yaml:"rationale"`
}

func LoadFile(ctx context.Context, s Target, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	if err := Load(ctx, s, data); err != nil {
		return err
	}
	slog.Info("Seed loaded", "path", path)
	return nil
}

// Load is not transactional: a failure leaves what was written before it.
func Load(ctx context.Context, s Target, data []byte) error {
	var seed File
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed YAML: %w", err)
	}

	if err := s.SaveItems(ctx, seed.Items...); err != nil {
		return fmt.Errorf("save items: %w", err)
	}

	variables := make(map[string]domain.Variable, len(seed.GoldStandards))
	for _, sg := range seed.GoldStandards {
		variable, err := domain.ParseVariable(sg.Variable)
		if err != nil {
			return fmt.Errorf("gold standard %q: %w", sg.ID, err)
		}
		modality, err := domain.ParseModality(sg.Modality)
		if err != nil {
			return fmt.Errorf("gold standard %q: %w", sg.ID, err)
		}
		variables[sg.ID] = variable

		gs := domain.GoldStandard{
			ID:               sg.ID,
			Name:             sg.Name,
			Description:      sg.Description,
			Variable:         variable,
			Modality:         modality,
			AnnotatorName:    sg.AnnotatorName,
			MethodologyNotes: sg.MethodologyNotes,
		}
		if _, err := s.CreateGoldStandard(ctx, gs); err != nil {
			return err
		}

		audit := domain.Audit{ValidatedBy: sg.AnnotatorName, At: time.Now().UTC()}
		versions := make([]domain.PairVersion, 0, len(sg.Labels))
		for itemID, label := range sg.Labels {
			versions = append(versions, domain.InitialVersion(itemID, sg.ID, label, audit))
		}
		if err := s.InsertInitialVersions(ctx, versions); err != nil {
			return err
		}
	}

	for _, sr := range seed.Runs {
		run := domain.Run{GoldStandardID: sr.GoldStandardID, Variable: variables[sr.GoldStandardID]}
		if sr.ID != "" {
			id, err := uuid.Parse(sr.ID)
			if err != nil {
				return fmt.Errorf("run id %q: %w", sr.ID, err)
			}
			run.ID = id
		}

		annotations := make([]domain.RunAnnotation, 0, len(sr.Annotations))
		for _, a := range sr.Annotations {
			annotations = append(annotations, domain.RunAnnotation{
				ItemID:              a.ItemID,
				ManualLabel:         a.Manual,
				AutomatedLabel:      a.Automated,
				AutomatedConfidence: a.Confidence,
				AutomatedRationale:  a.Rationale,
			})
		}
		if _, err := s.SaveRun(ctx, run, annotations); err != nil {
			return fmt.Errorf("run %q: %w", sr.ID, err)
		}
	}

	return nil
}
