package main

import (
	"errors"
	"flag"

	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/google/uuid"
)

type cliConfig struct {
	Mode string

	LabelsPath string
	Name       string
	JSONOutput string
	CSVOutput  string

	GoldStandardID string
	RunID          string
	TargetID       string
	TargetName     string
	Variable       string
	Modality       string
	EnvPath        string
}

func parseFlags() cliConfig {
	cfg := cliConfig{}

	flag.StringVar(&cfg.Mode, "mode", "compute", "Run mode: compute, completeness, or derive")
	flag.StringVar(&cfg.LabelsPath, "labels", "configs/labels/example.yaml", "Path to label set YAML (compute mode)")
	flag.StringVar(&cfg.Name, "name", "", "Report name, defaults to the label set name")
	flag.StringVar(&cfg.JSONOutput, "json", "", "Write the report as JSON to this path")
	flag.StringVar(&cfg.CSVOutput, "csv", "", "Write the report summary as CSV to this path")
	flag.StringVar(&cfg.GoldStandardID, "gold-standard", "", "Gold standard id (completeness mode, or derive source)")
	flag.StringVar(&cfg.RunID, "run", "", "Test run id to derive from")
	flag.StringVar(&cfg.TargetID, "target", "", "Id of the gold standard to create (derive mode)")
	flag.StringVar(&cfg.TargetName, "target-name", "", "Name of the gold standard to create, defaults to its id")
	flag.StringVar(&cfg.Variable, "variable", string(domain.VariableY), "Variable of the derived gold standard: X or Y")
	flag.StringVar(&cfg.Modality, "modality", string(domain.ModalityTextOnly), "Modality of the derived gold standard")
	flag.StringVar(&cfg.EnvPath, "env", "", "Optional .env file with storage settings")

	flag.Parse()
	return cfg
}

func (c cliConfig) deriveTarget() (domain.GoldStandard, error) {
	if c.TargetID == "" {
		return domain.GoldStandard{}, errors.New("-target is required in derive mode")
	}
	variable, err := domain.ParseVariable(c.Variable)
	if err != nil {
		return domain.GoldStandard{}, err
	}
	modality, err := domain.ParseModality(c.Modality)
	if err != nil {
		return domain.GoldStandard{}, err
	}
	name := c.TargetName
	if name == "" {
		name = c.TargetID
	}
	return domain.GoldStandard{
		ID:       c.TargetID,
		Name:     name,
		Variable: variable,
		Modality: modality,
	}, nil
}

func (c cliConfig) runID() (uuid.UUID, error) {
	if c.RunID == "" {
		return uuid.Nil, errors.New("-run is required in derive mode")
	}
	return uuid.Parse(c.RunID)
}
