package router

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/DjordjeVuckovic/agreement-lab/internal/agreement"
	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/report"
	"github.com/DjordjeVuckovic/agreement-lab/internal/telemetry"
	"github.com/labstack/echo/v4"
)

type AgreementRouter struct {
	e       *echo.Echo
	metrics *telemetry.Recorder
}

func NewAgreementRouter(e *echo.Echo, metrics *telemetry.Recorder) *AgreementRouter {
	return &AgreementRouter{
		e:       e,
		metrics: metrics,
	}
}

type AgreementRequest struct {
	Name  string          `json:"name"`
	Tests []AgreementTest `json:"tests" validate:"required,min=1,dive"`
}

type AgreementTest struct {
	TestType      string               `json:"test_type" validate:"required"`
	Predicted     []string             `json:"predicted" validate:"required"`
	Actual        []string             `json:"actual" validate:"required"`
	Items         []agreement.ItemMeta `json:"items,omitempty"`
	Groups        []string             `json:"groups,omitempty"`
	PositiveLabel string               `json:"positive_label,omitempty"`
}

func (t AgreementTest) input() report.Input {
	return report.Input{
		TestType:      t.TestType,
		Predicted:     t.Predicted,
		Actual:        t.Actual,
		Meta:          t.Items,
		Groups:        t.Groups,
		PositiveLabel: t.PositiveLabel,
	}
}

func (r *AgreementRouter) Bind() {
	g := r.e.Group("/agreement")
	g.POST("", r.computeHandler)
	g.POST("/export", r.exportHandler)
}

// computeHandler godoc
// @Summary Compute agreement metrics
// @Description Per test type metrics with the list of disagreeing items
// @Tags agreement
// @Accept json
// @Produce json
// @Param request body AgreementRequest true "Paired label sequences"
// @Success 200 {object} report.Report
// @Failure 400 {object} map[string]string
// @Router /agreement [post]
func (r *AgreementRouter) computeHandler(c echo.Context) error {
	rep, err := r.generate(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rep)
}

// exportHandler godoc
// @Summary Export an agreement report
// @Tags agreement
// @Accept json
// @Produce json,text/csv
// @Param format query string false "csv or json" default(json)
// @Param request body AgreementRequest true "Paired label sequences"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Router /agreement/export [post]
func (r *AgreementRouter) exportHandler(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		return apperr.NewValidation(fmt.Sprintf("unsupported export format %q", format))
	}

	rep, err := r.generate(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	contentType := echo.MIMEApplicationJSON
	if format == "csv" {
		contentType = "text/csv"
		err = report.WriteCSV(rep, &buf)
	} else {
		err = report.EncodeJSON(rep, &buf)
	}
	if err != nil {
		return fmt.Errorf("export %s report: %w", format, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "agreement_report."+format))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

func (r *AgreementRouter) generate(c echo.Context) (*report.Report, error) {
	var req AgreementRequest
	if err := bind(c, &req); err != nil {
		return nil, err
	}

	inputs := make([]report.Input, len(req.Tests))
	for i, t := range req.Tests {
		inputs[i] = t.input()
	}

	start := time.Now()
	rep, err := report.Generate(req.Name, inputs)
	if err != nil {
		if errors.Is(err, agreement.ErrLengthMismatch) {
			return nil, apperr.NewValidationWrap("invalid label sequences", err)
		}
		return nil, err
	}
	elapsed := time.Since(start)
	for _, e := range rep.Entries {
		r.metrics.AgreementComputed(elapsed, e.Metrics.Kappa)
	}

	return rep, nil
}
