package router

import (
	"net/http"

	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/DjordjeVuckovic/agreement-lab/internal/validation"
	"github.com/DjordjeVuckovic/agreement-lab/pkg/pagination"
	"github.com/labstack/echo/v4"
)

type ValidationRouter struct {
	e       *echo.Echo
	service *validation.Service
}

func NewValidationRouter(e *echo.Echo, service *validation.Service) *ValidationRouter {
	return &ValidationRouter{
		e:       e,
		service: service,
	}
}

func (r *ValidationRouter) Bind() {
	runs := r.e.Group("/runs/:runId")
	runs.GET("/disagreements", r.pendingHandler)
	runs.GET("/validations", r.listHandler)
	runs.POST("/validations", r.validateHandler)
	runs.GET("/kappa", r.kappaHandler)
	runs.GET("/stats", r.statsHandler)

	r.e.DELETE("/validations/:validationId", r.rollbackHandler)
}

// pendingHandler godoc
// @Summary Pending disagreements of a run
// @Tags validations
// @Produce json
// @Param runId path string true "Run id"
// @Success 200 {object} domain.PendingList
// @Failure 404 {object} map[string]string
// @Router /runs/{runId}/disagreements [get]
func (r *ValidationRouter) pendingHandler(c echo.Context) error {
	runID, err := uuidParam(c, "runId")
	if err != nil {
		return err
	}
	res, err := r.service.ListPending(c.Request().Context(), runID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// listHandler godoc
// @Summary Validations recorded for a run
// @Tags validations
// @Produce json
// @Param runId path string true "Run id"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(50) maximum(1000)
// @Success 200 {object} pagination.OffsetResult[domain.DisagreementValidation]
// @Router /runs/{runId}/validations [get]
func (r *ValidationRouter) listHandler(c echo.Context) error {
	runID, err := uuidParam(c, "runId")
	if err != nil {
		return err
	}
	var page pagination.OffsetRequest
	if err := decode(c, &page); err != nil {
		return err
	}

	res, err := r.service.List(c.Request().Context(), runID, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// validateHandler godoc
// @Summary Arbitrate a disagreement
// @Description Records a CAS A/B/C decision; CAS A also corrects the gold standard label
// @Tags validations
// @Accept json
// @Produce json
// @Param runId path string true "Run id"
// @Param request body domain.ValidationInput true "Decision"
// @Success 201 {object} domain.ValidationOutcome
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /runs/{runId}/validations [post]
func (r *ValidationRouter) validateHandler(c echo.Context) error {
	runID, err := uuidParam(c, "runId")
	if err != nil {
		return err
	}
	var in domain.ValidationInput
	if err := decode(c, &in); err != nil {
		return err
	}
	in.RunID = runID

	out, err := r.service.Validate(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (r *ValidationRouter) kappaHandler(c echo.Context) error {
	runID, err := uuidParam(c, "runId")
	if err != nil {
		return err
	}
	res, err := r.service.CorrectedKappa(c.Request().Context(), runID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (r *ValidationRouter) statsHandler(c echo.Context) error {
	runID, err := uuidParam(c, "runId")
	if err != nil {
		return err
	}
	res, err := r.service.Stats(c.Request().Context(), runID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// rollbackHandler godoc
// @Summary Undo a validation
// @Description Deletes the record and reverts a CAS A label correction
// @Tags validations
// @Produce json
// @Param validationId path string true "Validation id"
// @Success 200 {object} domain.ValidationRollback
// @Failure 404 {object} map[string]string
// @Router /validations/{validationId} [delete]
func (r *ValidationRouter) rollbackHandler(c echo.Context) error {
	id, err := uuidParam(c, "validationId")
	if err != nil {
		return err
	}
	res, err := r.service.Rollback(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
