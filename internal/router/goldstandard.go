package router

import (
	"net/http"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/DjordjeVuckovic/agreement-lab/internal/goldstandard"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type GoldStandardRouter struct {
	e       *echo.Echo
	service *goldstandard.Service
}

func NewGoldStandardRouter(e *echo.Echo, service *goldstandard.Service) *GoldStandardRouter {
	return &GoldStandardRouter{
		e:       e,
		service: service,
	}
}

// LabelRequest carries a label and its audit trail for annotate and correct.
type LabelRequest struct {
	Label       string   `json:"label" validate:"required"`
	ValidatedBy string   `json:"validated_by"`
	Notes       string   `json:"notes"`
	Confidence  *float64 `json:"confidence,omitempty" validate:"omitempty,min=0,max=1"`
}

func (r LabelRequest) audit() domain.Audit {
	return domain.Audit{
		ValidatedBy: r.ValidatedBy,
		Notes:       r.Notes,
		Confidence:  r.Confidence,
	}
}

// DeriveRequest derives from a run when RunID is set, otherwise from the
// explicit predicted labels.
type DeriveRequest struct {
	RunID                *uuid.UUID          `json:"run_id,omitempty"`
	SourceGoldStandardID string              `json:"source_gold_standard_id"`
	Target               domain.GoldStandard `json:"target"`
	PredictedLabels      map[int64]string    `json:"predicted_labels,omitempty"`
}

func (r *GoldStandardRouter) Bind() {
	g := r.e.Group("/gold-standards")
	g.GET("", r.listHandler)
	g.POST("", r.createHandler)
	g.POST("/derive", r.deriveHandler)
	g.GET("/:id", r.getHandler)
	g.PATCH("/:id", r.updateHandler)
	g.GET("/:id/completeness", r.completenessHandler)
	g.GET("/:id/stats", r.statsHandler)

	items := g.Group("/:id/items/:itemId")
	items.GET("", r.currentHandler)
	items.GET("/history", r.historyHandler)
	items.POST("/annotate", r.annotateHandler)
	items.POST("/correct", r.correctHandler)
	items.POST("/rollback", r.rollbackHandler)
}

// listHandler godoc
// @Summary List gold standards
// @Tags gold-standards
// @Produce json
// @Success 200 {array} domain.GoldStandard
// @Router /gold-standards [get]
func (r *GoldStandardRouter) listHandler(c echo.Context) error {
	list, err := r.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// createHandler godoc
// @Summary Create a gold standard
// @Tags gold-standards
// @Accept json
// @Produce json
// @Param request body domain.GoldStandard true "Gold standard"
// @Success 201 {object} domain.GoldStandard
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /gold-standards [post]
func (r *GoldStandardRouter) createHandler(c echo.Context) error {
	var gs domain.GoldStandard
	if err := decode(c, &gs); err != nil {
		return err
	}
	created, err := r.service.Create(c.Request().Context(), gs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (r *GoldStandardRouter) getHandler(c echo.Context) error {
	gs, err := r.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, gs)
}

func (r *GoldStandardRouter) updateHandler(c echo.Context) error {
	var meta domain.GoldStandardMetadata
	if err := decode(c, &meta); err != nil {
		return err
	}
	gs, err := r.service.UpdateMetadata(c.Request().Context(), c.Param("id"), meta)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, gs)
}

// completenessHandler godoc
// @Summary Gold standard completeness
// @Description Share of known items holding a current label, with the missing item ids
// @Tags gold-standards
// @Produce json
// @Param id path string true "Gold standard id"
// @Success 200 {object} domain.Completeness
// @Failure 404 {object} map[string]string
// @Router /gold-standards/{id}/completeness [get]
func (r *GoldStandardRouter) completenessHandler(c echo.Context) error {
	res, err := r.service.Completeness(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (r *GoldStandardRouter) statsHandler(c echo.Context) error {
	res, err := r.service.Stats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// deriveHandler godoc
// @Summary Derive a gold standard
// @Description Copies labels where the automated prediction agrees with the source and lists the rest for review
// @Tags gold-standards
// @Accept json
// @Produce json
// @Param request body DeriveRequest true "Derivation request"
// @Success 201 {object} domain.DerivationResult
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /gold-standards/derive [post]
func (r *GoldStandardRouter) deriveHandler(c echo.Context) error {
	var req DeriveRequest
	if err := decode(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	var (
		res *domain.DerivationResult
		err error
	)
	if req.RunID != nil {
		res, err = r.service.DeriveFromRun(ctx, goldstandard.DeriveFromRunRequest{
			RunID:                *req.RunID,
			SourceGoldStandardID: req.SourceGoldStandardID,
			Target:               req.Target,
		})
	} else {
		res, err = r.service.Derive(ctx, goldstandard.DeriveRequest{
			SourceGoldStandardID: req.SourceGoldStandardID,
			Target:               req.Target,
			PredictedLabels:      req.PredictedLabels,
		})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

// currentHandler godoc
// @Summary Current label of an item
// @Tags gold-standards
// @Produce json
// @Param id path string true "Gold standard id"
// @Param itemId path int true "Item id"
// @Success 200 {object} domain.PairVersion
// @Failure 404 {object} map[string]string
// @Router /gold-standards/{id}/items/{itemId} [get]
func (r *GoldStandardRouter) currentHandler(c echo.Context) error {
	itemID, err := itemParam(c)
	if err != nil {
		return err
	}
	v, err := r.service.Current(c.Request().Context(), itemID, c.Param("id"))
	if err != nil {
		return err
	}
	if v == nil {
		return apperr.NewNotFound("label for item", itemID)
	}
	return c.JSON(http.StatusOK, v)
}

func (r *GoldStandardRouter) historyHandler(c echo.Context) error {
	itemID, err := itemParam(c)
	if err != nil {
		return err
	}
	history, err := r.service.History(c.Request().Context(), itemID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, history)
}

func (r *GoldStandardRouter) annotateHandler(c echo.Context) error {
	itemID, err := itemParam(c)
	if err != nil {
		return err
	}
	var req LabelRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	v, err := r.service.Annotate(c.Request().Context(), itemID, c.Param("id"), req.Label, req.audit())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

// correctHandler godoc
// @Summary Correct the label of an item
// @Description Appends a new current version; the previous one stays in the history
// @Tags gold-standards
// @Accept json
// @Produce json
// @Param id path string true "Gold standard id"
// @Param itemId path int true "Item id"
// @Param request body LabelRequest true "New label"
// @Success 201 {object} domain.PairVersion
// @Failure 404 {object} map[string]string
// @Router /gold-standards/{id}/items/{itemId}/correct [post]
func (r *GoldStandardRouter) correctHandler(c echo.Context) error {
	itemID, err := itemParam(c)
	if err != nil {
		return err
	}
	var req LabelRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	v, err := r.service.Correct(c.Request().Context(), itemID, c.Param("id"), req.Label, req.audit())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (r *GoldStandardRouter) rollbackHandler(c echo.Context) error {
	itemID, err := itemParam(c)
	if err != nil {
		return err
	}
	out, err := r.service.Rollback(c.Request().Context(), itemID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
