package router

import (
	"fmt"
	"strconv"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.NewValidationWrap(fmt.Sprintf("invalid %s", name), err)
	}
	return id, nil
}

func itemParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NewValidation(fmt.Sprintf("invalid itemId %q", c.Param("itemId")))
	}
	return id, nil
}

func decode(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.NewValidationWrap("invalid request", err)
	}
	return nil
}

// bind decodes the request into dst and runs struct validation on it.
func bind(c echo.Context, dst any) error {
	if err := decode(c, dst); err != nil {
		return err
	}
	if err := domain.Validate(dst); err != nil {
		return apperr.NewValidationWrap("invalid request", err)
	}
	return nil
}
