package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/schoolorganizer/organizer/core"
)

const orderingParam = "ordering"

// bindOrdering reads the `ordering` query param, keeping the allowed fields.
func bindOrdering(ctx echo.Context, allowed ...string) []core.Ordering {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return nil
	}
	return core.ParseOrdering(val, allowed...)
}

// queryInt reads an optional integer query param.
func queryInt(ctx echo.Context, name string) (int, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, core.NewFieldError(name, "must be an integer")
	}
	return n, nil
}
