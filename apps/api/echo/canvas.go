package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schoolorganizer/organizer/core/lms"
)

type canvasApi struct {
	svc *lms.Service
}

func registerCanvasAPI(g *echo.Group, svc *lms.Service) {
	api := canvasApi{svc: svc}

	cg := g.Group("/canvas")
	cg.GET("/courses", api.courses)
	cg.GET("/assignments", api.assignments)
	cg.POST("/sync", api.sync)
}

func (api *canvasApi) courses(ctx echo.Context) error {
	courses, err := api.svc.Courses(ctx.Request().Context())
	if err != nil {
		return err
	}
	if courses == nil {
		courses = []lms.RemoteCourse{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"courses": courses})
}

// assignments previews an import without storing it.
func (api *canvasApi) assignments(ctx echo.Context) error {
	imp, err := api.svc.Import(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, imp)
}

func (api *canvasApi) sync(ctx echo.Context) error {
	res, err := api.svc.Sync(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}
