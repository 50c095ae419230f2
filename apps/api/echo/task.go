package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/schoolorganizer/organizer/core"
	"github.com/schoolorganizer/organizer/core/task"
)

type taskApi struct {
	svc *task.Service
}

func registerTaskAPI(g *echo.Group, svc *task.Service) {
	api := taskApi{svc: svc}

	tg := g.Group("/tasks")
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.GET("/upcoming", api.upcoming)

	dg := tg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.PUT("/completed", api.setCompleted)

	dg.POST("/steps", api.addStep)
	dg.PUT("/steps/:stepID", api.updateStep)
	dg.DELETE("/steps/:stepID", api.destroyStep)
}

func (api *taskApi) query(ctx echo.Context) error {
	filter := task.Filter{
		CourseID: ctx.QueryParam("course_id"),
		Type:     task.Type(core.CleanString(ctx.QueryParam("type"), true)),
		Ordering: bindOrdering(ctx, task.OrderingFields...),
	}
	tasks, err := api.svc.List(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) upcoming(ctx echo.Context) error {
	days, err := queryInt(ctx, "days")
	if err != nil {
		return err
	}
	tasks, err := api.svc.Upcoming(ctx.Request().Context(), days)
	if err != nil {
		return errors.Wrap(err, "querying upcoming tasks")
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) create(ctx echo.Context) error {
	var data task.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to task.Input")
	}
	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	t, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) update(ctx echo.Context) error {
	var data task.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to task.Input")
	}
	t, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *taskApi) setCompleted(ctx echo.Context) error {
	var data struct {
		Completed *bool `json:"completed"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding completed")
	}
	if data.Completed == nil {
		return core.NewFieldError("completed", "this field is required")
	}
	t, err := api.svc.SetCompleted(ctx.Request().Context(), ctx.Param("id"), *data.Completed)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) addStep(ctx echo.Context) error {
	var data task.StepInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to task.StepInput")
	}
	s, err := api.svc.AddStep(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *taskApi) updateStep(ctx echo.Context) error {
	var data task.StepInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to task.StepInput")
	}
	s, err := api.svc.UpdateStep(ctx.Request().Context(), ctx.Param("id"), ctx.Param("stepID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *taskApi) destroyStep(ctx echo.Context) error {
	if err := api.svc.DeleteStep(ctx.Request().Context(), ctx.Param("id"), ctx.Param("stepID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

