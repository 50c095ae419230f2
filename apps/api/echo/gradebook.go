package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/schoolorganizer/organizer/core/gradebook"
)

type gradebookApi struct {
	svc *gradebook.Service
}

func registerGradebookAPI(g *echo.Group, svc *gradebook.Service) {
	api := gradebookApi{svc: svc}

	cg := g.Group("/courses")
	cg.GET("", api.queryCourses)
	cg.POST("", api.createCourse)
	cg.GET("/:id", api.retrieveCourse)
	cg.PUT("/:id", api.updateCourse)
	cg.DELETE("/:id", api.destroyCourse)

	ig := g.Group("/grades")
	ig.GET("", api.queryItems)
	ig.POST("", api.createItem)
	ig.GET("/:id", api.retrieveItem)
	ig.PUT("/:id", api.updateItem)
	ig.DELETE("/:id", api.destroyItem)
}

// Courses

func (api *gradebookApi) queryCourses(ctx echo.Context) error {
	courses, err := api.svc.Courses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *gradebookApi) createCourse(ctx echo.Context) error {
	var data gradebook.CourseInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseInput")
	}
	c, err := api.svc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *gradebookApi) retrieveCourse(ctx echo.Context) error {
	c, err := api.svc.Course(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *gradebookApi) updateCourse(ctx echo.Context) error {
	var data gradebook.CourseInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseInput")
	}
	c, err := api.svc.UpdateCourse(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *gradebookApi) destroyCourse(ctx echo.Context) error {
	if err := api.svc.DeleteCourse(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Grade items

func (api *gradebookApi) queryItems(ctx echo.Context) error {
	filter := gradebook.ItemFilter{CourseID: ctx.QueryParam("course_id")}
	items, err := api.svc.Items(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying grade items")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *gradebookApi) createItem(ctx echo.Context) error {
	var data gradebook.ItemInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ItemInput")
	}
	it, err := api.svc.CreateItem(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, it)
}

func (api *gradebookApi) retrieveItem(ctx echo.Context) error {
	it, err := api.svc.Item(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, it)
}

func (api *gradebookApi) updateItem(ctx echo.Context) error {
	var data gradebook.ItemInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ItemInput")
	}
	it, err := api.svc.UpdateItem(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, it)
}

func (api *gradebookApi) destroyItem(ctx echo.Context) error {
	if err := api.svc.DeleteItem(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
