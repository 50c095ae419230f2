package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/schoolorganizer/organizer/core"
	"github.com/schoolorganizer/organizer/core/grade"
	"github.com/schoolorganizer/organizer/core/gradebook"
)

type (
	gpaApi struct {
		svc      *gradebook.Service
		validate *validator.Validate
	}

	whatIfRequest struct {
		CourseID string       `json:"course_id" validate:"required,notblank"`
		Percent  null.Float64 `json:"percent" validate:"omitempty,finite"`
	}

	// computeRequest is a self-contained dataset, nothing is read from storage.
	computeRequest struct {
		Courses   []grade.Course     `json:"courses"`
		Items     []grade.Item       `json:"grade_items"`
		Overrides map[string]float64 `json:"overrides"`
	}
)

func registerGPAAPI(g *echo.Group, svc *gradebook.Service, validate *validator.Validate) {
	api := gpaApi{svc: svc, validate: validate}

	gg := g.Group("/gpa")
	gg.GET("", api.report)
	gg.GET("/scale", api.scale)
	gg.POST("/what-if", api.whatIf)
	gg.POST("/compute", api.compute)
}

func (api *gpaApi) report(ctx echo.Context) error {
	rep, err := api.svc.Report(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building GPA report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *gpaApi) scale(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, grade.DefaultScale)
}

func (api *gpaApi) whatIf(ctx echo.Context) error {
	var data whatIfRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to whatIfRequest")
	}
	data.CourseID = core.CleanString(data.CourseID)
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	if !data.Percent.Valid {
		return core.NewFieldError("percent", "this field is required")
	}
	proj, err := api.svc.WhatIf(ctx.Request().Context(), data.CourseID, data.Percent.Float64)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, proj)
}

func (api *gpaApi) compute(ctx echo.Context) error {
	var data computeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to computeRequest")
	}
	return ctx.JSON(http.StatusOK, grade.NewReport(data.Courses, data.Items, data.Overrides))
}
