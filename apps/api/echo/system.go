package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}

func (s *server) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"ok": true, "message": s.deps.Conf.AppName + " server running"})
}

// clearData erases every course, grade item and task.
func (s *server) clearData(ctx echo.Context) error {
	c := ctx.Request().Context()
	if err := s.deps.Tasks.Clear(c); err != nil {
		return errors.Wrap(err, "clearing tasks")
	}
	if err := s.deps.Gradebook.Clear(c); err != nil {
		return errors.Wrap(err, "clearing gradebook")
	}
	return ctx.NoContent(http.StatusNoContent)
}
