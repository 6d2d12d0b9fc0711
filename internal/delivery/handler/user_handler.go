package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tour-service/internal/application/command"
	"tour-service/internal/application/mapper"
)

func (h *Handler) Register(c echo.Context) error {
	var cmd command.CreateUserCommand
	if err := bind(c, &cmd); err != nil {
		return err
	}
	res, err := h.auth.Register(c.Request().Context(), &cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ListUsers(c echo.Context) error {
	res, err := h.users.FindActiveUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res.Result)
}

// Me returns the user the access guard loaded.
func (h *Handler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapper.NewUserResultFromEntity(user))
}

func (h *Handler) UpdateMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var cmd command.UpdateMeCommand
	if err := bind(c, &cmd); err != nil {
		return err
	}
	res, err := h.users.UpdateMe(c.Request().Context(), user.Id, &cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": res.Result})
}

func (h *Handler) UpdatePassword(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var cmd command.UpdatePasswordCommand
	if err := bind(c, &cmd); err != nil {
		return err
	}
	res, err := h.auth.UpdatePassword(c.Request().Context(), user.Id, &cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) InactivateMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	res, err := h.users.InactivateMe(c.Request().Context(), user.Id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	res, err := h.users.DeleteMe(c.Request().Context(), user.Id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ForgotPassword(c echo.Context) error {
	var cmd command.ForgotPasswordCommand
	if err := bind(c, &cmd); err != nil {
		return err
	}
	cmd.ResetURLBase = h.appURL
	if cmd.ResetURLBase == "" {
		cmd.ResetURLBase = c.Scheme() + "://" + c.Request().Host
	}

	res, err := h.auth.ForgotPassword(c.Request().Context(), &cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ResetPassword(c echo.Context) error {
	var cmd command.ResetPasswordCommand
	if err := bind(c, &cmd); err != nil {
		return err
	}
	cmd.Token = c.Param("token")

	res, err := h.auth.ResetPassword(c.Request().Context(), &cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) Login(c echo.Context) error {
	var cmd command.LoginUserCommand
	if err := bind(c, &cmd); err != nil {
		return err
	}
	res, err := h.auth.Login(c.Request().Context(), &cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) Reactivate(c echo.Context) error {
	var cmd command.LoginUserCommand
	if err := bind(c, &cmd); err != nil {
		return err
	}
	res, err := h.auth.Reactivate(c.Request().Context(), &cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
