package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/feedback"
	"github.com/trezcool/alama/core/user"
)

type feedbackApi struct {
	svc      feedback.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerFeedbackAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc feedback.Service,
	userSvc user.Service,
	validate *validator.Validate,
) {
	api := feedbackApi{
		svc:      svc,
		userSvc:  userSvc,
		validate: validate,
	}

	fg := g.Group("/feedback", jwt)
	fg.POST("", api.submit)
	fg.GET("", api.query, adminMiddleware())
	fg.POST("/broadcast", api.broadcast, adminMiddleware())
	fg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *feedbackApi) submit(ctx echo.Context) error {
	var data feedback.NewFeedback
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFeedback")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	fb, err := api.svc.Submit(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "submitting feedback")
	}
	return ctx.JSON(http.StatusCreated, fb)
}

func (api *feedbackApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	fbs, err := api.svc.Query(ctx.Request().Context(), nil, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying feedback")
	}
	if fbs == nil {
		fbs = []feedback.Feedback{}
	}
	return ctx.JSON(http.StatusOK, fbs)
}

func (api *feedbackApi) broadcast(ctx echo.Context) error {
	var data feedback.BroadcastRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BroadcastRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	n, err := api.svc.Broadcast(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "broadcasting feedback")
	}
	return ctx.JSON(http.StatusOK, BroadcastResponse{Recipients: n})
}

func (api *feedbackApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting feedback")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type BroadcastResponse struct {
	Recipients int `json:"recipients"`
}
