package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mikobi/darasa/core/student"
	"github.com/mikobi/darasa/core/teacher"
	"github.com/mikobi/darasa/core/upload"
)

// maxLeaderboardSize caps the ranking regardless of the requested limit.
const maxLeaderboardSize = 10

type reviewApi struct {
	tchSvc   teacher.Service
	stdSvc   student.Service
	upSvc    upload.Service
	validate *validator.Validate
}

func registerReviewAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	tchSvc teacher.Service,
	stdSvc student.Service,
	upSvc upload.Service,
	validate *validator.Validate,
) {
	api := reviewApi{
		tchSvc:   tchSvc,
		stdSvc:   stdSvc,
		upSvc:    upSvc,
		validate: validate,
	}

	// un-authed endpoints
	g.POST("/teachers/login", api.login)

	// authed endpoints
	rg := g.Group("/reviews", jwt, teacherMiddleware())
	rg.GET("/pending", api.queryPending)
	rg.POST("/:id", api.review)

	dg := g.Group("/dashboard", jwt, teacherMiddleware())
	dg.GET("/stats", api.stats)
	dg.GET("/leaderboard", api.leaderboard)
}

// Handlers

func (api *reviewApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tch, err := api.tchSvc.Authenticate(ctx.Request().Context(), data.ID, data.Password)
	if err != nil {
		return loginError(ctx, err, teacher.ErrAuthFailed)
	}
	token, err := GenerateToken(GetTeacherClaims(tch))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *reviewApi) queryPending(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	ups, err := api.upSvc.ListPending(ctx.Request().Context(), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying pending uploads")
	}
	return ctx.JSON(http.StatusOK, ups)
}

func (api *reviewApi) review(ctx echo.Context) error {
	var data upload.ReviewDecision
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewDecision")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	up, err := api.upSvc.Review(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, up)
}

func (api *reviewApi) stats(ctx echo.Context) error {
	st, err := api.upSvc.Stats(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *reviewApi) leaderboard(ctx echo.Context) error {
	limit := maxLeaderboardSize
	if raw := ctx.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < limit {
			limit = n
		}
	}

	entries, err := api.stdSvc.Leaderboard(ctx.Request().Context(), limit)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, entries)
}
