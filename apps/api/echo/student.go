package echoapi

import (
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mikobi/darasa/core"
	"github.com/mikobi/darasa/core/student"
	"github.com/mikobi/darasa/core/upload"
)

// photoField is the multipart form field holding the submitted image.
var photoField = "photo"

type studentApi struct {
	svc      student.Service
	upSvc    upload.Service
	validate *validator.Validate
}

func registerStudentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc student.Service,
	upSvc upload.Service,
	validate *validator.Validate,
) {
	api := studentApi{
		svc:      svc,
		upSvc:    upSvc,
		validate: validate,
	}

	sg := g.Group("/students")

	// un-authed endpoints
	sg.POST("/login", api.login)

	// authed endpoints
	mg := sg.Group("/me", jwt, studentMiddleware())
	mg.GET("", api.retrieve)
	mg.GET("/uploads", api.listUploads)
	mg.POST("/uploads", api.submitUpload)
}

// Handlers

func (api *studentApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.Authenticate(ctx.Request().Context(), data.ID, data.Password)
	if err != nil {
		return loginError(ctx, err, student.ErrAuthFailed)
	}
	token, err := GenerateToken(GetStudentClaims(std))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, err := api.contextStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) listUploads(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	ups, err := api.upSvc.ListByStudent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying student uploads")
	}
	return ctx.JSON(http.StatusOK, ups)
}

func (api *studentApi) submitUpload(ctx echo.Context) error {
	std, err := api.contextStudent(ctx)
	if err != nil {
		return err
	}

	var nu upload.NewUpload
	if fh, ferr := ctx.FormFile(photoField); ferr == nil {
		src, oerr := fh.Open()
		if oerr != nil {
			return errors.Wrap(oerr, "opening uploaded file")
		}
		defer src.Close()

		// read one byte past the cap so validation can tell "too big" apart
		// from "exactly at the cap"
		data, rerr := io.ReadAll(io.LimitReader(src, upload.MaxImageSize+1))
		if rerr != nil {
			return errors.Wrap(rerr, "reading uploaded file")
		}
		nu = upload.NewUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Data:        data,
		}
	}

	rctx := ctx.Request().Context()
	if _, err = api.upSvc.Submit(rctx, std, nu); err != nil {
		return err
	}

	// respond with the refreshed portfolio so the client can redraw it
	ups, err := api.upSvc.ListByStudent(rctx, std.StudentID)
	if err != nil {
		return errors.Wrap(err, "querying student uploads")
	}
	return ctx.JSON(http.StatusCreated, ups)
}

// contextStudent loads the authed student's record from the claims subject.
func (api *studentApi) contextStudent(ctx echo.Context) (student.Student, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting context claims")
	}
	std, err := api.svc.GetByStudentID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return student.Student{}, errHttpNotFound
		}
		return student.Student{}, errors.Wrap(err, "finding student by ID")
	}
	return std, nil
}

// loginError collapses every authentication failure into the same response
// so account IDs cannot be probed. Backend unavailability still surfaces as
// such; anything else is logged and hidden behind the same message.
func loginError(ctx echo.Context, err, authFailed error) error {
	switch cause := errors.Cause(err); cause {
	case authFailed:
		return errAuthenticationFailed
	case core.ErrNotConfigured:
		return err
	default:
		if _, ok := cause.(*core.ConfigError); ok {
			return err
		}
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "authenticating"))
		return errAuthenticationFailed
	}
}

type (
	LoginRequest struct {
		ID       string `json:"id" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.ID = core.CleanString(lr.ID, true /* lower */)
	return validate.Struct(lr)
}
