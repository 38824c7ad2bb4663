package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/gradespeed/gradespeed/core/grading"
)

type gradingApi struct {
	svc      *grading.Service
	validate *validator.Validate
}

func registerGradingAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := gradingApi{
		svc:      deps.GradingSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.queryCourses)
	cg.GET("/:id/assignments", api.queryAssignments)
	cg.GET("/:id/sessions", api.querySessions)

	sg := g.Group("/sessions", jwt)
	sg.POST("", api.importSession)
	sg.GET("/:id", api.retrieveSession)
	sg.PATCH("/:id/sync-state", api.updateSyncState)
	sg.GET("/:id/submissions", api.querySubmissions)

	subg := g.Group("/submissions", jwt)
	subg.GET("/:id", api.retrieveSubmission)
	subg.GET("/:id/diff", api.diffSubmission)
	subg.PATCH("/:id", api.updateGrade)
}

// ownedSession loads a session and rejects access unless the requesting user
// owns its course. Foreign records read as not found, never as forbidden.
func (api *gradingApi) ownedSession(ctx echo.Context, sessionID, ownerID string) (grading.GradingSession, error) {
	session, err := api.svc.GetSession(ctx.Request().Context(), sessionID)
	if err != nil {
		if errors.Cause(err) == grading.ErrNotFound {
			return grading.GradingSession{}, errHttpNotFound
		}
		return grading.GradingSession{}, errors.Wrap(err, "loading session")
	}
	course, err := api.svc.GetCourse(ctx.Request().Context(), session.CourseID)
	if err != nil {
		return grading.GradingSession{}, errors.Wrap(err, "loading course")
	}
	if course.OwnerID != ownerID {
		return grading.GradingSession{}, errHttpNotFound
	}
	return session, nil
}

func (api *gradingApi) ownedSubmission(ctx echo.Context, subID, ownerID string) (grading.Submission, error) {
	sub, err := api.svc.GetSubmission(ctx.Request().Context(), subID)
	if err != nil {
		if errors.Cause(err) == grading.ErrNotFound {
			return grading.Submission{}, errHttpNotFound
		}
		return grading.Submission{}, errors.Wrap(err, "loading submission")
	}
	if _, err = api.ownedSession(ctx, sub.SessionID, ownerID); err != nil {
		return grading.Submission{}, err
	}
	return sub, nil
}

// Handlers

func (api *gradingApi) queryCourses(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	courses, err := api.svc.ListRemoteCourses(ctx.Request().Context(), claims.Subject, ctx.QueryParam("page_token"))
	if err != nil {
		return errors.Wrap(err, "listing remote courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *gradingApi) queryAssignments(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	assignments, err := api.svc.ListRemoteAssignments(
		ctx.Request().Context(), claims.Subject, ctx.Param("id"), ctx.QueryParam("page_token"))
	if err != nil {
		return errors.Wrap(err, "listing remote assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *gradingApi) querySessions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	course, err := api.svc.EnsureCourse(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "ensuring course")
	}
	sessions, err := api.svc.QueryCourseSessions(ctx.Request().Context(), course.ID)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *gradingApi) importSession(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data ImportSessionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ImportSessionRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	course, err := api.svc.EnsureCourse(ctx.Request().Context(), claims.Subject, data.APICourseID)
	if err != nil {
		return errors.Wrap(err, "ensuring course")
	}
	session, created, err := api.svc.ImportSession(
		ctx.Request().Context(), claims.Subject, course, data.APIAssignmentID, data.FullUpdate)
	if err != nil {
		return errors.Wrap(err, "importing session")
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	return ctx.JSON(code, session)
}

func (api *gradingApi) retrieveSession(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	session, err := api.ownedSession(ctx, ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, session)
}

func (api *gradingApi) updateSyncState(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data SyncStateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SyncStateRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	session, err := api.ownedSession(ctx, ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	session, err = api.svc.SetSessionSyncState(ctx.Request().Context(), session.ID, grading.SyncState(data.SyncState))
	if err != nil {
		return errors.Wrap(err, "updating sync state")
	}
	return ctx.JSON(http.StatusOK, session)
}

func (api *gradingApi) querySubmissions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	session, err := api.ownedSession(ctx, ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	subs, err := api.svc.QuerySessionSubmissions(ctx.Request().Context(), session.ID)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	return ctx.JSON(http.StatusOK, subs)
}

// retrieveSubmission reconciles the submission against the remote records
// before returning it; ?force=true bypasses the staleness check.
func (api *gradingApi) retrieveSubmission(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	sub, err := api.ownedSubmission(ctx, ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}

	force, _ := strconv.ParseBool(ctx.QueryParam("force"))
	sub, err = api.svc.Reconcile(ctx.Request().Context(), sub, force)
	if err != nil {
		return errors.Wrap(err, "reconciling submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *gradingApi) diffSubmission(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	sub, err := api.ownedSubmission(ctx, ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}

	diff, err := api.svc.Diff(ctx.Request().Context(), sub)
	if err != nil {
		return errors.Wrap(err, "diffing submission")
	}
	return ctx.JSON(http.StatusOK, DiffResponse{Diff: diff})
}

func (api *gradingApi) updateGrade(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data GradeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeRequest")
	}

	sub, err := api.ownedSubmission(ctx, ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	sub, err = api.svc.SaveGrade(ctx.Request().Context(), sub.ID, data.Grade, data.Comment)
	if err != nil {
		return errors.Wrap(err, "saving grade")
	}
	return ctx.JSON(http.StatusOK, sub)
}
