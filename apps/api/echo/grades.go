package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/grading"
	"github.com/trezcool/alama/core/record"
	"github.com/trezcool/alama/core/user"
)

var errRecordsNotFound = echo.NewHTTPError(http.StatusBadRequest, "One or both semester records not found")

type gradesApi struct {
	svc      record.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerGradesAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc record.Service,
	userSvc user.Service,
	validate *validator.Validate,
) {
	api := gradesApi{
		svc:      svc,
		userSvc:  userSvc,
		validate: validate,
	}

	gg := g.Group("/grades", jwt)

	gg.POST("/evaluate", api.evaluate)

	gg.POST("/records", api.saveRecord)
	gg.GET("/records", api.queryRecords)
	gg.GET("/records/:id", api.retrieveRecord)
	gg.DELETE("/records/:id", api.destroyRecord)

	gg.POST("/final", api.aggregateFinal)
	gg.POST("/final/records", api.saveFinalRecord)
	gg.GET("/final/records", api.queryFinalRecords)
	gg.DELETE("/final/records/:id", api.destroyFinalRecord)

	gg.GET("/history", api.queryHistory)
}

// Handlers

// evaluate computes a semester GPA without persisting anything.
func (api *gradesApi) evaluate(ctx echo.Context) error {
	var data EvaluationRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EvaluationRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	res, err := grading.EvaluateSemester(data.Modules)
	if err != nil {
		var blocked *grading.Blocked
		if errors.As(err, &blocked) {
			return ctx.JSON(http.StatusBadRequest, BlockedResponse{
				Blocked: true,
				Reason:  blocked.Reason,
				Message: blocked.Message,
			})
		}
		if errors.Cause(err) == grading.ErrUnknownGrade {
			return core.NewValidationError(err)
		}
		return errors.Wrap(err, "evaluating semester")
	}

	return ctx.JSON(http.StatusOK, EvaluationResponse{
		GPA:     res.GPA,
		Status:  res.Status,
		Details: res.Details,
		Message: res.Message(),
	})
}

func (api *gradesApi) saveRecord(ctx echo.Context) error {
	var data record.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rec, err := api.svc.Save(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		var blocked *grading.Blocked
		if errors.As(err, &blocked) {
			return ctx.JSON(http.StatusBadRequest, BlockedResponse{
				Blocked: true,
				Reason:  blocked.Reason,
				Message: blocked.Message,
			})
		}
		if errors.Cause(err) == grading.ErrUnknownGrade {
			return core.NewValidationError(err)
		}
		return errors.Wrap(err, "saving record")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *gradesApi) queryRecords(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	recs, err := api.svc.Query(ctx.Request().Context(), claims.Subject, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying records")
	}
	if recs == nil {
		recs = []record.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *gradesApi) retrieveRecord(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rec, err := api.svc.GetByID(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == record.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding record")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *gradesApi) destroyRecord(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Delete(ctx.Request().Context(), claims.Subject, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting record")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// aggregateFinal computes the final GPA of two saved semester records
// without persisting anything.
func (api *gradesApi) aggregateFinal(ctx echo.Context) error {
	var data FinalAggregationRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FinalAggregationRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	res, err := api.svc.AggregateFinal(ctx.Request().Context(), claims.Subject, data.FirstRecordID, data.SecondRecordID)
	if err != nil {
		if errors.Cause(err) == record.ErrNotFound {
			return errRecordsNotFound
		}
		return errors.Wrap(err, "aggregating final GPA")
	}

	return ctx.JSON(http.StatusOK, FinalAggregationResponse{
		FinalResult: res,
		Message:     res.Message(),
	})
}

func (api *gradesApi) saveFinalRecord(ctx echo.Context) error {
	var data record.NewFinalRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFinalRecord")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rec, err := api.svc.SaveFinal(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		if errors.Cause(err) == record.ErrNotFound {
			return errRecordsNotFound
		}
		return errors.Wrap(err, "saving final record")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *gradesApi) queryFinalRecords(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	recs, err := api.svc.QueryFinal(ctx.Request().Context(), claims.Subject, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying final records")
	}
	if recs == nil {
		recs = []record.FinalRecord{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *gradesApi) destroyFinalRecord(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.DeleteFinal(ctx.Request().Context(), claims.Subject, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting final record")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *gradesApi) queryHistory(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	entries, err := api.svc.QueryAudit(ctx.Request().Context(), claims.Subject, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying history")
	}
	if entries == nil {
		entries = []record.AuditEntry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

type (
	EvaluationRequest struct {
		Modules []grading.ModuleEntry `json:"modules" validate:"dive"`
	}

	EvaluationResponse struct {
		Blocked bool                   `json:"blocked"`
		GPA     float64                `json:"gpa"`
		Status  string                 `json:"status"`
		Details []grading.ModuleResult `json:"details"`
		Message string                 `json:"message"`
	}

	BlockedResponse struct {
		Blocked bool   `json:"blocked"`
		Reason  string `json:"reason"`
		Message string `json:"message"`
	}

	FinalAggregationRequest struct {
		FirstRecordID  string `json:"first_record_id" validate:"required"`
		SecondRecordID string `json:"second_record_id" validate:"required"`
	}

	FinalAggregationResponse struct {
		grading.FinalResult
		Message string `json:"message"`
	}
)
