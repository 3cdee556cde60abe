package handler

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fadilmartias/cv-assessor/internal/dto"
	"github.com/fadilmartias/cv-assessor/internal/middleware"
	"github.com/fadilmartias/cv-assessor/internal/usecase"
	"github.com/fadilmartias/cv-assessor/internal/util"
	"github.com/gofiber/fiber/v2"
)

const defaultMaxUploadBytes = 5 << 20

type CVHandler struct {
	cv             *usecase.CVUsecase
	jobs           *usecase.JobUsecase
	maxUploadBytes int
}

func NewCVHandler(cv *usecase.CVUsecase, jobs *usecase.JobUsecase, maxUploadBytes int) *CVHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &CVHandler{cv: cv, jobs: jobs, maxUploadBytes: maxUploadBytes}
}

func (h *CVHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/parse-cv", middleware.RateLimiter(10, time.Minute), h.ParseCV)
	app.Post("/match-jobs", h.MatchJobs)
	app.Get("/jobs", h.ListJobs)
}

func (h *CVHandler) ParseCV(c *fiber.Ctx) error {
	data, filename, err := h.readUpload(c, "file")
	if err != nil {
		var formErr *util.FormError
		if errors.As(err, &formErr) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: formErr.Message,
				Details: formErr.Errors,
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot read uploaded file",
		}, err)
	}

	parsed, err := h.cv.ParseCV(c.UserContext(), filename, data)
	if err != nil {
		var outErr *usecase.OutputError
		if errors.As(err, &outErr) {
			return c.JSON(dto.LLMFailure{Error: outErr.Message, RawOutput: outErr.RawOutput})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "failed to extract CV text",
		}, err)
	}
	return c.JSON(parsed)
}

func (h *CVHandler) readUpload(c *fiber.Ctx, fieldName string) ([]byte, string, error) {
	file, err := c.FormFile(fieldName)
	if err != nil {
		return nil, "", util.NewFormError(fmt.Sprintf("%s is required", fieldName), map[string]string{
			fieldName: "multipart file field is missing",
		})
	}

	if file.Size > int64(h.maxUploadBytes) {
		return nil, "", util.NewFormError(fmt.Sprintf("%s is too large", fieldName), map[string]string{
			fieldName: fmt.Sprintf("max %d bytes", h.maxUploadBytes),
		})
	}

	f, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(h.maxUploadBytes)+1))
	if err != nil {
		return nil, "", err
	}
	return data, file.Filename, nil
}

func (h *CVHandler) MatchJobs(c *fiber.Ctx) error {
	var req dto.MatchJobsRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	matches, err := h.cv.MatchJobs(c.UserContext(), req.ParsedCV, req.Jobs)
	if errors.Is(err, usecase.ErrMissingParsedCV) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Missing parsed_cv",
		})
	}
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to match jobs",
		}, err)
	}
	return c.JSON(matches)
}

func (h *CVHandler) ListJobs(c *fiber.Ctx) error {
	var query dto.ListJobsQuery
	if err := c.QueryParser(&query); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid pagination",
		}, err)
	}

	postings, pagination := h.jobs.List(query.Page, query.PageSize)
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get jobs",
		Data:       postings,
		Pagination: pagination,
	})
}
