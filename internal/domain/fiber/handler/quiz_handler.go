package handler

import (
	"errors"
	"time"

	"github.com/fadilmartias/cv-assessor/internal/domain/quiz"
	"github.com/fadilmartias/cv-assessor/internal/dto"
	"github.com/fadilmartias/cv-assessor/internal/middleware"
	"github.com/fadilmartias/cv-assessor/internal/usecase"
	"github.com/fadilmartias/cv-assessor/internal/util"
	"github.com/gofiber/fiber/v2"
)

type QuizHandler struct {
	uc *usecase.QuizUsecase
}

func NewQuizHandler(uc *usecase.QuizUsecase) *QuizHandler {
	return &QuizHandler{uc: uc}
}

func (h *QuizHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/generate-quiz", middleware.RateLimiter(10, time.Minute), h.GenerateQuiz)
	app.Post("/submit-quiz", h.SubmitQuiz)
}

func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
			Fields:  fiber.Map{"questions": []dto.QuestionView{}},
		}, err)
	}

	res, err := h.uc.Generate(c.UserContext(), req)
	if errors.Is(err, usecase.ErrMissingQuizInput) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Missing parsed_cv or job",
			Fields:  fiber.Map{"questions": []dto.QuestionView{}},
		})
	}
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to start quiz session",
		}, err)
	}
	return c.JSON(res)
}

func (h *QuizHandler) SubmitQuiz(c *fiber.Ctx) error {
	var req dto.SubmitQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	res, err := h.uc.Submit(c.UserContext(), req)
	if errors.Is(err, quiz.ErrSessionNotFound) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Quiz session expired or not started",
		})
	}
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to load quiz session",
		}, err)
	}
	return c.JSON(res)
}
