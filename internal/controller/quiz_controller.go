package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/thinknt/quizforge/internal/dto"
	"github.com/thinknt/quizforge/internal/service"
	"gorm.io/gorm"
)

type QuizController struct {
	quizService service.QuizService
}

func NewQuizController(quizService service.QuizService) *QuizController {
	return &QuizController{quizService: quizService}
}

// CreateQuiz godoc
// @Summary Create a quiz and start background generation
// @Description Accepts theme and generation parameters, persists the quiz in "generating" and enqueues the generation job.
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param request body dto.CreateQuizRequest true "Generation parameters"
// @Success 201 {object} dto.QuizCreatedResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var req dto.CreateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("CreateQuiz: failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.quizService.CreateQuiz(req)
	if err != nil {
		log.Error().Err(err).Msg("CreateQuiz: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create quiz", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetQuiz godoc
// @Summary Get a quiz and its generation status
// @Description Returns the quiz record. The quiz document is included only when status is "ready", the error message only when "failed".
// @Tags Quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	id, ok := c.quizID(ctx)
	if !ok {
		return
	}

	resp, err := c.quizService.GetQuiz(id)
	if err != nil {
		c.renderError(ctx, err, "GetQuiz")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// UpdateQuiz godoc
// @Summary Replace the quiz document of a ready quiz
// @Description Validates the submitted document against the quiz schema before storing it. Only ready quizzes can be edited.
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param request body dto.UpdateQuizRequest true "New quiz document"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body or ID"
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Failure 422 {object} dto.ErrorResponse "Schema violations or quiz not ready"
// @Router /quizzes/{id} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	id, ok := c.quizID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.quizService.UpdateQuizData(id, req.QuizData)
	if err != nil {
		c.renderError(ctx, err, "UpdateQuiz")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// RegenerateQuiz godoc
// @Summary Regenerate a quiz
// @Description Resets the quiz to "generating" and enqueues a new generation attempt. Optional generation_params override the stored ones field by field.
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param request body dto.RegenerateQuizRequest false "Optional parameter overrides"
// @Success 200 {object} dto.QuizCreatedResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body or ID"
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /quizzes/{id}/regenerate [post]
func (c *QuizController) RegenerateQuiz(ctx *gin.Context) {
	id, ok := c.quizID(ctx)
	if !ok {
		return
	}

	var req dto.RegenerateQuizRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
			return
		}
	}

	resp, err := c.quizService.Regenerate(id, req)
	if err != nil {
		c.renderError(ctx, err, "RegenerateQuiz")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func (c *QuizController) quizID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid quiz ID format"})
		return 0, false
	}
	return uint(id), true
}

func (c *QuizController) renderError(ctx *gin.Context, err error, op string) {
	var validationErr *service.ValidationError
	var notReadyErr *service.ErrQuizNotReady

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Quiz not found"})
	case errors.As(err, &validationErr):
		ctx.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Message: validationErr.Message, Details: validationErr.Violations})
	case errors.As(err, &notReadyErr):
		ctx.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Message: notReadyErr.Error()})
	default:
		log.Error().Err(err).Str("op", op).Msg("Quiz controller: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error", Details: []string{err.Error()}})
	}
}
