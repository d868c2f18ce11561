package dto

import (
	"encoding/json"
	"time"

	"github.com/thinknt/quizforge/internal/model"
)

// CreateQuizRequest starts a new quiz generation.
type CreateQuizRequest struct {
	Theme             string              `json:"theme" binding:"required"`
	Participants      []model.Participant `json:"participants"`
	Countries         []string            `json:"countries"`
	Rounds            int                 `json:"rounds" binding:"omitempty,min=1"`
	QuestionsPerRound int                 `json:"questions_per_round" binding:"omitempty,min=1"`
	BrainrotLevel     string              `json:"brainrot_level" binding:"omitempty,oneof=low medium high"`
	AllowedTypes      []string            `json:"allowed_types" binding:"omitempty,dive,oneof=text audio video image true_false multiple_choice"`
}

// GenerationOverrides carries optional per-field replacements for a
// regeneration. Absent fields fall back to the stored parameters.
type GenerationOverrides struct {
	Theme             *string             `json:"theme"`
	Participants      []model.Participant `json:"participants"`
	Countries         []string            `json:"countries"`
	Rounds            *int                `json:"rounds" binding:"omitempty,min=1"`
	QuestionsPerRound *int                `json:"questions_per_round" binding:"omitempty,min=1"`
	BrainrotLevel     *string             `json:"brainrot_level" binding:"omitempty,oneof=low medium high"`
	AllowedTypes      []string            `json:"allowed_types" binding:"omitempty,dive,oneof=text audio video image true_false multiple_choice"`
}

type RegenerateQuizRequest struct {
	GenerationParams *GenerationOverrides `json:"generation_params"`
}

// UpdateQuizRequest replaces the quiz document of a ready quiz.
type UpdateQuizRequest struct {
	QuizData json.RawMessage `json:"quiz_data" binding:"required"`
}

type QuizCreatedResponse struct {
	QuizID uint   `json:"quiz_id"`
	Status string `json:"status"`
}

// QuizResponse is status-shaped: Quiz is present only when ready,
// ErrorMessage only when failed.
type QuizResponse struct {
	ID               uint                   `json:"id"`
	Status           string                 `json:"status"`
	Theme            string                 `json:"theme"`
	GenerationParams model.GenerationParams `json:"generation_params"`
	Quiz             map[string]any         `json:"quiz,omitempty"`
	ErrorMessage     *string                `json:"error_message,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
