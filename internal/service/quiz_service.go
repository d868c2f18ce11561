package service

import (
	"encoding/json"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/thinknt/quizforge/internal/dto"
	"github.com/thinknt/quizforge/internal/model"
	"github.com/thinknt/quizforge/internal/repository"
	"github.com/thinknt/quizforge/internal/schema"
)

// GenerationJob is one unit of background work: generate a quiz for a record.
type GenerationJob struct {
	QuizID uint
	Params model.GenerationParams
}

// GenerationEnqueuer hands jobs to the background worker. Defined here on the
// consumer side; the worker package implements it.
type GenerationEnqueuer interface {
	Enqueue(job GenerationJob) error
}

// ValidationError carries schema violations for a 422-style response.
type ValidationError struct {
	Message    string
	Violations []string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrQuizNotReady rejects edits to quizzes that are not in "ready".
type ErrQuizNotReady struct{}

func (e *ErrQuizNotReady) Error() string { return "can only edit ready quizzes" }

type QuizService interface {
	CreateQuiz(req dto.CreateQuizRequest) (*dto.QuizCreatedResponse, error)
	GetQuiz(id uint) (*dto.QuizResponse, error)
	UpdateQuizData(id uint, raw json.RawMessage) (*dto.QuizResponse, error)
	Regenerate(id uint, req dto.RegenerateQuizRequest) (*dto.QuizCreatedResponse, error)
}

type quizService struct {
	quizRepo repository.QuizRepository
	enqueuer GenerationEnqueuer
}

func NewQuizService(quizRepo repository.QuizRepository, enqueuer GenerationEnqueuer) QuizService {
	return &quizService{quizRepo: quizRepo, enqueuer: enqueuer}
}

// CreateQuiz persists a new record in "generating" and enqueues the
// background generation job.
func (s *quizService) CreateQuiz(req dto.CreateQuizRequest) (*dto.QuizCreatedResponse, error) {
	params := model.GenerationParams{
		Theme:             req.Theme,
		Participants:      req.Participants,
		Countries:         req.Countries,
		Rounds:            req.Rounds,
		QuestionsPerRound: req.QuestionsPerRound,
		BrainrotLevel:     req.BrainrotLevel,
		AllowedTypes:      req.AllowedTypes,
	}
	params.Normalize()

	quiz := model.Quiz{Theme: params.Theme, Status: model.StatusGenerating}
	if err := quiz.SetParams(params); err != nil {
		return nil, fmt.Errorf("failed to encode generation params: %w", err)
	}

	if err := s.quizRepo.Create(&quiz); err != nil {
		log.Error().Err(err).Msg("Failed to create quiz record")
		return nil, fmt.Errorf("database error creating quiz: %w", err)
	}

	status := quiz.Status
	if err := s.enqueue(quiz.ID, params); err != nil {
		status = model.StatusFailed
	}
	return &dto.QuizCreatedResponse{QuizID: quiz.ID, Status: status}, nil
}

// GetQuiz returns the status-shaped view of a quiz: the document only when
// ready, the error message only when failed.
func (s *quizService) GetQuiz(id uint) (*dto.QuizResponse, error) {
	quiz, err := s.quizRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(quiz)
}

// UpdateQuizData replaces the document of a ready quiz after validating the
// new document against the schema.
func (s *quizService) UpdateQuizData(id uint, raw json.RawMessage) (*dto.QuizResponse, error) {
	quiz, err := s.quizRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if quiz.Status != model.StatusReady {
		return nil, &ErrQuizNotReady{}
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if violations := schema.Validate(doc); len(violations) > 0 {
		return nil, &ValidationError{Message: "invalid quiz data", Violations: violations}
	}

	if err := quiz.SetData(doc); err != nil {
		return nil, fmt.Errorf("failed to encode quiz data: %w", err)
	}
	if err := s.quizRepo.Update(quiz); err != nil {
		log.Error().Err(err).Uint("quizID", id).Msg("Failed to update quiz data")
		return nil, fmt.Errorf("database error updating quiz: %w", err)
	}
	return s.toResponse(quiz)
}

// Regenerate resets the record and enqueues a new attempt. Optional override
// params are merged field-by-field onto the stored ones.
func (s *quizService) Regenerate(id uint, req dto.RegenerateQuizRequest) (*dto.QuizCreatedResponse, error) {
	quiz, err := s.quizRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	params, err := quiz.Params()
	if err != nil {
		return nil, fmt.Errorf("stored generation params are unreadable: %w", err)
	}

	if req.GenerationParams != nil {
		mergeOverrides(&params, req.GenerationParams)
	}
	params.Normalize()

	quiz.Theme = params.Theme
	if err := quiz.SetParams(params); err != nil {
		return nil, fmt.Errorf("failed to encode generation params: %w", err)
	}
	if err := s.quizRepo.ResetForGeneration(quiz); err != nil {
		log.Error().Err(err).Uint("quizID", id).Msg("Failed to reset quiz for regeneration")
		return nil, fmt.Errorf("database error resetting quiz: %w", err)
	}

	status := model.StatusGenerating
	if err := s.enqueue(quiz.ID, params); err != nil {
		status = model.StatusFailed
	}
	return &dto.QuizCreatedResponse{QuizID: quiz.ID, Status: status}, nil
}

// enqueue marks the record failed when the queue rejects the job, and reports
// that back so the caller's response carries the real status.
func (s *quizService) enqueue(quizID uint, params model.GenerationParams) error {
	if err := s.enqueuer.Enqueue(GenerationJob{QuizID: quizID, Params: params}); err != nil {
		log.Error().Err(err).Uint("quizID", quizID).Msg("Failed to enqueue generation job")
		if markErr := s.quizRepo.MarkFailed(quizID, fmt.Sprintf("could not enqueue generation: %v", err)); markErr != nil {
			log.Error().Err(markErr).Uint("quizID", quizID).Msg("Failed to mark quiz as failed")
		}
		return err
	}
	return nil
}

func (s *quizService) toResponse(quiz *model.Quiz) (*dto.QuizResponse, error) {
	var resp dto.QuizResponse
	if err := copier.Copy(&resp, quiz); err != nil {
		return nil, fmt.Errorf("error preparing response data: %w", err)
	}
	resp.Quiz = nil
	resp.ErrorMessage = nil

	params, err := quiz.Params()
	if err != nil {
		log.Warn().Err(err).Uint("quizID", quiz.ID).Msg("Stored generation params are unreadable")
	}
	resp.GenerationParams = params

	switch quiz.Status {
	case model.StatusReady:
		doc, err := quiz.Data()
		if err != nil {
			return nil, fmt.Errorf("stored quiz data is unreadable: %w", err)
		}
		resp.Quiz = doc
	case model.StatusFailed:
		resp.ErrorMessage = quiz.ErrorMessage
	}
	return &resp, nil
}

func mergeOverrides(params *model.GenerationParams, overrides *dto.GenerationOverrides) {
	if overrides.Theme != nil {
		params.Theme = *overrides.Theme
	}
	if overrides.Participants != nil {
		params.Participants = overrides.Participants
	}
	if overrides.Countries != nil {
		params.Countries = overrides.Countries
	}
	if overrides.Rounds != nil {
		params.Rounds = *overrides.Rounds
	}
	if overrides.QuestionsPerRound != nil {
		params.QuestionsPerRound = *overrides.QuestionsPerRound
	}
	if overrides.BrainrotLevel != nil {
		params.BrainrotLevel = *overrides.BrainrotLevel
	}
	if overrides.AllowedTypes != nil {
		params.AllowedTypes = overrides.AllowedTypes
	}
}
