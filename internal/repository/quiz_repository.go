package repository

import (
	"github.com/thinknt/quizforge/internal/model"
	"gorm.io/gorm"
)

type QuizRepository interface {
	Create(quiz *model.Quiz) error
	FindByID(id uint) (*model.Quiz, error)
	Update(quiz *model.Quiz) error
	MarkReady(id uint, quizData []byte) error
	MarkFailed(id uint, message string) error
	ResetForGeneration(quiz *model.Quiz) error
}

type quizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) Create(quiz *model.Quiz) error {
	return r.db.Create(quiz).Error
}

func (r *quizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.First(&quiz, id).Error
	return &quiz, err
}

func (r *quizRepository) Update(quiz *model.Quiz) error {
	return r.db.Save(quiz).Error
}

func (r *quizRepository) MarkReady(id uint, quizData []byte) error {
	return r.db.Model(&model.Quiz{}).Where("id = ?", id).Updates(map[string]any{
		"status":        model.StatusReady,
		"quiz_data":     quizData,
		"error_message": nil,
	}).Error
}

func (r *quizRepository) MarkFailed(id uint, message string) error {
	return r.db.Model(&model.Quiz{}).Where("id = ?", id).Updates(map[string]any{
		"status":        model.StatusFailed,
		"error_message": message,
	}).Error
}

// ResetForGeneration clears prior output and puts the record back into
// "generating", keeping whatever GenerationParams the caller set on it.
func (r *quizRepository) ResetForGeneration(quiz *model.Quiz) error {
	quiz.Status = model.StatusGenerating
	quiz.QuizData = nil
	quiz.ErrorMessage = nil
	return r.db.Model(quiz).Select("status", "quiz_data", "error_message", "generation_params").Updates(map[string]any{
		"status":            model.StatusGenerating,
		"quiz_data":         nil,
		"error_message":     nil,
		"generation_params": []byte(quiz.GenerationParams),
	}).Error
}
