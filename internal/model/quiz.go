package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusGenerating = "generating"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

// Quiz is the persisted record of one quiz and its generation lifecycle.
// Created in "generating"; transitions to "ready" with QuizData populated or
// to "failed" with ErrorMessage populated, once per generation attempt.
type Quiz struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	Theme            string         `json:"theme" gorm:"not null"`
	Status           string         `json:"status" gorm:"not null;default:'generating';index"`
	GenerationParams datatypes.JSON `json:"generation_params" gorm:"type:jsonb"`
	QuizData         datatypes.JSON `json:"quiz_data,omitempty" gorm:"type:jsonb"`
	ErrorMessage     *string        `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// Params decodes the stored generation parameters.
func (q *Quiz) Params() (GenerationParams, error) {
	var params GenerationParams
	if len(q.GenerationParams) == 0 {
		return params, nil
	}
	err := json.Unmarshal(q.GenerationParams, &params)
	return params, err
}

// SetParams encodes and stores generation parameters.
func (q *Quiz) SetParams(params GenerationParams) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	q.GenerationParams = datatypes.JSON(raw)
	return nil
}

// Data decodes the stored quiz document; nil when none is stored.
func (q *Quiz) Data() (map[string]any, error) {
	if len(q.QuizData) == 0 {
		return nil, nil
	}
	var doc map[string]any
	err := json.Unmarshal(q.QuizData, &doc)
	return doc, err
}

// SetData encodes and stores the quiz document.
func (q *Quiz) SetData(doc map[string]any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	q.QuizData = datatypes.JSON(raw)
	return nil
}
