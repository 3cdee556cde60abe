package model

import "time"

// QuizSession is a generated quiz waiting for its submission.
type QuizSession struct {
	ID            string     `gorm:"type:uuid;primaryKey" json:"id"`
	CandidateName string     `gorm:"type:varchar(255)" json:"candidate_name"`
	Job           string     `gorm:"type:jsonb" json:"job"`
	Questions     string     `gorm:"type:jsonb" json:"questions"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     *time.Time `gorm:"index" json:"expires_at"`
}

func (s *QuizSession) TableName() string {
	return "quiz_sessions"
}
