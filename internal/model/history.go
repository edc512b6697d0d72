package model

// History is one daily log entry of a challenge. Entries are append-only while
// the owning challenge is in progress, at most one per calendar day.
type History struct {
	BaseModel
	ChallengeID uint    `gorm:"index;not null" json:"challengeId"`
	Contents    string  `gorm:"type:text" json:"contents"`
	Time        *string `gorm:"size:5" json:"time"`
}

func (History) TableName() string {
	return "histories"
}
