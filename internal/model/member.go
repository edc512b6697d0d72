package model

type ProviderType string

const (
	ProviderCactus ProviderType = "cactus"
	ProviderGoogle ProviderType = "google"
	ProviderKakao  ProviderType = "kakao"
)

// Local returns true for password-credential members.
func (p ProviderType) Local() bool {
	return p == ProviderCactus
}

type Member struct {
	BaseModel
	Email        *string      `gorm:"size:100;uniqueIndex" json:"email"`
	Username     string       `gorm:"size:100;not null" json:"username"`
	Password     string       `gorm:"size:100" json:"-"`
	ProviderType ProviderType `gorm:"type:varchar(20);default:'cactus'" json:"providerType"`
	ProviderID   *string      `gorm:"size:191;uniqueIndex" json:"-"`
	Deleted      bool         `gorm:"default:false;index" json:"-"`
}

func (Member) TableName() string {
	return "members"
}
