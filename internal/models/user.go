package models

type User struct {
	BaseModel
	Username     string  `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email        string  `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string  `json:"-" gorm:"type:text;not null"`
	Files        []File  `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Shares       []Share `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
