package user

type User struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"not null"`
	NetID string `gorm:"column:netid;uniqueIndex;not null"`
}
