package entities

// User is a local account. The password and PIN are only ever stored as bcrypt hashes.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	PinHash      *string   `json:"-"`
	CreatedAt    Timestamp `gorm:"not null" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// HasPin reports whether a PIN has been configured.
func (u *User) HasPin() bool {
	return u.PinHash != nil && *u.PinHash != ""
}
