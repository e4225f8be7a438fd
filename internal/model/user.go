package model

// User represents a registered user. Table shape: id, name, email (unique), password.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string `json:"name" gorm:"size:255"`
	Email        string `json:"email" gorm:"uniqueIndex;size:255"`
	PasswordHash string `json:"-" gorm:"column:password;size:255"` // Never expose in JSON
}

// Profile is the public view of a User.
type Profile struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Profile strips credentials from u.
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email}
}
