package entity

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PasswordHashCost is the bcrypt cost used when persisting passwords
var PasswordHashCost = bcrypt.DefaultCost

// User is a front-desk or admin account
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'front_desk';index" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// hash last read from or written to the store
	storedPassword  string
	passwordChanged bool
}

func (User) TableName() string {
	return "users"
}

// BeforeSave hashes Password whenever it differs from the stored hash, so a
// caller-supplied value is never persisted as given, even one shaped like a hash.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Password == "" || (!u.passwordChanged && u.Password == u.storedPassword) {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), PasswordHashCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	u.storedPassword = u.Password
	u.passwordChanged = false
	return nil
}

// SetPassword replaces the password with a plain-text value to hash on save
func (u *User) SetPassword(plain string) {
	u.Password = plain
	u.passwordChanged = true
}

func (u *User) AfterFind(tx *gorm.DB) error {
	u.storedPassword = u.Password
	return nil
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// CheckPassword compares a plain-text password with the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// Active treats a missing flag as active, matching the column default
func (u *User) Active() bool {
	return u.IsActive == nil || *u.IsActive
}
