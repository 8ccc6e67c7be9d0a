package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// Role names carried in access tokens.
const (
	RoleDriver    = "driver"
	RolePassenger = "passenger"
	RoleEmployee  = "employee"
	RoleAdmin     = "admin"
)

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Pseudo       string     `gorm:"column:pseudo;size:50;uniqueIndex;not null" json:"pseudo"`
	Email        string     `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Phone        string     `gorm:"column:phone;size:20" json:"phone,omitempty"`
	PhotoURL     string     `gorm:"column:photo_url" json:"photoUrl,omitempty"`
	Credits      int        `gorm:"column:credits;not null;default:0;check:chk_utilisateur_credits,credits >= 0" json:"credits"`
	IsDriver     bool       `gorm:"column:is_driver;not null;default:false" json:"isDriver"`
	IsPassenger  bool       `gorm:"column:is_passenger;not null;default:false" json:"isPassenger"`
	Smoker       bool       `gorm:"column:smoker;not null;default:false" json:"smoker"`
	Animals      bool       `gorm:"column:animals;not null;default:false" json:"animals"`
	Status       UserStatus `gorm:"column:status;size:20;not null;default:'ACTIVE'" json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Employee      *Employee      `gorm:"foreignKey:UserID" json:"-"`
	Administrator *Administrator `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "utilisateur"
}

func (u *User) SetPassword(password string, cost int) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Roles lists the roles granted to the user. Employee and Administrator
// must be preloaded for the back-office roles to show up.
func (u *User) Roles() []string {
	var roles []string
	if u.IsDriver {
		roles = append(roles, RoleDriver)
	}
	if u.IsPassenger {
		roles = append(roles, RolePassenger)
	}
	if u.Employee != nil {
		roles = append(roles, RoleEmployee)
	}
	if u.Administrator != nil {
		roles = append(roles, RoleAdmin)
	}
	return roles
}

// Employee marks a user as platform staff able to moderate.
type Employee struct {
	UserID    uint      `gorm:"primaryKey;column:user_id" json:"userId"`
	CreatedBy *uint     `gorm:"column:created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Employee) TableName() string {
	return "employe"
}

type Administrator struct {
	UserID    uint      `gorm:"primaryKey;column:user_id" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Administrator) TableName() string {
	return "administrateur"
}
