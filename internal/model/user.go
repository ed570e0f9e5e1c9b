package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// UserType classifies a console account. The set is closed: unknown values
// are rejected at the API boundary instead of falling through to a default.
type UserType string

const (
	UserTypeProduct  UserType = "product_user"
	UserTypeAdmin    UserType = "admin"
	UserTypeObserver UserType = "observer"
)

// ParseUserType validates a wire value against the closed set
func ParseUserType(s string) (UserType, error) {
	switch UserType(s) {
	case UserTypeProduct, UserTypeAdmin, UserTypeObserver:
		return UserType(s), nil
	}
	return "", fmt.Errorf("unknown user type: %q", s)
}

// User represents a console account scoped to a tenant
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null;uniqueIndex:idx_tenant_email"`
	Email     string         `json:"email" gorm:"type:varchar(100);uniqueIndex:idx_tenant_email"`
	FirstName string         `json:"first_name" gorm:"type:varchar(100)"`
	LastName  string         `json:"last_name,omitempty" gorm:"type:varchar(100)"`
	Password  string         `json:"-" gorm:"type:varchar(255)"`
	UserType  UserType       `json:"user_type" gorm:"type:varchar(32);default:product_user"`
	RoleID    *uint          `json:"role_id,omitempty" gorm:"index"`
	Active    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
