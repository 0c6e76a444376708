package domain

import (
	"time"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleTeacher Role = "teacher"
)

type Teacher struct {
	ID               int64     `json:"id"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	TaxCode          string    `json:"taxCode"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Role             Role      `json:"role"`
	IsActive         bool      `json:"isActive"`
	RecoverableHours int32     `json:"recoverableHours"`
	CreatedAt        time.Time `json:"createdAt"`
	Version          int32     `json:"-"`
}
