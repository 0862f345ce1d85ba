package domain

import "time"

// UserRole enumerates the kinds of people using the platform.
type UserRole string

const (
	UserRolePropertyManager UserRole = "PROPERTY_MANAGER"
	UserRoleTechnician      UserRole = "TECHNICIAN"
	UserRoleOwner           UserRole = "OWNER"
	UserRoleTenant          UserRole = "TENANT"
	UserRoleAdmin           UserRole = "ADMIN"
)

// SubscriptionStatus represents the billing state of a manager account.
type SubscriptionStatus string

const (
	SubscriptionStatusTrial     SubscriptionStatus = "TRIAL"
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusSuspended SubscriptionStatus = "SUSPENDED"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
)

// User is a platform account.
type User struct {
	ID                 string
	Name               string
	Email              string
	Role               UserRole
	SubscriptionStatus SubscriptionStatus
	TrialEndDate       *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// UserSummary is the subset of a user joined onto other records.
type UserSummary struct {
	ID    string
	Name  string
	Email string
}

// DisplayName prefers the name and falls back to the email address.
func (u UserSummary) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
