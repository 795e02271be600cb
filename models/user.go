package models

import (
	"time"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User is keyed by the identity provider's uid.
type User struct {
	ID              string    `bson:"_id" json:"id"`
	Name            string    `bson:"name" json:"name"`
	Email           string    `bson:"email" json:"email"`
	Mobile          string    `bson:"mobile,omitempty" json:"mobile,omitempty"`
	Role            string    `bson:"role" json:"role"`
	EnrolledCourses []string  `bson:"enrolled_courses" json:"enrolled_courses"` // courseIds, set semantics
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

func (u *User) IsEnrolled(courseID string) bool {
	for _, c := range u.EnrolledCourses {
		if c == courseID {
			return true
		}
	}
	return false
}
