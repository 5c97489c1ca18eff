package models

import "time"

// User is a registered account. Passwords are stored as entered.
type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Class    string    `json:"class"`
	Joined   time.Time `json:"joined"`
}

// Public strips the password for API responses.
func (u User) Public() UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name, Email: u.Email, Class: u.Class, Joined: u.Joined}
}

// UserInfo is the user shape returned to clients.
type UserInfo struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Class  string    `json:"class"`
	Joined time.Time `json:"joined"`
}
