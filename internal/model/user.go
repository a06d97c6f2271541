package model

import (
	"encoding/json"
	"fmt"
)

// User is the record published to the bus. JSON names match the payload
// consumers already read (Id, Name, Edad, Profesion).
type User struct {
	ID         int    `json:"Id"`
	Name       string `json:"Name"`
	Age        int    `json:"Edad"`
	Profession string `json:"Profesion"`
}

// DemoUsers returns the fixed list sent on every run.
func DemoUsers() []User {
	return []User{
		{
			ID:         4,
			Name:       "Carlos Flores",
			Age:        23,
			Profession: "ISC",
		},
	}
}

// MarshalUsers serializes users in input order.
func MarshalUsers(users []User) (string, error) {
	if users == nil {
		users = []User{}
	}
	b, err := json.Marshal(users)
	if err != nil {
		return "", fmt.Errorf("marshal users: %w", err)
	}
	return string(b), nil
}

// UnmarshalUsers is the inverse of MarshalUsers.
func UnmarshalUsers(content string) ([]User, error) {
	var users []User
	if err := json.Unmarshal([]byte(content), &users); err != nil {
		return nil, fmt.Errorf("unmarshal users: %w", err)
	}
	return users, nil
}
