package main

import "testing"

func TestNewUserValidate(t *testing.T) {
	valid := newUser{Username: "sam", Email: "sam@example.com", Password: "longenough", Theme: "system"}
	tests := []struct {
		name    string
		mutate  func(*newUser)
		wantErr bool
	}{
		{"valid", func(*newUser) {}, false},
		{"missing username", func(u *newUser) { u.Username = "" }, true},
		{"bad email", func(u *newUser) { u.Email = "sam" }, true},
		{"short password", func(u *newUser) { u.Password = "short" }, true},
		{"unknown theme", func(u *newUser) { u.Theme = "neon" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid
			tt.mutate(&u)
			if err := u.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
