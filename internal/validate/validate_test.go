package validate

import "testing"

func TestUserData(t *testing.T) {
	cases := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  bool
	}{
		{"valid", "alice", "alice@example.com", "secret123", false},
		{"valid numeric username", "user42", "u@example.com", "p", false},
		{"username too short", "ab", "a@example.com", "secret", true},
		{"two-rune unicode username", "ñé", "a@example.com", "secret", true},
		{"three-rune unicode username", "ñéx", "a@example.com", "secret", false},
		{"username with symbol", "al!ce", "a@example.com", "secret", true},
		{"username with space", "al ce", "a@example.com", "secret", true},
		{"email without at", "alice", "aliceexample.com", "secret", true},
		{"email without domain dot", "alice", "alice@example", "secret", true},
		{"email with spaces", "alice", "alice @example.com", "secret", true},
		{"empty password", "alice", "alice@example.com", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := UserData(tc.username, tc.email, tc.password)
			if tc.wantErr && err == nil {
				t.Error("expected validation to fail")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("expected validation to pass, got %v", err)
			}
		})
	}
}
