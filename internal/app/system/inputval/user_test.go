package inputval

import "testing"

func TestValidateUser(t *testing.T) {
	tests := []struct {
		name     string
		in       UserInput
		wantRule string
	}{
		{"valid visitor", UserInput{Email: "v@example.com", Password: "longenough", Role: "visitor", Gender: "female"}, ""},
		{"unset gender", UserInput{Email: "v@example.com", Password: "longenough", Role: "instructor"}, ""},
		{"bad email", UserInput{Email: "nope", Password: "longenough", Role: "visitor"}, RuleInvalidEmail},
		{"short password", UserInput{Email: "v@example.com", Password: "short", Role: "visitor"}, RulePasswordTooShort},
		{"optional password kept", UserInput{Email: "v@example.com", Role: "visitor", PasswordOptional: true}, ""},
		{"optional password still checked when given", UserInput{Email: "v@example.com", Password: "abc", Role: "visitor", PasswordOptional: true}, RulePasswordTooShort},
		{"unknown role", UserInput{Email: "v@example.com", Password: "longenough", Role: "member"}, RuleInvalidRole},
		{"unknown gender", UserInput{Email: "v@example.com", Password: "longenough", Role: "visitor", Gender: "x"}, RuleInvalidGender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateUser(tt.in)
			if tt.wantRule == "" {
				if res.HasErrors() {
					t.Fatalf("unexpected failures: %+v", res.Errors)
				}
				return
			}
			if !res.HasErrors() || res.Errors[0].Rule != tt.wantRule {
				t.Errorf("got %+v, want first rule %q", res.Errors, tt.wantRule)
			}
		})
	}
}
