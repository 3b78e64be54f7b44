package models

import "testing"

func TestAuthenticatedRequiresAllFields(t *testing.T) {
	complete := Session{Token: "tok", Role: RoleDoctor, UserID: 7, Username: "dr"}
	if !complete.Authenticated() {
		t.Fatalf("complete session must be authenticated: %+v", complete)
	}
	if Anonymous.Authenticated() {
		t.Fatalf("anonymous session must not be authenticated")
	}

	partials := map[string]Session{
		"missing token":    {Role: RoleDoctor, UserID: 7, Username: "dr"},
		"missing role":     {Token: "tok", UserID: 7, Username: "dr"},
		"missing user id":  {Token: "tok", Role: RoleDoctor, Username: "dr"},
		"missing username": {Token: "tok", Role: RoleDoctor, UserID: 7},
	}
	for name, sess := range partials {
		if sess.Authenticated() {
			t.Errorf("%s: session must not be authenticated: %+v", name, sess)
		}
	}
}
