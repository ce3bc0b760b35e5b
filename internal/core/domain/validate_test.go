package domain

import (
	"errors"
	"strings"
	"testing"
)

func validUser() *User {
	return &User{Email: "alice@example.com", Username: "alice"}
}

func TestUserValidate(t *testing.T) {
	if err := validUser().Validate(); err != nil {
		t.Fatalf("valid user rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*User)
		field  string
	}{
		{"short email", func(u *User) { u.Email = "ab" }, "email"},
		{"long email", func(u *User) { u.Email = strings.Repeat("a", MaxEmailLength+1) }, "email"},
		{"empty username", func(u *User) { u.Username = "" }, "username"},
		{"username with spaces", func(u *User) { u.Username = "al ice" }, "username"},
		{"username with symbols", func(u *User) { u.Username = "alice!" }, "username"},
		{"long bio", func(u *User) { u.Bio = strings.Repeat("b", MaxBioLength+1) }, "bio"},
		{"long image url", func(u *User) { u.ImageURL = strings.Repeat("u", MaxImageURLLength+1) }, "image"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := validUser()
			tc.mutate(u)
			var ve *ValidationError
			if err := u.Validate(); !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("expected %s validation error, got %v", tc.field, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("password123"); err != nil {
		t.Fatalf("valid password rejected: %v", err)
	}
	if err := ValidatePassword(""); err == nil {
		t.Fatalf("empty password accepted")
	}
	if err := ValidatePassword(strings.Repeat("p", MaxPasswordLength+1)); err == nil {
		t.Fatalf("oversized password accepted")
	}
}

func TestArticleValidate(t *testing.T) {
	valid := func() *Article {
		return &Article{Title: "T", Description: "D", Body: "B", Tags: []string{"go"}}
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("valid article rejected: %v", err)
	}

	a := valid()
	a.Title = ""
	if err := a.Validate(); err == nil {
		t.Fatalf("empty title accepted")
	}

	a = valid()
	a.Tags = make([]string, MaxTags+1)
	for i := range a.Tags {
		a.Tags[i] = "t"
	}
	var ve *ValidationError
	if err := a.Validate(); !errors.As(err, &ve) || ve.Field != "tagList" {
		t.Fatalf("expected tagList validation error, got %v", err)
	}

	a = valid()
	a.Tags = []string{""}
	if err := a.Validate(); err == nil {
		t.Fatalf("empty tag accepted")
	}
}

func TestRemoveID(t *testing.T) {
	ids := []string{"a", "b", "c", "b"}
	got := RemoveID(ids, "b")
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("unexpected result %v", got)
	}
	if got := RemoveID(nil, "x"); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
