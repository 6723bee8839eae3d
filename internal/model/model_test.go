package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUserResponseNeverContainsPassword(t *testing.T) {
	bio := "hello"
	u := &User{
		ID:           1,
		Username:     "testuser",
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		Bio:          &bio,
		CreatedAt:    time.Now(),
	}

	for name, v := range map[string]any{
		"user": u.ToResponse(),
		"me":   MeResponse{UserResponse: u.ToResponse(), CreatedAt: u.CreatedAt},
		"auth": AuthResponse{User: u.ToResponse(), Token: "1|abc"},
	} {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("%s: marshal: %v", name, err)
		}
		s := string(b)
		if strings.Contains(s, "password") || strings.Contains(s, "argon2id") {
			t.Errorf("%s: response leaks password data: %s", name, s)
		}
	}
}

func TestMeResponseFlattensProfile(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	u := &User{ID: 7, Username: "jane", Name: "Jane", Email: "jane@example.com", CreatedAt: created}

	b, err := json.Marshal(MeResponse{UserResponse: u.ToResponse(), CreatedAt: u.CreatedAt})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "username", "name", "email", "bio", "avatar_url", "created_at"} {
		if _, ok := got[key]; !ok {
			t.Errorf("expected key %q in %s", key, b)
		}
	}
	if got["bio"] != nil {
		t.Errorf("bio = %v, want null", got["bio"])
	}
}

func TestPostToResponse(t *testing.T) {
	avatar := "https://example.com/a.png"
	p := &Post{
		ID:              3,
		UserID:          9,
		Caption:         "sunset",
		ImageURL:        "https://example.com/p.jpg",
		AuthorUsername:  "jane",
		AuthorAvatarURL: &avatar,
	}

	resp := p.ToResponse()
	if resp.User.ID != 9 || resp.User.Username != "jane" || resp.User.AvatarURL == nil || *resp.User.AvatarURL != avatar {
		t.Errorf("unexpected author projection: %+v", resp.User)
	}
	if resp.ID != 3 || resp.Caption != "sunset" {
		t.Errorf("unexpected post projection: %+v", resp)
	}
}
