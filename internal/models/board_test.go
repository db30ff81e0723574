package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTaskStatus(t *testing.T) {
	tests := []struct {
		raw    string
		want   TaskStatus
		wantOK bool
	}{
		{raw: "backlog", want: StatusBacklog, wantOK: true},
		{raw: "todo", want: StatusTodo, wantOK: true},
		{raw: "inprogress", want: StatusInProgress, wantOK: true},
		{raw: "done", want: StatusDone, wantOK: true},
		{raw: "DONE", want: StatusDone, wantOK: true},
		{raw: "InProgress", want: StatusInProgress, wantOK: true},
		{raw: "in-progress", wantOK: false},
		{raw: "archived", wantOK: false},
		{raw: "", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ParseTaskStatus(tt.raw)
		assert.Equal(t, tt.wantOK, ok, "raw: %q", tt.raw)
		assert.Equal(t, tt.want, got, "raw: %q", tt.raw)
	}
}

func TestUser_Linked(t *testing.T) {
	user := &User{ID: 1}
	assert.False(t, user.Linked())

	user.ExternalTokens = &TokenPair{AccessToken: "at", RefreshToken: "rt"}
	assert.True(t, user.Linked())
}

func TestUser_Public(t *testing.T) {
	user := &User{
		ID:           1,
		Email:        "ana@x.com",
		Name:         "Ana",
		PasswordHash: "$2a$10$hash",
	}

	public := user.Public()
	assert.Equal(t, int64(1), public.ID)
	assert.Equal(t, "ana@x.com", public.Email)
	assert.Equal(t, "Ana", public.Name)
}
