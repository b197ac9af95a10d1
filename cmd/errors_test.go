package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/josephgoksu/tasklist/internal/kv"
	"github.com/josephgoksu/tasklist/internal/todo"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestPrintError(t *testing.T) {
	tests := []struct {
		name         string
		userMsg      string
		technicalErr error
		verbose      bool
		expectedOut  string
	}{
		{
			name:        "normal mode without error",
			userMsg:     "User friendly message",
			expectedOut: "User friendly message\n",
		},
		{
			name:         "verbose mode with error",
			userMsg:      "User friendly message",
			technicalErr: errors.New("technical details"),
			verbose:      true,
			expectedOut:  "Error: technical details\n",
		},
		{
			name:         "normal mode with technical error",
			userMsg:      "User friendly message",
			technicalErr: errors.New("technical details"),
			expectedOut:  "User friendly message\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			prev := errOut
			errOut = &buf
			viper.Set("verbose", tt.verbose)
			defer func() {
				errOut = prev
				viper.Set("verbose", false)
			}()

			PrintError(tt.userMsg, tt.technicalErr)
			assert.Equal(t, tt.expectedOut, buf.String())
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err      error
		contains string
		kind     string
	}{
		{&todo.ValidationError{Field: "text", Reason: "task cannot be empty"}, "invalid text: task cannot be empty", "validation"},
		{fmt.Errorf("task with prefix %q: %w", "ab", todo.ErrNotFound), "no task matches", "not_found"},
		{fmt.Errorf("%w: prefix %q matches 2 tasks", todo.ErrAmbiguousID, "a"), "more characters", "ambiguous_id"},
		{todo.ErrCancelled, "Cancelled.", "cancelled"},
		{&todo.PersistenceError{Op: todo.OpWrite, Key: "tasks", Err: kv.ErrClosed}, "storage was closed", "persistence"},
		{errors.New("boom"), "Error: boom", "other"},
	}

	for _, tt := range tests {
		assert.Contains(t, userMessage(tt.err), tt.contains)
		assert.Equal(t, tt.kind, errorKind(tt.err))
	}
}
