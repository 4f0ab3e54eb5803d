package query

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"clarification", &ErrInsufficientInformation{Clarification: "Which users do you mean?"}, "Which users do you mean?"},
		{"explanation", &ErrUnresolvableQuery{Explanation: "That needs a join."}, "That needs a join."},
		{"invalid input", &ErrInvalidInput{Msg: "request is empty"}, "request is empty"},
		{"unknown table", &ErrUnknownTable{Table: "customers"}, "unknown table: customers"},
		{"unknown column", &ErrUnknownColumn{Table: "users", Column: "age"}, "unknown column age in table users"},
		{
			"translation failure hides details",
			&ErrTranslationUnavailable{Msg: "generate", Err: errors.New("quota exceeded for key AIza...")},
			genericTranslationMessage,
		},
		{
			"execution failure hides details",
			&ErrExecutionFailed{Msg: "select", Err: errors.New("dial tcp 10.0.0.3:3306: refused")},
			genericExecutionMessage,
		},
		{"wrapped", fmt.Errorf("ask: %w", &ErrUnknownTable{Table: "x"}), "unknown table: x"},
		{"unclassified", errors.New("boom"), genericMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestIsExpected(t *testing.T) {
	assert.True(t, IsExpected(&ErrInsufficientInformation{}))
	assert.True(t, IsExpected(fmt.Errorf("wrapped: %w", &ErrUnresolvableQuery{})))
	assert.False(t, IsExpected(&ErrExecutionFailed{}))
	assert.False(t, IsExpected(nil))
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("cause")
	assert.ErrorIs(t, &ErrInvalidInput{Msg: "m", Err: cause}, cause)
	assert.ErrorIs(t, &ErrTranslationUnavailable{Msg: "m", Err: cause}, cause)
	assert.ErrorIs(t, &ErrExecutionFailed{Msg: "m", Err: cause}, cause)
	assert.Equal(t, "query execution failed: m: cause", (&ErrExecutionFailed{Msg: "m", Err: cause}).Error())
	assert.Equal(t, "translation unavailable: m", (&ErrTranslationUnavailable{Msg: "m"}).Error())
}
