package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/procurement-tracker/constants"
)

func TestTaxonomy_Sentinels(t *testing.T) {
	cause := errors.New("unexpected EOF")
	item := &ItemProcessingError{ItemID: uuid.New(), Stage: constants.StageNormalization, Cause: &ProviderError{Provider: "openai", Cause: cause}}

	assert.ErrorIs(t, item, ErrItemProcessing)
	assert.ErrorIs(t, item, ErrProvider, "the provider failure stays reachable")
	assert.ErrorIs(t, item, cause)

	var perr *ProviderError
	assert.ErrorAs(t, fmt.Errorf("normalize: %w", item), &perr)
	assert.Equal(t, "openai", perr.Provider)

	assert.ErrorIs(t, NewExtractionError("empty upload", nil), ErrExtraction)
	assert.ErrorIs(t, &ConfigurationError{Message: "no providers"}, ErrConfiguration)
	assert.ErrorIs(t, &ValidationError{}, ErrValidation)
}

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{nil, codes.OK},
		{fmt.Errorf("document: %w", ErrNotFound), codes.NotFound},
		{&ValidationError{Fields: []FieldError{{Field: "identifier", Message: "required"}}}, codes.InvalidArgument},
		{NewExtractionError("text too short", nil), codes.FailedPrecondition},
		{&ConfigurationError{Message: "no providers"}, codes.Unimplemented},
		{&ProviderError{Provider: "openrouter", Cause: context.DeadlineExceeded}, codes.Unavailable},
		{status.Error(codes.AlreadyExists, "dup"), codes.AlreadyExists},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Code(tt.err), "%v", tt.err)
	}
	assert.Equal(t, codes.NotFound, status.Code(GRPCStatus(ErrNotFound)))
	assert.Nil(t, GRPCStatus(nil))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{{Field: "identifier", Value: "", Message: "is required"}}}
	assert.Contains(t, err.Error(), "identifier")
	assert.Equal(t, ErrValidation.Error(), (&ValidationError{}).Error())
}
