package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validInput() ProcessFileInput {
	return ProcessFileInput{
		Model:          "llama3",
		ProcessingType: ProcessingTypeParse,
		Backend:        BackendOllamaLocal,
		FileBytes:      []byte("%PDF-1.4"),
		Filename:       "invoice.pdf",
	}
}

func TestProcessFileInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ProcessFileInput)
		wantErr error
	}{
		{name: "valid parse", mutate: func(in *ProcessFileInput) {}, wantErr: nil},
		{
			name: "valid prompt",
			mutate: func(in *ProcessFileInput) {
				in.ProcessingType = ProcessingTypePrompt
				in.Prompt = "what is the total?"
			},
		},
		{
			name:    "missing model",
			mutate:  func(in *ProcessFileInput) { in.Model = "  " },
			wantErr: ErrMissingModel,
		},
		{
			name:    "unknown processing type",
			mutate:  func(in *ProcessFileInput) { in.ProcessingType = "summarize" },
			wantErr: ErrInvalidProcessingType,
		},
		{
			name: "prompt type without prompt",
			mutate: func(in *ProcessFileInput) {
				in.ProcessingType = ProcessingTypePrompt
				in.Prompt = ""
			},
			wantErr: ErrPromptRequired,
		},
		{
			name:    "unknown backend",
			mutate:  func(in *ProcessFileInput) { in.Backend = "azure_cloud" },
			wantErr: ErrUnsupportedBackend,
		},
		{
			name:    "empty file",
			mutate:  func(in *ProcessFileInput) { in.FileBytes = nil },
			wantErr: ErrMissingFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestEnums_Valid(t *testing.T) {
	assert.True(t, ProcessingTypeParse.Valid())
	assert.True(t, ProcessingTypePrompt.Valid())
	assert.False(t, ProcessingType("classify").Valid())

	assert.True(t, BackendOllamaLocal.Valid())
	assert.True(t, BackendGroqCloud.Valid())
	assert.False(t, CompletionBackend("bedrock").Valid())
}
