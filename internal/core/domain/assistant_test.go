package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssistantSpec_ApplyDefaults(t *testing.T) {
	a := AssistantSpec{Name: "  Physics  ", FileName: "/tmp/upload/notes.pdf"}.ApplyDefaults(9)

	assert.Equal(t, "Physics", a.Name)
	assert.Equal(t, "notes.pdf", a.FileName)
	assert.Equal(t, int64(9), a.OwnerID)
	assert.Equal(t, DefaultTemperature, a.Temperature)
	assert.Equal(t, DefaultTopK, a.TopK)
	assert.Equal(t, DefaultChunkSize, a.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, a.ChunkOverlap)
}

func TestAssistantSpec_ApplyDefaults_ExplicitZeros(t *testing.T) {
	temp := 0.0
	overlap := 0
	a := AssistantSpec{Name: "x", FileName: "x.pdf", Temperature: &temp, ChunkOverlap: &overlap}.ApplyDefaults(1)

	assert.Equal(t, 0.0, a.Temperature)
	assert.Equal(t, 0, a.ChunkOverlap)
}

func TestAssistant_Validate(t *testing.T) {
	valid := func() Assistant {
		return AssistantSpec{Name: "Bio", FileName: "bio.PDF"}.ApplyDefaults(1)
	}

	tests := []struct {
		name    string
		mutate  func(a *Assistant)
		wantErr error
	}{
		{"valid", func(a *Assistant) {}, nil},
		{"missing name", func(a *Assistant) { a.Name = "" }, ErrInvalidInput},
		{"not a pdf", func(a *Assistant) { a.FileName = "bio.docx" }, ErrUnsupportedType},
		{"temperature too high", func(a *Assistant) { a.Temperature = 2.5 }, ErrInvalidInput},
		{"top_k zero", func(a *Assistant) { a.TopK = 0 }, ErrInvalidInput},
		{"overlap equals size", func(a *Assistant) { a.ChunkOverlap = a.ChunkSize }, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid()
			tt.mutate(&a)
			err := a.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestValidateChunking(t *testing.T) {
	assert.NoError(t, ValidateChunking(500, 50))
	assert.NoError(t, ValidateChunking(10, 0))
	assert.Error(t, ValidateChunking(0, 0))
	assert.Error(t, ValidateChunking(10, -1))
	assert.Error(t, ValidateChunking(10, 10))
	assert.Error(t, ValidateChunking(10, 20))
}

func TestCaller_CanManage(t *testing.T) {
	a := &Assistant{ID: 1, OwnerID: 5}

	assert.True(t, Caller{ID: 5, Role: RoleUser}.CanManage(a))
	assert.False(t, Caller{ID: 6, Role: RoleUser}.CanManage(a))
	assert.True(t, Caller{ID: 6, Role: RoleAdmin}.CanManage(a))
}

func TestAssistant_KnowledgeBaseID(t *testing.T) {
	a := &Assistant{ID: 12}
	assert.Equal(t, KnowledgeBaseID("12"), a.KnowledgeBaseID())
}
