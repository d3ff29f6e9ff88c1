package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_Parse(t *testing.T) {
	svc := NewDocumentService()

	tests := []struct {
		name     string
		fileName string
		data     []byte
		wantText string
		wantErr  string
	}{
		{
			name:     "plain text",
			fileName: "outline.txt",
			data:     []byte("  Module 1: Agents\nModule 2: Tools  \n"),
			wantText: "Module 1: Agents\nModule 2: Tools",
		},
		{
			name:     "markdown",
			fileName: "Notes.MD",
			data:     []byte("# Course Notes"),
			wantText: "# Course Notes",
		},
		{
			name:     "word document",
			fileName: "syllabus.docx",
			data:     []byte("irrelevant"),
			wantErr:  "Word documents are not supported",
		},
		{
			name:     "unsupported extension",
			fileName: "slides.pptx",
			data:     []byte("irrelevant"),
			wantErr:  "unsupported file type: pptx",
		},
		{
			name:     "empty text",
			fileName: "blank.txt",
			data:     []byte("   \n\t "),
			wantErr:  "could not extract any text",
		},
		{
			name:     "broken pdf",
			fileName: "scan.pdf",
			data:     []byte("not a pdf at all"),
			wantErr:  "failed to parse document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := svc.Parse(tt.fileName, tt.data)

			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, doc.Text)
			assert.Equal(t, tt.fileName, doc.FileName)
			assert.Equal(t, len(tt.wantText), doc.CharCount)
		})
	}
}
