package services

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/agentiqhub/backend/internal/models"
)

type documentService struct{}

// NewDocumentService creates the document text extraction service
func NewDocumentService() *documentService {
	return &documentService{}
}

// Parse extracts text from an uploaded file by extension. PDF is parsed
// page by page; plain-text formats are taken as-is. Word documents are not
// supported and get a pointed error telling the admin what is.
func (s *documentService) Parse(fileName string, data []byte) (*models.ParsedDocument, error) {
	ext := strings.ToLower(filepath.Ext(fileName))

	var text string
	switch ext {
	case ".pdf":
		extracted, err := extractPDFText(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}
		text = extracted
	case ".txt", ".md", ".csv", ".rtf":
		text = string(data)
	case ".doc", ".docx":
		return nil, fmt.Errorf("Word documents are not supported, export to PDF or plain text first")
	default:
		return nil, fmt.Errorf("unsupported file type: %s. Supported: PDF, TXT, MD, CSV, RTF", strings.TrimPrefix(ext, "."))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("could not extract any text from this file, it may be image-based or empty")
	}

	return &models.ParsedDocument{
		Text:      text,
		FileName:  fileName,
		CharCount: len(text),
	}, nil
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// a single broken page should not sink the whole document
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
