package validation

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/yigit/uniadmin/internal/pkg/apperrors"
)

// PDFLimits defines the validation limits for PDF uploads
type PDFLimits struct {
	MaxFileSize      int64
	DocumentTypeName string
}

// SyllabusLimits caps syllabus uploads at 5MB
var SyllabusLimits = PDFLimits{
	MaxFileSize:      5 << 20,
	DocumentTypeName: "syllabus",
}

// ValidatePDF checks the extension, size, header and structure of an
// uploaded PDF and returns its page count.
func ValidatePDF(filename string, content []byte, limits PDFLimits) (int, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return 0, apperrors.NewValidationError("file", "only PDF files are allowed")
	}

	if int64(len(content)) > limits.MaxFileSize {
		return 0, apperrors.NewValidationError("file", fmt.Sprintf("%s file must not exceed %dMB", limits.DocumentTypeName, limits.MaxFileSize>>20))
	}

	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return 0, apperrors.NewValidationError("file", "invalid PDF file: missing PDF header")
	}

	pages, err := pageCount(content)
	if err != nil {
		return 0, apperrors.NewValidationError("file", "invalid PDF file: "+err.Error())
	}
	if pages == 0 {
		return 0, apperrors.NewValidationError("file", "PDF has no pages")
	}

	return pages, nil
}

// pageCount parses the document. The parser panics on some malformed
// input, which is reported as an error.
func pageCount(content []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("malformed document")
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse PDF: %w", err)
	}
	return reader.NumPage(), nil
}
