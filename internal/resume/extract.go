package resume

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// ExtractText reads a resume file and returns its plain text. Office and PDF
// formats go through docconv; plain text is read as is.
func ExtractText(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt":
		res, err := docconv.ConvertPath(path)
		if err != nil {
			return "", fmt.Errorf("convert %s: %w", filepath.Base(path), err)
		}
		return res.Body, nil
	case ".txt", ".md", "":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		return string(content), nil
	default:
		return "", fmt.Errorf("unsupported resume file type %q", ext)
	}
}
