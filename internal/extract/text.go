package extract

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

var crlf = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func readText(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	if !utf8.Valid(content) {
		return "", fmt.Errorf("read text file %s: invalid UTF-8", path)
	}
	text := strings.TrimSpace(crlf.Replace(string(content)))
	if text == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmptyContent)
	}
	return text, nil
}
