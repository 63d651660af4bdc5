// Package output persists the model's reply.
package output

import (
	"fmt"
	"os"
)

// Write stores text verbatim at path, replacing any existing file.
func Write(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
