package config

import "fmt"

// ValidationError describes an invalid setting.
type ValidationError struct {
	// Path is the setting path, e.g. "editor.tab_width".
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Path, e.Message)
}
