package register

import "github.com/atotto/clipboard"

// SystemClipboard reads and writes the operating system clipboard.
type SystemClipboard struct{}

func (SystemClipboard) Read() (string, error) {
	return clipboard.ReadAll()
}

func (SystemClipboard) Write(text string) error {
	return clipboard.WriteAll(text)
}

// Available reports whether a clipboard utility exists on this system.
func Available() bool {
	return !clipboard.Unsupported
}
