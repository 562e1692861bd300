package cli

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
)

// printJSON writes v as indented JSON followed by a newline
func printJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printBool(w io.Writer, v bool) error {
	_, err := fmt.Fprintln(w, v)
	return err
}
