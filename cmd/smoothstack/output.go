package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func yamlMarshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func yamlUnmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// printResult renders v as JSON when --json was passed, otherwise calls
// text to print a human-readable rendering.
func printResult(cmd *cobra.Command, a *app, v any, text func()) error {
	if a.jsonOutput {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	text()
	return nil
}

// printMessages prints one accumulated message per line (spec.md §7's
// user-visible behavior for orchestrated operations) and returns a
// non-nil error when overallSuccess is false, so Execute() exits non-zero.
func printMessages(cmd *cobra.Command, overallSuccess bool, messages []string) error {
	for _, m := range messages {
		fmt.Fprintln(cmd.OutOrStdout(), m)
	}
	if !overallSuccess {
		return fmt.Errorf("operation completed with errors")
	}
	return nil
}
