package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [query]",
	Short: "Run a one-shot hidden-gem discovery and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if len(query) < minQueryLen || len(query) > maxQueryLen {
			return eris.Errorf("query must be between %d and %d characters", minQueryLen, maxQueryLen)
		}

		p, err := initPipeline(cfg)
		if err != nil {
			return err
		}

		result, err := p.Run(cmd.Context(), query)
		if err != nil {
			return eris.Wrap(err, "discover")
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return eris.Wrap(err, "discover: marshal result")
		}
		fmt.Println(string(out))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
