package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"titanic/ml"
)

func encodeCmd() *cobra.Command {
	var (
		form   passengerFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the feature vector for one passenger",
		Long:  `Validate and encode a passenger without loading a model.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			raw, err := form.passenger(cmd)
			if err != nil {
				return err
			}

			_, vector, err := ml.NewPreprocessor(cfg.Validation.Strict).Prepare(raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(vector)
			}
			for _, column := range vector.Columns() {
				fmt.Fprintf(out, "%-12s %d\n", column.Name, column.Value)
			}
			return nil
		},
	}
	form.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
