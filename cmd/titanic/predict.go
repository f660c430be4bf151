package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"titanic/ml"
	"titanic/predict"
	"titanic/report"
)

func predictCmd() *cobra.Command {
	var (
		form     passengerFlags
		asJSON   bool
		language string
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict survival for one passenger",
		Example: `  titanic predict --pclass 1 --name "Cumings, Mrs. John Bradley" --sex female \
    --age 38 --sibsp 1 --parch 0 --fare 71.28 --embarked C`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, closeLogger, err := newLogger(cfg)
			if err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			defer closeLogger()

			raw, err := form.passenger(cmd)
			if err != nil {
				return err
			}

			registry, err := ml.NewRegistry(cfg.Model.Type, cfg.Model.Path, logger)
			if err != nil {
				return fmt.Errorf("model %s could not be loaded: %w", cfg.Model.Path, err)
			}
			service, err := predict.NewService(registry, predict.Options{
				Strict: cfg.Validation.Strict,
				Logger: logger,
			})
			if err != nil {
				return err
			}

			result, err := service.Predict(cmd.Context(), raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(result)
			}
			if cmd.Flags().Changed("lang") {
				cfg.Report.Language = language
			}
			return report.Render(out, report.Details{
				Prediction:   result.Prediction,
				ModelType:    cfg.Model.Type,
				ModelVersion: result.ModelVersion,
			}, report.Language(cfg.Report.Language))
		},
	}
	form.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().StringVar(&language, "lang", "", "report language (id, en)")
	return cmd
}
