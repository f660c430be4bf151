package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"titanic/db"
	"titanic/report"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent predictions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.Database.Enabled {
				return fmt.Errorf("prediction history is disabled in %s", cfgFile)
			}
			store, err := db.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer store.Close()

			records, err := store.RecentPredictions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			summary, err := store.Summary(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-20s %-32s %-8s %s", "TIME", "NAME", "RESULT", "P(SURVIVED)")))
			for _, r := range records {
				result := "died"
				if r.Prediction.Survived() {
					result = "survived"
				}
				fmt.Fprintf(out, "%-20s %-32.32s %-8s %s %5.1f%%\n",
					r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					r.Input.FullName,
					result,
					report.Bar(r.Prediction.SurvivalProbability(), 10),
					r.Prediction.SurvivalProbability()*100)
			}
			fmt.Fprintf(out, "\n%d predictions, %d survived, mean survival probability %.1f%%\n",
				summary.Total, summary.Survived, summary.AvgSurvival*100)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of records to show")
	return cmd
}
