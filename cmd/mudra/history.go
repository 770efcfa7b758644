package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(opts.cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.Sessions().List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if len(records) == 0 {
				fmt.Println("No sessions recorded yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ENDED\tMODE\tSCORE\tCOMBOS\tFAILED\tSTREAK\tACCURACY\tDURATION")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%.0f%%\t%s\n",
					r.EndedAt.Local().Format(time.DateTime), r.Mode, r.Score,
					r.CombosCompleted, r.CombosFailed, r.MaxStreak, r.Accuracy,
					r.EndedAt.Sub(r.StartedAt).Round(time.Second))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of sessions to show (0 for all)")
	return cmd
}
