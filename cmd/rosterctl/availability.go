package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/arnavshah/roster-api-go/pkg/schedule"
)

var availabilityDate string

var availabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "List who is available on a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDate(availabilityDate)
		if err != nil {
			return err
		}
		e, err := setup()
		if err != nil {
			return err
		}
		data, err := e.loadMonth(cmd, schedule.MonthOf(date))
		if err != nil {
			return err
		}
		got := schedule.Partition(date, data.personnel, data.index, data.catalog)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Available on %s (%d)\n", got.Date.Format("2006-01-02"), len(got.Available))
		for _, p := range got.Available {
			fmt.Fprintf(out, "  %s\n", p.Name)
		}
		fmt.Fprintf(out, "Unavailable (%d)\n", len(got.Unavailable))
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, u := range got.Unavailable {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", u.Person.Name, u.WorkTypeCode, u.Label)
		}
		return tw.Flush()
	},
}

func init() {
	availabilityCmd.Flags().StringVarP(&availabilityDate, "date", "d", time.Now().Format("2006-01-02"), "date (YYYY-MM-DD)")
	rootCmd.AddCommand(availabilityCmd)
}
