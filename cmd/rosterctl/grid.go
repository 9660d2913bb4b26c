package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arnavshah/roster-api-go/pkg/schedule"
)

var gridMonth, gridYear int

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Print the month grid of the selected area",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := schedule.NewMonth(gridMonth, gridYear)
		if err != nil {
			return err
		}
		e, err := setup()
		if err != nil {
			return err
		}
		data, err := e.loadMonth(cmd, m)
		if err != nil {
			return err
		}
		renderGrid(cmd.OutOrStdout(), m, schedule.Grid(data.index, data.personnel, m))
		return nil
	},
}

func init() {
	monthFlags(gridCmd, &gridMonth, &gridYear)
	rootCmd.AddCommand(gridCmd)
}

const cellWidth = 3

// renderGrid prints one fixed-width column per day; a span prints its code
// once and fills the rest of its columns with dashes
func renderGrid(w io.Writer, m schedule.Month, rows []schedule.Row) {
	nameWidth := 8
	for _, r := range rows {
		if len(r.Person.Name) > nameWidth {
			nameWidth = len(r.Person.Name)
		}
	}

	fmt.Fprintf(w, "%-*s", nameWidth+1, m.String())
	for d := 1; d <= m.Days(); d++ {
		fmt.Fprintf(w, "%-*s", cellWidth, m.WeekdayLetter(d))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-*s", nameWidth+1, "")
	for d := 1; d <= m.Days(); d++ {
		fmt.Fprintf(w, "%-*d", cellWidth, d)
	}
	fmt.Fprintln(w)

	for _, r := range rows {
		fmt.Fprintf(w, "%-*s", nameWidth+1, r.Person.Name)
		for _, c := range r.Cells {
			width := c.Colspan * cellWidth
			if c.Empty() {
				fmt.Fprint(w, strings.Repeat(" ", width-2)+". ")
				continue
			}
			code := c.WorkTypeCode
			if len(code) > width-1 {
				code = code[:width-1]
			}
			fmt.Fprint(w, code+strings.Repeat("-", width-1-len(code))+" ")
		}
		fmt.Fprintln(w)
	}
}
