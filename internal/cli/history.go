package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newHistoryCmd(rt *runtime) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			h := rt.openHistory(cmd.Context())
			if h == nil {
				return fmt.Errorf("export history is disabled")
			}
			jobs, err := h.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No exports yet. Run 'neoncv export <format> --in <file>'")
				return nil
			}
			fmt.Fprintln(out, titleStyle.Render("Recent exports"))
			t := table.New().Headers("WHEN", "FORMAT", "FILE", "BYTES", "STATUS")
			for _, j := range jobs {
				status := j.Status
				if j.Error != "" {
					status += ": " + j.Error
				}
				t.Row(j.CreatedAt.Local().Format("2006-01-02 15:04"), string(j.Format), j.Filename, strconv.Itoa(j.SizeBytes), status)
			}
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of rows")
	return cmd
}
