package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/storemap-cli/internal/export"
	"github.com/sells-group/storemap-cli/internal/store"
)

var (
	runsSource string
	runsLimit  int
	runsOffset int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect persisted cluster runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Source: runsSource,
			Limit:  runsLimit,
			Offset: runsOffset,
		})
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSOURCE\tEPS\tMINPTS\tSTORES\tCLUSTERS\tNOISE\tCREATED")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%.0f\t%d\t%d\t%d\t%d\t%s\n",
				r.ID, r.Source, r.EpsMeters, r.MinPoints,
				r.StoreCount, r.ClusterCount(), r.NoiseCount(),
				r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return tw.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print one run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a persisted run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteRun(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("deleted", args[0])
		return nil
	},
}

var runsExportOutput string

var runsExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a persisted run as GeoJSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return err
		}

		w := os.Stdout
		if runsExportOutput != "" {
			f, err := os.Create(runsExportOutput)
			if err != nil {
				return eris.Wrapf(err, "runs: create output %s", runsExportOutput)
			}
			defer f.Close()
			w = f
		}
		return export.WriteGeoJSON(w, export.RunFeatureCollection(*run))
	},
}

func init() {
	runsListCmd.Flags().StringVar(&runsSource, "source", "", "filter by input source")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 0, "max runs to list")
	runsListCmd.Flags().IntVar(&runsOffset, "offset", 0, "pagination offset")
	runsExportCmd.Flags().StringVarP(&runsExportOutput, "output", "o", "", "output file (default: stdout)")

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsDeleteCmd, runsExportCmd)
	rootCmd.AddCommand(runsCmd)
}
