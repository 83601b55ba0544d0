package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/maxmuv/dos/datarecording"
	"github.com/maxmuv/dos/tracing"
)

var traceCmd = &cobra.Command{
	Use:   "trace <file>",
	Short: "Print a recorded message trace.",
	Long: "`trace <file>` lists the message events recorded by `run --record`, " +
		"in simulated time order.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()

		var params datarecording.QueryParams
		params.Limit, _ = f.GetInt("limit")
		params.Offset, _ = f.GetInt("offset")

		if event, _ := f.GetString("event"); event != "" {
			params.Where = "Event = ?"
			params.Args = []any{event}
		}

		return printTrace(cmd.Context(), cmd.OutOrStdout(), args[0], params)
	},
}

func init() {
	rootCmd.AddCommand(traceCmd)

	traceCmd.Flags().Int("limit", 0, "Print at most this many events, 0 prints all")
	traceCmd.Flags().Int("offset", 0, "Skip this many events")
	traceCmd.Flags().String("event", "", "Only print events of this kind, such as send or drop")
}

func printTrace(
	ctx context.Context,
	out io.Writer,
	path string,
	params datarecording.QueryParams,
) error {
	reader, err := datarecording.NewReader(path)
	if err != nil {
		return fmt.Errorf("opening trace: %w", err)
	}
	defer reader.Close()

	reader.MapTable(tracing.MsgTableName, tracing.MsgTraceEntry{})

	params.OrderBy = "Time, SendTime"

	entries, total, err := reader.Query(ctx, tracing.MsgTableName, params)
	if err != nil {
		return fmt.Errorf("reading trace: %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEVENT\tLOCATION\tSRC\tDST\tDELIVERY\tTEXT\tDETAIL")

	for _, e := range entries {
		m := e.(*tracing.MsgTraceEntry)
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			m.Time, m.Event, m.Location, m.Src, m.Dst,
			m.DeliveryTime, m.Text, m.Detail)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%d of %d events\n", len(entries), total)

	return err
}
