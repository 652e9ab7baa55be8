package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/taureco/pkg/taureco"
	"github.com/randalmurphal/taureco/pkg/taureco/store"
)

var showEvent string

var showCmd = &cobra.Command{
	Use:   "show <store> [run-id]",
	Short: "Inspect stored products",
	Long: `List runs in a products database, the events of one run, or the
products of a single event.

Examples:
  taureco show runs.db
  taureco show runs.db 6f1c...
  taureco show runs.db 6f1c... --event event-3`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showEvent, "event", "e", "", "Print the products of one event")
}

func runShow(cmd *cobra.Command, args []string) error {
	st, err := store.NewSQLiteStore(args[0])
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		runs, err := st.Runs()
		if err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(out).Encode(runs)
		}
		for _, r := range runs {
			fmt.Fprintln(out, r)
		}
		return nil
	}

	run := args[1]
	if showEvent != "" {
		products, err := taureco.LoadProducts(st, run, showEvent)
		if err != nil {
			return fmt.Errorf("event %s: %w", showEvent, err)
		}
		return encodeJSON(out, products)
	}

	infos, err := st.List(run)
	if err != nil {
		return err
	}
	if jsonOutput {
		return json.NewEncoder(out).Encode(infos)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tEVENT\tSIZE\tSTORED")
	for _, info := range infos {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", info.Number, info.EventID, info.Size, info.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
