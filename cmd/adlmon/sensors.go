//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/obinnaokechukwu/adlgo"
)

func sensorsCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "sensors [index]",
		Short: "Show PMLog sensors of active adapters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.openContext()
			if err != nil {
				return err
			}
			defer ctx.Destroy()

			var indices []int
			if len(args) == 1 {
				idx, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid adapter index %q", args[0])
				}
				indices = []int{idx}
			} else {
				adapters, err := ctx.ActiveAdapters(a.cfg.VendorID)
				if err != nil {
					return err
				}
				for _, ad := range adapters {
					indices = append(indices, ad.Index)
				}
			}
			for _, idx := range indices {
				if err := printSensors(cmd.OutOrStdout(), ctx, idx, all, a.cfg.HotspotLimit); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "show every supported sensor, not just fan and hotspot")
	return cmd
}

// tempColor picks a color for a temperature against limit.
// A zero limit uses 90°C.
func tempColor(c, limit int) *color.Color {
	if limit <= 0 {
		limit = 90
	}
	switch {
	case c >= limit:
		return color.New(color.FgRed, color.Bold)
	case c >= limit-10:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func printSensors(w io.Writer, ctx *adlgo.Context, index int, all bool, hotspotLimit int) error {
	set, err := ctx.PMLogData(index)
	if err != nil {
		return err
	}
	temps := adlgo.TempsFrom(set)

	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(w, "Adapter %d\n", index)

	switch {
	case temps.FanStalled():
		color.New(color.FgRed, color.Bold).Fprintf(w, "  fan:     STALLED (%d RPM reading)\n", temps.FanRPM)
	case temps.HasFanRPM:
		fmt.Fprintf(w, "  fan:     %d RPM", temps.FanRPM)
		if temps.HasFanPercent {
			fmt.Fprintf(w, " (%d%%)", temps.FanPercent)
		}
		fmt.Fprintln(w)
	default:
		color.New(color.FgHiBlack).Fprintln(w, "  fan:     not reported")
	}
	if temps.HasHotspot {
		fmt.Fprint(w, "  hotspot: ")
		tempColor(temps.Hotspot, hotspotLimit).Fprintf(w, "%d°C\n", temps.Hotspot)
	}

	if !all {
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"SENSOR", "VALUE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, t := range set.Types() {
		table.Append([]string{t.String(), strconv.Itoa(set[t])})
	}
	table.Render()
	return nil
}
