//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/obinnaokechukwu/adlgo"
)

func listCmd(a *app) *cobra.Command {
	var activeOnly bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List adapters",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.openContext()
			if err != nil {
				return err
			}
			defer ctx.Destroy()
			return listAdapters(cmd.OutOrStdout(), ctx, activeOnly, a.cfg.VendorID)
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only active adapters of the configured vendor")
	return cmd
}

func listAdapters(w io.Writer, ctx *adlgo.Context, activeOnly bool, vendorID int) error {
	var (
		adapters []adlgo.Adapter
		err      error
	)
	if activeOnly {
		adapters, err = ctx.ActiveAdapters(vendorID)
	} else {
		adapters, err = ctx.Adapters()
	}
	if err != nil {
		return err
	}

	var data [][]string
	for _, ad := range adapters {
		active := "-"
		if ok, err := ctx.AdapterActive(ad.Index); err == nil && ok {
			active = "yes"
		} else if err == nil {
			active = "no"
		}
		vram := "-"
		if mem, err := ctx.MemoryInfo(ad.Index); err == nil && mem.Size > 0 {
			vram = humanize.IBytes(uint64(mem.Size)) + " " + mem.Type
		}
		od := "-"
		if caps, err := ctx.OverdriveCaps(ad.Index); err == nil && caps.Supported {
			od = "v" + strconv.Itoa(caps.Version)
			if !caps.Enabled {
				od += " (off)"
			}
		}
		data = append(data, []string{
			strconv.Itoa(ad.Index),
			ad.Name,
			fmt.Sprintf("%02x:%02x.%x", ad.BusNumber, ad.DeviceNumber, ad.FunctionNumber),
			strconv.Itoa(ad.VendorID),
			active,
			vram,
			od,
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"INDEX", "NAME", "BUS", "VENDOR", "ACTIVE", "VRAM", "OVERDRIVE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
	return nil
}
