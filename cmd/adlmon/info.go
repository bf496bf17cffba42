//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/obinnaokechukwu/adlgo"
)

func infoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show driver versions and supported capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.openContext()
			if err != nil {
				return err
			}
			defer ctx.Destroy()
			return printInfo(cmd.OutOrStdout(), ctx)
		},
	}
}

func printInfo(w io.Writer, ctx *adlgo.Context) error {
	fmt.Fprintf(w, "session:   %s\n", ctx.ID())
	fmt.Fprintf(w, "created:   %s\n", ctx.CreateEntry())
	if v, err := ctx.DriverVersions(); err == nil {
		fmt.Fprintf(w, "driver:    %s\n", v.DriverVersion)
		if v.CrimsonVersion != "" {
			fmt.Fprintf(w, "software:  %s\n", v.CrimsonVersion)
		} else {
			fmt.Fprintf(w, "catalyst:  %s\n", v.CatalystVersion)
		}
	} else if !adlgo.IsUnsupported(err) {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"CAPABILITY", "STATE", "ENTRY POINT"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, c := range adlgo.Capabilities {
		res, err := ctx.Resolve(c)
		if err != nil {
			return err
		}
		table.Append([]string{c.Name, res.State.String(), res.Entry})
	}
	table.Render()
	return nil
}
