// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/weighted-voting/db"
	"github.com/danielhkuo/weighted-voting/governance"
)

func runTally(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	snap, err := db.NewStore(dbConn).Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	if snap.Admin != cfg.AdminAddress {
		return fmt.Errorf("%w: stored %s, configured %s", db.ErrAdminMismatch, snap.Admin.Hex(), cfg.AdminAddress.Hex())
	}

	renderTally(cmd.OutOrStdout(), snap)
	return nil
}

// renderTally prints the session summary followed by one row per proposal
func renderTally(w io.Writer, snap *governance.Snapshot) {
	var whitelisted, weight, voted int64
	for _, v := range snap.Voters {
		if v.Whitelisted {
			whitelisted++
			weight += v.Weight
		}
		if v.HasVoted {
			voted++
		}
	}

	fmt.Fprintf(w, "Admin:   %s\n", snap.Admin.Hex())
	fmt.Fprintf(w, "Phase:   %s\n", snap.Phase)
	fmt.Fprintf(w, "Voters:  %s whitelisted, %s voted, total weight %s\n\n",
		humanize.Comma(whitelisted), humanize.Comma(voted), humanize.Comma(weight))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"ID", "Description", "For", "Against", "Total", "For %", "Against %"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})

	for _, p := range snap.Proposals {
		forPct, againstPct := p.Shares()
		t.AppendRow(table.Row{
			p.ID,
			p.Description,
			humanize.Comma(p.ForVotes),
			humanize.Comma(p.AgainstVotes),
			humanize.Comma(p.TotalVotingPowerCast),
			fmt.Sprintf("%.1f%%", forPct),
			fmt.Sprintf("%.1f%%", againstPct),
		})
	}
	if len(snap.Proposals) == 0 {
		t.AppendFooter(table.Row{"", "no proposals"})
	}
	t.Render()
}
