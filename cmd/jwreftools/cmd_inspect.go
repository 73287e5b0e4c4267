package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/hbushouse/jwreftools/beam"
	"github.com/hbushouse/jwreftools/conf"
	"github.com/hbushouse/jwreftools/nircam"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect CONF",
		Short: "Show the per-beam keys of an aXe conf file",
		Long: `Parse an aXe conf file and print the beam-qualified keys after range
folding, one row per key. Nothing is written.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd.OutOrStdout(), args[0])
		},
	}
}

func (a *app) runInspect(w io.Writer, conffile string) error {
	rec, err := conf.ReadFile(conffile, conf.WithLogger(a.logger))
	if err != nil {
		return a.fail(err)
	}
	beams, err := beam.Split(rec)
	if err != nil {
		return a.fail(fmt.Errorf("%s: %w", conffile, err))
	}

	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true)
	header := r.NewStyle().Bold(true).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)
	muted := r.NewStyle().Faint(true)

	fmt.Fprintln(w, title.Render(conffile))
	if inst, err := nircam.InferInstrument(conffile); err == nil {
		fmt.Fprintln(w, muted.Render(fmt.Sprintf("filter %s, pupil %s, module %s, p_exptype %s",
			inst.Filter, inst.Pupil, inst.Module, nircam.PExpType(inst))))
	}
	fmt.Fprintf(w, "%d keys read, %d beams\n", rec.Len(), beams.Len())

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers("BEAM", "ORDER", "KEY", "VALUE", "KIND")

	for _, name := range beams.Names() {
		order := "?"
		if n, err := beam.Order(name); err == nil {
			order = strconv.Itoa(n)
		}
		br, _ := beams.Get(name)
		for _, key := range br.Keys() {
			v, _ := br.Get(key)
			t.Row(name, order, key, v.String(), v.Kind().String())
		}
	}
	fmt.Fprintln(w, t.Render())
	return nil
}
