package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/combo"
)

func newCombosCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "combos",
		Short: "List the combo library",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := combo.Load(opts.cfg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSEQUENCE\tPOINTS\tEFFECT")
			for _, d := range registry.All() {
				seq := make([]string, len(d.Sequence))
				for i, s := range d.Sequence {
					seq[i] = string(s)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s (%s)\n",
					d.ID, d.Name, strings.Join(seq, " > "), d.PointValue, d.EffectTag, d.EffectDuration)
			}
			return w.Flush()
		},
	}
}
