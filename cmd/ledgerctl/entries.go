package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/ak-ledger/internal/domain/entity"
)

var entriesCmd = &cobra.Command{
	Use:   "entries <customer-id>",
	Short: "Lista el historial del cliente con su saldo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeFn, err := openEngine(cmd.Context(), "entries")
		if err != nil {
			return err
		}
		defer closeFn()

		st, err := engine.EntriesFor(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		writeEntries(cmd.OutOrStdout(), amountPrinter(), st.Entries, st.Balance)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(entriesCmd)
}

func writeEntries(out io.Writer, p *message.Printer, entries []*entity.LedgerEntry, balance decimal.Decimal) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "FECHA\tTIPO\tMONTO\tSALDO\tFACTURA\t")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.EntryType,
			formatAmount(p, e.Amount), formatAmount(p, e.Balance), e.InvoiceID)
	}
	fmt.Fprintf(tw, "\t\t\t%s\t\t\n", formatAmount(p, balance))
	_ = tw.Flush()
}

// amountPrinter separadores de miles en la convención local (es).
func amountPrinter() *message.Printer {
	return message.NewPrinter(language.Spanish)
}

// formatAmount redondea a 2 decimales solo para mostrar; el valor almacenado no cambia.
func formatAmount(p *message.Printer, d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return p.Sprintf("%.2f", f)
}
