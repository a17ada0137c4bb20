package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/ak-ledger/internal/domain"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <customer-id>",
	Short: "Audita la cadena de saldos sin modificarla",
	Long: `Comprueba que el saldo almacenado de cada asiento sea el saldo anterior más
(INVOICE) o menos (PAYMENT) su monto. Termina con error en el primer asiento roto.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeFn, err := openEngine(cmd.Context(), "verify")
		if err != nil {
			return err
		}
		defer closeFn()

		err = engine.Verify(cmd.Context(), args[0])
		var ce *domain.ConsistencyError
		if errors.As(err, &ce) {
			p := amountPrinter()
			return fmt.Errorf("asiento %s: esperado %s, almacenado %s (ejecutar recalculate)",
				ce.EntryID, formatAmount(p, ce.Expected), formatAmount(p, ce.Stored))
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cliente %s: saldos consistentes\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
