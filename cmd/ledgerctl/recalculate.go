package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var recalculateCmd = &cobra.Command{
	Use:   "recalculate <customer-id>",
	Short: "Reescribe todos los saldos del cliente",
	Long: `Recorre los asientos del cliente en orden cronológico y reescribe el saldo
acumulado de cada uno. Es idempotente: una segunda ejecución no cambia nada.`,
	Example: `  ledgerctl recalculate 7f1c2a4e-5b0d-4c1e-9a7e-2d5f3b8c9e10`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeFn, err := openEngine(cmd.Context(), "recalculate")
		if err != nil {
			return err
		}
		defer closeFn()

		res, err := engine.Recalculate(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		p := amountPrinter()
		fmt.Fprintf(cmd.OutOrStdout(), "cliente %s: %d asientos, %d saldos corregidos, saldo %s\n",
			res.CustomerID, res.Entries, res.Updated, formatAmount(p, res.Balance))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recalculateCmd)
}
