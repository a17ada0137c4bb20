package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/ak-ledger/pkg/jwt"
)

var tokenCmd = &cobra.Command{
	Use:   "token <operador>",
	Short: "Emite un token JWT de operador firmado con JWT_SECRET",
	Example: `  ledgerctl token caja1
  ledgerctl token dueño --role admin --minutes 480`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		minutes, _ := cmd.Flags().GetInt("minutes")
		if role != jwt.RoleOperator && role != jwt.RoleAdmin {
			return fmt.Errorf("rol inválido %q: usar %s o %s", role, jwt.RoleOperator, jwt.RoleAdmin)
		}
		if minutes <= 0 {
			minutes = appCfg.JWT.Expiration
		}
		token, err := jwt.Generate(appCfg.JWT.Secret, args[0], role, appCfg.JWT.Issuer, minutes)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("role", jwt.RoleOperator, "rol del operador (operator|admin)")
	tokenCmd.Flags().Int("minutes", 0, "vigencia en minutos (0 = JWT_EXPIRATION_MINUTES)")
}
