package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/ak-ledger/internal/application/ledger"
	"github.com/jhoicas/ak-ledger/internal/infrastructure/storage"
	"github.com/jhoicas/ak-ledger/pkg/config"
	"github.com/jhoicas/ak-ledger/pkg/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Administración del libro de clientes",
	Long: `ledgerctl opera sobre la misma base que la API (lee DATABASE_URL, DB_* y demás
variables de entorno o .env).

Permite recalcular y auditar los saldos de un cliente, listar su historial y
emitir tokens JWT para operadores del mostrador.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("cargar configuración: %w", err)
		}
		level := cfg.Log.Level
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = "debug"
		}
		appCfg = cfg
		appLog = logger.New(logger.Config{Env: "development", Level: level, Out: os.Stderr})
		return nil
	},
}

var (
	appCfg *config.Config
	appLog *logger.Logger
)

// Execute ejecuta el comando raíz.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if appLog != nil {
			cmdLog := appLog.WithComponent("cmd")
			cmdLog.Error().Err(err).Msg("comando fallido")
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log en nivel debug")
}

// openEngine abre el almacenamiento y construye el motor. close libera el pool.
func openEngine(ctx context.Context, component string) (*ledger.Engine, func(), error) {
	log := appLog.WithComponent(component)
	store, err := storage.Open(ctx, appCfg.DB, log)
	if err != nil {
		return nil, nil, err
	}
	return ledger.NewEngine(store.Tx, store.Ledger, log), store.Close, nil
}
