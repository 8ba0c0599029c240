// Package main: qadmin, утилита обслуживания базы вопросов.
//
//	qadmin stats
//	qadmin list --status pending --limit 20
//	qadmin delete <id>
//	qadmin clear --days 60
//	qadmin export questions_export.txt
//	qadmin backup
//	qadmin backups
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"marilove.ru/question-bot/internal/config"
	"marilove.ru/question-bot/internal/db/postgres"
	"marilove.ru/question-bot/internal/features/questions"
	"marilove.ru/question-bot/internal/maintenance"
)

var (
	cfg   *config.Config
	pool  *pgxpool.Pool
	tools *maintenance.Tools

	rootCtx    context.Context
	rootCancel context.CancelFunc

	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:           "qadmin",
	Short:         "Обслуживание базы анонимных вопросов",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if verboseFlag {
			log.SetLevel(log.DebugLevel)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		// список копий не требует базы
		if cmd.Annotations[annotationNoDB] == "true" {
			return nil
		}

		pool, err = postgres.NewPool(rootCtx, cfg)
		if err != nil {
			return err
		}
		if err := postgres.Migrate(rootCtx, pool); err != nil {
			return err
		}
		tools = maintenance.New(questions.NewRepository(pool))
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if pool != nil {
			pool.Close()
		}
	},
}

// annotationNoDB помечает команды, которым не нужно подключение к базе.
const annotationNoDB = "no-db"

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Подробный лог")
}

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)

	rootCtx, rootCancel = signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := rootCmd.Execute()
	rootCancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
