package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"marilove.ru/question-bot/internal/features/questions"
	"marilove.ru/question-bot/internal/maintenance"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Количество вопросов по статусам",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return tools.WriteStats(rootCtx, cmd.OutOrStdout())
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Последние вопросы (новые первыми)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		return tools.WriteList(rootCtx, cmd.OutOrStdout(), questions.Status(status), limit)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Удалить вопрос по ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		confirm := func() bool {
			return yes || ask(cmd.InOrStdin(), cmd.OutOrStdout(), "⚠️  Удалить этот вопрос? (yes/no): ")
		}
		_, err := tools.DeleteQuestion(rootCtx, cmd.OutOrStdout(), args[0], confirm)
		return err
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Удалить старые отклонённые вопросы",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		days, _ := cmd.Flags().GetInt("days")
		yes, _ := cmd.Flags().GetBool("yes")
		confirm := func(int) bool {
			return yes || ask(cmd.InOrStdin(), cmd.OutOrStdout(), "Удалить их? (yes/no): ")
		}
		_, err := tools.ClearRejected(rootCtx, cmd.OutOrStdout(), days, confirm)
		return err
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Экспорт всех вопросов в текстовый файл",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := "questions_export.txt"
		if len(args) == 1 {
			filename = args[0]
		}

		f, err := os.Create(filename)
		if err != nil {
			return err
		}
		n, err := tools.Export(rootCtx, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ Экспорт завершён: %s\n   Экспортировано вопросов: %d\n", filename, n)
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Создать резервную копию в BACKUP_DIR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, n, err := tools.CreateBackup(rootCtx, cfg.BackupDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Резервная копия создана: %s (%d)\n", path, n)
		return nil
	},
}

var backupsCmd = &cobra.Command{
	Use:         "backups",
	Short:       "Список резервных копий",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoDB: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		files, err := maintenance.ListBackups(cfg.BackupDir)
		if err != nil {
			return err
		}
		writeBackups(cmd.OutOrStdout(), files)

		if verify, _ := cmd.Flags().GetBool("verify"); verify && len(files) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Проверка копий:")
			if bad := maintenance.VerifyBackups(cmd.OutOrStdout(), cfg.BackupDir, files); bad > 0 {
				return fmt.Errorf("повреждённых копий: %d", bad)
			}
		}
		return nil
	},
}

func init() {
	listCmd.Flags().String("status", "", "Статус: pending, approved, rejected")
	listCmd.Flags().Int("limit", maintenance.DefaultListLimit, "Сколько вопросов показать")
	deleteCmd.Flags().BoolP("yes", "y", false, "Не спрашивать подтверждение")
	clearCmd.Flags().Int("days", 30, "Удалять отклонённые старше стольких дней")
	clearCmd.Flags().BoolP("yes", "y", false, "Не спрашивать подтверждение")
	backupsCmd.Flags().Bool("verify", false, "Прочитать каждую копию и проверить её целостность")

	rootCmd.AddCommand(statsCmd, listCmd, deleteCmd, clearCmd, exportCmd, backupCmd, backupsCmd)
}

func writeBackups(w io.Writer, files []maintenance.BackupFile) {
	if len(files) == 0 {
		fmt.Fprintln(w, "Резервные копии не найдены")
		return
	}
	fmt.Fprintf(w, "Найдено резервных копий: %d\n\n", len(files))
	for _, f := range files {
		fmt.Fprintf(w, "  %s\n    Размер: %d байт\n    Дата: %s\n\n",
			f.Name, f.Size, f.ModTime.Format("2006-01-02 15:04:05"))
	}
}

// ask печатает вопрос и читает ответ. Да: yes, y или да.
func ask(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return isYes(line)
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y", "да":
		return true
	}
	return false
}
