package cli

import (
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/memory"
	"timed-quiz-service/internal/infra/postgres"
	"timed-quiz-service/internal/logger"
)

// NewSeedCmd loads quiz files from a directory into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var draft bool
	cmd := &cobra.Command{
		Use:   "seed <dir>",
		Short: "Import YAML/JSON quiz files into Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			log := logger.New("quiz-service", cfg.Log.Level)

			files, err := memory.LoadQuizDir(args[0])
			if err != nil {
				return err
			}
			pool, err := pgxpool.Connect(cmd.Context(), cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := postgres.NewQuizLoader(pool)
			for _, id := range files.IDs() {
				quiz, _ := files.LoadQuiz(cmd.Context(), id)
				if err := domain.ValidateQuiz(quiz); err != nil {
					return fmt.Errorf("quiz %s: %w", id, err)
				}
				quiz.Published = !draft
				if err := store.SaveQuiz(cmd.Context(), quiz); err != nil {
					return err
				}
				log.Entry().WithField("quiz_id", id).Info("quiz imported")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&draft, "draft", false, "import quizzes unpublished")
	return cmd
}
