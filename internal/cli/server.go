package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/auth"
	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/event"
	"timed-quiz-service/internal/infra/memory"
	"timed-quiz-service/internal/infra/postgres"
	redisstore "timed-quiz-service/internal/infra/redis"
	"timed-quiz-service/internal/logger"
	"timed-quiz-service/internal/metrics"
	transport "timed-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
	cmd.Flags().StringVar(port, "port", "", "port to listen on (overrides config)")
	return cmd
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New("quiz-service", cfg.Log.Level)
	m := metrics.New("engine")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, cleanup, err := buildService(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	defer cleanup()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(transport.Container{
			Service: service,
			Auth:    auth.NewAuthenticator(cfg.Auth.JWTSecret, config.Duration(cfg.Auth.TokenTTL, 24*time.Hour)),
			Metrics: m,
			Log:     log,
		}),
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout: websocket sessions outlive any fixed write deadline
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Entry().WithField("port", finalPort).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Entry().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildService picks the storage, cache and event backends the config enables.
// Everything falls back to process memory so the service runs with an empty config.
func buildService(ctx context.Context, cfg config.Config, log *logger.Logger, m *metrics.Metrics) (*app.QuizService, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*app.QuizService, func(), error) {
		cleanup()
		return nil, func() {}, err
	}

	var loader memory.QuizLoader
	var attempts app.AttemptRepository = memory.NewAttemptRepository()
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return fail(err)
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, pool.Close)
		loader = postgres.NewQuizLoader(pool)

		db := postgres.OpenDB(cfg.Postgres.URL)
		closers = append(closers, func() { db.Close() })
		attempts = postgres.NewAttemptRepository(db)
	} else if cfg.Quiz.Dir != "" {
		files, err := memory.LoadQuizDir(cfg.Quiz.Dir)
		if err != nil {
			return fail(err)
		}
		loader = files
	} else {
		loader = memory.NewStaticQuizLoader(sampleQuizzes())
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	resultTTL := config.Duration(cfg.Session.ResultTTL, 24*time.Hour)

	var (
		quizRepo app.QuizRepository
		store    app.SessionRepository
		results  app.ResultRepository
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { client.Close() })
		quizRepo = redisstore.NewQuizRepository(client, loader, quizTTL)
		store = redisstore.NewSessionStore(client, config.Duration(cfg.Redis.TTL, 10*time.Minute))
		results = redisstore.NewResultStore(client, resultTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
		store = memory.NewSessionStore()
		results = memory.NewResultStore()
	}

	publisher, err := event.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, func() { publisher.Close() })

	service := app.NewQuizService(store, quizRepo,
		app.WithResults(results),
		app.WithAttempts(attempts),
		app.WithPublisher(publisher),
		app.WithRevealDelay(config.Duration(cfg.Session.RevealDelay, app.DefaultRevealDelay)),
		app.WithDefaultBudget(config.Duration(cfg.Session.DefaultBudget, app.DefaultBudget)),
		app.WithLogger(log),
		app.WithMetrics(m),
	)
	return service, cleanup, nil
}

// sampleQuizzes is served when neither Postgres nor a quiz directory is configured.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:               "quiz-1",
			Title:            "Warm-up",
			TimeLimitSeconds: 120,
			Published:        true,
			Questions: []domain.Question{
				{
					ID:           "q1",
					Prompt:       "What is 2 + 2?",
					Options:      []string{"3", "4", "5"},
					CorrectIndex: 1,
					Points:       1,
				},
				{
					ID:           "q2",
					Prompt:       "Which planet is closest to the sun?",
					Options:      []string{"Venus", "Earth", "Mercury", "Mars"},
					CorrectIndex: 2,
					Explanation:  "Mercury orbits at about 0.39 AU.",
					Points:       2,
				},
			},
		},
	}
}
