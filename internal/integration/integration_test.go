package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"kentei-quiz-service/internal/app"
	"kentei-quiz-service/internal/domain"
	pgstore "kentei-quiz-service/internal/infra/postgres"
	pgmigrations "kentei-quiz-service/internal/infra/postgres/migrations"
	infraredis "kentei-quiz-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestQuizFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	source := pgstore.NewQuestionSource(pool)
	if err := source.InsertRows(ctx, "history", sampleRows()); err != nil {
		t.Fatalf("seed rows: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()
	cache := infraredis.NewCache(redisClient, "kentei-it:")

	questions := app.NewQuestionService(cache, source, app.QuestionConfig{Topics: []string{"history", "missing"}})
	result, err := questions.ReloadAll(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if result.Partitions != 3 || len(result.Skipped) != 1 {
		t.Fatalf("expected 3 partitions and one skipped topic, got %+v", result)
	}

	batch, err := questions.GetQuestions(ctx, "history", "beginner")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 beginner questions, got %d", len(batch))
	}

	grading := app.NewGradingService(questions)
	graded, err := grading.GradeBatch(ctx, "history", "beginner", []domain.AnswerSubmission{
		{QuestionID: "h1", Answer: domain.Scalar("heian-kyo")},
		{QuestionID: "h2", Answer: domain.Set("Muromachi")},
	})
	if err != nil {
		t.Fatalf("grade batch: %v", err)
	}
	if !graded.Results[0] || graded.Results[1] {
		t.Fatalf("unexpected results %v", graded.Results)
	}
	if len(graded.WrongAnswers) != 1 || graded.WrongAnswers[0].HintText != "Three were shogunates" {
		t.Fatalf("unexpected wrong answers %+v", graded.WrongAnswers)
	}

	certs := app.NewCertificateService(pgstore.NewCertificateStore(pool))
	id, err := certs.Issue(ctx, app.CertificateRequest{Topic: "history", Level: "beginner", Nickname: "hanako", IssuedAt: "2026/10/14", ImageData: "data:image/png;base64,AAAA"})
	if err != nil {
		t.Fatalf("issue certificate: %v", err)
	}
	cert, err := certs.Lookup(ctx, " "+id+" ")
	if err != nil {
		t.Fatalf("lookup certificate: %v", err)
	}
	if cert.Nickname != "hanako" || cert.ImageData != "data:image/png;base64,AAAA" {
		t.Fatalf("unexpected certificate %+v", cert)
	}
	if _, err := certs.Lookup(ctx, "unknown"); !errors.Is(err, domain.ErrCertificateNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	board := app.NewLeaderboardService(pgstore.NewScoreStore(pool), nil, app.LeaderboardConfig{})
	for _, sub := range []app.ScoreSubmission{
		{BrowserID: "b1", Nickname: "taro", Score: 60},
		{BrowserID: "b1", Nickname: "taro", Score: 80},
		{BrowserID: "b1", Nickname: "taro", Score: 70},
		{BrowserID: "b2", Nickname: "jiro", Score: 90},
	} {
		if _, err := board.Submit(ctx, sub); err != nil {
			t.Fatalf("submit %+v: %v", sub, err)
		}
	}
	lb, err := board.Top(ctx, "", 10, "b1")
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(lb.Rankings) != 2 || lb.Rankings[0].BrowserID != "b2" {
		t.Fatalf("unexpected rankings %+v", lb.Rankings)
	}
	if lb.Rankings[1].Score != 80 || !lb.Rankings[1].IsCurrentUser {
		t.Fatalf("expected b1 kept at 80 and flagged, got %+v", lb.Rankings[1])
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func sampleRows() []domain.QuestionRow {
	return []domain.QuestionRow{
		{ID: "h1", Level: "beginner", SelectionType: "single", Question: "Capital in 794?", ChoiceA: "Nara", ChoiceB: "Heian-kyo", CorrectLabels: "B"},
		{ID: "h2", Level: "beginner", SelectionType: "multiple", Question: "Pick the shogunates", ChoiceA: "Kamakura", ChoiceB: "Muromachi", ChoiceC: "Heian", ChoiceD: "Tokugawa", CorrectLabels: "A,B,D", HintText: "Three were shogunates"},
		{ID: "h3", Level: "advanced", SelectionType: "input", Question: "Meiji Restoration year", CorrectLabels: "1868"},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
