package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"bitbucket.org/steelsources/pipetrade_backend/config"
	"bitbucket.org/steelsources/pipetrade_backend/models"
	"bitbucket.org/steelsources/pipetrade_backend/utils"
	"bitbucket.org/steelsources/pipetrade_backend/workflow"
	"github.com/shopspring/decimal"
)

// Regression: winning a revision must supersede every live sibling in the same
// family atomically, leave an outbox event behind, and the reconciler pass
// must mark that event processed without touching the family again.
func TestQuotationRevisionSupersedeLifecycle(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "pipetrade_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")
	ctx = utils.SetUsernameInContext(ctx, "test@local")
	ctx = utils.SetCanApproveInContext(ctx, true)

	newQuotation := func(no string) *models.NewQuotation {
		return &models.NewQuotation{
			QuotationNo:  no,
			CustomerName: "Hydrocarbon Projects Ltd",
			Items: []models.NewQuotationItem{{
				MaterialSpec: "API 5L Gr.B",
				SizeInch:     "6",
				Schedule:     "40",
				QuantityMtr:  decimal.NewFromInt(500),
				UnitRate:     decimal.NewFromInt(90),
			}},
		}
	}

	sendQuotation := func(id int) {
		t.Helper()
		if _, err := models.SubmitQuotation(ctx, id); err != nil {
			t.Fatalf("SubmitQuotation(%d): %v", id, err)
		}
		_, err := models.UpdateStatusQuotation(ctx, id, models.UpdateStatusQuotationInput{Status: models.QuotationStatusSent})
		if err != nil {
			t.Fatalf("send quotation %d: %v", id, err)
		}
	}

	v1, err := models.CreateQuotation(ctx, newQuotation("QT-IT-001"))
	if err != nil {
		t.Fatalf("CreateQuotation: %v", err)
	}
	sendQuotation(v1.ID)

	v2, err := models.CreateQuotationRevision(ctx, v1.ID, newQuotation("QT-IT-001"))
	if err != nil {
		t.Fatalf("CreateQuotationRevision: %v", err)
	}
	if v2.Version != 2 {
		t.Fatalf("revision version = %d, want 2", v2.Version)
	}

	source, err := utils.FetchModel[models.Quotation](ctx, v1.ID)
	if err != nil {
		t.Fatalf("fetch v1: %v", err)
	}
	if source.Status != models.QuotationStatusRevised {
		t.Fatalf("v1 status after revision = %s, want REVISED", source.Status)
	}

	sendQuotation(v2.ID)
	if _, err := models.UpdateStatusQuotation(ctx, v2.ID, models.UpdateStatusQuotationInput{Status: models.QuotationStatusWon}); err != nil {
		t.Fatalf("win v2: %v", err)
	}

	source, err = utils.FetchModel[models.Quotation](ctx, v1.ID)
	if err != nil {
		t.Fatalf("refetch v1: %v", err)
	}
	if source.Status != models.QuotationStatusSuperseded {
		t.Fatalf("v1 status after v2 won = %s, want SUPERSEDED", source.Status)
	}
	winner, err := utils.FetchModel[models.Quotation](ctx, v2.ID)
	if err != nil {
		t.Fatalf("refetch v2: %v", err)
	}
	if winner.Status != models.QuotationStatusWon {
		t.Fatalf("v2 status = %s, want WON", winner.Status)
	}

	db := config.GetDB()
	var event models.RevisionEventRecord
	if err := db.WithContext(ctx).Where("quotation_no = ?", "QT-IT-001").First(&event).Error; err != nil {
		t.Fatalf("fetch revision event: %v", err)
	}
	if event.Status != models.RevisionEventStatusPending {
		t.Fatalf("event status = %s, want PENDING", event.Status)
	}
	if event.WonRevisionId != v2.ID {
		t.Fatalf("event won_revision_id = %d, want %d", event.WonRevisionId, v2.ID)
	}

	workflow.NewSupersedeReconciler(db, config.GetLogger()).Run(ctx)

	if err := db.WithContext(ctx).First(&event, event.ID).Error; err != nil {
		t.Fatalf("refetch revision event: %v", err)
	}
	if event.Status != models.RevisionEventStatusProcessed {
		t.Fatalf("event status after reconcile = %s, want PROCESSED", event.Status)
	}
	if event.ProcessedAt == nil {
		t.Fatal("processed event should carry a processed_at timestamp")
	}

	// The reconciler pass must be idempotent against the family.
	source, err = utils.FetchModel[models.Quotation](ctx, v1.ID)
	if err != nil {
		t.Fatalf("final fetch v1: %v", err)
	}
	if source.Status != models.QuotationStatusSuperseded {
		t.Fatalf("v1 status after reconcile = %s, want SUPERSEDED", source.Status)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("pipetrade-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("pipetrade-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=pipetrade_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
