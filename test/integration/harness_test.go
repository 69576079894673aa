//go:build integration

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
	"github.com/aevon-lab/relaystore/internal/core/config"
	"github.com/aevon-lab/relaystore/internal/core/metrics"
	"github.com/aevon-lab/relaystore/internal/core/storage/postgres"
	"github.com/aevon-lab/relaystore/internal/ingestion"
	"github.com/aevon-lab/relaystore/internal/query"
	"github.com/aevon-lab/relaystore/internal/server"
)

var (
	dsnOnce sync.Once
	dsnErr  error
	testDSN string
)

// postgresDSN returns RELAYSTORE_TEST_DSN when set, otherwise starts one
// container shared by the whole package.
func postgresDSN(t *testing.T) string {
	t.Helper()

	dsnOnce.Do(func() {
		if dsn := os.Getenv("RELAYSTORE_TEST_DSN"); dsn != "" {
			testDSN = dsn
			return
		}

		ctx := context.Background()
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("relaystore"),
			tcpostgres.WithUsername("test"),
			tcpostgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			dsnErr = fmt.Errorf("failed to start PostgreSQL container: %w", err)
			return
		}
		testDSN, dsnErr = container.ConnectionString(ctx, "sslmode=disable")
	})

	if dsnErr != nil {
		t.Skipf("postgres unavailable: %v", dsnErr)
	}
	return testDSN
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Database.DSN = postgresDSN(t)
	cfg.Database.MaxOpenConns = 8
	cfg.Database.MaxIdleConns = 8
	cfg.Database.AutoMigrate = true
	return cfg
}

// newStore initializes an adapter on an empty schema.
func newStore(t *testing.T) *postgres.Adapter {
	t.Helper()

	store, err := postgres.Initialize(context.Background(), testConfig(t), metrics.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	resetDatabase(t, store.DB())
	return store
}

func resetDatabase(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec("TRUNCATE TABLE events CASCADE")
	require.NoError(t, err)
}

type apiHarness struct {
	baseURL string
	client  *http.Client
	store   *postgres.Adapter
	cancel  context.CancelFunc
	done    chan error
}

func startAPI(t *testing.T) *apiHarness {
	t.Helper()

	store := newStore(t)

	addr := fmt.Sprintf("127.0.0.1:%d", freePort(t))
	httpServer := server.New(addr, store, "release", nil)
	ingestion.NewService(store, 1).RegisterRoutes(httpServer.Engine)
	query.NewService(store).RegisterRoutes(httpServer.Engine)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- httpServer.Run(ctx) }()

	h := &apiHarness{
		baseURL: "http://" + addr,
		client:  &http.Client{Timeout: 5 * time.Second},
		store:   store,
		cancel:  cancel,
		done:    done,
	}
	t.Cleanup(func() {
		h.cancel()
		select {
		case <-h.done:
		case <-time.After(5 * time.Second):
			t.Log("server shutdown timed out")
		}
	})

	waitForHealthy(t, h.baseURL)
	return h
}

func waitForHealthy(t *testing.T, baseURL string) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server did not become healthy at %s", baseURL)
}

func (h *apiHarness) post(t *testing.T, path string, payload interface{}) (int, []byte) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, h.baseURL+path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	return h.do(t, req)
}

func (h *apiHarness) get(t *testing.T, path string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, h.baseURL+path, nil)
	require.NoError(t, err)
	return h.do(t, req)
}

func (h *apiHarness) do(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()

	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBody
}

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// newEvent builds an event whose id and pubkey are filled with seed bytes.
func newEvent(seed byte, createdAt int64, kind v1.Kind, tags ...v1.Tag) *v1.Event {
	evt := &v1.Event{
		CreatedAt: createdAt,
		Kind:      kind,
		Tags:      v1.Tags(tags),
		Content:   fmt.Sprintf("event %d", seed),
	}
	if evt.Tags == nil {
		evt.Tags = v1.Tags{}
	}
	for i := range evt.ID {
		evt.ID[i] = seed
		evt.PubKey[i] = seed%4 + 1
		evt.Sig[i] = seed
	}
	return evt
}

func ids(events []*v1.Event) []v1.EventID {
	out := make([]v1.EventID, len(events))
	for i, evt := range events {
		out[i] = evt.ID
	}
	return out
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
