package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"lukechampine.com/blake3"

	"tokenledger/core/state"
	"tokenledger/core/types"
	"tokenledger/observability"
	"tokenledger/observability/logging"
	"tokenledger/storage"
)

func testAccount(b byte) types.Account {
	var acc types.Account
	acc[0] = b
	return acc
}

func testOptions() state.Options {
	return state.Options{
		Stats:   state.TokenStats{Name: "Test Token", Symbol: "TST", Decimals: 8},
		Auction: state.AuctionParams{Period: time.Minute, InitialFeeRatio: 1},
	}
}

type fixture struct {
	daemon   *daemon
	store    *state.SnapshotStore
	registry *prometheus.Registry
	logs     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)

	registry := prometheus.NewRegistry()
	metrics := observability.NewLedgerMetrics(registry)
	opts := testOptions()
	opts.Recorder = metrics
	store := state.NewSnapshotStore(db)
	st, report, err := store.Load(opts)
	require.NoError(t, err)
	require.False(t, report.Restored)

	logs := &bytes.Buffer{}
	d := newDaemon(st, store, metrics, logging.New(logs, "tokend", "test"), time.Hour)
	d.now = func() types.Timestamp { return 0 }
	return &fixture{daemon: d, store: store, registry: registry, logs: logs}
}

func TestDaemonLogsAuctionDueOnce(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.daemon.state.Bid(testAccount(1), 5))

	f.daemon.tick()
	require.Empty(t, f.logs.String())

	f.daemon.now = func() types.Timestamp { return types.Timestamp(2 * time.Minute) }
	f.daemon.tick()
	f.daemon.tick()
	require.Equal(t, 1, strings.Count(f.logs.String(), `"auction due"`))

	expected := `
# HELP tokenledger_auction_due Indicates whether an auction is currently due (1) or not (0).
# TYPE tokenledger_auction_due gauge
tokenledger_auction_due 1
`
	require.NoError(t, testutil.GatherAndCompare(f.registry, strings.NewReader(expected), "tokenledger_auction_due"))
}

func TestDaemonSavePersistsState(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.daemon.health(), errNoSnapshot)

	f.daemon.state.SetBalance(testAccount(1), types.NewAmount(40))
	f.daemon.state.Approve(testAccount(1), testAccount(2), types.NewAmount(3))
	require.NoError(t, f.daemon.save())
	require.NoError(t, f.daemon.health())

	loaded, report, err := f.store.Load(testOptions())
	require.NoError(t, err)
	require.True(t, report.Restored)
	require.Equal(t, types.NewAmount(40), loaded.BalanceOf(testAccount(1)))
	require.Equal(t, types.NewAmount(3), loaded.Allowance(testAccount(1), testAccount(2)))

	count, err := testutil.GatherAndCount(f.registry, "tokenledger_snapshot_writes_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestDaemonRunWritesFinalSnapshot(t *testing.T) {
	f := newFixture(t)
	f.daemon.state.SetBalance(testAccount(9), types.NewAmount(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, f.daemon.run(ctx))

	loaded, report, err := f.store.Load(testOptions())
	require.NoError(t, err)
	require.True(t, report.Restored)
	require.Equal(t, types.NewAmount(1), loaded.BalanceOf(testAccount(9)))
}

func TestRouterHealthz(t *testing.T) {
	f := newFixture(t)
	router := newRouter(promhttp.HandlerFor(f.registry, promhttp.HandlerOpts{}), f.daemon.health)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, f.daemon.save())
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "tokenledger_snapshot_size_bytes")
}

func futureSnapshot(t *testing.T) []byte {
	t.Helper()
	payload := []byte("layout from a newer release")
	env := struct {
		Version  uint32
		Checksum [32]byte
		Payload  []byte
	}{Version: state.CurrentSnapshotVersion + 1, Checksum: blake3.Sum256(payload), Payload: payload}
	data, err := rlp.EncodeToBytes(&env)
	require.NoError(t, err)
	return data
}

func TestRestoreStateRefusesNewerSnapshot(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	data := futureSnapshot(t)
	require.NoError(t, db.Put([]byte(state.SnapshotKey), data))

	logs := &bytes.Buffer{}
	st, report, err := restoreState(state.NewSnapshotStore(db), testOptions(), false, logging.New(logs, "tokend", "test"))
	require.ErrorIs(t, err, state.ErrSnapshotUnknownVersion)
	require.Nil(t, st)
	require.False(t, report.Restored)
	require.Equal(t, state.CurrentSnapshotVersion+1, report.Version)

	stored, err := db.Get([]byte(state.SnapshotKey))
	require.NoError(t, err)
	require.Equal(t, data, stored)
}

func TestRestoreStateAllowResetDiscardsSnapshot(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	require.NoError(t, db.Put([]byte(state.SnapshotKey), futureSnapshot(t)))

	logs := &bytes.Buffer{}
	store := state.NewSnapshotStore(db)
	st, report, err := restoreState(store, testOptions(), true, logging.New(logs, "tokend", "test"))
	require.NoError(t, err)
	require.NotNil(t, st)
	require.ErrorIs(t, report.Err, state.ErrSnapshotUnknownVersion)
	require.Contains(t, logs.String(), "discarding unreadable snapshot")
	require.Equal(t, 0, st.HolderCount())

	_, err = db.Get([]byte(state.SnapshotKey))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRestoreStateFreshDatabase(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()

	st, report, err := restoreState(state.NewSnapshotStore(db), testOptions(), false, logging.New(&bytes.Buffer{}, "tokend", "test"))
	require.NoError(t, err)
	require.NotNil(t, st)
	require.NoError(t, report.Err)
	require.Equal(t, state.SnapshotVersionNone, report.Version)
}
