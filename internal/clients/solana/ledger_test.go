package solana

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

func proofServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Method != "getAssetProof" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"root":       "r",
				"proof":      []string{"a", "b"},
				"node_index": 7,
				"leaf":       "l",
				"tree_id":    "t",
			},
		})
	}))
}

func newTestClient(t *testing.T, rpcURL, updaterURL string) LedgerClient {
	t.Helper()
	t.Setenv("SOLANA_RPC_URL", rpcURL)
	t.Setenv("TREE_UPDATER_URL", updaterURL)
	t.Setenv("LEDGER_PUSH_MAX_ATTEMPTS", "3")
	t.Setenv("LEDGER_PUSH_BACKOFF_MS", "1")
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	client, err := NewLedgerClient(log)
	if err != nil {
		t.Fatalf("NewLedgerClient: %v", err)
	}
	return client
}

func TestFetchAssetProof(t *testing.T) {
	var rpcCalls int32
	rpc := proofServer(t, &rpcCalls)
	defer rpc.Close()

	client := newTestClient(t, rpc.URL, "http://unused.invalid")
	proof, err := client.FetchAssetProof(context.Background(), "asset-1")
	if err != nil {
		t.Fatalf("FetchAssetProof: %v", err)
	}
	if proof.Root != "r" || len(proof.Proof) != 2 || proof.NodeIndex != 7 {
		t.Fatalf("proof = %+v", proof)
	}
}

func TestPushCharacterStateRefetchesProofOnStaleRoot(t *testing.T) {
	var rpcCalls, pushCalls int32
	rpc := proofServer(t, &rpcCalls)
	defer rpc.Close()

	updater := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// First push sees a moved root; the retry must carry a fresh proof.
		if atomic.AddInt32(&pushCalls, 1) == 1 {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer updater.Close()

	client := newTestClient(t, rpc.URL, updater.URL)
	err := client.PushCharacterState(context.Background(), CharacterState{AssetID: "asset-1"})
	if err != nil {
		t.Fatalf("PushCharacterState: %v", err)
	}
	if atomic.LoadInt32(&pushCalls) != 2 {
		t.Fatalf("push calls = %d, want 2", pushCalls)
	}
	if atomic.LoadInt32(&rpcCalls) != 2 {
		t.Fatalf("proof fetches = %d, want one per attempt", rpcCalls)
	}
}

func TestPushCharacterStateGivesUpAfterAttemptBound(t *testing.T) {
	var rpcCalls, pushCalls int32
	rpc := proofServer(t, &rpcCalls)
	defer rpc.Close()

	updater := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&pushCalls, 1)
		w.WriteHeader(http.StatusConflict)
	}))
	defer updater.Close()

	client := newTestClient(t, rpc.URL, updater.URL)
	err := client.PushCharacterState(context.Background(), CharacterState{AssetID: "asset-1"})
	if !errors.Is(err, ErrSyncFailed) {
		t.Fatalf("err = %v, want ErrSyncFailed", err)
	}
	if atomic.LoadInt32(&pushCalls) != 3 {
		t.Fatalf("push calls = %d, want the full attempt budget", pushCalls)
	}
}

func TestPushCharacterStateStopsOnPermanentError(t *testing.T) {
	var rpcCalls, pushCalls int32
	rpc := proofServer(t, &rpcCalls)
	defer rpc.Close()

	updater := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&pushCalls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer updater.Close()

	client := newTestClient(t, rpc.URL, updater.URL)
	err := client.PushCharacterState(context.Background(), CharacterState{AssetID: "asset-1"})
	if !errors.Is(err, ErrSyncFailed) {
		t.Fatalf("err = %v, want ErrSyncFailed", err)
	}
	if atomic.LoadInt32(&pushCalls) != 1 {
		t.Fatalf("push calls = %d, want no retries on a 422", pushCalls)
	}
}
