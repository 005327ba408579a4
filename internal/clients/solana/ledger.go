package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/solforge-games/solforge-backend/internal/pkg/httpx"
	"github.com/solforge-games/solforge-backend/internal/platform/envutil"
	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

// ErrSyncFailed reports that the on-chain push was abandoned after the
// bounded retry budget. The authoritative ledger is untouched; the
// record stays flagged for out-of-band reconciliation.
var ErrSyncFailed = errors.New("external ledger sync failed")

// errStaleProof means the anchor root moved between the proof fetch and
// the push; the proof must be refetched, never reused.
var errStaleProof = errors.New("stale asset proof")

// AssetProof is the Merkle proof anchoring one compressed asset.
type AssetProof struct {
	Root      string   `json:"root"`
	Proof     []string `json:"proof"`
	NodeIndex int64    `json:"node_index"`
	Leaf      string   `json:"leaf"`
	TreeID    string   `json:"tree_id"`
}

// CharacterState is the full display snapshot mirrored into the
// compressed-NFT metadata; partial updates would regress other skills.
type CharacterState struct {
	AssetID     string         `json:"assetId"`
	Name        string         `json:"name"`
	OwnerPDA    string         `json:"ownerPda"`
	CombatLevel int            `json:"combatLevel"`
	TotalLevel  int            `json:"totalLevel"`
	SkillLevels map[string]int `json:"skillLevels"`
}

// LedgerClient is the opaque interface to the blockchain-anchored
// display ledger. Implementations are latency- and failure-tolerant by
// contract; callers never block a player-facing award on them.
type LedgerClient interface {
	FetchAssetProof(ctx context.Context, assetID string) (*AssetProof, error)
	PushCharacterState(ctx context.Context, state CharacterState) error
}

type ledgerClient struct {
	log        *logger.Logger
	rpcURL     string
	updaterURL string
	authToken  string
	httpClient *http.Client

	maxAttempts  int
	retryBackoff time.Duration
}

func NewLedgerClient(log *logger.Logger) (LedgerClient, error) {
	rpcURL := strings.TrimSpace(os.Getenv("SOLANA_RPC_URL"))
	if rpcURL == "" {
		return nil, fmt.Errorf("missing SOLANA_RPC_URL")
	}
	updaterURL := strings.TrimSpace(os.Getenv("TREE_UPDATER_URL"))
	if updaterURL == "" {
		return nil, fmt.Errorf("missing TREE_UPDATER_URL")
	}

	return &ledgerClient{
		log:        log.With("client", "SolanaLedgerClient"),
		rpcURL:     rpcURL,
		updaterURL: strings.TrimRight(updaterURL, "/"),
		authToken:  strings.TrimSpace(os.Getenv("TREE_UPDATER_TOKEN")),
		httpClient: &http.Client{
			Timeout: time.Duration(envutil.GetEnvAsInt("SOLANA_HTTP_TIMEOUT_SECONDS", 20, log)) * time.Second,
		},
		maxAttempts:  envutil.GetEnvAsInt("LEDGER_PUSH_MAX_ATTEMPTS", 4, log),
		retryBackoff: time.Duration(envutil.GetEnvAsInt("LEDGER_PUSH_BACKOFF_MS", 500, log)) * time.Millisecond,
	}, nil
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *ledgerClient) FetchAssetProof(ctx context.Context, assetID string) (*AssetProof, error) {
	if assetID == "" {
		return nil, fmt.Errorf("missing asset id")
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "getAssetProof",
		Params:  map[string]string{"id": assetID},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getAssetProof: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("getAssetProof: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return nil, fmt.Errorf("getAssetProof: decode: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("getAssetProof: rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	var out struct {
		Root      string   `json:"root"`
		Proof     []string `json:"proof"`
		NodeIndex int64    `json:"node_index"`
		Leaf      string   `json:"leaf"`
		TreeID    string   `json:"tree_id"`
	}
	if err := json.Unmarshal(rpcResp.Result, &out); err != nil {
		return nil, fmt.Errorf("getAssetProof: decode result: %w", err)
	}
	return &AssetProof{
		Root:      out.Root,
		Proof:     out.Proof,
		NodeIndex: out.NodeIndex,
		Leaf:      out.Leaf,
		TreeID:    out.TreeID,
	}, nil
}

// PushCharacterState fetches a fresh proof before every attempt (the
// anchor root is shared and moves under concurrent writers), posts the
// merged state to the tree updater, and retries stale-proof or
// transient replies with jittered backoff up to the attempt bound.
func (c *ledgerClient) PushCharacterState(ctx context.Context, state CharacterState) error {
	if state.AssetID == "" {
		return fmt.Errorf("missing asset id")
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(httpx.JitterSleep(httpx.Backoff(c.retryBackoff, 10*time.Second, attempt))):
			}
		}

		proof, err := c.FetchAssetProof(ctx, state.AssetID)
		if err != nil {
			lastErr = err
			c.log.Warn("Asset proof fetch failed", "asset_id", state.AssetID, "attempt", attempt+1, "error", err)
			continue
		}

		err = c.pushOnce(ctx, state, proof)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, errStaleProof) || httpx.IsRetryableError(err) {
			c.log.Warn("Ledger push attempt failed", "asset_id", state.AssetID, "attempt", attempt+1, "error", err)
			continue
		}
		break
	}
	return fmt.Errorf("%w: %v", ErrSyncFailed, lastErr)
}

type pushError struct {
	status int
	body   string
}

func (e *pushError) Error() string {
	return fmt.Sprintf("tree updater: status %d: %s", e.status, e.body)
}

func (e *pushError) HTTPStatusCode() int { return e.status }

func (c *ledgerClient) pushOnce(ctx context.Context, state CharacterState, proof *AssetProof) error {
	payload, err := json.Marshal(map[string]interface{}{
		"state": state,
		"proof": proof,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.updaterURL+"/v1/update-metadata", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted:
		return nil
	case resp.StatusCode == http.StatusConflict:
		// updater detected a moved root
		return errStaleProof
	default:
		return &pushError{status: resp.StatusCode, body: strings.TrimSpace(string(raw))}
	}
}
