package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"vestingcontrol/pkg/utils"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Signature status values returned by CheckSignatureStatus.
const (
	StatusFinalized = "finalized"
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
	StatusFailed    = "failed"
)

// ErrTransactionFailed means the ledger executed the transaction and it
// errored. Not retryable: the signature will never confirm.
var ErrTransactionFailed = errors.New("transaction failed on chain")

var errStillPending = errors.New("transaction not yet confirmed")

// CheckSignatureStatus checks a signature's confirmation status on the ledger.
func CheckSignatureStatus(ctx context.Context, client *rpc.Client, sig solana.Signature) (string, error) {
	res, err := client.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return "", fmt.Errorf("failed to get signature status: %w", err)
	}

	if len(res.Value) == 0 || res.Value[0] == nil {
		return StatusPending, nil
	}

	status := res.Value[0]
	if status.Err != nil {
		errJSON, _ := json.Marshal(status.Err)
		return StatusFailed, fmt.Errorf("%w: %s", ErrTransactionFailed, string(errJSON))
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusFinalized:
		return StatusFinalized, nil
	case rpc.ConfirmationStatusConfirmed:
		return StatusConfirmed, nil
	default:
		return StatusPending, nil
	}
}

var confirmPollRetry = utils.RetryPolicy{
	MaxAttempts: 8,
	BaseDelay:   500 * time.Millisecond,
	Curve:       utils.ExponentialBackoff,
	Retryable: func(err error) bool {
		return !errors.Is(err, ErrTransactionFailed)
	},
}

// PollSignatureStatus polls until the signature reaches confirmed or
// finalized, with exponential backoff and a bounded attempt count.
func PollSignatureStatus(ctx context.Context, client *rpc.Client, sig solana.Signature) error {
	return confirmPollRetry.Do(ctx, func() error {
		status, err := CheckSignatureStatus(ctx, client, sig)
		if err != nil {
			return err
		}
		if status == StatusConfirmed || status == StatusFinalized {
			return nil
		}
		return errStillPending
	})
}

// WaitForConfirmation races a websocket signature subscription against the
// given timeout; if streaming is unavailable or times out it falls back to a
// direct status poll before declaring failure.
func WaitForConfirmation(ctx context.Context, client *rpc.Client, sig solana.Signature, timeout time.Duration) error {
	if err := waitViaWebsocket(ctx, sig, timeout); err == nil {
		return nil
	} else if !errors.Is(err, ErrTransactionFailed) {
		log.Warnf("> 签名 %s 订阅确认失败，回退到状态轮询: %v", sig, err)
	} else {
		return err
	}

	return PollSignatureStatus(ctx, client, sig)
}

type wsRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type wsSignatureNotification struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Value struct {
				Err json.RawMessage `json:"err"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// waitViaWebsocket subscribes to signature notifications over the ledger's
// websocket endpoint and blocks until the notification arrives or the
// deadline passes.
func waitViaWebsocket(ctx context.Context, sig solana.Signature, timeout time.Duration) error {
	wsEndpoint := os.Getenv("SOLANA_WS")
	if wsEndpoint == "" {
		return errors.New("SOLANA_WS not configured")
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsEndpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial failed: %w", err)
	}
	defer conn.Close()

	sub := wsRequest{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "signatureSubscribe",
		Params: []interface{}{
			sig.String(),
			map[string]string{"commitment": "confirmed"},
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	deadline := time.Now().Add(timeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return err
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("websocket read failed: %w", err)
		}

		var note wsSignatureNotification
		if err := json.Unmarshal(raw, &note); err != nil {
			continue
		}
		if note.Method != "signatureNotification" {
			continue
		}

		if len(note.Params.Result.Value.Err) > 0 && string(note.Params.Result.Value.Err) != "null" {
			return fmt.Errorf("%w: %s", ErrTransactionFailed, string(note.Params.Result.Value.Err))
		}
		return nil
	}
}
