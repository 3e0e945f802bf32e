package pkg

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nbd-wtf/go-nostr"
)

// KindLedger is the event kind carrying ledger rows.
const KindLedger = 1573

// LedgerMessage is the content of a ledger event.
type LedgerMessage struct {
	Transaction *TransactionPayload `json:"Transaction,omitempty"`
}

type TransactionPayload struct {
	ID            uint64  `json:"id"`
	User          uint64  `json:"user"`
	ContentID     *uint64 `json:"content_id,omitempty"`
	Type          string  `json:"type"`
	Amount        string  `json:"amount"`
	BalanceAfter  string  `json:"balance_after"`
	CounterpartID *uint64 `json:"counterpart_id,omitempty"`
	Note          string  `json:"note,omitempty"`
	CreatedAt     int64   `json:"created_at"`
}

type NostrClient struct {
	relay     *nostr.Relay
	secretKey string
	pubkey    string
	session   string
}

func NewNostrClient(ctx context.Context, relayURL, secretKey, session string) (*NostrClient, error) {
	pubkey, err := nostr.GetPublicKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("invalid secret key: %v", err)
	}
	relay, err := nostr.RelayConnect(ctx, relayURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to relay: %v", err)
	}

	return &NostrClient{
		relay:     relay,
		secretKey: secretKey,
		pubkey:    pubkey,
		session:   session,
	}, nil
}

func (c *NostrClient) PublicKey() string {
	return c.pubkey
}

// SignLedgerEvent builds and signs the event for msg without sending it.
func SignLedgerEvent(secretKey, session string, msg LedgerMessage) (*nostr.Event, error) {
	pubkey, err := nostr.GetPublicKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("invalid secret key: %v", err)
	}
	content, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ledger message: %v", err)
	}
	event := nostr.Event{
		PubKey:    pubkey,
		CreatedAt: nostr.Now(),
		Kind:      KindLedger,
		Tags: nostr.Tags{
			nostr.Tag{"s", session},
			nostr.Tag{"p", pubkey},
		},
		Content: string(content),
	}
	if err := event.Sign(secretKey); err != nil {
		return nil, fmt.Errorf("failed to sign event: %v", err)
	}
	return &event, nil
}

// Publish signs msg and sends it to the relay, returning the event id.
func (c *NostrClient) Publish(ctx context.Context, msg LedgerMessage) (string, error) {
	event, err := SignLedgerEvent(c.secretKey, c.session, msg)
	if err != nil {
		return "", err
	}
	if err := c.relay.Publish(ctx, *event); err != nil {
		return "", fmt.Errorf("failed to publish event: %v", err)
	}
	return event.ID, nil
}

// Close closes the relay connection
func (c *NostrClient) Close() {
	c.relay.Close()
}
