package pkg

import (
	"encoding/json"
	"testing"

	"github.com/nbd-wtf/go-nostr"
)

func TestSignLedgerEvent(t *testing.T) {
	sk := nostr.GeneratePrivateKey()
	cid := uint64(7)
	msg := LedgerMessage{Transaction: &TransactionPayload{
		ID: 1, User: 2, ContentID: &cid, Type: "earn", Amount: "0.7", BalanceAfter: "0.7",
	}}

	ev, err := SignLedgerEvent(sk, "timelink-ledger", msg)
	if err != nil {
		t.Fatalf("SignLedgerEvent: %v", err)
	}
	if ev.Kind != KindLedger {
		t.Fatalf("kind = %d", ev.Kind)
	}
	ok, err := ev.CheckSignature()
	if err != nil || !ok {
		t.Fatalf("signature: ok=%v err=%v", ok, err)
	}
	if tag := ev.Tags.GetFirst([]string{"s", ""}); tag == nil || (*tag)[1] != "timelink-ledger" {
		t.Fatalf("session tag = %v", ev.Tags)
	}

	var back LedgerMessage
	if err := json.Unmarshal([]byte(ev.Content), &back); err != nil {
		t.Fatal(err)
	}
	if back.Transaction == nil || back.Transaction.Amount != "0.7" || *back.Transaction.ContentID != 7 {
		t.Fatalf("content = %s", ev.Content)
	}

	if _, err := SignLedgerEvent("not-a-key", "s", msg); err == nil {
		t.Fatal("expected error for invalid key")
	}
}
