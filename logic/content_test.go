package logic_test

import (
	"errors"
	"testing"

	"github.com/Taolee-crypto/timelink-backend/logic"
	"github.com/Taolee-crypto/timelink-backend/models"
	"github.com/Taolee-crypto/timelink-backend/testutil"

	"github.com/shopspring/decimal"
)

func upload(t *testing.T, e *env, ownerID uint64, pool int64) *models.ContentItem {
	t.Helper()
	p := decimal.NewFromInt(pool)
	item, err := e.svc.Contents.Upload(e.ctx, ownerID, logic.UploadRequest{
		Title: "Night Drive", Artist: "Kim", Genre: "synthwave", Country: "KR",
		MediaKey: "uploads/night-drive.mp3", Pool: &p,
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return item
}

func TestUpload_DebitsOwner(t *testing.T) {
	e := newEnv(t)
	owner := testutil.SeedUser(t, e.store, "owner", 1000)

	item := upload(t, e, owner.ID, 400)
	if item.AuthStatus != models.AuthUnverified || item.Shared {
		t.Fatalf("new item = %+v", item)
	}
	if item.MediaURL != "uploads/night-drive.mp3" {
		t.Fatalf("media url = %q", item.MediaURL)
	}
	testutil.AssertDec(t, "item_balance", item.ItemBalance, "400")
	testutil.AssertDec(t, "max_item_balance", item.MaxItemBalance, "400")

	got := e.user(t, owner.ID)
	testutil.AssertDec(t, "available", got.AvailableBalance, "600")
	// Funding a pool is not playback spend.
	testutil.AssertDec(t, "total_spent", got.TotalSpent, "0")
	testutil.AssertReconciles(t, e.store, owner.ID)

	rows, _ := e.store.Transactions.ListTransactionsByUser(owner.ID, 1, 0)
	if rows[0].Type != models.TxCharge || rows[0].ContentID == nil || *rows[0].ContentID != item.ID {
		t.Fatalf("charge row = %+v", rows[0])
	}
}

func TestUpload_InsufficientBalanceLeavesNoItem(t *testing.T) {
	e := newEnv(t)
	owner := testutil.SeedUser(t, e.store, "owner", 100)
	p := decimal.NewFromInt(500)

	_, err := e.svc.Contents.Upload(e.ctx, owner.ID, logic.UploadRequest{Title: "x", MediaURL: "https://m/x", Pool: &p})
	if !errors.Is(err, logic.ErrInsufficientBalance) {
		t.Fatalf("err = %v", err)
	}
	items, _ := e.svc.Contents.ListMine(e.ctx, owner.ID, logic.NewPage(10, 0))
	if len(items) != 0 {
		t.Fatalf("failed upload left %d items", len(items))
	}
}

func TestUpload_Validation(t *testing.T) {
	e := newEnv(t)
	owner := testutil.SeedUser(t, e.store, "owner", 100)
	neg := decimal.NewFromInt(-1)
	for name, req := range map[string]logic.UploadRequest{
		"no title": {MediaURL: "u"},
		"no media": {Title: "t"},
		"bad type": {Title: "t", MediaURL: "u", MediaType: "text"},
		"negative": {Title: "t", MediaURL: "u", Pool: &neg},
	} {
		if _, err := e.svc.Contents.Upload(e.ctx, owner.ID, req); !errors.Is(err, logic.ErrValidation) {
			t.Fatalf("%s: err = %v", name, err)
		}
	}
}

func requestAuth(t *testing.T, e *env, ownerID, contentID uint64) *models.AuthRequest {
	t.Helper()
	req, err := e.svc.Contents.RequestAuth(e.ctx, ownerID, contentID, logic.AuthRequestInput{
		SourceURL: "https://suno.com/song/abc", CreationMonth: "2025-04", PlanType: "pro",
	})
	if err != nil {
		t.Fatalf("RequestAuth: %v", err)
	}
	return req
}

func TestRequestAuth(t *testing.T) {
	e := newEnv(t)
	owner := testutil.SeedUser(t, e.store, "owner", 1000)
	other := testutil.SeedUser(t, e.store, "other", 0)
	item := upload(t, e, owner.ID, 100)

	req := requestAuth(t, e, owner.ID, item.ID)
	if req.Status != models.AuthRequestPending || req.ContentID != item.ID || req.UserID != owner.ID {
		t.Fatalf("request = %+v", req)
	}
	if got := e.content(t, item.ID).AuthStatus; got != models.AuthUnverified {
		t.Fatalf("auth_status = %s, want unverified while under review", got)
	}
	poc := e.user(t, owner.ID).PocIndex
	if poc < 1.0999 || poc > 1.1001 {
		t.Fatalf("poc = %v, want 1 + 0.1", poc)
	}

	tests := []struct {
		name    string
		ownerID uint64
		in      logic.AuthRequestInput
		want    error
	}{
		{"second pending", owner.ID, logic.AuthRequestInput{SourceURL: "https://suno.com/song/abc"}, logic.ErrAuthRequestPending},
		{"foreign item", other.ID, logic.AuthRequestInput{SourceURL: "https://suno.com/song/abc"}, logic.ErrForbidden},
		{"no source", owner.ID, logic.AuthRequestInput{}, logic.ErrValidation},
		{"bad source", owner.ID, logic.AuthRequestInput{SourceURL: "suno.com/song"}, logic.ErrValidation},
		{"bad month", owner.ID, logic.AuthRequestInput{SourceURL: "https://suno.com/x", CreationMonth: "April"}, logic.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.svc.Contents.RequestAuth(e.ctx, tt.ownerID, item.ID, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := e.svc.Contents.Approve(e.ctx, item.ID, true); err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.Contents.RequestAuth(e.ctx, owner.ID, item.ID, logic.AuthRequestInput{SourceURL: "https://suno.com/song/abc"}); !errors.Is(err, logic.ErrAlreadyVerified) {
		t.Fatalf("verified item: err = %v", err)
	}
	reqs, err := e.svc.Contents.AuthRequests(e.ctx, owner, item.ID)
	if err != nil || len(reqs) != 1 || reqs[0].Status != models.AuthRequestApproved || reqs[0].ReviewedAt == nil {
		t.Fatalf("requests = %+v, %v", reqs, err)
	}
	if _, err := e.svc.Contents.AuthRequests(e.ctx, other, item.ID); !errors.Is(err, logic.ErrForbidden) {
		t.Fatalf("stranger listing: err = %v", err)
	}
}

func TestApprove(t *testing.T) {
	e := newEnv(t)
	owner := testutil.SeedUser(t, e.store, "owner", 1000)
	good := upload(t, e, owner.ID, 100)
	bad := upload(t, e, owner.ID, 100)

	if _, err := e.svc.Contents.Approve(e.ctx, good.ID, true); !errors.Is(err, logic.ErrNoAuthRequest) {
		t.Fatalf("approve without request: err = %v", err)
	}
	requestAuth(t, e, owner.ID, good.ID)
	requestAuth(t, e, owner.ID, bad.ID)

	item, err := e.svc.Contents.Approve(e.ctx, good.ID, true)
	if err != nil || item.AuthStatus != models.AuthVerified {
		t.Fatalf("approve: item=%+v err=%v", item, err)
	}
	if _, err := e.svc.Contents.Approve(e.ctx, good.ID, false); !errors.Is(err, logic.ErrInvalidTransition) {
		t.Fatalf("re-review: err = %v", err)
	}
	item, err = e.svc.Contents.Approve(e.ctx, bad.ID, false)
	if err != nil || item.AuthStatus != models.AuthRejected {
		t.Fatalf("reject: item=%+v err=%v", item, err)
	}
	if _, err := e.svc.Contents.RequestAuth(e.ctx, owner.ID, bad.ID, logic.AuthRequestInput{SourceURL: "https://suno.com/x"}); !errors.Is(err, logic.ErrInvalidTransition) {
		t.Fatalf("request on rejected item: err = %v", err)
	}

	poc := e.user(t, owner.ID).PocIndex
	if poc < 0.9999 || poc > 1.0001 {
		t.Fatalf("poc = %v, want 1 + 0.1 + 0.1 + 0.3 - 0.5", poc)
	}
	if _, err := e.svc.Contents.Approve(e.ctx, 999, true); !errors.Is(err, logic.ErrNotFound) {
		t.Fatalf("missing: err = %v", err)
	}
}

func TestSetSharedAndStatus(t *testing.T) {
	e := newEnv(t)
	owner := testutil.SeedUser(t, e.store, "owner", 1000)
	other := testutil.SeedUser(t, e.store, "other", 0)
	item := upload(t, e, owner.ID, 100)

	if _, err := e.svc.Contents.SetShared(e.ctx, owner.ID, item.ID, true); !errors.Is(err, logic.ErrInvalidTransition) {
		t.Fatalf("share unverified: err = %v", err)
	}
	requestAuth(t, e, owner.ID, item.ID)
	if _, err := e.svc.Contents.Approve(e.ctx, item.ID, true); err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.Contents.SetShared(e.ctx, other.ID, item.ID, true); !errors.Is(err, logic.ErrForbidden) {
		t.Fatalf("share foreign: err = %v", err)
	}
	status, err := e.svc.Contents.Status(e.ctx, item.ID)
	if err != nil || status.Playable {
		t.Fatalf("status before share = %+v, %v", status, err)
	}
	if _, err := e.svc.Contents.SetShared(e.ctx, owner.ID, item.ID, true); err != nil {
		t.Fatal(err)
	}
	status, err = e.svc.Contents.Status(e.ctx, item.ID)
	if err != nil || !status.Playable {
		t.Fatalf("status after share = %+v, %v", status, err)
	}
}

func TestCharge(t *testing.T) {
	e := newEnv(t)
	owner := testutil.SeedUser(t, e.store, "owner", 300)
	item := upload(t, e, owner.ID, 100)

	got, err := e.svc.Contents.Charge(e.ctx, owner.ID, item.ID, decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("Charge: %v", err)
	}
	testutil.AssertDec(t, "item_balance", got.ItemBalance, "150")
	testutil.AssertDec(t, "max_item_balance", got.MaxItemBalance, "150")
	testutil.AssertDec(t, "owner available", e.user(t, owner.ID).AvailableBalance, "150")

	if _, err := e.svc.Contents.Charge(e.ctx, owner.ID, item.ID, decimal.NewFromInt(151)); !errors.Is(err, logic.ErrInsufficientBalance) {
		t.Fatalf("overdraft charge: err = %v", err)
	}
	testutil.AssertDec(t, "item_balance", e.content(t, item.ID).ItemBalance, "150")
	testutil.AssertReconciles(t, e.store, owner.ID)
}
