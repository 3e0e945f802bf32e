package logic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/Taolee-crypto/timelink-backend/config"
	"github.com/Taolee-crypto/timelink-backend/dao"
	"github.com/Taolee-crypto/timelink-backend/models"
	"github.com/Taolee-crypto/timelink-backend/pkg"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MediaResolver maps an uploaded object key to its stored metadata.
type MediaResolver interface {
	Resolve(ctx context.Context, key string) (*pkg.MediaInfo, error)
}

type UploadRequest struct {
	Title     string           `json:"title"`
	Artist    string           `json:"artist"`
	Genre     string           `json:"genre"`
	Country   string           `json:"country"`
	MediaType string           `json:"media_type"`
	MediaKey  string           `json:"media_key"`
	MediaURL  string           `json:"media_url"`
	Pool      *decimal.Decimal `json:"pool"`
}

// AuthRequestInput is the evidence an owner submits to get an item verified.
type AuthRequestInput struct {
	SourceURL     string `json:"source_url"`
	ProfileURL    string `json:"profile_url"`
	PlanType      string `json:"plan_type"`
	CreationMonth string `json:"creation_month"`
	EmailProof    string `json:"email_proof"`
	ExtraNotes    string `json:"extra_notes"`
}

func (in *AuthRequestInput) validate() error {
	in.SourceURL = strings.TrimSpace(in.SourceURL)
	in.ProfileURL = strings.TrimSpace(in.ProfileURL)
	in.CreationMonth = strings.TrimSpace(in.CreationMonth)
	if in.SourceURL == "" {
		return validationf("source_url is required")
	}
	if !httpURL(in.SourceURL) {
		return validationf("source_url must be an http(s) URL")
	}
	if in.ProfileURL != "" && !httpURL(in.ProfileURL) {
		return validationf("profile_url must be an http(s) URL")
	}
	if in.CreationMonth != "" {
		if _, err := time.Parse("2006-01", in.CreationMonth); err != nil {
			return validationf("creation_month must look like 2006-01")
		}
	}
	return nil
}

func httpURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ContentStatus is the public view of an item's distribution state.
type ContentStatus struct {
	ID             uint64            `json:"id"`
	AuthStatus     models.AuthStatus `json:"auth_status"`
	Shared         bool              `json:"shared"`
	RevenueHeld    bool              `json:"revenue_held"`
	ItemBalance    decimal.Decimal   `json:"item_balance"`
	MaxItemBalance decimal.Decimal   `json:"max_item_balance"`
	Pulse          decimal.Decimal   `json:"pulse"`
	PlayCount      int64             `json:"play_count"`
	Playable       bool              `json:"playable"`
}

// ContentLogic manages the content registry and item pools.
type ContentLogic struct {
	store  *dao.Store
	ledger *Ledger
	poc    *PocTracker
	media  MediaResolver
	econ   config.Economy
	logger *slog.Logger
}

func NewContentLogic(store *dao.Store, ledger *Ledger, poc *PocTracker, media MediaResolver, econ config.Economy, logger *slog.Logger) *ContentLogic {
	return &ContentLogic{store: store, ledger: ledger, poc: poc, media: media, econ: econ, logger: logger}
}

// Upload registers a new item and funds its pool from the owner's balance.
func (l *ContentLogic) Upload(ctx context.Context, ownerID uint64, req UploadRequest) (*models.ContentItem, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, validationf("title is required")
	}
	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = "audio"
	}
	if mediaType != "audio" && mediaType != "video" {
		return nil, validationf("media_type must be audio or video")
	}
	pool := decimal.NewFromFloat(l.econ.DefaultItemPool)
	if req.Pool != nil {
		pool = *req.Pool
	}
	if !pool.IsPositive() {
		return nil, validationf("pool must be positive")
	}

	item := &models.ContentItem{
		OwnerID:        ownerID,
		Title:          title,
		Artist:         strings.TrimSpace(req.Artist),
		Genre:          strings.TrimSpace(req.Genre),
		Country:        strings.TrimSpace(req.Country),
		MediaType:      mediaType,
		MediaURL:       strings.TrimSpace(req.MediaURL),
		ItemBalance:    pool,
		MaxItemBalance: pool,
		AuthStatus:     models.AuthUnverified,
	}
	switch {
	case req.MediaKey != "":
		info, err := l.media.Resolve(ctx, req.MediaKey)
		if errors.Is(err, pkg.ErrMediaNotFound) {
			return nil, validationf("media_key %q is unknown to the media store", req.MediaKey)
		}
		if err != nil {
			return nil, internal("resolve media", err)
		}
		item.MediaKey = info.Key
		item.MediaURL = info.URL
		item.MediaSizeBytes = info.SizeBytes
		item.DurationSeconds = info.DurationSeconds
		if strings.HasPrefix(info.ContentType, "video/") {
			item.MediaType = "video"
		}
	case item.MediaURL == "":
		return nil, validationf("media_key or media_url is required")
	}

	err := l.store.Transaction(ctx, func(tx *dao.Store) error {
		if err := tx.Contents.CreateContent(item); err != nil {
			return internal("create content", err)
		}
		cid := item.ID
		_, err := l.ledger.Debit(ctx, tx, Entry{
			UserID:    ownerID,
			Amount:    pool,
			Type:      models.TxCharge,
			Note:      fmt.Sprintf("pool for content %d", item.ID),
			ContentID: &cid,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("content uploaded", "content_id", item.ID, "owner_id", ownerID, "pool", pool.String())
	return item, nil
}

// Charge tops up the pool of an owned item.
func (l *ContentLogic) Charge(ctx context.Context, ownerID, contentID uint64, amount decimal.Decimal) (*models.ContentItem, error) {
	if !amount.IsPositive() {
		return nil, validationf("amount must be positive")
	}
	var item *models.ContentItem
	err := l.store.Transaction(ctx, func(tx *dao.Store) error {
		cur, err := l.owned(tx, ownerID, contentID)
		if err != nil {
			return err
		}
		if cur.AuthStatus == models.AuthRejected {
			return ErrInvalidTransition
		}
		cid := contentID
		if _, err := l.ledger.Debit(ctx, tx, Entry{
			UserID:    ownerID,
			Amount:    amount,
			Type:      models.TxCharge,
			Note:      fmt.Sprintf("recharge of content %d", contentID),
			ContentID: &cid,
		}); err != nil {
			return err
		}
		if _, err := tx.Contents.Charge(contentID, ownerID, amount); err != nil {
			return internal("charge content", err)
		}
		item, err = tx.Contents.GetContentByID(contentID)
		if err != nil {
			return internal("reload content", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SetShared toggles distribution of an owned item. Only verified items can
// be shared.
func (l *ContentLogic) SetShared(ctx context.Context, ownerID, contentID uint64, shared bool) (*models.ContentItem, error) {
	var item *models.ContentItem
	err := l.store.Transaction(ctx, func(tx *dao.Store) error {
		if _, err := l.owned(tx, ownerID, contentID); err != nil {
			return err
		}
		ok, err := tx.Contents.SetShared(contentID, shared)
		if err != nil {
			return internal("set shared", err)
		}
		if !ok {
			return ErrInvalidTransition
		}
		item, err = tx.Contents.GetContentByID(contentID)
		if err != nil {
			return internal("reload content", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RequestAuth files a verification request for an owned item. Only one
// request per item can be pending, and verified items need none.
func (l *ContentLogic) RequestAuth(ctx context.Context, ownerID, contentID uint64, in AuthRequestInput) (*models.AuthRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var req *models.AuthRequest
	err := l.store.Transaction(ctx, func(tx *dao.Store) error {
		item, err := l.owned(tx, ownerID, contentID)
		if err != nil {
			return err
		}
		switch item.AuthStatus {
		case models.AuthVerified:
			return ErrAlreadyVerified
		case models.AuthRejected:
			return ErrInvalidTransition
		}
		_, err = tx.AuthRequests.GetPendingByContent(contentID)
		if err == nil {
			return ErrAuthRequestPending
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return internal("load auth request", err)
		}

		req = &models.AuthRequest{
			ContentID:     contentID,
			UserID:        ownerID,
			SourceURL:     in.SourceURL,
			ProfileURL:    in.ProfileURL,
			PlanType:      strings.TrimSpace(in.PlanType),
			CreationMonth: in.CreationMonth,
			EmailProof:    strings.TrimSpace(in.EmailProof),
			ExtraNotes:    strings.TrimSpace(in.ExtraNotes),
			Status:        models.AuthRequestPending,
		}
		if err := tx.AuthRequests.CreateAuthRequest(req); err != nil {
			return internal("create auth request", err)
		}
		_, err = l.poc.Apply(ctx, tx, ownerID, l.econ.PocAuthRequest, ReasonAuthRequested)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("verification requested", "content_id", contentID, "request_id", req.ID)
	return req, nil
}

// AuthRequests lists the verification requests of an item to its owner or
// an admin.
func (l *ContentLogic) AuthRequests(ctx context.Context, viewer *models.User, contentID uint64) ([]models.AuthRequest, error) {
	st := l.store.WithContext(ctx)
	item, err := st.Contents.GetContentByID(contentID)
	if err != nil {
		return nil, lookupErr("content", err)
	}
	if viewer.Role != models.RoleAdmin && item.OwnerID != viewer.ID {
		return nil, forbidden("content belongs to another user")
	}
	reqs, err := st.AuthRequests.ListByContent(contentID)
	if err != nil {
		return nil, internal("list auth requests", err)
	}
	return reqs, nil
}

// Approve settles the pending verification request of an unverified item
// and adjusts the owner's POC accordingly.
func (l *ContentLogic) Approve(ctx context.Context, contentID uint64, approved bool) (*models.ContentItem, error) {
	to, delta, reason := models.AuthVerified, l.econ.PocApproved, ReasonContentApproved
	reqStatus := models.AuthRequestApproved
	if !approved {
		to, delta, reason = models.AuthRejected, l.econ.PocApprovalDenied, ReasonContentRejected
		reqStatus = models.AuthRequestRejected
	}
	var item *models.ContentItem
	err := l.store.Transaction(ctx, func(tx *dao.Store) error {
		cur, err := tx.Contents.GetContentForUpdate(contentID)
		if err != nil {
			return lookupErr("content", err)
		}
		if cur.AuthStatus != models.AuthUnverified {
			return ErrInvalidTransition
		}
		pending, err := tx.AuthRequests.GetPendingByContent(contentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoAuthRequest
		}
		if err != nil {
			return internal("load auth request", err)
		}
		ok, err := tx.Contents.TransitionAuthStatus(contentID, models.AuthUnverified, to)
		if err != nil {
			return internal("transition auth status", err)
		}
		if !ok {
			return ErrInvalidTransition
		}
		if _, err := tx.AuthRequests.Review(pending.ID, reqStatus, time.Now().UTC()); err != nil {
			return internal("review auth request", err)
		}
		if _, err := l.poc.Apply(ctx, tx, cur.OwnerID, delta, reason); err != nil {
			return err
		}
		item, err = tx.Contents.GetContentByID(contentID)
		if err != nil {
			return internal("reload content", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("content reviewed", "content_id", contentID, "auth_status", item.AuthStatus)
	return item, nil
}

func (l *ContentLogic) Get(ctx context.Context, contentID uint64) (*models.ContentItem, error) {
	item, err := l.store.WithContext(ctx).Contents.GetContentByID(contentID)
	if err != nil {
		return nil, lookupErr("content", err)
	}
	return item, nil
}

// Status reports whether an item can currently be played.
func (l *ContentLogic) Status(ctx context.Context, contentID uint64) (*ContentStatus, error) {
	st := l.store.WithContext(ctx)
	item, err := st.Contents.GetContentByID(contentID)
	if err != nil {
		return nil, lookupErr("content", err)
	}
	playable := item.Playable()
	if playable {
		owner, err := st.Users.GetUserByID(item.OwnerID)
		if err != nil {
			return nil, lookupErr("owner", err)
		}
		playable = !owner.Forfeited
	}
	return &ContentStatus{
		ID:             item.ID,
		AuthStatus:     item.AuthStatus,
		Shared:         item.Shared,
		RevenueHeld:    item.RevenueHeld,
		ItemBalance:    item.ItemBalance,
		MaxItemBalance: item.MaxItemBalance,
		Pulse:          item.Pulse,
		PlayCount:      item.PlayCount,
		Playable:       playable,
	}, nil
}

func (l *ContentLogic) ListMine(ctx context.Context, ownerID uint64, page Page) ([]models.ContentItem, error) {
	items, err := l.store.WithContext(ctx).Contents.ListContentsByOwner(ownerID, page.Limit, page.Offset)
	if err != nil {
		return nil, internal("list contents", err)
	}
	return items, nil
}

// owned loads and locks an item for a change by its owner.
func (l *ContentLogic) owned(tx *dao.Store, ownerID, contentID uint64) (*models.ContentItem, error) {
	item, err := tx.Contents.GetContentForUpdate(contentID)
	if err != nil {
		return nil, lookupErr("content", err)
	}
	if item.OwnerID != ownerID {
		return nil, forbidden("content belongs to another user")
	}
	return item, nil
}
