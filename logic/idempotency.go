package logic

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Taolee-crypto/timelink-backend/dao"
	"github.com/Taolee-crypto/timelink-backend/models"

	"github.com/mr-tron/base58"
	"github.com/zeebo/blake3"
	"gorm.io/gorm"
)

const maxIdempotencyKeyLen = 64

const (
	scopePlay    = "play"
	scopeResolve = "resolve"
)

// fingerprint hashes the canonical JSON form of a request.
func fingerprint(parts ...interface{}) (string, error) {
	data, err := json.Marshal(parts)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return base58.Encode(sum[:]), nil
}

func scopedKey(scope string, userID uint64, key string) string {
	return fmt.Sprintf("%s:%d:%s", scope, userID, key)
}

func checkIdempotencyKey(key string) error {
	if len(key) > maxIdempotencyKeyLen {
		return validationf("idempotency key longer than %d characters", maxIdempotencyKeyLen)
	}
	return nil
}

// replay looks up a stored response. It reports false when the key is
// unused and fails when the key was used for a different request.
func replay(st *dao.Store, key, fp string, out interface{}) (bool, error) {
	rec, err := st.Idempotency.GetKey(key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, internal("load idempotency key", err)
	}
	if rec.Fingerprint != fp {
		return false, ErrIdempotencyMismatch
	}
	if err := json.Unmarshal(rec.Response, out); err != nil {
		return false, internal("decode stored response", err)
	}
	return true, nil
}

func remember(tx *dao.Store, key, scope string, userID uint64, fp string, resp interface{}) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return internal("encode response", err)
	}
	rec := &models.IdempotencyKey{
		Key:         key,
		Scope:       scope,
		UserID:      userID,
		Fingerprint: fp,
		Response:    data,
	}
	if err := tx.Idempotency.SaveKey(rec); err != nil {
		return internal("save idempotency key", err)
	}
	return nil
}
