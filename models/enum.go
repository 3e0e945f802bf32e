package models

import (
	"database/sql/driver"
	"fmt"
)

func scanString(src interface{}) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("cannot scan %T into string enum", src)
	}
}

func (s AuthStatus) Value() (driver.Value, error) { return string(s), nil }

func (s *AuthStatus) Scan(src interface{}) error {
	v, err := scanString(src)
	*s = AuthStatus(v)
	return err
}

func (t TxType) Value() (driver.Value, error) { return string(t), nil }

func (t *TxType) Scan(src interface{}) error {
	v, err := scanString(src)
	*t = TxType(v)
	return err
}

func (s DisputeStatus) Value() (driver.Value, error) { return string(s), nil }

func (s *DisputeStatus) Scan(src interface{}) error {
	v, err := scanString(src)
	*s = DisputeStatus(v)
	return err
}

func (c DisputeCategory) Value() (driver.Value, error) { return string(c), nil }

func (c *DisputeCategory) Scan(src interface{}) error {
	v, err := scanString(src)
	*c = DisputeCategory(v)
	return err
}

func (s AuthRequestStatus) Value() (driver.Value, error) { return string(s), nil }

func (s *AuthRequestStatus) Scan(src interface{}) error {
	v, err := scanString(src)
	*s = AuthRequestStatus(v)
	return err
}
