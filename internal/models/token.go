package models

import "time"

// Token is the opaque bearer credential issued to an Account on login.
type Token struct {
	Key       string    `json:"-"`
	AccountID int64     `json:"-"`
	CreatedAt time.Time `json:"-"`
}
