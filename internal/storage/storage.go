// Package storage keeps normalized images. Objects are named after the
// SHA-256 of their bytes, so storing the same image twice yields the same
// reference.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrInvalidRef = errors.New("invalid image reference")

type ImageStore interface {
	// Save stores data and returns its public reference. created is false
	// when an identical object already existed.
	Save(ctx context.Context, data []byte) (ref string, created bool, err error)
	Delete(ctx context.Context, ref string) error
}

// ObjectName is the content-addressed file name for data.
func ObjectName(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + ".jpg"
}
