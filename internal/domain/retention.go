package domain

import (
	"fmt"
	"strings"
)

// RetentionPolicy selects what happens to frame files once their batch
// has been handed to the encoder.
type RetentionPolicy int

const (
	// KeepAll never deletes consumed frame files.
	KeepAll RetentionPolicy = iota
	// DeleteOnSuccess deletes every frame file of a batch after encoding.
	DeleteOnSuccess
	// DeleteWhenExceed keeps frame files until their total size exceeds
	// the memory budget, then evicts oldest first.
	DeleteWhenExceed
)

// String returns the configuration name of the policy.
func (p RetentionPolicy) String() string {
	switch p {
	case KeepAll:
		return "keep-all"
	case DeleteOnSuccess:
		return "delete-on-success"
	case DeleteWhenExceed:
		return "delete-when-exceed"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the known policies.
func (p RetentionPolicy) Valid() bool {
	return p >= KeepAll && p <= DeleteWhenExceed
}

// ParseRetentionPolicy parses a policy name or its numeric code (0, 1, 2).
func ParseRetentionPolicy(s string) (RetentionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keep-all", "keepall", "keep_all", "0":
		return KeepAll, nil
	case "delete-on-success", "deleteonsuccess", "delete_on_success", "1":
		return DeleteOnSuccess, nil
	case "delete-when-exceed", "deletewhenexceed", "delete_when_exceed", "2":
		return DeleteWhenExceed, nil
	}
	return KeepAll, fmt.Errorf("%w: unknown retention policy %q", ErrInvalidConfig, s)
}
