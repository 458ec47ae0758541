package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505", Constraint: "subscribers_pkey"}

	if !isUniqueViolation(dup) {
		t.Error("duplicate-key error not recognized")
	}
	if !isUniqueViolation(fmt.Errorf("insert subscriber: %w", dup)) {
		t.Error("wrapped duplicate-key error not recognized")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("foreign-key violation misread as duplicate key")
	}
	if isUniqueViolation(errors.New("connection refused")) {
		t.Error("plain error misread as duplicate key")
	}
	if isUniqueViolation(nil) {
		t.Error("nil misread as duplicate key")
	}
}
