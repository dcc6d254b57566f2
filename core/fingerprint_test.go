package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_Deterministic(t *testing.T) {
	titles := []string{"Go 1.25 released", "Understanding UMAP", "BadgerDB internals"}

	first := Fingerprint(titles)
	second := Fingerprint(titles)
	assert.Equal(t, first, second, "same ordered corpus must yield same fingerprint")
	assert.Len(t, first, 64, "BLAKE2b-256 hex digest")
}

func TestFingerprint_OrderSensitive(t *testing.T) {
	titles := []string{"alpha", "beta", "gamma"}
	permuted := []string{"beta", "alpha", "gamma"}

	assert.NotEqual(t, Fingerprint(titles), Fingerprint(permuted),
		"permuting record order must change the fingerprint")
}

func TestFingerprint_AppendSensitive(t *testing.T) {
	titles := []string{"alpha", "beta"}
	extended := []string{"alpha", "beta", "gamma"}

	assert.NotEqual(t, Fingerprint(titles), Fingerprint(extended),
		"appending one title must change the fingerprint")
}

func TestFingerprint_DelimiterSeparated(t *testing.T) {
	// "ab"+"c" and "a"+"bc" concatenate identically; the delimiter must
	// keep them distinct.
	assert.NotEqual(t, Fingerprint([]string{"ab", "c"}), Fingerprint([]string{"a", "bc"}))
}

func TestFingerprintRecords(t *testing.T) {
	records := []*Record{
		{Id: 0, Title: "alpha"},
		{Id: 1, Title: "beta"},
	}
	assert.Equal(t, Fingerprint([]string{"alpha", "beta"}), FingerprintRecords(records))
}
