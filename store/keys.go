package store

import "strings"

// KeyRoot prefixes every key the engine writes, keeping the whole engine's
// footprint under one namespace in a shared store.
const KeyRoot = "touchstone"

// ProspectsKey is the hash of per-form selection counters for a test.
func ProspectsKey(testID string) string {
	return KeyRoot + ":" + testID + ":nprospects"
}

// ScoresKey is the hash of per-form cumulative scores for a test.
func ScoresKey(testID string) string {
	return KeyRoot + ":" + testID + ":scores"
}

// SelectionKey is the sticky-selection pointer for one participant in a test.
func SelectionKey(testID, participantID string) string {
	return KeyRoot + ":" + testID + ":" + participantID + ":selection"
}

// CommittedKey is the duplicate-commit guard for one participant in a test.
func CommittedKey(testID, participantID string) string {
	return KeyRoot + ":" + testID + ":" + participantID + ":committed"
}

// TestPrefix is the common prefix of every key belonging to a test.
func TestPrefix(testID string) string {
	return KeyRoot + ":" + testID + ":"
}

// TestPattern matches every key belonging to a test.
func TestPattern(testID string) string {
	return TestPrefix(testID) + "*"
}

// RekeyTest maps a key from one test's namespace into another's. The second
// return is false when key does not belong to oldID.
func RekeyTest(key, oldID, newID string) (string, bool) {
	prefix := TestPrefix(oldID)
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	return TestPrefix(newID) + key[len(prefix):], true
}
