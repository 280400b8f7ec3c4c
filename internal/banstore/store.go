// Package banstore persists ban entries and their audit trail to disk as
// JSON, matching the on-disk shape Infrarust's ban system used: a
// `{bans, audit_logs, format_version}` document, atomically rewritten.
package banstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// SubjectKind identifies what a BanEntry matches against.
type SubjectKind string

const (
	SubjectIP       SubjectKind = "ip"
	SubjectUUID     SubjectKind = "uuid"
	SubjectUsername SubjectKind = "username"
)

// BanEntry is one ban. ExpiresAt is the zero Time for a permanent ban.
type BanEntry struct {
	Subject     SubjectKind `json:"subject"`
	Value       string      `json:"value"`
	Reason      string      `json:"reason"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   time.Time   `json:"expires_at,omitempty"`
}

func (e BanEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// AuditAction is what happened to a ban entry.
type AuditAction string

const (
	AuditAdded   AuditAction = "added"
	AuditRemoved AuditAction = "removed"
)

// BanAuditLogEntry records one add/remove against the store.
type BanAuditLogEntry struct {
	Action    AuditAction `json:"action"`
	Subject   SubjectKind `json:"subject"`
	Value     string      `json:"value"`
	Reason    string      `json:"reason,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// formatVersion is the current on-disk schema version.
const formatVersion = 1

type fileStorage struct {
	Bans          []BanEntry         `json:"bans"`
	AuditLogs     []BanAuditLogEntry `json:"audit_logs,omitempty"`
	FormatVersion uint8              `json:"format_version"`
}

// Store is an in-memory ban set backed by an on-disk JSON file, set-keyed
// per subject kind (spec.md §4.2's "set semantics per subject kind").
type Store struct {
	mu    sync.RWMutex
	path  string
	bans  map[SubjectKind]map[string]BanEntry
	audit []BanAuditLogEntry
	now   func() time.Time
}

// Open loads path if it exists, or starts empty if it doesn't.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		bans: map[SubjectKind]map[string]BanEntry{
			SubjectIP:       {},
			SubjectUUID:     {},
			SubjectUsername: {},
		},
		now: time.Now,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("banstore: reading %s: %w", path, err)
	}

	var fs fileStorage
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("banstore: parsing %s: %w", path, err)
	}
	for _, entry := range fs.Bans {
		s.bans[entry.Subject][entry.Value] = entry
	}
	s.audit = fs.AuditLogs
	return s, nil
}

// Lookup implements policy.BanLookup: it checks ip, uuid, and username (any
// non-empty) against unexpired bans, in that order.
func (s *Store) Lookup(ip, uuid, username string) (reason string, banned bool) {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range []struct {
		kind  SubjectKind
		value string
	}{
		{SubjectIP, ip},
		{SubjectUUID, uuid},
		{SubjectUsername, username},
	} {
		if c.value == "" {
			continue
		}
		if entry, ok := s.bans[c.kind][strings.ToLower(c.value)]; ok && !entry.expired(now) {
			return entry.Reason, true
		}
	}
	return "", false
}

// Add inserts or replaces a ban entry, appends an audit record, and
// persists the store.
func (s *Store) Add(kind SubjectKind, value, reason string, expiresAt time.Time) error {
	value = strings.ToLower(value)

	s.mu.Lock()
	s.bans[kind][value] = BanEntry{
		Subject:   kind,
		Value:     value,
		Reason:    reason,
		CreatedAt: s.now(),
		ExpiresAt: expiresAt,
	}
	s.audit = append(s.audit, BanAuditLogEntry{
		Action: AuditAdded, Subject: kind, Value: value, Reason: reason, Timestamp: s.now(),
	})
	err := s.persistLocked()
	s.mu.Unlock()
	return err
}

// Remove deletes a ban entry, appends an audit record, and persists the
// store. Removing a value that isn't banned is a no-op (still audited).
func (s *Store) Remove(kind SubjectKind, value string) error {
	value = strings.ToLower(value)

	s.mu.Lock()
	delete(s.bans[kind], value)
	s.audit = append(s.audit, BanAuditLogEntry{
		Action: AuditRemoved, Subject: kind, Value: value, Timestamp: s.now(),
	})
	err := s.persistLocked()
	s.mu.Unlock()
	return err
}

// List returns every currently-stored ban entry (including expired ones;
// callers that care about expiry should filter by ExpiresAt themselves).
func (s *Store) List() []BanEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]BanEntry, 0)
	for _, set := range s.bans {
		for _, entry := range set {
			out = append(out, entry)
		}
	}
	return out
}

// persistLocked writes the full store to disk via write-temp-then-rename,
// so a crash mid-write never leaves a truncated ban file. Caller must hold
// s.mu for writing.
func (s *Store) persistLocked() error {
	fs := fileStorage{FormatVersion: formatVersion, AuditLogs: s.audit}
	for _, set := range s.bans {
		for _, entry := range set {
			fs.Bans = append(fs.Bans, entry)
		}
	}

	data, err := json.MarshalIndent(fs, "", "  ")
	if err != nil {
		return fmt.Errorf("banstore: marshaling: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".banstore-*.tmp")
	if err != nil {
		return fmt.Errorf("banstore: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("banstore: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("banstore: closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("banstore: renaming into place: %w", err)
	}
	return nil
}
