package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotVersion is the schema version stamped on locally saved snapshots.
const SnapshotVersion = 1

// Snapshot is the complete serializable state at one instant. The same shape
// is stored locally (with SavedAt) and remotely (with LastUpdated, Revision
// and Origin).
type Snapshot struct {
	Version      int                        `json:"version,omitempty"`
	Transactions []Transaction              `json:"transactions"`
	Budgets      map[string]decimal.Decimal `json:"budgets"`
	Goals        []Goal                     `json:"goals"`
	Debts        []Debt                     `json:"debts"`
	Settings     Settings                   `json:"settings"`
	SavedAt      *time.Time                 `json:"savedAt,omitempty"`
	LastUpdated  *time.Time                 `json:"lastUpdated,omitempty"`
	Revision     int64                      `json:"revision,omitempty"`
	Origin       string                     `json:"origin,omitempty"`
}

// EmptySnapshot returns a snapshot with empty collections and default settings.
func EmptySnapshot() *Snapshot {
	s := &Snapshot{Settings: DefaultSettings()}
	s.normalize()
	return s
}

// DecodeSnapshot parses a JSON snapshot. Settings fields absent from data keep
// their defaults and missing collections decode as empty.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	s := &Snapshot{Settings: DefaultSettings()}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	s.normalize()
	return s, nil
}

// Encode serializes the snapshot.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Transactions = append([]Transaction(nil), s.Transactions...)
	c.Goals = make([]Goal, len(s.Goals))
	for i, g := range s.Goals {
		c.Goals[i] = g.clone()
	}
	c.Debts = append([]Debt(nil), s.Debts...)
	c.Budgets = CloneBudgets(s.Budgets)
	if s.SavedAt != nil {
		t := *s.SavedAt
		c.SavedAt = &t
	}
	if s.LastUpdated != nil {
		t := *s.LastUpdated
		c.LastUpdated = &t
	}
	c.normalize()
	return &c
}

// CloneBudgets copies a budget mapping.
func CloneBudgets(b map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

func (s *Snapshot) normalize() {
	if s.Transactions == nil {
		s.Transactions = []Transaction{}
	}
	if s.Budgets == nil {
		s.Budgets = map[string]decimal.Decimal{}
	}
	if s.Goals == nil {
		s.Goals = []Goal{}
	}
	if s.Debts == nil {
		s.Debts = []Debt{}
	}
}

func (g Goal) clone() Goal {
	if g.Deadline != nil {
		d := *g.Deadline
		g.Deadline = &d
	}
	return g
}
