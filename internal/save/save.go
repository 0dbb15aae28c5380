// Package save persists game bundles into five fixed slots on a store.Store.
// Slot 0 doubles as the autosave; export and import move the autosave
// bundle in and out as a portable base64 string.
package save

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atmx/caravan/internal/model"
	"github.com/atmx/caravan/internal/store"
)

// Version is written into every bundle. Bundles with a different major
// version are rejected on load.
const Version = "2.0.0"

const (
	// Slots is the number of save slots.
	Slots = 5
	// AutosaveSlot is the slot written after every accepted action.
	AutosaveSlot = 0

	keyPrefix = "save:slot:"
)

var (
	ErrInvalidBundle       = errors.New("save: invalid bundle")
	ErrIncompatibleVersion = errors.New("save: incompatible bundle version")
	ErrSlotOutOfRange      = errors.New("save: slot out of range")
	ErrEmptySlot           = errors.New("save: slot is empty")
)

// Bundle is one saved game.
type Bundle struct {
	GameState   *model.GameState   `json:"game_state"`
	Progression *model.Progression `json:"progression"`
	Timestamp   int64              `json:"timestamp"` // unix milliseconds
	Version     string             `json:"version"`
}

// SavedAt returns the bundle timestamp as a time.
func (b Bundle) SavedAt() time.Time {
	return time.UnixMilli(b.Timestamp).UTC()
}

// Validate checks that b carries both halves of a game, a compatible version
// and a structurally sound state.
func (b Bundle) Validate() error {
	if b.GameState == nil || b.Progression == nil {
		return fmt.Errorf("%w: missing game state or progression", ErrInvalidBundle)
	}
	if err := checkVersion(b.Version); err != nil {
		return err
	}

	s := b.GameState
	if s.CurrentLocation == "" || !s.IsUnlocked(s.CurrentLocation) {
		return fmt.Errorf("%w: current location %q is not unlocked", ErrInvalidBundle, s.CurrentLocation)
	}
	if !s.Season.Valid() {
		return fmt.Errorf("%w: unknown season %q", ErrInvalidBundle, s.Season)
	}
	if s.Turns < 0 {
		return fmt.Errorf("%w: negative turn count", ErrInvalidBundle)
	}
	free := s.InventorySlots
	for good, qty := range s.Inventory {
		if qty <= 0 {
			return fmt.Errorf("%w: %s held at %d", ErrInvalidBundle, good, qty)
		}
		if qty > free {
			return fmt.Errorf("%w: inventory exceeds %d slots", ErrInvalidBundle, s.InventorySlots)
		}
		free -= qty
	}
	for _, e := range s.Events {
		if e.RemainingTurns <= 0 {
			return fmt.Errorf("%w: expired event %s", ErrInvalidBundle, e.ID)
		}
	}
	if s.Weather != nil && s.Weather.RemainingTurns <= 0 {
		return fmt.Errorf("%w: expired weather %s", ErrInvalidBundle, s.Weather.ID)
	}

	p := b.Progression
	if p.Level < 1 || p.XP < 0 {
		return fmt.Errorf("%w: level %d with %d xp", ErrInvalidBundle, p.Level, p.XP)
	}
	return nil
}

func checkVersion(v string) error {
	if v == "" {
		return fmt.Errorf("%w: missing version", ErrInvalidBundle)
	}
	major, _, _ := strings.Cut(v, ".")
	want, _, _ := strings.Cut(Version, ".")
	if _, err := strconv.Atoi(major); err != nil {
		return fmt.Errorf("%w: malformed version %q", ErrInvalidBundle, v)
	}
	if major != want {
		return fmt.Errorf("%w: %s, this build reads %s.x", ErrIncompatibleVersion, v, want)
	}
	return nil
}

// Encode returns the portable form of b: base64 over its JSON.
func Encode(b Bundle) (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encode bundle: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode parses and validates a payload produced by Encode.
func Decode(payload string) (Bundle, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: not base64: %v", ErrInvalidBundle, err)
	}
	return unmarshal(data)
}

func unmarshal(data []byte) (Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	if err := b.Validate(); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

// SlotInfo summarises one slot for a save browser.
type SlotInfo struct {
	Slot    int       `json:"slot"`
	Empty   bool      `json:"empty"`
	Err     error     `json:"-"` // set when the stored record is unreadable
	Mode    string    `json:"mode,omitempty"`
	Money   int       `json:"money,omitempty"`
	Turns   int       `json:"turns,omitempty"`
	Level   int       `json:"level,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

// Manager reads and writes bundles through a key-value store.
type Manager struct {
	kv  store.Store
	now func() time.Time
}

// NewManager creates a Manager over kv.
func NewManager(kv store.Store) *Manager {
	return &Manager{kv: kv, now: time.Now}
}

func slotKey(slot int) (string, error) {
	if slot < 0 || slot >= Slots {
		return "", fmt.Errorf("%w: %d (have %d slots)", ErrSlotOutOfRange, slot, Slots)
	}
	return keyPrefix + strconv.Itoa(slot), nil
}

// Save writes state and progression into slot, replacing whatever was there.
// The record is written in one Put, so a failed write leaves the previous
// bundle intact.
func (m *Manager) Save(ctx context.Context, slot int, state *model.GameState, prog *model.Progression) (Bundle, error) {
	key, err := slotKey(slot)
	if err != nil {
		return Bundle{}, err
	}
	b := Bundle{
		GameState:   state,
		Progression: prog,
		Timestamp:   m.now().UnixMilli(),
		Version:     Version,
	}
	if err := b.Validate(); err != nil {
		return Bundle{}, err
	}
	data, err := json.Marshal(b)
	if err != nil {
		return Bundle{}, fmt.Errorf("encode bundle: %w", err)
	}
	if err := m.kv.Put(ctx, key, data); err != nil {
		return Bundle{}, fmt.Errorf("save slot %d: %w", slot, err)
	}
	return b, nil
}

// Load reads the bundle in slot.
func (m *Manager) Load(ctx context.Context, slot int) (Bundle, error) {
	key, err := slotKey(slot)
	if err != nil {
		return Bundle{}, err
	}
	data, err := m.kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return Bundle{}, fmt.Errorf("%w: %d", ErrEmptySlot, slot)
	}
	if err != nil {
		return Bundle{}, fmt.Errorf("load slot %d: %w", slot, err)
	}
	return unmarshal(data)
}

// Delete empties slot.
func (m *Manager) Delete(ctx context.Context, slot int) error {
	key, err := slotKey(slot)
	if err != nil {
		return err
	}
	if err := m.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete slot %d: %w", slot, err)
	}
	return nil
}

// List summarises every slot in order. Unreadable records are reported on
// their SlotInfo rather than failing the listing.
func (m *Manager) List(ctx context.Context) ([]SlotInfo, error) {
	keys, err := m.kv.Keys(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	occupied := make(map[int]bool, len(keys))
	for _, k := range keys {
		slot, err := strconv.Atoi(strings.TrimPrefix(k, keyPrefix))
		if err == nil && slot >= 0 && slot < Slots {
			occupied[slot] = true
		}
	}

	infos := make([]SlotInfo, Slots)
	for i := range infos {
		infos[i].Slot = i
		if !occupied[i] {
			infos[i].Empty = true
			continue
		}
		b, err := m.Load(ctx, i)
		switch {
		case errors.Is(err, ErrEmptySlot):
			infos[i].Empty = true
		case errors.Is(err, ErrInvalidBundle), errors.Is(err, ErrIncompatibleVersion):
			infos[i].Err = err
		case err != nil:
			return nil, err
		default:
			infos[i].Mode = b.GameState.Mode
			infos[i].Money = b.GameState.Money
			infos[i].Turns = b.GameState.Turns
			infos[i].Level = b.Progression.Level
			infos[i].SavedAt = b.SavedAt()
		}
	}
	return infos, nil
}

// HasAutosave reports whether the autosave slot holds a bundle.
func (m *Manager) HasAutosave(ctx context.Context) (bool, error) {
	key, _ := slotKey(AutosaveSlot)
	_, err := m.kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Export returns the autosave bundle in portable form.
func (m *Manager) Export(ctx context.Context) (string, error) {
	b, err := m.Load(ctx, AutosaveSlot)
	if err != nil {
		return "", err
	}
	return Encode(b)
}

// Import validates payload and stores it as the autosave. The autosave is
// left untouched when the payload is rejected.
func (m *Manager) Import(ctx context.Context, payload string) (Bundle, error) {
	b, err := Decode(payload)
	if err != nil {
		return Bundle{}, err
	}
	data, err := json.Marshal(b)
	if err != nil {
		return Bundle{}, fmt.Errorf("encode bundle: %w", err)
	}
	key, _ := slotKey(AutosaveSlot)
	if err := m.kv.Put(ctx, key, data); err != nil {
		return Bundle{}, fmt.Errorf("import: %w", err)
	}
	return b, nil
}
