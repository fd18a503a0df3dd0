package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mwhite7112/woodpantry-brewlist/internal/domain"
	"github.com/mwhite7112/woodpantry-brewlist/internal/logger"
)

// Storage keys.
const (
	KeyUserID       = "brewfatherUserId"
	KeyAPIKey       = "brewfatherApiKey"
	KeyShoppingList = "shoppingList"
	KeySubstitution = "substitutions"
	KeySettings     = "settings"
	KeyShowOnOpen   = "showShoppingListOnOpen"
)

// Compile-time interface checks.
var (
	_ domain.ListStore         = (*State)(nil)
	_ domain.SubstitutionStore = (*State)(nil)
	_ domain.CredentialStore   = (*State)(nil)
	_ domain.SettingsStore     = (*State)(nil)
)

// State maps the typed service state onto KV keys. Every load reads the full
// value and every save replaces it.
type State struct {
	kv  KV
	log *logger.Logger
}

// NewState wraps kv.
func NewState(kv KV, log *logger.Logger) *State {
	return &State{kv: kv, log: log}
}

func (s *State) LoadList(ctx context.Context) (domain.ShoppingList, error) {
	list := domain.ShoppingList{}
	if _, err := s.load(ctx, KeyShoppingList, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *State) SaveList(ctx context.Context, list domain.ShoppingList) error {
	if list == nil {
		list = domain.ShoppingList{}
	}
	s.log.Debug("saving shopping list, items=%d", len(list))
	return s.save(ctx, map[string]any{KeyShoppingList: list})
}

func (s *State) LoadSubstitutions(ctx context.Context) (domain.SubstitutionSet, error) {
	set := domain.SubstitutionSet{}
	if _, err := s.load(ctx, KeySubstitution, &set); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *State) SaveSubstitutions(ctx context.Context, set domain.SubstitutionSet) error {
	if set == nil {
		set = domain.SubstitutionSet{}
	}
	s.log.Debug("saving substitutions, groups=%d", len(set))
	return s.save(ctx, map[string]any{KeySubstitution: set})
}

func (s *State) LoadCredentials(ctx context.Context) (domain.Credentials, error) {
	values, err := s.kv.Get(ctx, KeyUserID, KeyAPIKey)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("load credentials: %w", err)
	}
	var creds domain.Credentials
	if raw, ok := values[KeyUserID]; ok {
		if err := json.Unmarshal(raw, &creds.UserID); err != nil {
			return domain.Credentials{}, fmt.Errorf("decode %s: %w", KeyUserID, err)
		}
	}
	if raw, ok := values[KeyAPIKey]; ok {
		if err := json.Unmarshal(raw, &creds.APIKey); err != nil {
			return domain.Credentials{}, fmt.Errorf("decode %s: %w", KeyAPIKey, err)
		}
	}
	return creds, nil
}

func (s *State) SaveCredentials(ctx context.Context, creds domain.Credentials) error {
	return s.save(ctx, map[string]any{KeyUserID: creds.UserID, KeyAPIKey: creds.APIKey})
}

func (s *State) LoadSettings(ctx context.Context) (domain.Settings, error) {
	var settings domain.Settings
	if _, err := s.load(ctx, KeySettings, &settings); err != nil {
		return domain.Settings{}, err
	}
	return settings.WithDefaults(), nil
}

func (s *State) SaveSettings(ctx context.Context, settings domain.Settings) error {
	return s.save(ctx, map[string]any{KeySettings: settings})
}

// SaveListState replaces the list and the substitution set in one KV write.
// With raiseShowOnOpen the show-on-open flag is set in the same write.
func (s *State) SaveListState(ctx context.Context, list domain.ShoppingList, set domain.SubstitutionSet, raiseShowOnOpen bool) error {
	if list == nil {
		list = domain.ShoppingList{}
	}
	if set == nil {
		set = domain.SubstitutionSet{}
	}
	values := map[string]any{KeyShoppingList: list, KeySubstitution: set}
	if raiseShowOnOpen {
		values[KeyShowOnOpen] = true
	}
	s.log.Debug("saving list state, items=%d groups=%d", len(list), len(set))
	return s.save(ctx, values)
}

// SetShowOnOpen records whether the list should open on the next popup.
func (s *State) SetShowOnOpen(ctx context.Context, show bool) error {
	return s.save(ctx, map[string]any{KeyShowOnOpen: show})
}

// TakeShowOnOpen returns the flag and resets it.
func (s *State) TakeShowOnOpen(ctx context.Context) (bool, error) {
	var show bool
	found, err := s.load(ctx, KeyShowOnOpen, &show)
	if err != nil || !found || !show {
		return false, err
	}
	return true, s.SetShowOnOpen(ctx, false)
}

func (s *State) load(ctx context.Context, key string, dst any) (bool, error) {
	values, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	raw, ok := values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *State) save(ctx context.Context, values map[string]any) error {
	entries := make(map[string][]byte, len(values))
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		entries[key] = data
	}
	if err := s.kv.Set(ctx, entries); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
