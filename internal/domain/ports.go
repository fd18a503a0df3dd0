package domain

import "context"

// ListStore loads and replaces the persisted shopping list as a whole value.
type ListStore interface {
	LoadList(ctx context.Context) (ShoppingList, error)
	SaveList(ctx context.Context, list ShoppingList) error
}

// SubstitutionStore loads and replaces the persisted substitution set.
type SubstitutionStore interface {
	LoadSubstitutions(ctx context.Context) (SubstitutionSet, error)
	SaveSubstitutions(ctx context.Context, set SubstitutionSet) error
}

// CredentialStore provides the recipe API credentials.
type CredentialStore interface {
	LoadCredentials(ctx context.Context) (Credentials, error)
	SaveCredentials(ctx context.Context, creds Credentials) error
}

// SettingsStore persists presentation preferences.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, settings Settings) error
}
