package currency

import "context"

// DefaultPreferenceKey is the storage key for the user's currency.
const DefaultPreferenceKey = "userCurrency"

// PreferenceStore persists small string values across sessions.
// Get reports a missing key as ("", false, nil).
type PreferenceStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
