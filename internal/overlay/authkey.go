package overlay

// PlaceholderKey is the sentinel written at infrastructure deploy time,
// before a real key has been minted.
const PlaceholderKey = "PLACEHOLDER_UPDATE_AFTER_DEPLOYMENT"

// KeyPrefix is the literal prefix every valid pre-shared auth key
// carries.
const KeyPrefix = "tskey-"

// KeyCheck is the tri-state result of validating a fetched auth key.
// All non-OK results are graceful skips, not failures: the overlay
// network is optional infrastructure.
type KeyCheck int

const (
	KeyOK KeyCheck = iota
	KeyEmpty
	KeyPlaceholder
	KeyBadPrefix
)

// CheckAuthKey validates a fetched key value. allowAnyPrefix disables
// the literal-prefix format check for deployments that mint keys with
// a different shape.
func CheckAuthKey(value string, allowAnyPrefix bool) KeyCheck {
	switch {
	case value == "":
		return KeyEmpty
	case value == PlaceholderKey:
		return KeyPlaceholder
	case !allowAnyPrefix && !hasKeyPrefix(value):
		return KeyBadPrefix
	default:
		return KeyOK
	}
}

func hasKeyPrefix(v string) bool {
	return len(v) > len(KeyPrefix) && v[:len(KeyPrefix)] == KeyPrefix
}
