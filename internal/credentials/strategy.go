package credentials

import "github.com/mpetrov/boxstrap/internal/envdetect"

// Strategy is the credential strategy selected for this container run.
// Exactly one strategy is active at a time.
type Strategy int

const (
	// StrategyNone makes no filesystem changes and prints remediation.
	StrategyNone Strategy = iota
	// StrategyRolesAnywhere materializes certificate-based credentials.
	StrategyRolesAnywhere
	// StrategyHostCopy copies the mounted host AWS files into place.
	StrategyHostCopy
)

func (s Strategy) String() string {
	switch s {
	case StrategyRolesAnywhere:
		return "roles-anywhere"
	case StrategyHostCopy:
		return "host-copy"
	default:
		return "none"
	}
}

// Select maps environment and available inputs to a strategy.
// Deterministic: the same snapshot always yields the same strategy.
//
//	codespaces            -> roles-anywhere
//	local-host + creds    -> host-copy
//	local-host, no creds  -> none
//	local + full bundle   -> roles-anywhere
//	local otherwise       -> none
func Select(env envdetect.Environment, bundle Bundle, hostCredsFile bool) Strategy {
	switch env {
	case envdetect.Codespaces:
		return StrategyRolesAnywhere
	case envdetect.LocalHost:
		if hostCredsFile {
			return StrategyHostCopy
		}
		return StrategyNone
	default:
		if bundle.Complete() {
			return StrategyRolesAnywhere
		}
		return StrategyNone
	}
}
