// Package envdetect classifies the runtime environment a container was
// started in. Classification is a pure function of two probes — a hosted
// session marker variable and a mounted host-credentials directory — so
// it can be computed once at startup and tested without a filesystem.
package envdetect

import "os"

// Environment is the runtime environment classification.
type Environment int

const (
	// Local is a plain container with no host mounts and no hosted marker.
	Local Environment = iota
	// LocalHost is a local container with the host's AWS directory mounted.
	LocalHost
	// Codespaces is a hosted devcontainer session.
	Codespaces
)

func (e Environment) String() string {
	switch e {
	case Codespaces:
		return "codespaces"
	case LocalHost:
		return "local-host"
	default:
		return "local"
	}
}

// Probes holds the two facts classification depends on.
type Probes struct {
	// CodespacesMarker is true when the hosted-session variable is set.
	CodespacesMarker bool
	// HostCredentialsDir is true when the host AWS mount directory exists.
	HostCredentialsDir bool
}

// Classify maps probes to an environment. Precedence is fixed:
// codespaces beats local-host beats local.
func Classify(p Probes) Environment {
	switch {
	case p.CodespacesMarker:
		return Codespaces
	case p.HostCredentialsDir:
		return LocalHost
	default:
		return Local
	}
}

// DetectProbes builds probes from the live process environment.
// getenv is injected so callers and tests control the variable source;
// hostAWSDir is the mount point to stat (e.g. /host-aws).
func DetectProbes(getenv func(string) string, hostAWSDir string) Probes {
	p := Probes{
		CodespacesMarker: getenv("CODESPACES") != "",
	}
	if info, err := os.Stat(hostAWSDir); err == nil && info.IsDir() {
		p.HostCredentialsDir = true
	}
	return p
}
