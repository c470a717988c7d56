package localport

import (
	"fmt"

	"github.com/google/uuid"
)

// identityNamespace is the fixed namespace UUID used to derive deterministic
// ServiceIds via UUID v5. Changing this value would change every id on
// upgrade, so it must never change.
var identityNamespace = uuid.MustParse("6f6e7570-6f72-7466-6f72-776172640000")

// ServiceId is a deterministic identifier derived from a ServiceDefinition's
// identifying fields. Two definitions that differ only in non-identifying
// fields (tags, description, probe tuning) produce the same id; any change
// to an identifying field produces a different id.
type ServiceId uuid.UUID

// String returns the canonical string form of the id.
//
// Returns:
//   - string: the id in UUID string form.
func (id ServiceId) String() string {
	return uuid.UUID(id).String()
}

// ShortString returns an 8-character prefix of the id, used in log file
// names where the full UUID would be unwieldy.
//
// Returns:
//   - string: the first 8 hex characters of the id.
func (id ServiceId) ShortString() string {
	s := uuid.UUID(id).String()
	s = stripDashes(s)
	if len(s) < 8 {
		return s
	}
	return s[:8]
}

// stripDashes removes hyphens from a UUID string representation.
//
// Params:
//   - s: the hyphenated UUID string.
//
// Returns:
//   - string: the string with hyphens removed.
func stripDashes(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// ParseServiceId parses s as a canonical UUID string into a ServiceId, for
// control-surface requests (e.g. cleanup(ids)) that name a service by its
// id rather than its name.
//
// Params:
//   - s: the UUID string form.
//
// Returns:
//   - ServiceId: the parsed id.
//   - error: a parse error if s is not a valid UUID.
func ParseServiceId(s string) (ServiceId, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ServiceId{}, fmt.Errorf("invalid service id %q: %w", s, err)
	}
	return ServiceId(u), nil
}

// DeriveServiceId computes the deterministic id for a ServiceDefinition from
// its identifying fields only: name, technology, local port, remote port,
// and technology-specific identity (kubernetes: namespace+resource+kind[+context];
// ssh: host+port[+user]).
//
// Params:
//   - def: the service definition to derive an id for.
//
// Returns:
//   - ServiceId: the deterministic id for this definition.
func DeriveServiceId(def ServiceDefinition) ServiceId {
	key := fmt.Sprintf("%s|%s|%d|%d|%s", def.Name, def.Technology, def.LocalPort, def.RemotePort, identitySuffix(def))
	return ServiceId(uuid.NewSHA1(identityNamespace, []byte(key)))
}

// identitySuffix builds the technology-specific portion of the identity key.
//
// Params:
//   - def: the service definition.
//
// Returns:
//   - string: a stable string encoding the technology-specific identity.
func identitySuffix(def ServiceDefinition) string {
	switch def.Technology {
	case TechnologyKubernetes:
		if def.Kubernetes == nil {
			return ""
		}
		return fmt.Sprintf("%s/%s/%s/%s", def.Kubernetes.Namespace, def.Kubernetes.Kind, def.Kubernetes.Name, def.Kubernetes.Context)
	case TechnologySSH:
		if def.SSH == nil {
			return ""
		}
		return fmt.Sprintf("%s:%d/%s", def.SSH.Host, def.SSH.Port, def.SSH.User)
	default:
		return ""
	}
}
