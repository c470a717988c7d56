//go:build unix

package adapters

import (
	"context"
	"fmt"
	"os"

	"github.com/kodflow/daemon/internal/domain/localport"
)

// sshBinary is the forwarder binary name this adapter discovers on PATH.
const sshBinary = "ssh"

// sshpassBinary is the non-interactive password-feeder this adapter wraps
// ssh with when AuthHint is "password". ssh itself has no non-interactive
// password flag; sshpass -e reads the password from the SSHPASS
// environment variable, keeping it off argv.
const sshpassBinary = "sshpass"

// sshConnectTimeoutSeconds bounds how long the ssh client waits to establish
// the initial connection before giving up.
const sshConnectTimeoutSeconds = 10

// SSHAdapter spawns `ssh -N -L ...` tunnels for services whose technology is ssh.
type SSHAdapter struct {
	spawner *spawner
}

// NewSSHAdapter creates an SSH subprocess adapter.
//
// Returns:
//   - *SSHAdapter: a ready-to-use adapter.
func NewSSHAdapter() *SSHAdapter {
	return &SSHAdapter{spawner: newSpawner()}
}

// Technology returns localport.TechnologySSH.
//
// Returns:
//   - localport.Technology: the technology this adapter implements.
func (a *SSHAdapter) Technology() localport.Technology {
	return localport.TechnologySSH
}

// Spawn builds and starts an `ssh -N -L <local>:localhost:<remote> ...` tunnel
// with strict host-key checking, a short connect timeout, and
// ExitOnForwardFailure=yes so a failed remote bind terminates the process
// instead of leaving a half-open tunnel. Password authentication, if
// configured, is discouraged but supported: the password is read from the
// environment variable named by def.SSH.PasswordEnv and handed to the child
// only via the SSHPASS environment variable (through sshpass -e), never on
// argv. A key-based AuthHint's identity file is parsed up front so a
// malformed key fails immediately rather than after a restart backoff.
//
// Params:
//   - ctx: context bound to the spawn call only.
//   - def: the service definition; def.SSH must be set.
//   - logPath: the service log file to redirect output into.
//
// Returns:
//   - localport.Handle: the spawned child's handle.
//   - error: localport.ErrToolMissing if ssh (or sshpass, for password auth)
//     is not on PATH, localport.ErrInvalidDefinition for a bad key or a
//     missing/empty password environment variable, or a spawn error.
func (a *SSHAdapter) Spawn(ctx context.Context, def localport.ServiceDefinition, logPath string) (localport.Handle, error) {
	if def.SSH == nil {
		return localport.Handle{}, fmt.Errorf("%w: ssh connection is nil", localport.ErrInvalidDefinition)
	}
	if def.SSH.AuthHint == "key" && def.SSH.IdentityFile != "" {
		if err := validateIdentityFile(def.SSH.IdentityFile); err != nil {
			return localport.Handle{}, fmt.Errorf("%w: %v", localport.ErrInvalidDefinition, err)
		}
	}
	binary, err := resolveBinary(sshBinary)
	if err != nil {
		return localport.Handle{}, err
	}

	args := sshArgs(def)

	if def.SSH.AuthHint == "password" {
		password, ok := os.LookupEnv(def.SSH.PasswordEnv)
		if !ok || password == "" {
			return localport.Handle{}, fmt.Errorf("%w: password_env %q is not set", localport.ErrInvalidDefinition, def.SSH.PasswordEnv)
		}
		sshpass, err := resolveBinary(sshpassBinary)
		if err != nil {
			return localport.Handle{}, err
		}
		wrapped := append([]string{"-e", binary}, args...)
		spec := spawnSpec{
			Binary:          sshpass,
			Args:            wrapped,
			FingerprintArgs: wrapped,
			ExtraEnv:        []string{"SSHPASS=" + password},
		}
		return a.spawner.spawn(ctx, spec, def, logPath)
	}

	spec := spawnSpec{Binary: binary, Args: args, FingerprintArgs: args}
	return a.spawner.spawn(ctx, spec, def, logPath)
}

// sshArgs builds the ssh tunnel argv for def, shared between Spawn and
// ExpectedFingerprint so the two can never disagree.
func sshArgs(def localport.ServiceDefinition) []string {
	s := def.SSH
	args := []string{
		"-N",
		"-L", fmt.Sprintf("%d:localhost:%d", def.LocalPort, def.RemotePort),
		"-o", "StrictHostKeyChecking=yes",
		"-o", fmt.Sprintf("ConnectTimeout=%d", sshConnectTimeoutSeconds),
		"-o", "ExitOnForwardFailure=yes",
	}
	if s.Port != 0 {
		args = append(args, "-p", fmt.Sprintf("%d", s.Port))
	}
	if s.AuthHint == "key" && s.IdentityFile != "" {
		args = append(args, "-i", s.IdentityFile)
	}
	target := s.Host
	if s.User != "" {
		target = fmt.Sprintf("%s@%s", s.User, s.Host)
	}
	return append(args, target)
}

// ExpectedFingerprint reports the argv fingerprint this adapter would
// produce for def, without spawning anything. Used by startup
// reconciliation to verify a persisted PID's command still matches intent.
//
// Params:
//   - def: the service definition; def.SSH must be set.
//
// Returns:
//   - string: the expected fingerprint, or "" if ssh cannot be resolved.
func (a *SSHAdapter) ExpectedFingerprint(def localport.ServiceDefinition) string {
	if def.SSH == nil {
		return ""
	}
	binary, err := resolveBinary(sshBinary)
	if err != nil {
		return ""
	}
	args := sshArgs(def)
	if def.SSH.AuthHint == "password" {
		sshpass, err := resolveBinary(sshpassBinary)
		if err != nil {
			return ""
		}
		return fingerprint(sshpass, append([]string{"-e", binary}, args...))
	}
	return fingerprint(binary, args)
}

// GracefulStop sends the terminate signal to the tunnel's process group.
//
// Params:
//   - pid: the process group leader's PID.
//
// Returns:
//   - error: any error delivering the signal.
func (a *SSHAdapter) GracefulStop(pid int) error {
	return a.spawner.gracefulStop(pid)
}

// ForceStop kills the tunnel's process group unconditionally.
//
// Params:
//   - pid: the process group leader's PID.
//
// Returns:
//   - error: any error delivering the signal.
func (a *SSHAdapter) ForceStop(pid int) error {
	return a.spawner.forceStop(pid)
}

var _ localport.Adapter = (*SSHAdapter)(nil)
