//go:build unix

// Package adapters provides technology-specific subprocess adapters
// (kubernetes, ssh) that spawn and supervise external forwarder processes
// on behalf of the application supervisor.
package adapters

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"

	"github.com/kodflow/daemon/internal/domain/localport"
	"github.com/kodflow/daemon/internal/infrastructure/process/control"
	infraexec "github.com/kodflow/daemon/internal/infrastructure/process/executor"
	"github.com/kodflow/daemon/internal/infrastructure/servicelog"
)

// spawnSpec is the argv a technology adapter resolved for one service.
type spawnSpec struct {
	// Binary is the resolved absolute (or PATH-found) path to the forwarder binary.
	Binary string
	// Args are the command-line arguments, excluding the binary itself.
	Args []string
	// FingerprintArgs are the argv entries hashed into the fingerprint; secrets
	// (e.g. password env hints) are excluded by the caller before this point.
	FingerprintArgs []string
	// ExtraEnv holds additional "KEY=VALUE" entries appended to the child's
	// environment, e.g. SSHPASS for password-authenticated SSH tunnels. Never
	// placed on Args: a secret passed this way never shows up in argv, `ps`,
	// or the argv fingerprint.
	ExtraEnv []string
}

// spawner holds the mechanics shared by every subprocess adapter: resolving
// the forwarder binary on PATH, starting it detached into its own session
// with output redirected straight to the service log file (no pipe retained
// by the parent, per the detachment requirement), computing a stable argv
// fingerprint, and graceful/forceful process-group termination.
type spawner struct {
	process control.ProcessControl
}

// newSpawner creates a spawner using the Unix process-group control adapter.
//
// Returns:
//   - *spawner: a ready-to-use spawner.
func newSpawner() *spawner {
	return &spawner{process: control.New()}
}

// resolveBinary looks up name on PATH, returning localport.ErrToolMissing if
// it cannot be found. The supervisor treats this as a non-retryable
// configuration error.
//
// Params:
//   - name: the executable name to resolve.
//
// Returns:
//   - string: the resolved path.
//   - error: localport.ErrToolMissing wrapped with name, or nil.
func resolveBinary(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", localport.ErrToolMissing, name)
	}
	return path, nil
}

// spawn starts spec's binary detached into its own session, with stdout and
// stderr bound to the service's log file and stdin left unconnected (the
// null device). Any rotation left over from the previous epoch is applied
// before the child inherits the file. The parent keeps no pipe to the
// child's output; it closes its own file handle once the child has
// inherited it, matching the adapter contract's detachment requirement.
// The child writes to the file directly, so its output is not checked
// against the size limit; rotation happens only through the writer's own
// writes. An epoch header is written once the child's PID is known.
//
// Params:
//   - ctx: context bound to the spawn call only, not the child's lifetime.
//   - spec: the resolved binary and argv to run.
//   - def: the service definition, used only to fill the epoch header.
//   - logPath: the service log file to redirect the child's output into.
//
// Returns:
//   - localport.Handle: PID, fingerprint, and an exit notification channel.
//   - error: any error starting the process.
func (s *spawner) spawn(ctx context.Context, spec spawnSpec, def localport.ServiceDefinition, logPath string) (localport.Handle, error) {
	writer, err := servicelog.Open(logPath, servicelog.Options{})
	if err != nil {
		return localport.Handle{}, fmt.Errorf("opening service log: %w", err)
	}
	defer func() { _ = writer.Close() }()
	// An empty write applies any pending rotation now, so the child inherits
	// the fresh file rather than one the header write would rename away.
	if err := writer.Write(nil); err != nil {
		return localport.Handle{}, fmt.Errorf("rotating service log: %w", err)
	}

	cmd := infraexec.TrustedCommand(ctx, spec.Binary, spec.Args...)
	cmd.Stdin = nil
	cmd.Stdout = writer.File()
	cmd.Stderr = writer.File()
	cmd.Env = append(os.Environ(), spec.ExtraEnv...)
	s.process.SetProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return localport.Handle{}, fmt.Errorf("starting %s: %w", spec.Binary, err)
	}

	_ = writer.WriteEpochHeader(servicelog.EpochHeader{
		ServiceID:         localport.DeriveServiceId(def).String(),
		PID:               cmd.Process.Pid,
		LocalPort:         def.LocalPort,
		RemotePort:        def.RemotePort,
		Technology:        string(def.Technology),
		ConnectionSummary: connectionSummary(def),
		Platform:          runtime.GOOS,
	})

	exitCh := make(chan localport.ExitNotice, 1)
	go func() {
		waitErr := cmd.Wait()
		notice := localport.ExitNotice{}
		var exitErr *exec.ExitError
		switch {
		case waitErr == nil:
			notice.Code = 0
		case errorsAs(waitErr, &exitErr):
			notice.Code = exitErr.ExitCode()
		default:
			notice.Code = -1
			notice.Error = waitErr
		}
		exitCh <- notice
		close(exitCh)
	}()

	return localport.Handle{
		PID:             cmd.Process.Pid,
		ArgvFingerprint: fingerprint(spec.Binary, spec.FingerprintArgs),
		Exit:            exitCh,
	}, nil
}

// errorsAs walks err's Unwrap chain looking for an *exec.ExitError; it
// follows single-error Unwrap only, not errors.Join-style multi-errors.
func errorsAs(err error, target **exec.ExitError) bool {
	for {
		if e, ok := err.(*exec.ExitError); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
		if err == nil {
			return false
		}
	}
}

// fingerprint computes a stable hash over the binary and its argv, used to
// detect a PID whose command no longer matches our intent during startup
// reconciliation.
//
// Params:
//   - binary: the resolved binary path.
//   - args: the argv to fingerprint, with secrets already excluded.
//
// Returns:
//   - string: a hex-encoded sha256 digest.
func fingerprint(binary string, args []string) string {
	h := sha256.New()
	h.Write([]byte(binary))
	for _, a := range args {
		h.Write([]byte{0})
		h.Write([]byte(a))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// gracefulStop sends the terminate signal to the process group led by pid.
//
// Params:
//   - pid: the process group leader's PID.
//
// Returns:
//   - error: any error sending the signal; ignores "no such process".
func (s *spawner) gracefulStop(pid int) error {
	return signalGroup(pid, syscall.SIGTERM)
}

// forceStop sends the kill signal to the process group led by pid.
//
// Params:
//   - pid: the process group leader's PID.
//
// Returns:
//   - error: any error sending the signal; ignores "no such process".
func (s *spawner) forceStop(pid int) error {
	return signalGroup(pid, syscall.SIGKILL)
}

// signalGroup signals the negative PID (the process group) so that the
// forwarder and any children it spawned all receive the signal.
//
// Params:
//   - pid: the process group leader's PID.
//   - sig: the signal to deliver.
//
// Returns:
//   - error: nil if the group no longer exists (already exited).
func signalGroup(pid int, sig syscall.Signal) error {
	err := syscall.Kill(-pid, sig)
	if err != nil && err == syscall.ESRCH {
		return nil
	}
	return err
}

// joinArgsForDiagnostic renders argv for diagnostic/log messages only; it is
// never used to build fingerprints, which operate on the argv slice directly.
func joinArgsForDiagnostic(args []string) string {
	return strings.Join(args, " ")
}

// connectionSummary renders a short human-readable description of def's
// connection target for the epoch header, without any credentials.
func connectionSummary(def localport.ServiceDefinition) string {
	switch def.Technology {
	case localport.TechnologyKubernetes:
		if def.Kubernetes == nil {
			return ""
		}
		k := def.Kubernetes
		if k.Namespace != "" {
			return fmt.Sprintf("%s/%s.%s", k.Kind, k.Name, k.Namespace)
		}
		return fmt.Sprintf("%s/%s", k.Kind, k.Name)
	case localport.TechnologySSH:
		if def.SSH == nil {
			return ""
		}
		return fmt.Sprintf("%s@%s", def.SSH.User, def.SSH.Host)
	default:
		return ""
	}
}
