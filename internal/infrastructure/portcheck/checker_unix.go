//go:build unix

// Package portcheck implements localport.PortOwnershipChecker: telling
// whether a local port is already held by another process, and whether a
// remembered PID still refers to a live process, the two facts startup
// reconciliation (§4.8) and start() need to tell external conflicts apart
// from our own processes.
package portcheck

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/kodflow/daemon/internal/domain/localport"
)

// netTCPFiles are the procfs files scanned for a LISTEN-state IPv4/IPv6 TCP
// socket matching the port under inspection.
var netTCPFiles = []string{"/proc/net/tcp", "/proc/net/tcp6"}

const (
	tcpListenState  = "0A"
	tcpFieldState   = 1
	tcpFieldInode   = 9
	tcpMinFields    = 10
	procFDScanDepth = 4096 // bound on how many /proc/<pid>/fd entries we stat per process
	hexPortBase     = 16
	hexPortBits     = 16
)

// Checker implements localport.PortOwnershipChecker by reading procfs
// directly, the same source the teacher's discovery/portscan.go and
// application/supervisor/ports_linux.go parse for listening-port
// inspection, applied here in the opposite direction: port to PID instead
// of PID to ports.
type Checker struct{}

// New creates a procfs-backed port ownership checker.
//
// Returns:
//   - *Checker: a ready-to-use checker.
func New() *Checker {
	return &Checker{}
}

var _ localport.PortOwnershipChecker = (*Checker)(nil)

// ProcessExists reports whether pid refers to a live process, via the
// signal-0 probe idiom (no signal delivered, only existence/permission
// checked).
//
// Params:
//   - pid: the process id to check.
//
// Returns:
//   - bool: true if the process exists and is visible to us.
func (c *Checker) ProcessExists(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}
	return err == syscall.EPERM
}

// OwnerPID reports the PID of the process listening on localPort, or 0 if
// the port is free or procfs is unavailable (e.g. non-Linux unix, where
// this degrades to "unknown, assume free" rather than a hard error).
//
// Params:
//   - localPort: the TCP port to inspect.
//
// Returns:
//   - int: the owning PID, or 0 if none found.
//   - error: any error reading procfs (never returned for a simply-missing procfs).
func (c *Checker) OwnerPID(localPort int) (int, error) {
	inode, err := findListenInode(localPort)
	if err != nil {
		return 0, err
	}
	if inode == "" {
		return 0, nil
	}
	return findPIDBySocketInode(inode)
}

// findListenInode scans netTCPFiles for a LISTEN-state entry matching port,
// returning its socket inode string.
func findListenInode(port int) (string, error) {
	for _, path := range netTCPFiles {
		inode, err := scanNetTCPForPort(path, port)
		if err != nil {
			return "", err
		}
		if inode != "" {
			return inode, nil
		}
	}
	return "", nil
}

func scanNetTCPForPort(path string, port int) (string, error) {
	f, err := os.Open(path) // #nosec G304 - fixed procfs path, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Scan() // header line
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < tcpMinFields {
			continue
		}
		if fields[tcpFieldState] != tcpListenState {
			continue
		}
		localPort, ok := parseHexPort(fields[0])
		if !ok || localPort != port {
			continue
		}
		return fields[tcpFieldInode], nil
	}
	return "", scanner.Err()
}

// parseHexPort extracts the port from a "<addr>:<port-hex>" procfs field.
func parseHexPort(addrPort string) (int, bool) {
	parts := strings.Split(addrPort, ":")
	if len(parts) != 2 {
		return 0, false
	}
	port, err := strconv.ParseUint(parts[1], hexPortBase, hexPortBits)
	if err != nil {
		return 0, false
	}
	return int(port), true
}

// findPIDBySocketInode scans /proc/<pid>/fd for a symlink to
// "socket:[<inode>]", returning the owning PID.
func findPIDBySocketInode(inode string) (int, error) {
	procEntries, err := os.ReadDir("/proc")
	if err != nil {
		return 0, fmt.Errorf("reading /proc: %w", err)
	}
	target := "socket:[" + inode + "]"

	for _, entry := range procEntries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		if processOwnsSocket(pid, target) {
			return pid, nil
		}
	}
	return 0, nil
}

func processOwnsSocket(pid int, target string) bool {
	fdDir := filepath.Join("/proc", strconv.Itoa(pid), "fd")
	entries, err := os.ReadDir(fdDir)
	if err != nil {
		return false // permission denied or process gone mid-scan; not a match
	}
	for i, fd := range entries {
		if i >= procFDScanDepth {
			break
		}
		link, err := os.Readlink(filepath.Join(fdDir, fd.Name()))
		if err == nil && link == target {
			return true
		}
	}
	return false
}
