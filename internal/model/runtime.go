package model

import (
	"os"
	"runtime"
	"strconv"
	"strings"
)

const (
	defaultIntraThreads = 1
	defaultInterThreads = 1
	maxDefaultSessions  = 4
)

// RuntimeSettings controls the ONNX session pool and threading.
type RuntimeSettings struct {
	Sessions     int
	IntraThreads int
	InterThreads int
}

// ResolveRuntime fills in defaults for unset values. The session count can be
// forced with VOXREDACT_MAX_SESSIONS, which the benchmark uses to pin the
// pool to one session.
func ResolveRuntime(sessions, intra, inter int) RuntimeSettings {
	if env := strings.TrimSpace(os.Getenv("VOXREDACT_MAX_SESSIONS")); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n > 0 {
			sessions = n
		}
	}
	if sessions <= 0 {
		sessions = runtime.NumCPU()
		if sessions > maxDefaultSessions {
			sessions = maxDefaultSessions
		}
	}
	if intra <= 0 {
		intra = defaultIntraThreads
	}
	if inter <= 0 {
		inter = defaultInterThreads
	}
	return RuntimeSettings{Sessions: sessions, IntraThreads: intra, InterThreads: inter}
}
