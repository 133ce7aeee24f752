package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"whatbeatsrock/internal/game"
)

// getSecureSessionPath maps a browser ID to its state file, refusing anything
// that is not a UUID so the ID can never escape SessionDir.
func getSecureSessionPath(sessionID string) (string, error) {
	if err := uuid.Validate(sessionID); err != nil {
		return "", errors.New("invalid session ID format")
	}
	return filepath.Join(SessionDir, sessionID+".json"), nil
}

// saveClientStateToFile persists a client state to disk.
var saveClientStateToFile = func(sessionID string, state *ClientState) error {
	sessionFile, err := getSecureSessionPath(sessionID)
	if err != nil {
		logWarn("Skipping save for invalid session ID: %s", sessionID)
		return nil
	}

	if err := os.MkdirAll(SessionDir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := sessionFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, sessionFile)
}

// loadClientStateFromFile loads a client state from disk. Stale or corrupt
// files are removed and reported as os.ErrNotExist.
var loadClientStateFromFile = func(sessionID string, maxAge time.Duration) (*ClientState, error) {
	sessionFile, err := getSecureSessionPath(sessionID)
	if err != nil {
		return nil, os.ErrNotExist
	}

	info, err := os.Stat(sessionFile)
	if err != nil {
		return nil, err
	}

	if maxAge > 0 {
		if fileAge := time.Since(info.ModTime()); fileAge > maxAge {
			logInfo("Session file is too old (%v, max: %v), removing: %s", fileAge, maxAge, sessionFile)
			_ = os.Remove(sessionFile)
			return nil, os.ErrNotExist
		}
	}

	data, err := os.ReadFile(sessionFile)
	if err != nil {
		return nil, err
	}

	var state ClientState
	if err := json.Unmarshal(data, &state); err != nil {
		logWarn("Session file %s is corrupted, removing: %v", sessionFile, err)
		_ = os.Remove(sessionFile)
		return nil, os.ErrNotExist
	}
	state.Chain = game.FromServer(state.Chain)
	if state.BestScore < 0 {
		state.BestScore = 0
	}
	return &state, nil
}

// cleanupOldSessions removes session files older than maxAge.
var cleanupOldSessions = func(maxAge time.Duration) error {
	entries, err := os.ReadDir(SessionDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	cutoff := time.Now().Add(-maxAge)
	removedCount := 0
	errorCount := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			errorCount++
			continue
		}

		if info.ModTime().Before(cutoff) {
			sessionFile := filepath.Join(SessionDir, entry.Name())
			if err := os.Remove(sessionFile); err != nil {
				logWarn("Failed to remove old session file %s: %v", sessionFile, err)
				errorCount++
			} else {
				removedCount++
			}
		}
	}

	logInfo("Session cleanup completed: removed %d files, %d errors", removedCount, errorCount)
	return nil
}
