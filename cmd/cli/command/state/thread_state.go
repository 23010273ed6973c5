package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// ThreadState remembers the last thread the user looked at, so commands can
// default the post ID and board category instead of requiring them every run.
type ThreadState struct {
	PostID   int64     `json:"post_id"`
	Category string    `json:"category"`
	ViewedAt time.Time `json:"viewed_at"`
}

func GetStateFilePath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".threadhub", "thread_state.json")
}

func SaveThreadState(state *ThreadState) error {
	stateDir := filepath.Dir(GetStateFilePath())
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(GetStateFilePath(), data, 0600)
}

func LoadThreadState() (*ThreadState, error) {
	data, err := os.ReadFile(GetStateFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No state file = nothing viewed yet
		}
		return nil, err
	}

	var state ThreadState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}

	return &state, nil
}

func ClearThreadState() error {
	err := os.Remove(GetStateFilePath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
