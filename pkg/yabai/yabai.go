package yabai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultPath is where homebrew installs yabai.
const DefaultPath = "/opt/homebrew/bin/yabai"

// ErrNotInstalled marks a missing yabai binary. Unlike a transient
// query failure this one is permanent, callers give up instead of
// retrying.
var ErrNotInstalled = errors.New("yabai binary not found")

// Client shells out to the yabai binary.
type Client struct {
	Path string
}

func (c *Client) path() string {
	if c.Path == "" {
		return DefaultPath
	}
	return c.Path
}

func (c *Client) runCommand(args ...string) (string, error) {
	var stdout bytes.Buffer

	cmd := exec.Command(c.path(), args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stdout

	err := cmd.Run()
	outStr := strings.TrimSpace(stdout.String())
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotInstalled, c.path())
		}
		return "", fmt.Errorf("yabai: %w, output: %s", err, outStr)
	}

	return outStr, nil
}

// ActiveSpace queries the currently focused space.
func (c *Client) ActiveSpace() (Space, error) {
	outStr, err := c.runCommand("-m", "query", "--spaces", "--space")
	if err != nil {
		return Space{}, err
	}

	var space Space
	if err := json.Unmarshal([]byte(outStr), &space); err != nil {
		return Space{}, fmt.Errorf("unmarshal space: %w, (yabai: %s)", err, outStr)
	}
	if space.Type == "" {
		return Space{}, fmt.Errorf("space response has no layout type, (yabai: %s)", outStr)
	}

	return space, nil
}

// SetLayout changes the layout of the currently focused space. The
// window manager state changes out of process, callers advance their
// own view of the layout only after this returns nil.
func (c *Client) SetLayout(layout Layout) error {
	_, err := c.runCommand("-m", "space", "--layout", string(layout))
	return err
}
