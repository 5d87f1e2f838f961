package git

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/satococoa/gitwrap/internal/errors"
)

// Environment variables read by an SSH wrapper script set as GIT_SSH.
const (
	EnvSSHKey     = "GIT_SSH_KEY"
	EnvSSHPort    = "GIT_SSH_PORT"
	EnvSSHWrapper = "GIT_SSH"

	DefaultSSHPort = 22
)

// SetPrivateKey points git at wrapperPath for SSH and exports the key and
// port it should use. Both files must exist. A zero port means 22.
func (w *Wrapper) SetPrivateKey(keyPath string, port int, wrapperPath string) error {
	key, err := existingFile("SSH private key", keyPath)
	if err != nil {
		return err
	}
	wrapper, err := existingFile("SSH wrapper", wrapperPath)
	if err != nil {
		return err
	}
	if port == 0 {
		port = DefaultSSHPort
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.env[EnvSSHKey] = key
	w.env[EnvSSHPort] = strconv.Itoa(port)
	w.env[EnvSSHWrapper] = wrapper
	return nil
}

// UnsetPrivateKey removes the variables set by SetPrivateKey.
func (w *Wrapper) UnsetPrivateKey() {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.env, EnvSSHKey)
	delete(w.env, EnvSSHPort)
	delete(w.env, EnvSSHWrapper)
}

func existingFile(setting, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.SSHFileNotFound(setting, path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", errors.SSHFileNotFound(setting, path, err)
	}
	return abs, nil
}
