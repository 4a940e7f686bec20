// Package credentials writes the service-account secret to a file the deploy
// tool can read through GOOGLE_APPLICATION_CREDENTIALS.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/reillywatson/firebase-deploy/internal/deploy"
)

// File is a materialized credentials file.
type File struct {
	Path      string
	ProjectID string // project_id from the key, if present
}

// Remove deletes the file. It is safe to call on a nil *File.
func (f *File) Remove() error {
	if f == nil || f.Path == "" {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}
	return nil
}

// Credentials returns the handle passed to deploy steps.
func (f *File) Credentials() deploy.Credentials {
	return deploy.Credentials{File: f.Path}
}

type serviceAccountKey struct {
	Type      string `json:"type"`
	ProjectID string `json:"project_id"`
}

// Materialize validates secret as a JSON key and writes it to a private temp
// file in dir (os.TempDir when empty).
func Materialize(secret, dir string) (*File, error) {
	if secret == "" {
		return nil, deploy.Errorf(deploy.KindCredential, "materialize credentials", "service account secret is empty")
	}

	var key serviceAccountKey
	if err := json.Unmarshal([]byte(secret), &key); err != nil {
		return nil, deploy.Wrap(deploy.KindCredential, "materialize credentials",
			fmt.Errorf("service account secret is not valid JSON: %w", err))
	}

	f, err := os.CreateTemp(dir, "gac-*.json")
	if err != nil {
		return nil, deploy.Wrap(deploy.KindCredential, "materialize credentials",
			fmt.Errorf("failed to create credentials file: %w", err))
	}

	file := &File{Path: f.Name(), ProjectID: key.ProjectID}
	if err := f.Chmod(0600); err != nil {
		f.Close()
		_ = file.Remove()
		return nil, deploy.Wrap(deploy.KindCredential, "materialize credentials",
			fmt.Errorf("failed to restrict credentials file: %w", err))
	}
	if _, err := f.WriteString(secret); err != nil {
		f.Close()
		_ = file.Remove()
		return nil, deploy.Wrap(deploy.KindCredential, "materialize credentials",
			fmt.Errorf("failed to write credentials file: %w", err))
	}
	if err := f.Close(); err != nil {
		_ = file.Remove()
		return nil, deploy.Wrap(deploy.KindCredential, "materialize credentials",
			fmt.Errorf("failed to close credentials file: %w", err))
	}

	return file, nil
}
