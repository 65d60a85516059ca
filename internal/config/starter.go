package config

import (
	"os"

	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
)

const starterConfig = `# Docsmith site configuration
site:
  title: "Documentation"
  description: ""
  base_url: ""

source:
  dir: ./docs
  # git:
  #   url: https://example.com/org/docs.git
  #   branch: main

build:
  minify: true
  fingerprints: true

output:
  directory: ./site
  clean: true

preview:
  port: 8080
  live_reload: true
  # rebuild_every: 15m

history:
  enabled: false
  # path: ./docsmith-history.db

notify:
  enabled: false
  # url: nats://localhost:4222
  # subject: docsmith.builds
`

// WriteStarter writes a commented starter configuration. It refuses to
// overwrite an existing file unless force is set.
func WriteStarter(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return ferrors.NewError(ferrors.CategoryConfig, "configuration file already exists").
				WithContext("path", path).
				Build()
		}
	}
	// #nosec G306 -- config files are not secrets.
	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return ferrors.FileSystemError(err, "write starter configuration").
			WithContext("path", path).
			Build()
	}
	return nil
}
