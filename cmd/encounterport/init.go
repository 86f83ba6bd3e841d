package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"encounterport/internal/config"
)

func initCmd() *cobra.Command {
	var sourcePath string
	var prefix string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold an encounterport.yaml project config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(prefix) == "" {
				return fmt.Errorf("--prefix must not be empty")
			}
			return runInit(configPath, sourcePath, prefix)
		},
	}
	cmd.Flags().StringVar(&sourcePath, "source", "", "Export directory under the data root")
	cmd.Flags().StringVar(&prefix, "prefix", config.DefaultPrefix, "Folder name prefix")
	return cmd
}

func runInit(path, sourcePath, prefix string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	contents := fmt.Sprintf(`version: 1
source_path: %q
prefix: %q
destination: %s
data_root: %s
public_url: %s
route_prefix: ""
user_data_roots:
  - encounter-source

database:
  dsn: %s

scan:
  manifest_depth: %d
  index_depth: %d
  repair_depth: %d
  max_files: %d

logging:
  level: info
  format: console
`,
		sourcePath, prefix,
		config.DefaultDestination, config.DefaultDataRoot, config.DefaultPublicURL,
		config.DefaultDSN,
		config.DefaultManifestDepth, config.DefaultIndexDepth, config.DefaultRepairDepth, config.DefaultMaxFiles,
	)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
