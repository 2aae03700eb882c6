package cli

import (
	"net/http"

	"github.com/brettbedarf/collectionfs/adapters"
	"github.com/brettbedarf/collectionfs/config"
	"github.com/brettbedarf/collectionfs/internal/util"
	"github.com/brettbedarf/collectionfs/requests"
	"github.com/brettbedarf/collectionfs/server"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose    int
	configPath string
	nodesPath  string
}

// NewRootCmd builds the collectionfs command tree
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "collectionfs",
		Short: "Compose files from many backing stores into one virtual tree",
		Long: `collectionfs registers files from disk, memory, zip archives, HTTP and
S3-compatible object stores under a single virtual directory tree described
by a YAML or JSON node manifest, then browses it or mounts it with FUSE.

Nothing is fetched from a backing store until a file is read, written or
stat'ed.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.IntVarP(&flags.verbose, "verbose", "v", config.InfoVerbose,
		"Log verbosity level between 1 (error) and 5 (trace)")
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to a YAML or JSON config file")
	pf.StringVarP(&flags.nodesPath, "nodes", "n", "", "Path to a YAML or JSON node manifest")

	cmd.AddCommand(
		newMountCmd(flags),
		newLsCmd(flags),
		newTreeCmd(flags),
		newCatCmd(flags),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig merges the config file (if any) and the verbose flag over the
// defaults and initializes logging.
func (f *rootFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	override := &config.ConfigOverride{}
	if f.configPath != "" {
		var err error
		if override, err = config.LoadConfigOverrideFile(f.configPath); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("verbose") || override.LogLvl == nil {
		override.LogLvl = &f.verbose
	}

	cfg := config.NewConfig(override)
	util.InitializeLogger(cfg.LogLvl)
	return cfg, nil
}

// newRegistry registers the built-in sources configured by cfg
func newRegistry(cfg *config.Config) *adapters.Registry {
	reg := adapters.NewRegistry()
	adapters.RegisterBuiltins(reg, adapters.Options{
		HTTPClient: &http.Client{Timeout: config.Seconds(cfg.HTTPTimeout)},
		DiskRoot:   cfg.DiskRoot,
	})
	return reg
}

// loadServer builds a server whose collection holds every node of the
// manifest. Any node that fails to load is an error.
func (f *rootFlags) loadServer(cmd *cobra.Command) (*server.Server, error) {
	logger := util.GetLogger("cli")

	cfg, err := f.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	srv := server.New(cfg)
	if f.nodesPath == "" {
		logger.Warn().Msg("No node manifest provided; the collection is empty")
		return srv, nil
	}

	reqs, err := requests.LoadManifestFile(newRegistry(cfg), f.nodesPath)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("nodes", f.nodesPath).Int("requests", len(reqs)).Msg("Manifest loaded")

	if _, _, err := srv.Load(reqs); err != nil {
		return nil, errors.Wrap(err, "load manifest nodes")
	}
	return srv, nil
}
