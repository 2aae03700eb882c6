package cli

import (
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/brettbedarf/collectionfs/internal/util"
	"github.com/brettbedarf/collectionfs/server"
	"github.com/spf13/cobra"
)

type mountFlags struct {
	umount   bool
	readOnly bool
	debug    bool
}

func newMountCmd(root *rootFlags) *cobra.Command {
	flags := &mountFlags{}

	cmd := &cobra.Command{
		Use:   "mount <mountpoint>",
		Short: "Mount the collection with FUSE until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := root.loadServer(cmd)
			if err != nil {
				return err
			}
			return runMount(srv, flags, args[0])
		},
	}

	cmd.Flags().BoolVarP(&flags.umount, "umount", "u", false,
		"Unmount the fs first if needed before mounting again. Useful for debuggers that don't exit properly.")
	cmd.Flags().BoolVar(&flags.readOnly, "read-only", false, "Refuse every mutation through the mount")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Log every FUSE request")
	return cmd
}

func runMount(srv *server.Server, flags *mountFlags, mnt string) error {
	logger := util.GetLogger("mount")

	// Try unmount if requested
	if flags.umount {
		// we ignore error here if not already mounted
		exec.Command("fusermount", "-u", mnt).Run() // nolint:errcheck
	}
	if flags.readOnly {
		srv.Config().ReadOnly = true
	}
	if flags.debug {
		srv.Config().Debug = true
	}

	if err := srv.Serve(mnt); err != nil {
		return err
	}
	logger.Info().Str("mountpoint", mnt).Msg("Filesystem mounted successfully")

	// Setup signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		sig := <-signalChan
		logger.Info().Str("signal", sig.String()).Msg("Received signal, unmounting filesystem")
		if err := srv.Unmount(); err != nil {
			logger.Error().Err(err).Msg("Failed to unmount filesystem")
		}
	}()

	srv.Wait()
	logger.Info().Msg("Filesystem unmounted")
	return nil
}
