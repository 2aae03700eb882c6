package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/brettbedarf/collectionfs"
	"github.com/brettbedarf/collectionfs/filesystem"
	"github.com/spf13/cobra"
)

func pathArg(args []string) string {
	if len(args) == 0 {
		return "/"
	}
	return args[0]
}

func newLsCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "List a collection directory; subdirectories end in /",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := root.loadServer(cmd)
			if err != nil {
				return err
			}
			return runLs(cmd.OutOrStdout(), srv.Path(pathArg(args)))
		},
	}
}

func runLs(out io.Writer, dir *filesystem.Path) error {
	children, err := dir.Iterdir()
	if err != nil {
		return err
	}
	for child := range children {
		suffix := ""
		if child.IsDir() {
			suffix = "/"
		}
		fmt.Fprintf(out, "%s%s\n", collectionfs.Parts{child.Name()}, suffix)
	}
	return nil
}

func newTreeCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [path]",
		Short: "Print the collection depth-first, subdirectories before files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := root.loadServer(cmd)
			if err != nil {
				return err
			}
			return runTree(cmd.OutOrStdout(), srv.Path(pathArg(args)))
		},
	}
}

func runTree(out io.Writer, start *filesystem.Path) error {
	depth0 := len(start.Parts())
	return start.Walk(func(parts collectionfs.Parts, isDir bool) error {
		depth := len(parts) - depth0
		if depth == 0 {
			fmt.Fprintln(out, start)
			return nil
		}
		name := parts[len(parts)-1:].String()
		if isDir {
			name += "/"
		}
		_, err := fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth), name)
		return err
	})
}

func newCatCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Write a collection file's content to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := root.loadServer(cmd)
			if err != nil {
				return err
			}
			return runCat(cmd.OutOrStdout(), srv.Path(args[0]))
		},
	}
}

func runCat(out io.Writer, file *filesystem.Path) error {
	r, err := file.OpenRead()
	if err != nil {
		return err
	}
	defer r.Close()

	_, err = io.Copy(out, r)
	return err
}
