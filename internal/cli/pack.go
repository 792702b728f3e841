package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	engram "github.com/engramdb/engram"
)

// PackSpec describes an archive to build. Source paths resolve
// relative to the spec file.
type PackSpec struct {
	Output   string         `yaml:"output"`
	Manifest map[string]any `yaml:"manifest"`
	Files    []PackFile     `yaml:"files"`
}

// PackFile is one entry of a pack spec.
type PackFile struct {
	Path        string `yaml:"path"`
	Source      string `yaml:"source"`
	Compression string `yaml:"compression"` // "", "none", "lz4", "zstd"
}

// PackOptions holds flags for the pack command.
type PackOptions struct {
	*RootOptions
	Output string
}

// NewPackCommand creates the pack command.
func NewPackCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PackOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pack <spec.yaml>",
		Short: "Build an archive from a pack spec",
		Long: `Build a .eng archive from a YAML pack spec.

The spec names the output path, the files to include, and an optional
manifest. Source paths resolve relative to the spec file.

Example:
  engram pack ./app.pack.yaml
  engram pack ./app.pack.yaml --out /tmp/app.eng`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPack(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Output, "out", "", "output path (overrides the spec's output field)")

	return cmd
}

func runPack(opts *PackOptions, specPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	spec, err := loadPackSpec(specPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load pack spec", err)
	}

	output := spec.Output
	if opts.Output != "" {
		output = opts.Output
	}
	if output == "" {
		return NewExitError(ExitCommandError, "no output path: set output in the spec or pass --out")
	}

	w, err := engram.NewWriter(output)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create archive", err)
	}

	baseDir := filepath.Dir(specPath)
	for _, f := range spec.Files {
		if err := addPackFile(w, baseDir, f); err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("failed to add %s", f.Path), err)
		}
		formatter.VerboseLog("added %s", f.Path)
	}

	if spec.Manifest != nil {
		manifestJSON, err := json.Marshal(spec.Manifest)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to encode manifest", err)
		}
		if err := w.AddManifest(string(manifestJSON)); err != nil {
			return WrapExitError(ExitFailure, "failed to add manifest", err)
		}
	}

	if err := w.Finalize(); err != nil {
		return WrapExitError(ExitFailure, "failed to finalize archive", err)
	}

	return formatter.Success(fmt.Sprintf("wrote %s (%d files)", output, len(spec.Files)))
}

func loadPackSpec(path string) (*PackSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec PackSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &spec, nil
}

func addPackFile(w *engram.Writer, baseDir string, f PackFile) error {
	if f.Path == "" {
		return fmt.Errorf("file entry is missing path")
	}
	source := f.Source
	if source == "" {
		source = f.Path
	}
	if !filepath.IsAbs(source) {
		source = filepath.Join(baseDir, source)
	}

	if f.Compression == "" {
		return w.AddFileFromDisk(f.Path, source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return err
	}
	return w.AddFileWithCompression(f.Path, data, f.Compression)
}
