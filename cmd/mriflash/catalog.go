package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vytor/mriflash/internal/catalog"
	"github.com/vytor/mriflash/internal/logger"
	"github.com/vytor/mriflash/internal/models"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Build the image metadata file",
	}
	cmd.AddCommand(newCatalogScanCmd(), newCatalogImportCmd())
	return cmd
}

func newCatalogScanCmd() *cobra.Command {
	var dir, out string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Generate metadata from the t1/ and t2/ image folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := catalog.Scan(cmd.Context(), dir)
			if err != nil {
				return err
			}
			return writeMetadata(cmd, out, meta)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "web/images", "image root holding t1/ and t2/")
	cmd.Flags().StringVar(&out, "out", "web/data/metadata.json", "metadata file to write")
	return cmd
}

func newCatalogImportCmd() *cobra.Command {
	var manifest, out string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Generate metadata from an .xlsx or .csv manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := catalog.ImportManifest(manifest)
			if err != nil {
				return err
			}
			return writeMetadata(cmd, out, meta)
		},
	}
	cmd.Flags().StringVar(&manifest, "manifest", "", "manifest file (.xlsx or .csv)")
	cmd.Flags().StringVar(&out, "out", "web/data/metadata.json", "metadata file to write")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

func writeMetadata(cmd *cobra.Command, out string, meta models.Metadata) error {
	if err := catalog.Write(out, meta); err != nil {
		return err
	}
	logger.Default().WithPrefix("catalog").Debug("wrote %s", out)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d images (%d T1, %d T2)\n",
		out, meta.Stats.Total, meta.Stats.T1Count, meta.Stats.T2Count)
	return nil
}
