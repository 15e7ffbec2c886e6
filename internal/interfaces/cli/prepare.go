package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/assets"
)

// prepareOptions holds the flags of the prepare-assets subcommand.
type prepareOptions struct {
	MRSTYPath   string
	MRCONSOPath string
	OutputDir   string
}

func newPrepareAssetsCommand() *cobra.Command {
	opts := &prepareOptions{}

	cmd := &cobra.Command{
		Use:   "prepare-assets",
		Short: "Build the terminology dictionary from UMLS release files",
		Long: "Reads MRSTY.RRF to select disease concepts and MRCONSO.RRF to collect\n" +
			"their English names and ICD-10-CM codes, then writes the two JSON lookup\n" +
			"tables the coding workflow loads at startup.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrepareAssets(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.MRSTYPath, "mrsty", "", "path to MRSTY.RRF (required)")
	f.StringVar(&opts.MRCONSOPath, "mrconso", "", "path to MRCONSO.RRF (required)")
	f.StringVar(&opts.OutputDir, "output-dir", "", "directory for the generated assets (default: configured assets dir)")
	cmd.MarkFlagRequired("mrsty")
	cmd.MarkFlagRequired("mrconso")

	return cmd
}

func runPrepareAssets(cmd *cobra.Command, opts *prepareOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = cliCtx.Config.Dictionary.AssetsDir
	}

	preparer := assets.NewPreparer(cliCtx.Logger)
	if err := preparer.Prepare(opts.MRSTYPath, opts.MRCONSOPath, outputDir); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Assets written to %s\n", outputDir)
	return nil
}
