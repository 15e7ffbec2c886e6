package cli

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/turtacn/MedCode-Intelligence/internal/application/coding"
	"github.com/turtacn/MedCode-Intelligence/internal/config"
	"github.com/turtacn/MedCode-Intelligence/internal/domain/terminology"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/assets"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/pdf"
	"github.com/turtacn/MedCode-Intelligence/internal/intelligence/disease_ner"
	"github.com/turtacn/MedCode-Intelligence/pkg/errors"
	codingtypes "github.com/turtacn/MedCode-Intelligence/pkg/types/coding"
)

// codeOptions holds the flags of the code subcommand.
type codeOptions struct {
	PDFPath        string
	OutputPath     string
	TaggerEndpoint string
	NERModel       string
	FuzzyLimit     int
	FuzzyThreshold float64
	OCRLanguages   string
	OCRTimeout     time.Duration
	PDFTimeout     time.Duration
	Deduplicate    bool
}

func (o *codeOptions) addFlags(f *pflag.FlagSet) {
	f.StringVar(&o.PDFPath, "pdf", "", "input PDF file (required)")
	f.StringVarP(&o.OutputPath, "output", "o", "", "output TSV file (default: stdout)")
	f.StringVar(&o.TaggerEndpoint, "tagger-endpoint", "", "NER tagger service URL (overrides config)")
	f.StringVar(&o.NERModel, "ner-model", "", "NER model name (overrides config)")
	f.IntVar(&o.FuzzyLimit, "fuzzy-limit", 0, "max fuzzy candidates per mention (overrides config)")
	f.Float64Var(&o.FuzzyThreshold, "fuzzy-threshold", 0, "minimum fuzzy match score, 0-100 (overrides config)")
	f.StringVar(&o.OCRLanguages, "ocr-languages", "", "OCR language codes, e.g. eng+deu (overrides config)")
	f.DurationVar(&o.OCRTimeout, "ocr-timeout", 0, "OCR subprocess timeout (overrides config)")
	f.DurationVar(&o.PDFTimeout, "pdf-timeout", 0, "text extraction subprocess timeout (overrides config)")
	f.BoolVar(&o.Deduplicate, "deduplicate", false, "merge embedded and OCR text as deduplicated lines")
}

func newCodeCommand() *cobra.Command {
	opts := &codeOptions{}

	cmd := &cobra.Command{
		Use:   "code",
		Short: "Extract disease mentions from a PDF and resolve them to diagnosis codes",
		Long: "Runs the full document coding workflow: embedded text extraction, OCR of\n" +
			"image-bearing pages, disease mention extraction through the NER tagger, and\n" +
			"resolution of every mention against the terminology dictionary. Results are\n" +
			"written as tab-separated rows.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCode(cmd, opts)
		},
	}

	opts.addFlags(cmd.Flags())
	cmd.MarkFlagRequired("pdf")

	return cmd
}

func runCode(cmd *cobra.Command, opts *codeOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	cfg := applyCodeOverrides(cliCtx.Config, cmd.Flags(), opts)
	logger := cliCtx.Logger

	svc, err := buildCodingService(cfg, logger)
	if err != nil {
		return err
	}

	rows, err := svc.ProcessDocument(cmd.Context(), opts.PDFPath, coding.Options{
		FuzzyLimit:     cfg.Matching.FuzzyLimit,
		FuzzyThreshold: cfg.Matching.FuzzyThreshold,
		Deduplicate:    opts.Deduplicate,
	})
	if err != nil {
		return err
	}

	if err := writeRows(opts.OutputPath, cmd.OutOrStdout(), rows); err != nil {
		return err
	}

	logger.Info("document coded",
		logging.String("pdf", opts.PDFPath),
		logging.Int("rows", len(rows)),
		logging.String("output", outputName(opts.OutputPath)))
	return nil
}

// applyCodeOverrides layers the flags the user actually set over the loaded
// configuration. The original Config is left untouched.
func applyCodeOverrides(base *config.Config, flags *pflag.FlagSet, opts *codeOptions) *config.Config {
	cfg := *base
	if flags.Changed("tagger-endpoint") {
		cfg.Tagger.Endpoint = opts.TaggerEndpoint
	}
	if flags.Changed("ner-model") {
		cfg.Tagger.Model = opts.NERModel
	}
	if flags.Changed("fuzzy-limit") {
		cfg.Matching.FuzzyLimit = opts.FuzzyLimit
	}
	if flags.Changed("fuzzy-threshold") {
		cfg.Matching.FuzzyThreshold = opts.FuzzyThreshold
	}
	if flags.Changed("ocr-languages") {
		cfg.OCR.Languages = opts.OCRLanguages
	}
	if flags.Changed("ocr-timeout") {
		cfg.OCR.Timeout = opts.OCRTimeout
	}
	if flags.Changed("pdf-timeout") {
		cfg.PDF.Timeout = opts.PDFTimeout
	}
	return &cfg
}

// buildCodingService assembles the pipeline from configuration: terminology
// store from the prepared assets, NER extractor over the HTTP tagger, and the
// poppler and OCR tooling.
func buildCodingService(cfg *config.Config, logger logging.Logger) (coding.Service, error) {
	loader := assets.NewLoader(cfg.Dictionary.AssetsDir, logger)
	store, err := terminology.NewStore(loader)
	if err != nil {
		return nil, err
	}

	tagger, err := disease_ner.NewHTTPTagger(disease_ner.TaggerConfig{
		Endpoint: cfg.Tagger.Endpoint,
		Model:    cfg.Tagger.Model,
		Timeout:  cfg.Tagger.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	extractor, err := disease_ner.NewExtractor(tagger, cfg.Tagger.Label, logger)
	if err != nil {
		return nil, err
	}

	poppler := pdf.NewPoppler(cfg.PDF.Timeout, logger)
	ocr := pdf.NewOCR(cfg.OCR.Languages, cfg.OCR.Timeout, logger)

	return coding.NewService(store, extractor, poppler, ocr, nil, logger)
}

// writeRows writes rows as TSV to path, or to out when path is empty.
func writeRows(path string, out io.Writer, rows []codingtypes.Row) error {
	if path == "" {
		return coding.WriteTSV(out, rows)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.InvalidParam("cannot create output file").WithCause(err)
	}
	if err := coding.WriteTSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func outputName(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
