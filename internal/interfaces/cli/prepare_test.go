package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/turtacn/MedCode-Intelligence/internal/config"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedCode-Intelligence/pkg/errors"
)

func mrstyLine(cui, tui string) string {
	return strings.Join([]string{cui, tui, "B2.2.1.2.1", "Disease or Syndrome", "AT17683839", ""}, "|") + "|"
}

func mrconsoLine(cui, lat, sab, code, str string) string {
	fields := []string{
		cui, lat, "P", "L0000001", "PF", "S0000001", "Y", "A0000001",
		"", "", "", sab, "PT", code, str, "0", "N", "",
	}
	return strings.Join(fields, "|") + "|"
}

func writeRRFFixtures(t *testing.T) (mrstyPath, mrconsoPath string) {
	t.Helper()
	dir := t.TempDir()

	mrsty := mrstyLine("C0020538", "T047") + "\n"
	mrconso := strings.Join([]string{
		mrconsoLine("C0020538", "ENG", "ICD10CM", "I10", "Hypertension"),
		mrconsoLine("C0020538", "ENG", "MSH", "D006973", "Hypertensive disease"),
	}, "\n") + "\n"

	mrstyPath = filepath.Join(dir, "MRSTY.RRF")
	mrconsoPath = filepath.Join(dir, "MRCONSO.RRF")
	if err := os.WriteFile(mrstyPath, []byte(mrsty), 0o644); err != nil {
		t.Fatalf("writing MRSTY fixture: %v", err)
	}
	if err := os.WriteFile(mrconsoPath, []byte(mrconso), 0o644); err != nil {
		t.Fatalf("writing MRCONSO fixture: %v", err)
	}
	return mrstyPath, mrconsoPath
}

// preparedCommand builds the prepare-assets command with an injected
// CLIContext so tests bypass the root command's config search.
func preparedCommand(cfg *config.Config) (cmd *cobra.Command, out *bytes.Buffer) {
	cmd = newPrepareAssetsCommand()
	out = &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)

	cliCtx := &CLIContext{Config: cfg, Logger: logging.NewNopLogger()}
	cmd.SetContext(context.WithValue(context.Background(), cliContextKey{}, cliCtx))
	return cmd, out
}

func TestNewPrepareAssetsCommand_Flags(t *testing.T) {
	cmd := newPrepareAssetsCommand()

	for _, name := range []string{"mrsty", "mrconso", "output-dir"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("flag %q should exist", name)
		}
	}
}

func TestRunPrepareAssets_WritesAssets(t *testing.T) {
	mrstyPath, mrconsoPath := writeRRFFixtures(t)
	outDir := filepath.Join(t.TempDir(), "assets")

	cmd, out := preparedCommand(config.NewDefaultConfig())
	cmd.SetArgs([]string{"--mrsty", mrstyPath, "--mrconso", mrconsoPath, "--output-dir", outDir})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("prepare-assets failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "term_to_cuis.json"))
	if err != nil {
		t.Fatalf("reading term index: %v", err)
	}
	var terms map[string][]string
	if err := json.Unmarshal(data, &terms); err != nil {
		t.Fatalf("parsing term index: %v", err)
	}
	if got := terms["hypertension"]; len(got) != 1 || got[0] != "C0020538" {
		t.Errorf("unexpected CUIs for hypertension: %v", got)
	}
	if _, ok := terms["hypertensive disease"]; !ok {
		t.Error("normalized MSH name should be indexed")
	}

	data, err = os.ReadFile(filepath.Join(outDir, "cui_to_icd.json"))
	if err != nil {
		t.Fatalf("reading code index: %v", err)
	}
	var codes map[string][]string
	if err := json.Unmarshal(data, &codes); err != nil {
		t.Fatalf("parsing code index: %v", err)
	}
	if got := codes["C0020538"]; len(got) != 1 || got[0] != "I10" {
		t.Errorf("unexpected codes for C0020538: %v", got)
	}

	if !strings.Contains(out.String(), "Assets written to "+outDir) {
		t.Errorf("expected confirmation message, got %q", out.String())
	}
}

func TestRunPrepareAssets_DefaultsToConfiguredDir(t *testing.T) {
	mrstyPath, mrconsoPath := writeRRFFixtures(t)

	cfg := config.NewDefaultConfig()
	cfg.Dictionary.AssetsDir = filepath.Join(t.TempDir(), "configured-assets")

	cmd, _ := preparedCommand(cfg)
	cmd.SetArgs([]string{"--mrsty", mrstyPath, "--mrconso", mrconsoPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("prepare-assets failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.Dictionary.AssetsDir, "term_to_cuis.json")); err != nil {
		t.Errorf("term index should land in the configured assets dir: %v", err)
	}
}

func TestRunPrepareAssets_MissingMRSTY(t *testing.T) {
	cmd, _ := preparedCommand(config.NewDefaultConfig())
	cmd.SetArgs([]string{
		"--mrsty", filepath.Join(t.TempDir(), "absent.RRF"),
		"--mrconso", filepath.Join(t.TempDir(), "absent.RRF"),
		"--output-dir", t.TempDir(),
	})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing MRSTY file")
	}
	if !errors.IsCode(err, errors.ErrCodeAssetMissing) {
		t.Errorf("expected asset missing code, got %v", errors.GetCode(err))
	}
}
