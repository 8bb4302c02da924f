package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/eshaffer321/homebudget-guard/internal/ingest"
)

// RunReconcile imports (or previews) a statement for one owner, proposes
// exact matches and prints the resulting summary.
func RunReconcile(ctx context.Context, services *Services, flags ReconcileFlags, out io.Writer) error {
	PrintHeader(out, flags.OwnerID, flags.DryRun)

	if flags.File != "" {
		if err := importStatement(ctx, services, flags, out); err != nil {
			return err
		}
	}

	if flags.Propose && !flags.DryRun {
		proposed, err := services.Reconcile.ProposeExactMatches(ctx, flags.OwnerID)
		if err != nil {
			return fmt.Errorf("failed to propose matches: %w", err)
		}
		PrintProposals(out, proposed)
	}

	summary, err := services.Reconcile.Summary(ctx, flags.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to summarise: %w", err)
	}
	PrintSummary(out, summary)
	return nil
}

func importStatement(ctx context.Context, services *Services, flags ReconcileFlags, out io.Writer) error {
	f, err := os.Open(flags.File)
	if err != nil {
		return fmt.Errorf("failed to open statement: %w", err)
	}
	defer f.Close()

	rows, err := ingest.ParseCSV(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", flags.File, err)
	}

	if flags.DryRun {
		preview, err := services.Records.PreviewStatement(ctx, flags.OwnerID, rows)
		if err != nil {
			return fmt.Errorf("failed to preview statement: %w", err)
		}
		PrintPreview(out, preview)
		return nil
	}

	result, err := services.Records.ImportStatement(ctx, flags.OwnerID, rows, flags.BankName, flags.AccountNumber)
	if err != nil {
		return fmt.Errorf("failed to import statement: %w", err)
	}
	PrintImport(out, result)
	return nil
}
