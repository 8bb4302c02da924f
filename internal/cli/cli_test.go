package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/homebudget-guard/internal/domain/matcher"
	"github.com/eshaffer321/homebudget-guard/internal/domain/model"
	"github.com/eshaffer321/homebudget-guard/internal/infrastructure/config"
	"github.com/eshaffer321/homebudget-guard/internal/infrastructure/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeStatement(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseReconcileFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "summary only", args: []string{"-owner", "7"}},
		{name: "import", args: []string{"-owner", "7", "-file", "s.csv", "-bank", "B", "-account", "1"}},
		{name: "dry run needs no bank", args: []string{"-owner", "7", "-file", "s.csv", "-dry-run"}},
		{name: "missing owner", args: []string{"-file", "s.csv"}, wantErr: "-owner is required"},
		{name: "import without bank", args: []string{"-owner", "7", "-file", "s.csv"}, wantErr: "-bank and -account"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, err := ParseReconcileFlags(tt.args, io.Discard)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), flags.OwnerID)
			assert.True(t, flags.Propose)
		})
	}
}

func TestRunReconcile_ImportsAndProposes(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.AddTransaction(&model.Transaction{
		ID: 1, Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Amount: -42.5,
		Category: "groceries", Type: model.TypeExpense, OwnerID: 7,
	})
	services := NewServicesFor(repo, matcher.DefaultConfig(), discardLogger())

	flags := ReconcileFlags{
		OwnerID:       7,
		File:          writeStatement(t, "Date,Description,Amount\n2024-03-04,Grocery,-42.50\n2024-03-05,Coffee,-3.20\n"),
		BankName:      "First Bank",
		AccountNumber: "0001",
		Propose:       true,
	}

	var out bytes.Buffer
	err := RunReconcile(context.Background(), services, flags, &out)

	require.NoError(t, err)
	assert.Equal(t, 2, repo.BankTransactionCount())
	assert.Equal(t, 1, repo.MatchCount())
	assert.Contains(t, out.String(), "Imported 2 bank transactions")
	assert.Contains(t, out.String(), "Proposed 1 exact matches")
	assert.Contains(t, out.String(), "Pending matches=1")
}

func TestRunReconcile_DryRunStoresNothing(t *testing.T) {
	repo := storage.NewMockRepository()
	services := NewServicesFor(repo, matcher.DefaultConfig(), discardLogger())

	flags := ReconcileFlags{
		OwnerID: 7,
		File:    writeStatement(t, "Date,Description,Amount\n2024-03-05,Coffee,-3.20\n"),
		DryRun:  true,
		Propose: true,
	}

	var out bytes.Buffer
	require.NoError(t, RunReconcile(context.Background(), services, flags, &out))

	assert.Equal(t, 0, repo.BankTransactionCount())
	assert.Equal(t, 0, repo.MatchCount())
	assert.Contains(t, out.String(), "DRY-RUN")
	assert.Contains(t, out.String(), "0 already recorded, 1 new")
	assert.Contains(t, out.String(), "Coffee")
}

func TestRunReconcile_BadStatement(t *testing.T) {
	repo := storage.NewMockRepository()
	services := NewServicesFor(repo, matcher.DefaultConfig(), discardLogger())

	flags := ReconcileFlags{
		OwnerID:       7,
		File:          writeStatement(t, "Date,Description,Amount\n2024-03-05,Coffee,abc\n"),
		BankName:      "B",
		AccountNumber: "1",
	}

	err := RunReconcile(context.Background(), services, flags, io.Discard)

	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
	assert.Equal(t, 0, repo.BankTransactionCount())
}

func TestNewServices(t *testing.T) {
	t.Run("opens sqlite from config", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.DatabasePath = filepath.Join(t.TempDir(), "cli.db")

		services, err := NewServices(cfg, discardLogger())

		require.NoError(t, err)
		defer services.Close()
		assert.NoError(t, services.Repo.Ping(context.Background()))
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Driver = "mysql"

		_, err := NewServices(cfg, discardLogger())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}
