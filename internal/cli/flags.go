package cli

import (
	"errors"
	"flag"
	"io"
)

// ReconcileFlags are the flags of the reconcile command.
type ReconcileFlags struct {
	ConfigPath    string
	OwnerID       int64
	File          string
	BankName      string
	AccountNumber string
	DryRun        bool
	Propose       bool
	Verbose       bool
}

// ParseReconcileFlags parses reconcile flags from args.
func ParseReconcileFlags(args []string, output io.Writer) (ReconcileFlags, error) {
	var flags ReconcileFlags

	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&flags.ConfigPath, "config", "config.yaml", "Configuration file path")
	fs.Int64Var(&flags.OwnerID, "owner", 0, "Owner (user) ID the records belong to")
	fs.StringVar(&flags.File, "file", "", "Bank statement CSV to import")
	fs.StringVar(&flags.BankName, "bank", "", "Bank name recorded on imported rows")
	fs.StringVar(&flags.AccountNumber, "account", "", "Account number recorded on imported rows")
	fs.BoolVar(&flags.DryRun, "dry-run", false, "Preview the statement without importing it")
	fs.BoolVar(&flags.Propose, "propose", true, "Propose exact matches after importing")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return flags, err
	}
	return flags, flags.Validate()
}

// Validate checks flag combinations.
func (f ReconcileFlags) Validate() error {
	if f.OwnerID <= 0 {
		return errors.New("-owner is required")
	}
	if f.File == "" {
		return nil
	}
	if !f.DryRun && (f.BankName == "" || f.AccountNumber == "") {
		return errors.New("-bank and -account are required to import a statement")
	}
	return nil
}
