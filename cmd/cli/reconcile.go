package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tixeats/walletsettle/internal/adapter/http/dto"
	"github.com/tixeats/walletsettle/internal/usecase"
)

var errDiscrepancies = errors.New("reconciliation found discrepancies")

func (c *cli) reconcileCmd() *cobra.Command {
	var walletID string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Check wallet balances against their transaction records",
		Long: `Compares each wallet balance with its opening balance plus the signed sum
of its successful records, and checks the ledger-wide totals. Exits non-zero
when anything disagrees.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStack(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			if walletID != "" {
				result, err := s.reconciliation.ReconcileWallet(cmd.Context(), walletID)
				if err != nil {
					return err
				}
				return c.reportWallet(result)
			}

			report, err := s.reconciliation.GenerateReconciliationReport(cmd.Context())
			if err != nil {
				return err
			}
			return c.reportLedger(report)
		},
	}

	cmd.Flags().StringVar(&walletID, "wallet", "", "reconcile a single wallet by id")

	return cmd
}

func (c *cli) reportWallet(result *usecase.ReconciliationResult) error {
	if err := c.printJSON(dto.ReconciliationFromUseCase(result)); err != nil {
		return err
	}
	if !result.IsReconciled {
		return fmt.Errorf("%w: wallet %s is off by %d", errDiscrepancies, result.WalletID, result.Difference)
	}
	return nil
}

func (c *cli) reportLedger(report *usecase.ReconciliationReport) error {
	if err := c.printJSON(dto.ReportFromUseCase(report)); err != nil {
		return err
	}
	if len(report.Discrepancies) > 0 || !report.LedgerConsistent {
		return fmt.Errorf("%w: %d of %d wallets", errDiscrepancies, len(report.Discrepancies), report.TotalWallets)
	}
	return nil
}
