package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/service"
)

// loadConfig is replaced in tests.
var loadConfig = config.Load

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taxcalc",
		Short:         "Compute progressive income tax from configured slabs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCalculateCmd(), newSlabsCmd())
	return root
}

func newCalculateCmd() *cobra.Command {
	var (
		salary     float64
		deductions float64
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate tax for a gross salary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}

			result, err := svc.Calculate(cmd.Context(), &models.CalculateTaxRequest{
				GrossSalary: &salary,
				Deductions:  deductions,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return writeResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().Float64Var(&salary, "salary", 0, "gross annual salary")
	cmd.Flags().Float64Var(&deductions, "deductions", 0, "deductions subtracted before tax")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("salary")

	return cmd
}

func newSlabsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slabs",
		Short: "Print the configured slab table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}

			params := svc.Params()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "BAND\tRATE")
			for _, slab := range params.Slabs {
				fmt.Fprintf(w, "%s\t%g%%\n", slab.RangeLabel(), slab.Rate)
			}
			fmt.Fprintf(w, "cess\t%g%%\n", params.CessPercent)
			fmt.Fprintf(w, "fixed surcharge\t%.2f\n", params.FixedSurcharge)
			return w.Flush()
		},
	}
}

func newService() (*service.TaxService, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return service.NewTaxService(cfg.Tax, zap.NewNop()), nil
}

func writeJSON(out io.Writer, result *models.TaxResult) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func writeResult(out io.Writer, result *models.TaxResult) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "BAND\tAMOUNT\tRATE\tTAX\t")
	for _, entry := range result.Breakdown {
		fmt.Fprintf(w, "%s\t%.2f\t%g%%\t%.2f\t\n", entry.Range, entry.Amount, entry.Rate, entry.Tax)
	}
	fmt.Fprintf(w, "taxable income\t%.2f\t\t\t\n", result.TaxableIncome)
	fmt.Fprintf(w, "tax before cess\t\t\t%.2f\t\n", result.TaxBeforeCess)
	fmt.Fprintf(w, "cess\t\t%g%%\t%.2f\t\n", result.CessPercent, result.CessAmount)
	fmt.Fprintf(w, "fixed surcharge\t\t\t%.2f\t\n", result.FixedSurcharge)
	fmt.Fprintf(w, "total tax\t\t\t%.2f\t\n", result.TotalTax)
	return w.Flush()
}
