package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/anyulbade/netaxept-gateway/internal/dto"
	"github.com/anyulbade/netaxept-gateway/internal/netaxept"
)

func (a *app) registerCmd() *cobra.Command {
	var req dto.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register <amount>",
		Short: "Register a transaction and print its terminal URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			req.Amount = &amount

			resp, err := a.svc.Register(cmd.Context(), &req)
			if err != nil {
				return err
			}

			out := dto.NewOperationResponse(resp)
			if resp.Successful {
				out.TerminalURL = a.svc.TerminalURL(resp.TransactionID)
			}
			return a.finish(cmd, out, resp)
		},
	}

	cmd.Flags().StringVarP(&req.Currency, "currency", "c", "", "ISO 4217 currency (defaults to NETAXEPT_CURRENCY)")
	cmd.Flags().StringVar(&req.OrderNumber, "order-number", "", "Merchant order number (generated when empty)")
	cmd.Flags().StringVar(&req.RedirectURL, "redirect-url", "", "Where the terminal sends the cardholder afterwards")
	cmd.Flags().StringVar(&req.OrderDescription, "description", "", "Order description shown on the terminal")
	cmd.Flags().StringVar(&req.Language, "language", "", "Terminal language, e.g. en_GB")
	_ = cmd.MarkFlagRequired("redirect-url")

	return cmd
}

func (a *app) processCmd(op netaxept.Operation) *cobra.Command {
	var req dto.ProcessRequest

	cmd := &cobra.Command{
		Use:   strings.ToLower(op.String()) + " <transaction-id> <amount>",
		Short: processSummary[op],
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			req.Amount = &amount

			resp, err := a.svc.Process(cmd.Context(), op, args[0], &req)
			if err != nil {
				return err
			}

			out := dto.NewOperationResponse(resp)
			out.TransactionID = args[0]
			return a.finish(cmd, out, resp)
		},
	}

	cmd.Flags().StringVarP(&req.Currency, "currency", "c", "", "ISO 4217 currency of the amount")
	cmd.Flags().StringVar(&req.ExpectedState, "expected-state", "", "Refuse locally unless the operation is legal from this state")

	return cmd
}

var processSummary = map[netaxept.Operation]string{
	netaxept.OpAuth:    "Reserve funds on the card",
	netaxept.OpSale:    "Authorize and capture in one step",
	netaxept.OpCapture: "Capture a previous authorization",
	netaxept.OpCredit:  "Refund captured funds",
}

func (a *app) annulCmd() *cobra.Command {
	var req dto.AnnulRequest

	cmd := &cobra.Command{
		Use:   "annul <transaction-id>",
		Short: "Cancel a transaction before capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.svc.Annul(cmd.Context(), args[0], &req)
			if err != nil {
				return err
			}

			out := dto.NewOperationResponse(resp)
			out.TransactionID = args[0]
			return a.finish(cmd, out, resp)
		},
	}

	cmd.Flags().StringVar(&req.ExpectedState, "expected-state", "", "Refuse locally unless annul is legal from this state")

	return cmd
}

func (a *app) queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <transaction-id>",
		Short: "Show payment information and the derived lifecycle state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.svc.Query(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.finish(cmd, dto.NewQueryResponse(args[0], resp), resp)
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <transaction-id>...",
		Short: "Query several transactions concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.svc.Statuses(cmd.Context(), args)
			if err != nil {
				return err
			}

			data := make([]dto.QueryResponse, len(results))
			for i, resp := range results {
				data[i] = dto.NewQueryResponse(args[i], resp)
			}
			return a.print(cmd.OutOrStdout(), dto.StatusListResponse{Data: data})
		},
	}
}

func (a *app) terminalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "terminal <transaction-id>",
		Short: "Print the hosted terminal URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), a.svc.TerminalURL(args[0]))
			return err
		},
	}
}

// finish prints the result and turns a gateway rejection into a non-zero exit.
func (a *app) finish(cmd *cobra.Command, out any, resp *netaxept.Response) error {
	if err := a.print(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if !resp.Successful {
		return resp.Error
	}
	return nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}
