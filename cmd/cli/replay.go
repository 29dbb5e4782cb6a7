package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tixeats/walletsettle/internal/adapter/http/dto"
	"github.com/tixeats/walletsettle/internal/domain"
)

func (c *cli) replayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Apply an event by hand, as if it had been delivered again",
		Long: `Replays an order trigger or a gateway webhook through the transfer engine.
Events that were already applied are answered from the stored records, so
replaying is always safe.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "order ORDER_ID",
			Short: "Settle a completed order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				env := &domain.Envelope{
					Event: domain.EventOrderTrigger,
					Order: &domain.OrderTrigger{OrderID: args[0], OrderStatus: domain.OrderStatusCompleted},
				}
				return c.replay(cmd, env)
			},
		},
		&cobra.Command{
			Use:   "gateway FILE",
			Short: "Apply a stored gateway webhook body (use - for stdin)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				env, err := readGatewayEnvelope(args[0], cmd.InOrStdin())
				if err != nil {
					return err
				}
				return c.replay(cmd, env)
			},
		},
	)

	return cmd
}

func (c *cli) replay(cmd *cobra.Command, env *domain.Envelope) error {
	s, err := c.openStack(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()

	result, err := s.webhooks.Handle(cmd.Context(), env)
	if err != nil {
		return fmt.Errorf("replay %s (%s): %w", env.Event, domain.Classify(err), err)
	}

	outcome := "applied"
	if result.Replayed {
		outcome = "already applied"
	}
	fmt.Fprintf(c.out, "%s %s/%s: %s\n", result.Intent.Kind, result.Intent.Source, result.Intent.CorrelationID, outcome)
	return c.printJSON(dto.RecordsFromDomain(result.Legs))
}

// readGatewayEnvelope decodes a gateway webhook body from path, or from stdin
// when path is "-".
func readGatewayEnvelope(path string, stdin io.Reader) (*domain.Envelope, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var req dto.GatewayWebhookRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("decode gateway payload: %w", err)
	}
	if req.Event == "" {
		return nil, fmt.Errorf("%w: event is required", domain.ErrMalformedPayload)
	}

	return req.ToEnvelope(), nil
}
