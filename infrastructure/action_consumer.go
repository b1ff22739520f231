package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"

	"tapown/application"

	log "github.com/sirupsen/logrus"
)

const (
	actionRequestSubject = "actions.requests"
	actionResultSubject  = "actions.results"
)

// ActionRequest is the wire form of a player action arriving from the chat
// frontend over the bus
type ActionRequest struct {
	RequestID   string `json:"request_id"`
	Kind        string `json:"kind"`
	AccountID   int64  `json:"account_id"`
	DisplayName string `json:"display_name"`
	Payload     string `json:"payload"`
}

// ActionResult is the wire form of a handled action's outcome, published for
// the frontend to render
type ActionResult struct {
	RequestID   string `json:"request_id"`
	Text        string `json:"text"`
	RewardDelta int64  `json:"reward_delta"`
	NewBalance  int64  `json:"new_balance"`
}

// ActionConsumer subscribes to incoming player actions and routes them
// through the engine
type ActionConsumer struct {
	natsClient *NATSClient
	engine     *application.Engine
}

// NewActionConsumer creates a new action consumer
func NewActionConsumer(natsClient *NATSClient, engine *application.Engine) *ActionConsumer {
	return &ActionConsumer{
		natsClient: natsClient,
		engine:     engine,
	}
}

// Start ensures the ingress stream exists and subscribes to action requests
func (c *ActionConsumer) Start(ctx context.Context) error {
	if err := c.natsClient.ensureStream("actions", []string{actionRequestSubject, actionResultSubject}); err != nil {
		return fmt.Errorf("failed to ensure actions stream: %w", err)
	}

	if err := c.natsClient.Subscribe(actionRequestSubject, func(data []byte) error {
		return c.handleRequest(ctx, data)
	}); err != nil {
		return fmt.Errorf("failed to subscribe to action requests: %w", err)
	}

	log.Info("Action consumer started")
	return nil
}

func (c *ActionConsumer) handleRequest(ctx context.Context, data []byte) error {
	var req ActionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		// Malformed input is dropped, not retried
		log.WithError(err).Error("Dropping malformed action request")
		return nil
	}

	result, err := c.engine.Handle(ctx, application.Action{
		Kind:        application.ActionKind(req.Kind),
		AccountID:   req.AccountID,
		DisplayName: req.DisplayName,
		Payload:     req.Payload,
	})
	if err != nil {
		return fmt.Errorf("failed to handle action %s for account %d: %w", req.Kind, req.AccountID, err)
	}

	out, err := json.Marshal(ActionResult{
		RequestID:   req.RequestID,
		Text:        result.Text,
		RewardDelta: result.RewardDelta,
		NewBalance:  result.NewBalance,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal action result: %w", err)
	}

	if err := c.natsClient.Publish(ctx, actionResultSubject, out); err != nil {
		return fmt.Errorf("failed to publish action result: %w", err)
	}
	return nil
}
