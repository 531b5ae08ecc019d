package mediatools

import (
	"context"
	"fmt"

	"github.com/halim/toolbridge/pkg/gateway"
)

var messageTitles = map[string]string{
	"info":    "Notice",
	"success": "Done",
	"warning": "Warning",
	"error":   "Error",
}

func sendMessageTool(messenger Messenger) gateway.ToolDescriptor {
	return gateway.ToolDescriptor{
		Name:        "send_message",
		Description: "Send a notification message to the calling user through the configured channels.",
		Parameters: []gateway.Parameter{
			{Name: "message", Type: "string", Description: "Message text to deliver", Required: true},
			{Name: "message_type", Type: "string", Description: "Message severity, controls the rendered title", Default: "info", Enum: []string{"info", "success", "warning", "error"}},
			explanationParam(),
		},
		Handler: func(ctx context.Context, args map[string]interface{}, userID, sessionID string) (interface{}, error) {
			note := Notification{
				UserID: userID,
				Title:  messageTitles[argString(args, "message_type", "info")],
				Text:   argString(args, "message", ""),
			}
			if err := messenger.Send(ctx, note); err != nil {
				return nil, fmt.Errorf("failed to send message: %w", err)
			}
			return "message sent", nil
		},
	}
}
