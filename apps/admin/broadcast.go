package main

import (
	"context"
	"fmt"

	"github.com/trezcool/alama/core/feedback"
)

func (cli *commandLine) broadcastFeedback(subject, message string) error {
	n, err := cli.fbSvc.Broadcast(context.Background(), feedback.BroadcastRequest{
		Subject: subject,
		Message: message,
	})
	if err != nil {
		return err
	}
	fmt.Printf("announcement sent to %d student(s)\n", n)
	return nil
}
