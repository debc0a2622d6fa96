package utils

import (
	"context"

	"parkly/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMClient sends push notifications. Nil until FirebaseInit runs, and stays
// nil when no credentials are configured.
var FCMClient *messaging.Client

// FirebaseInit builds the messaging client from the configured service
// account file and aborts startup on failure.
func FirebaseInit() {
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil,
		option.WithCredentialsFile(config.AppConfig.FirebaseCredentialsFile))
	if err != nil {
		GetLogger().Sugar().Fatalf("firebase: error initializing app: %v", err)
	}

	FCMClient, err = app.Messaging(ctx)
	if err != nil {
		GetLogger().Sugar().Fatalf("firebase: error getting messaging client: %v", err)
	}
}
