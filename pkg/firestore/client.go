// Package firestore opens a Cloud Firestore client through the Firebase
// Admin SDK and provides a readiness probe for it.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrMissingProjectID  = errors.New("firestore project id is not set")
	ErrHealthcheckFailed = errors.New("firestore healthcheck failed")
)

// Config is loaded from the environment by pkg/config. When
// FIRESTORE_EMULATOR_HOST is set the SDK talks to the emulator instead.
type Config struct {
	ProjectID       string `env:"FIRESTORE_PROJECT_ID"`
	CredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
}

// Connect initialises the Firebase app and returns its Firestore client.
func Connect(ctx context.Context, cfg Config) (*firestore.Client, error) {
	if cfg.ProjectID == "" {
		return nil, ErrMissingProjectID
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore: init firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore: open client: %w", err)
	}
	return client, nil
}

// IsNotFound reports whether err is a Firestore NotFound status.
func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// Healthcheck reads a document that does not need to exist. A NotFound
// answer still proves the backend is reachable.
func Healthcheck(client *firestore.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := client.Collection("_health").Doc("ping").Get(ctx)
		if err == nil || IsNotFound(err) {
			return nil
		}
		return errors.Join(ErrHealthcheckFailed, err)
	}
}
