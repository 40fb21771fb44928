package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

const (
	CollectionPosts       = "posts"
	CollectionSocialLinks = "socialLinks"
	CollectionBio         = "bio"
)

type NewMongoClientParams struct {
	URI            string
	AppName        string
	TracingEnabled bool
	ConnectTimeout time.Duration
}

// NewMongoClient connects and pings the server, so a returned client is usable.
func NewMongoClient(ctx context.Context, params NewMongoClientParams) (*mongo.Client, error) {
	if params.URI == "" {
		return nil, errors.New("mongo uri is empty")
	}
	if params.ConnectTimeout == 0 {
		params.ConnectTimeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(params.URI).
		SetConnectTimeout(params.ConnectTimeout).
		SetServerSelectionTimeout(params.ConnectTimeout)
	if params.AppName != "" {
		opts.SetAppName(params.AppName)
	}
	if params.TracingEnabled {
		opts.SetMonitor(otelmongo.NewMonitor())
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, params.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, nil
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ClientPinger adapts a mongo client to Pinger.
type ClientPinger struct {
	Client *mongo.Client
}

func (p ClientPinger) Ping(ctx context.Context) error {
	if p.Client == nil {
		return errors.New("mongo client not set")
	}
	return p.Client.Ping(ctx, readpref.Primary())
}
