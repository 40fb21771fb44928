//go:build integration_test || all_tests

package integration_testing

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/huyblog/blogservice/internal/config"
	"github.com/huyblog/blogservice/internal/db"
)

const containerExpireSeconds = 600

// Containers holds a throwaway MongoDB and Redis started through docker.
type Containers struct {
	MongoURI  string
	RedisPort string

	pool     *dockertest.Pool
	teardown []func()
}

func StartContainers(ctx context.Context) (_ *Containers, err error) {
	c := &Containers{
		teardown: make([]func(), 0),
	}
	defer func() {
		if err != nil {
			c.Cleanup()
		}
	}()

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	c.pool, err = dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("could not create new dockertest pool: %w", err)
	}
	c.pool.MaxWait = time.Minute

	// uses pool to try to connect to Docker
	if err = c.pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping dockertest pool: %w", err)
	}

	if err := c.redisSetup(ctx); err != nil {
		return nil, fmt.Errorf("setup redis: %w", err)
	}
	if err := c.mongoSetup(ctx); err != nil {
		return nil, fmt.Errorf("setup mongo: %w", err)
	}

	return c, nil
}

func (c *Containers) Cleanup() {
	for _, teardown := range c.teardown {
		teardown()
	}
}

func (c *Containers) redisSetup(ctx context.Context) error {
	redisResource, err := c.pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return fmt.Errorf("run redis: %w", err)
	}
	_ = redisResource.Expire(containerExpireSeconds)

	c.teardown = append(c.teardown, func() {
		if err := redisResource.Close(); err != nil {
			log.Printf("redis teardown: %s", err)
		}
	})

	c.RedisPort = redisResource.GetPort("6379/tcp")
	return c.pool.Retry(func() error {
		rdb := redis.NewClient(&redis.Options{Addr: "localhost:" + c.RedisPort})
		defer rdb.Close()
		return rdb.Ping(ctx).Err()
	})
}

func (c *Containers) mongoSetup(ctx context.Context) error {
	mongoResource, err := c.pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7.0",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return fmt.Errorf("run mongo: %w", err)
	}
	_ = mongoResource.Expire(containerExpireSeconds)

	c.teardown = append(c.teardown, func() {
		if err := mongoResource.Close(); err != nil {
			log.Printf("mongo teardown: %s", err)
		}
	})

	c.MongoURI = fmt.Sprintf("mongodb://localhost:%s", mongoResource.GetPort("27017/tcp"))
	return c.pool.Retry(func() error {
		client, err := db.NewMongoClient(ctx, db.NewMongoClientParams{
			URI:            c.MongoURI,
			ConnectTimeout: 5 * time.Second,
		})
		if err != nil {
			return err
		}
		return client.Disconnect(ctx)
	})
}

// TestConfig returns a development config pointing at the containers.
func (c *Containers) TestConfig(host string, port int, metricsPort string) *config.Config {
	return &config.Config{
		Environment:           config.EnvDevelopment,
		Host:                  host,
		Port:                  port,
		LogLevel:              "debug",
		LogToStdout:           true,
		MongoURI:              c.MongoURI,
		MongoDBName:           "blog_integration_test",
		RedisHost:             "localhost",
		RedisPort:             c.RedisPort,
		PrometheusMetricsHost: host,
		PrometheusMetricsPort: metricsPort,
		AllowedOrigins:        []string{"http://localhost:5173"},
		RequireAuth:           true,
		MaxBodyBytes:          10 << 20,
		GeminiBaseURL:         "https://generativelanguage.googleapis.com",
		GeminiModel:           "gemini-2.5-flash",
		// high enough for the suites, low enough to hit on purpose
		TranslateRateLimitPerMin: 5,
		LoginRateLimitPerMin:     100,
		SessionTTLHours:          1,
		DeployScript:             "deploy.sh",
	}
}
