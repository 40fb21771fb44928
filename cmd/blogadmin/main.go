package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/huyblog/blogservice/internal/admin"
	"github.com/huyblog/blogservice/internal/logging"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "blogadmin",
		Usage: "Manage the posts, social links and bio of the blog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Usage:   "Base URL of the blog API",
				Value:   admin.DefaultBaseURL,
				Sources: cli.EnvVars("BLOG_API_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Session token sent with writes",
				Sources: cli.EnvVars("BLOG_TOKEN"),
			},
			&cli.StringFlag{
				Name:  "lang",
				Usage: "Language of listings (en or vi)",
				Value: "en",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "trace, debug, info, warn or error",
				Value: "warn",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log.SetLevel(logging.GetLevel(cmd.String("log-level")))
			return ctx, nil
		},
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			postsCommand(),
			linksCommand(),
			bioCommand(),
			translateCommand(),
			hashPasswordCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
