package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/huyblog/blogservice/internal/admin"
	"github.com/huyblog/blogservice/internal/bio"
	"github.com/huyblog/blogservice/internal/content"
	"github.com/huyblog/blogservice/internal/posts"
	"github.com/huyblog/blogservice/internal/sociallinks"
	"github.com/huyblog/blogservice/internal/translate"
	"github.com/huyblog/blogservice/pkg"
)

func yesFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Do not ask for confirmation",
	}
}

func postFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:      "file",
		Aliases:   []string{"f"},
		Usage:     "JSON file with the post",
		Required:  true,
		TakesFile: true,
	}
}

func newClient(cmd *cli.Command) *admin.Client {
	return admin.NewClient(cmd.String("api"), cmd.String("token"), nil)
}

func newDashboard(cmd *cli.Command) *admin.Dashboard {
	var confirmer admin.Confirmer = admin.NewPromptConfirmer(os.Stdin, os.Stdout)
	if cmd.Bool("yes") {
		confirmer = admin.ConfirmFunc(func(string) bool { return true })
	}
	return admin.NewDashboard(newClient(cmd), confirmer)
}

func language(cmd *cli.Command) content.Language {
	return content.ParseLanguage(cmd.String("lang"))
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	arg := strings.TrimSpace(cmd.Args().First())
	if arg == "" {
		return "", fmt.Errorf("missing argument: %s", name)
	}
	return arg, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(pkg.BytesToString(out))
	return nil
}

func readPostFile(path string) (*posts.Post, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read post file: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	post := &posts.Post{}
	if err := decoder.Decode(post); err != nil {
		return nil, fmt.Errorf("decode post file %s: %w", path, err)
	}
	return post, nil
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in as the admin and print the session token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true, Sources: cli.EnvVars("BLOG_ADMIN_USERNAME")},
			&cli.StringFlag{Name: "password", Required: true, Sources: cli.EnvVars("BLOG_ADMIN_PASSWORD")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			token, err := newClient(cmd).Login(ctx, cmd.String("username"), cmd.String("password"))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Invalidate the session token",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			loggedOut, err := newClient(cmd).Logout(ctx)
			if err != nil {
				return err
			}
			if !loggedOut {
				return errors.New("session not found")
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func postsCommand() *cli.Command {
	return &cli.Command{
		Name:  "posts",
		Usage: "Manage blog posts",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List posts, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "q", Usage: "Search title and excerpt"},
					&cli.StringFlag{Name: "category", Usage: "One of: " + strings.Join(content.Categories, ", ")},
					&cli.StringFlag{Name: "from", Usage: "Inclusive start date, YYYY-MM-DD"},
					&cli.StringFlag{Name: "to", Usage: "Inclusive end date, YYYY-MM-DD"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					list, err := newClient(cmd).ListPosts(ctx, posts.Filter{
						Query:    cmd.String("q"),
						Category: cmd.String("category"),
						FromDate: cmd.String("from"),
						ToDate:   cmd.String("to"),
					})
					if err != nil {
						return err
					}
					return admin.RenderPosts(os.Stdout, list, language(cmd))
				},
			},
			{
				Name:      "get",
				Usage:     "Print one post as JSON",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := requireArg(cmd, "post id")
					if err != nil {
						return err
					}
					post, err := newClient(cmd).GetPost(ctx, id)
					if err != nil {
						return err
					}
					return printJSON(post)
				},
			},
			{
				Name:  "create",
				Usage: "Create a post from a JSON file",
				Flags: []cli.Flag{postFileFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					post, err := readPostFile(cmd.String("file"))
					if err != nil {
						return err
					}
					post.ID = primitive.NilObjectID
					saved, err := newDashboard(cmd).SavePost(ctx, post)
					if err != nil {
						return err
					}
					fmt.Printf("created post %s\n", saved.ID.Hex())
					return nil
				},
			},
			{
				Name:      "update",
				Usage:     "Replace a post with the contents of a JSON file",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{postFileFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := requireArg(cmd, "post id")
					if err != nil {
						return err
					}
					oid, err := posts.ParseID(id)
					if err != nil {
						return err
					}
					post, err := readPostFile(cmd.String("file"))
					if err != nil {
						return err
					}
					post.ID = oid
					if _, err := newDashboard(cmd).SavePost(ctx, post); err != nil {
						return err
					}
					fmt.Printf("updated post %s\n", id)
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a post",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{yesFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := requireArg(cmd, "post id")
					if err != nil {
						return err
					}
					if err := newDashboard(cmd).DeletePost(ctx, id); err != nil {
						if errors.Is(err, admin.ErrDeleteDeclined) {
							fmt.Println("aborted")
							return nil
						}
						return err
					}
					fmt.Printf("deleted post %s\n", id)
					return nil
				},
			},
		},
	}
}

func linkFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "platform", Required: required, Usage: strings.Join(sociallinks.Platforms, ", ")},
		&cli.StringFlag{Name: "username", Required: required},
		&cli.StringFlag{Name: "url", Required: required},
	}
}

func linksCommand() *cli.Command {
	return &cli.Command{
		Name:  "links",
		Usage: "Manage social links",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List social links",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					list, err := newClient(cmd).ListSocialLinks(ctx)
					if err != nil {
						return err
					}
					return admin.RenderSocialLinks(os.Stdout, list)
				},
			},
			{
				Name:  "create",
				Usage: "Add a social link",
				Flags: linkFlags(true),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					saved, err := newDashboard(cmd).SaveSocialLink(ctx, &sociallinks.SocialLink{
						Platform: cmd.String("platform"),
						Username: cmd.String("username"),
						URL:      cmd.String("url"),
					})
					if err != nil {
						return err
					}
					fmt.Printf("created social link %s\n", saved.ID.Hex())
					return nil
				},
			},
			{
				Name:      "update",
				Usage:     "Change the given fields of a social link",
				ArgsUsage: "<id>",
				Flags:     linkFlags(false),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := requireArg(cmd, "social link id")
					if err != nil {
						return err
					}
					dashboard := newDashboard(cmd)
					if err := dashboard.RefreshSocialLinks(ctx); err != nil {
						return err
					}

					var link *sociallinks.SocialLink
					for _, l := range dashboard.SocialLinks() {
						if l.ID.Hex() == id {
							edited := *l
							link = &edited
							break
						}
					}
					if link == nil {
						return fmt.Errorf("social link %s not found", id)
					}

					if cmd.IsSet("platform") {
						link.Platform = cmd.String("platform")
					}
					if cmd.IsSet("username") {
						link.Username = cmd.String("username")
					}
					if cmd.IsSet("url") {
						link.URL = cmd.String("url")
					}
					if _, err := dashboard.SaveSocialLink(ctx, link); err != nil {
						return err
					}
					fmt.Printf("updated social link %s\n", id)
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a social link",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{yesFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := requireArg(cmd, "social link id")
					if err != nil {
						return err
					}
					if err := newDashboard(cmd).DeleteSocialLink(ctx, id); err != nil {
						if errors.Is(err, admin.ErrDeleteDeclined) {
							fmt.Println("aborted")
							return nil
						}
						return err
					}
					fmt.Printf("deleted social link %s\n", id)
					return nil
				},
			},
		},
	}
}

func bioCommand() *cli.Command {
	return &cli.Command{
		Name:  "bio",
		Usage: "Show or edit the bio texts",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Show the bio texts",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					translations, err := newClient(cmd).GetBio(ctx)
					if err != nil {
						return err
					}
					return admin.RenderBio(os.Stdout, translations, language(cmd))
				},
			},
			{
				Name:  "set",
				Usage: "Set one bio text in both languages, keeping the others",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "key", Value: "bio"},
					&cli.StringFlag{Name: "en", Required: true},
					&cli.StringFlag{Name: "vi", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client := newClient(cmd)
					translations, err := client.GetBio(ctx)
					if err != nil {
						return err
					}
					if translations == nil {
						translations = bio.Translations{}
					}
					translations[cmd.String("key")] = content.BilingualText{
						En: cmd.String("en"),
						Vi: cmd.String("vi"),
					}
					if _, err := client.SetBio(ctx, translations); err != nil {
						return err
					}
					fmt.Printf("bio %q updated\n", cmd.String("key"))
					return nil
				},
			},
		},
	}
}

func translateCommand() *cli.Command {
	return &cli.Command{
		Name:      "translate",
		Usage:     "Translate Vietnamese text, or a post file, to English",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "post-file", Usage: "Translate the Vietnamese half of a post JSON file", TakesFile: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client := newClient(cmd)

			if path := cmd.String("post-file"); path != "" {
				post, err := readPostFile(path)
				if err != nil {
					return err
				}
				translated, err := client.TranslatePost(ctx, translate.PostFields{
					Title:   post.Title.Vi,
					Excerpt: post.Excerpt.Vi,
					Content: post.Content.Vi,
				})
				if err != nil {
					return err
				}
				return printJSON(translated)
			}

			text := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(text) == "" {
				return errors.New("missing argument: text")
			}
			translated, err := client.TranslateText(ctx, text)
			if err != nil {
				return err
			}
			fmt.Println(translated)
			return nil
		},
	}
}

func hashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "Print the bcrypt hash for BLOG_ADMIN_PASSWORD_HASH",
		ArgsUsage: "<password>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			password, err := requireArg(cmd, "password")
			if err != nil {
				return err
			}
			hash, err := pkg.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
}
