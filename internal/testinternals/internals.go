package testinternals

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"

	"github.com/huyblog/blogservice/internal/auth"
	"github.com/huyblog/blogservice/internal/content"
	"github.com/huyblog/blogservice/internal/posts"
	"github.com/huyblog/blogservice/internal/sociallinks"
)

const TestAdminToken = "test-admin-token"

type Internals struct {
	InitialPosts []*posts.Post

	AuthService  *auth.Service
	LoginChecker *auth.LoginTestChecker

	// redis
	RedisClient *redis.Client
	RedisMock   redismock.ClientMock
}

// NewTestingInternals returns fixtures that need no running services: three posts
// a month apart, an auth service on a mocked redis and a checker that
// accepts TestAdminToken.
func NewTestingInternals() *Internals {
	initialPosts := []*posts.Post{
		FakePost("2024-01-15", "Sách"),
		FakePost("2024-02-15", "AI", "Học tập"),
		FakePost("2024-03-15", "Nhật kí"),
	}

	redisClient, redisMock := redismock.NewClientMock()
	authService := auth.NewAuthService(&auth.Admin{Username: "admin"}, time.Hour, redisClient)

	loginChecker := auth.NewLoginTestChecker()
	loginChecker.LoggedSessions[TestAdminToken] = true

	return &Internals{
		InitialPosts: initialPosts,
		AuthService:  authService,
		LoginChecker: loginChecker,
		RedisClient:  redisClient,
		RedisMock:    redisMock,
	}
}

// FakePost returns a valid post without an id.
func FakePost(date string, categories ...string) *posts.Post {
	if len(categories) == 0 {
		categories = []string{gofakeit.RandomString(content.Categories)}
	}
	return &posts.Post{
		Title:      content.BilingualText{En: gofakeit.Sentence(4), Vi: gofakeit.Sentence(4)},
		Excerpt:    content.BilingualText{En: gofakeit.Sentence(10), Vi: gofakeit.Sentence(10)},
		Content:    content.BilingualText{En: gofakeit.Paragraph(2, 3, 8, "\n\n"), Vi: gofakeit.Paragraph(2, 3, 8, "\n\n")},
		Date:       date,
		ReadTime:   gofakeit.Number(1, 20),
		Categories: categories,
	}
}

// FakeSocialLink returns a valid link without an id.
func FakeSocialLink() *sociallinks.SocialLink {
	username := gofakeit.Username()
	return &sociallinks.SocialLink{
		Platform: "Github",
		Username: username,
		URL:      "https://github.com/" + username,
	}
}
