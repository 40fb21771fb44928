package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/huyblog/blogservice/internal/posts"
	"github.com/huyblog/blogservice/internal/sociallinks"
)

// ErrDeleteDeclined is returned when the user did not confirm a delete.
var ErrDeleteDeclined = errors.New("delete not confirmed")

// Confirmer asks the user before a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a plain func to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

type blogAPI interface {
	ListPosts(ctx context.Context, filter posts.Filter) ([]*posts.Post, error)
	CreatePost(ctx context.Context, post *posts.Post) (*posts.Post, error)
	UpdatePost(ctx context.Context, id string, post *posts.Post) (*posts.Post, error)
	DeletePost(ctx context.Context, id string) error
	ListSocialLinks(ctx context.Context) ([]*sociallinks.SocialLink, error)
	CreateSocialLink(ctx context.Context, link *sociallinks.SocialLink) (*sociallinks.SocialLink, error)
	UpdateSocialLink(ctx context.Context, id string, link *sociallinks.SocialLink) (*sociallinks.SocialLink, error)
	DeleteSocialLink(ctx context.Context, id string) error
}

// Dashboard keeps the last fetched posts and social links. The cached slices are
// only ever replaced by a full re-fetch, never patched.
type Dashboard struct {
	api       blogAPI
	confirmer Confirmer

	mutex sync.RWMutex
	posts []*posts.Post
	links []*sociallinks.SocialLink
}

func NewDashboard(api blogAPI, confirmer Confirmer) *Dashboard {
	return &Dashboard{
		api:       api,
		confirmer: confirmer,
	}
}

func (d *Dashboard) Posts() []*posts.Post {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.posts
}

func (d *Dashboard) SocialLinks() []*sociallinks.SocialLink {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.links
}

// Refresh fetches both collections. On error the previous state is kept.
func (d *Dashboard) Refresh(ctx context.Context) error {
	if err := d.RefreshPosts(ctx); err != nil {
		return err
	}
	return d.RefreshSocialLinks(ctx)
}

func (d *Dashboard) RefreshPosts(ctx context.Context) error {
	list, err := d.api.ListPosts(ctx, posts.Filter{})
	if err != nil {
		return fmt.Errorf("fetch posts: %w", err)
	}
	d.mutex.Lock()
	d.posts = list
	d.mutex.Unlock()
	return nil
}

func (d *Dashboard) RefreshSocialLinks(ctx context.Context) error {
	list, err := d.api.ListSocialLinks(ctx)
	if err != nil {
		return fmt.Errorf("fetch social links: %w", err)
	}
	d.mutex.Lock()
	d.links = list
	d.mutex.Unlock()
	return nil
}

// SavePost creates the post when it has no id and updates it otherwise, then re-fetches
// all posts no matter what the write returned.
func (d *Dashboard) SavePost(ctx context.Context, post *posts.Post) (*posts.Post, error) {
	var saved *posts.Post
	var err error
	if post.ID.IsZero() {
		saved, err = d.api.CreatePost(ctx, post)
	} else {
		saved, err = d.api.UpdatePost(ctx, post.ID.Hex(), post)
	}
	if err != nil {
		return nil, fmt.Errorf("save post: %w", err)
	}

	if err := d.RefreshPosts(ctx); err != nil {
		log.Errorf("post saved, but re-fetch failed: %s", err)
		return saved, err
	}
	return saved, nil
}

func (d *Dashboard) SaveSocialLink(ctx context.Context, link *sociallinks.SocialLink) (*sociallinks.SocialLink, error) {
	var saved *sociallinks.SocialLink
	var err error
	if link.ID.IsZero() {
		saved, err = d.api.CreateSocialLink(ctx, link)
	} else {
		saved, err = d.api.UpdateSocialLink(ctx, link.ID.Hex(), link)
	}
	if err != nil {
		return nil, fmt.Errorf("save social link: %w", err)
	}

	if err := d.RefreshSocialLinks(ctx); err != nil {
		log.Errorf("social link saved, but re-fetch failed: %s", err)
		return saved, err
	}
	return saved, nil
}

// DeletePost asks the confirmer first; when declined nothing is sent.
func (d *Dashboard) DeletePost(ctx context.Context, id string) error {
	if !d.confirm(fmt.Sprintf("Delete post %s?", id)) {
		return ErrDeleteDeclined
	}
	if err := d.api.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return d.RefreshPosts(ctx)
}

func (d *Dashboard) DeleteSocialLink(ctx context.Context, id string) error {
	if !d.confirm(fmt.Sprintf("Delete social link %s?", id)) {
		return ErrDeleteDeclined
	}
	if err := d.api.DeleteSocialLink(ctx, id); err != nil {
		return fmt.Errorf("delete social link: %w", err)
	}
	return d.RefreshSocialLinks(ctx)
}

func (d *Dashboard) confirm(prompt string) bool {
	if d.confirmer == nil {
		return false
	}
	return d.confirmer.Confirm(prompt)
}
