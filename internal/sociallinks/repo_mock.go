package sociallinks

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ linksRepo = (*repoMock)(nil)

// repoMock keeps insertion order, like a collection scan without sort.
type repoMock struct {
	links []*SocialLink
	Err   error
	mutex sync.Mutex
}

func newRepoMock(links ...*SocialLink) *repoMock {
	r := &repoMock{}
	for _, l := range links {
		cp := *l
		if cp.ID.IsZero() {
			cp.ID = primitive.NewObjectID()
		}
		r.links = append(r.links, &cp)
	}
	return r
}

func (r *repoMock) Count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.links)
}

func (r *repoMock) find(id primitive.ObjectID) int {
	for i, l := range r.links {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (r *repoMock) All(_ context.Context) ([]*SocialLink, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	all := make([]*SocialLink, 0, len(r.links))
	for _, l := range r.links {
		cp := *l
		all = append(all, &cp)
	}
	return all, nil
}

func (r *repoMock) Get(_ context.Context, id primitive.ObjectID) (*SocialLink, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	i := r.find(id)
	if i < 0 {
		return nil, ErrSocialLinkNotFound
	}
	cp := *r.links[i]
	return &cp, nil
}

func (r *repoMock) Create(_ context.Context, link *SocialLink) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return r.Err
	}
	link.ID = primitive.NewObjectID()
	cp := *link
	r.links = append(r.links, &cp)
	return nil
}

func (r *repoMock) Update(_ context.Context, id primitive.ObjectID, set bson.D) (*SocialLink, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	i := r.find(id)
	if i < 0 {
		return nil, ErrSocialLinkNotFound
	}

	link := r.links[i]
	for _, e := range set {
		v, _ := e.Value.(string)
		switch e.Key {
		case "platform":
			link.Platform = v
		case "username":
			link.Username = v
		case "url":
			link.URL = v
		}
	}
	cp := *link
	return &cp, nil
}

func (r *repoMock) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return r.Err
	}
	i := r.find(id)
	if i < 0 {
		return ErrSocialLinkNotFound
	}
	r.links = append(r.links[:i], r.links[i+1:]...)
	return nil
}
