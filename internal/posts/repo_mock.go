package posts

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ postsRepo = (*repoMock)(nil)

type repoMock struct {
	Posts map[primitive.ObjectID]*Post
	Err   error
	mutex sync.Mutex
}

func newRepoMock() *repoMock {
	return &repoMock{
		Posts: make(map[primitive.ObjectID]*Post),
	}
}

func (r *repoMock) PostsCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.Posts)
}

func (r *repoMock) All(_ context.Context, filter Filter) ([]*Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	all := make([]*Post, 0, len(r.Posts))
	for _, p := range r.Posts {
		cp := *p
		all = append(all, &cp)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date > all[j].Date
	})

	return filter.Apply(all), nil
}

func (r *repoMock) Get(_ context.Context, id primitive.ObjectID) (*Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	p, ok := r.Posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *repoMock) Create(_ context.Context, post *Post) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return r.Err
	}

	post.ID = primitive.NewObjectID()
	cp := *post
	r.Posts[post.ID] = &cp
	return nil
}

func (r *repoMock) Update(_ context.Context, id primitive.ObjectID, set bson.D) (*Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	p, ok := r.Posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}

	raw, err := bson.Marshal(p)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for _, e := range set {
		doc[e.Key] = e.Value
	}
	raw, err = bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var updated Post
	if err := bson.Unmarshal(raw, &updated); err != nil {
		return nil, err
	}

	updated.normalize()
	r.Posts[id] = &updated
	cp := updated
	return &cp, nil
}

func (r *repoMock) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return r.Err
	}

	if _, ok := r.Posts[id]; !ok {
		return ErrPostNotFound
	}
	delete(r.Posts, id)
	return nil
}
