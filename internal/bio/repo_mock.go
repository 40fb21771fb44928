package bio

import (
	"context"
	"maps"
	"sync"
	"time"
)

var _ bioRepo = (*repoMock)(nil)

type repoMock struct {
	doc   *Document
	Err   error
	mutex sync.Mutex
}

func (r *repoMock) Get(_ context.Context) (Translations, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if r.doc == nil {
		return Translations{}, nil
	}
	return maps.Clone(r.doc.Translations), nil
}

func (r *repoMock) Upsert(_ context.Context, translations Translations, now time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.doc = &Document{
		ID:           DocumentID,
		Translations: maps.Clone(translations),
		UpdatedAt:    now,
	}
	return nil
}
