package viewed

import (
	"github.com/feedview/feedview/constant"
	"github.com/feedview/feedview/filesystem"
	"github.com/metafates/gache"
	"github.com/samber/lo"
)

// Store persists, per view scope, the ids the server acknowledged as viewed.
type Store struct {
	cacher *gache.Cache[map[string][]int]
}

// NewStore opens the record at path through the filesystem backend.
func NewStore(path string) *Store {
	return &Store{
		cacher: gache.New[map[string][]int](
			&gache.Options{
				Path:       path,
				Lifetime:   constant.ViewedLifetime,
				FileSystem: &filesystem.GacheFs{},
			},
		),
	}
}

func (s *Store) all() (map[string][]int, error) {
	cached, expired, err := s.cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string][]int), nil
	}
	return cached, nil
}

// Load returns the acknowledged ids of scope.
func (s *Store) Load(scope string) ([]int, error) {
	all, err := s.all()
	if err != nil {
		return nil, err
	}
	return all[scope], nil
}

// Add merges ids into the record of scope.
func (s *Store) Add(scope string, ids []int) error {
	all, err := s.all()
	if err != nil {
		return err
	}

	all[scope] = lo.Uniq(append(all[scope], ids...))
	return s.cacher.Set(all)
}
