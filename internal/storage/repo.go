package storage

import (
	"encoding/json"

	xerrors "xlate/internal/errors"
	"xlate/internal/uniast"
)

// LoadRepo reads the checkpointed repository stored under repoName. A cache
// miss returns (nil, nil); a present but undecodable entry is an error so a
// corrupt checkpoint never silently masquerades as a fresh start.
func LoadRepo(cache Engine, repoName string) (*uniast.Repository, error) {
	data, ok := cache.Get(repoName)
	if !ok {
		return nil, nil
	}
	var repo uniast.Repository
	if err := json.Unmarshal(data, &repo); err != nil {
		return nil, xerrors.Wrap(xerrors.CacheFailed, "decode cached repository "+repoName, err)
	}
	repo.ID = repoName
	return &repo, nil
}

// SaveRepo checkpoints the repository under its ID.
func SaveRepo(cache Engine, repo *uniast.Repository) error {
	data, err := json.Marshal(repo)
	if err != nil {
		return xerrors.Wrap(xerrors.CacheFailed, "encode repository "+repo.ID, err)
	}
	if err := cache.Put(repo.ID, data); err != nil {
		return xerrors.Wrap(xerrors.CacheFailed, "write repository "+repo.ID, err)
	}
	return nil
}

// LoadCodeCache reads the translation checkpoint for id, returning an empty
// cache when none exists yet.
func LoadCodeCache(cache Engine, id string) (*uniast.CodeCache, error) {
	data, ok := cache.Get(id)
	if !ok {
		return uniast.NewCodeCache(id), nil
	}
	cc := uniast.NewCodeCache(id)
	if err := json.Unmarshal(data, cc); err != nil {
		return nil, xerrors.Wrap(xerrors.CacheFailed, "decode code cache "+id, err)
	}
	cc.ID = id
	if cc.Nodes == nil {
		cc.Nodes = map[string]uniast.Code{}
	}
	if cc.Files == nil {
		cc.Files = map[string]uniast.Code{}
	}
	return cc, nil
}

// SaveCodeCache checkpoints the translation state under its ID.
func SaveCodeCache(cache Engine, cc *uniast.CodeCache) error {
	data, err := json.Marshal(cc)
	if err != nil {
		return xerrors.Wrap(xerrors.CacheFailed, "encode code cache "+cc.ID, err)
	}
	if err := cache.Put(cc.ID, data); err != nil {
		return xerrors.Wrap(xerrors.CacheFailed, "write code cache "+cc.ID, err)
	}
	return nil
}
