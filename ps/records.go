package ps

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v6/plumbing/object"
)

// ReadRecord returns the contents of path at HEAD.
func (p *Persistence) ReadRecord(path string) ([]byte, error) {
	if err := p.ensureInitialized(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	tree, err := p.headCommitTree()
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, path)
	}

	file, err := tree.File(path)
	if errors.Is(err, object.ErrFileNotFound) || errors.Is(err, object.ErrDirectoryNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", path, err)
	}

	content, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return []byte(content), nil
}

// ListRecords returns the paths of all records at HEAD, sorted.
func (p *Persistence) ListRecords() ([]string, error) {
	if err := p.ensureInitialized(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.listRecords()
}

func (p *Persistence) listRecords() ([]string, error) {
	tree, err := p.headCommitTree()
	if err != nil || tree == nil {
		return nil, err
	}

	var paths []string
	err = tree.Files().ForEach(func(file *object.File) error {
		paths = append(paths, file.Name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk tree: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}
