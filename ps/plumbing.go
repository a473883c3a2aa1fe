package ps

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/filemode"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/rs/zerolog/log"

	"github.com/nickyhof/RecordGen/core"
)

// WriteRecord stores data at path and commits it on the current branch.
// Intermediate directories in path are created as needed.
func (p *Persistence) WriteRecord(path string, data []byte, identity core.Identity, message string) (Transaction, error) {
	if err := p.ensureInitialized(); err != nil {
		return Transaction{}, err
	}
	parts, err := splitPath(path)
	if err != nil {
		return Transaction{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	root, err := p.headTree()
	if err != nil {
		return Transaction{}, err
	}

	blob, err := p.storeBlob(data)
	if err != nil {
		return Transaction{}, err
	}

	newRoot, err := p.placeBlob(root, parts, blob)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to update tree for %s: %w", path, err)
	}

	txn, err := p.commitTree(newRoot, identity, message)
	if err != nil {
		return Transaction{}, err
	}

	if err := p.syncWorktree(); err != nil {
		return Transaction{}, fmt.Errorf("failed to sync worktree: %w", err)
	}

	log.Debug().Str("path", path).Str("commit", txn.Id).Msg("record committed")
	return txn, nil
}

func splitPath(path string) ([]string, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for _, part := range parts {
		if part == "" || part == "." || part == ".." || part == ".git" {
			return nil, fmt.Errorf("invalid record path %q", path)
		}
	}
	return parts, nil
}

// storeBlob writes data straight into the object store.
func (p *Persistence) storeBlob(data []byte) (plumbing.Hash, error) {
	obj := p.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to open blob writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return plumbing.ZeroHash, fmt.Errorf("failed to write blob: %w", err)
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to close blob writer: %w", err)
	}

	hash, err := p.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store blob: %w", err)
	}
	return hash, nil
}

// headTree returns the tree of HEAD, or ZeroHash before the first commit.
func (p *Persistence) headTree() (plumbing.Hash, error) {
	head, err := p.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, nil
	}
	commit, err := p.repo.CommitObject(head.Hash())
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to read head commit: %w", err)
	}
	return commit.TreeHash, nil
}

func (p *Persistence) treeEntries(hash plumbing.Hash) (map[string]object.TreeEntry, error) {
	entries := make(map[string]object.TreeEntry)
	if hash == plumbing.ZeroHash {
		return entries, nil
	}

	tree, err := object.GetTree(p.repo.Storer, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree %s: %w", hash, err)
	}
	for _, entry := range tree.Entries {
		entries[entry.Name] = entry
	}
	return entries, nil
}

// placeBlob returns a new tree equal to tree with blob at parts, rebuilding
// each tree along the path.
func (p *Persistence) placeBlob(tree plumbing.Hash, parts []string, blob plumbing.Hash) (plumbing.Hash, error) {
	entries, err := p.treeEntries(tree)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	name := parts[0]
	if len(parts) == 1 {
		entries[name] = object.TreeEntry{Name: name, Mode: filemode.Regular, Hash: blob}
	} else {
		sub := plumbing.ZeroHash
		if existing, ok := entries[name]; ok && existing.Mode == filemode.Dir {
			sub = existing.Hash
		}
		newSub, err := p.placeBlob(sub, parts[1:], blob)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries[name] = object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: newSub}
	}

	return p.storeTree(entries)
}

func (p *Persistence) storeTree(entries map[string]object.TreeEntry) (plumbing.Hash, error) {
	list := make([]object.TreeEntry, 0, len(entries))
	for _, entry := range entries {
		list = append(list, entry)
	}
	// Git orders directories as if their name ended in '/'.
	sortKey := func(entry object.TreeEntry) string {
		if entry.Mode == filemode.Dir {
			return entry.Name + "/"
		}
		return entry.Name
	}
	sort.Slice(list, func(i, j int) bool {
		return sortKey(list[i]) < sortKey(list[j])
	})

	obj := p.repo.Storer.NewEncodedObject()
	if err := (&object.Tree{Entries: list}).Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to encode tree: %w", err)
	}
	hash, err := p.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store tree: %w", err)
	}
	return hash, nil
}

// commitTree records tree as a new commit on top of HEAD and moves the
// current branch (master before the first commit) to it.
func (p *Persistence) commitTree(tree plumbing.Hash, identity core.Identity, message string) (Transaction, error) {
	var parents []plumbing.Hash
	head, err := p.repo.Head()
	if err == nil {
		parents = []plumbing.Hash{head.Hash()}
	}

	signature := object.Signature{
		Name:  identity.Name,
		Email: identity.Email,
		When:  time.Now(),
	}

	commit := &object.Commit{
		Author:       signature,
		Committer:    signature,
		Message:      message,
		TreeHash:     tree,
		ParentHashes: parents,
	}

	obj := p.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return Transaction{}, fmt.Errorf("failed to encode commit: %w", err)
	}
	hash, err := p.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to store commit: %w", err)
	}

	branch := plumbing.Master
	if head != nil && head.Name().IsBranch() {
		branch = head.Name()
	}
	if err := p.repo.Storer.SetReference(plumbing.NewHashReference(branch, hash)); err != nil {
		return Transaction{}, fmt.Errorf("failed to move %s: %w", branch.Short(), err)
	}

	return Transaction{
		Id:      hash.String(),
		When:    signature.When,
		Author:  identity.String(),
		Message: message,
	}, nil
}

// syncWorktree checks HEAD out into the worktree so file mode repositories
// show the records on disk. Memory mode reads from the tree directly.
func (p *Persistence) syncWorktree() error {
	if p.isMemoryMode {
		return nil
	}

	wt, err := p.repo.Worktree()
	if err != nil {
		return err
	}
	head, err := p.repo.Head()
	if err != nil {
		return err
	}

	return wt.Reset(&git.ResetOptions{
		Mode:   git.HardReset,
		Commit: head.Hash(),
	})
}

// headCommitTree returns the tree object at HEAD, or nil before the first
// commit.
func (p *Persistence) headCommitTree() (*object.Tree, error) {
	head, err := p.repo.Head()
	if err != nil {
		return nil, nil
	}
	commit, err := p.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to read head commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read head tree: %w", err)
	}
	return tree, nil
}
