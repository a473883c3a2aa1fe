package ps

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/plumbing/transport"
	"github.com/go-git/go-git/v6/plumbing/transport/http"
	"github.com/go-git/go-git/v6/plumbing/transport/ssh"
	"github.com/rs/zerolog/log"
)

const DefaultRemote = "origin"

type AuthType string

const (
	AuthTypeNone  AuthType = "none"
	AuthTypeToken AuthType = "token"
	AuthTypeSSH   AuthType = "ssh"
	AuthTypeBasic AuthType = "basic"
)

// RemoteAuth holds credentials for pushing and pulling records.
type RemoteAuth struct {
	Type       AuthType
	Token      string
	KeyPath    string // defaults to ~/.ssh/id_rsa
	Passphrase string
	Username   string
	Password   string
}

// Remote is a named Git location records are shared through.
type Remote struct {
	Name string
	URLs []string
}

func (auth *RemoteAuth) method() (transport.AuthMethod, error) {
	if auth == nil {
		return nil, nil
	}

	switch auth.Type {
	case AuthTypeNone, "":
		return nil, nil
	case AuthTypeToken:
		return &http.BasicAuth{Username: "git", Password: auth.Token}, nil
	case AuthTypeBasic:
		return &http.BasicAuth{Username: auth.Username, Password: auth.Password}, nil
	case AuthTypeSSH:
		keyPath := auth.KeyPath
		if keyPath == "" {
			home, _ := os.UserHomeDir()
			keyPath = filepath.Join(home, ".ssh", "id_rsa")
		}
		return ssh.NewPublicKeysFromFile("git", keyPath, auth.Passphrase)
	default:
		return nil, fmt.Errorf("unknown auth type: %s", auth.Type)
	}
}

func (p *Persistence) AddRemote(name, url string) error {
	if err := p.ensureInitialized(); err != nil {
		return err
	}
	_, err := p.repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}})
	if err != nil {
		return fmt.Errorf("failed to add remote '%s': %w", name, err)
	}
	return nil
}

func (p *Persistence) Remotes() ([]Remote, error) {
	if err := p.ensureInitialized(); err != nil {
		return nil, err
	}
	remotes, err := p.repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}

	result := make([]Remote, len(remotes))
	for i, remote := range remotes {
		cfg := remote.Config()
		result[i] = Remote{Name: cfg.Name, URLs: cfg.URLs}
	}
	return result, nil
}

// SyncResult describes one exchange of records with a remote.
type SyncResult struct {
	Remote   string
	Branch   string
	Head     Transaction // HEAD after the exchange
	UpToDate bool
	Changed  []string // record paths added, changed or removed by a pull
}

// ErrDiverged is returned by Pull when local and remote records both have
// commits the other lacks.
var ErrDiverged = errors.New("local and remote records have diverged")

// recordBranch is the branch HEAD points at, born or not.
func (p *Persistence) recordBranch() (plumbing.ReferenceName, error) {
	head, err := p.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	if head.Type() != plumbing.SymbolicReference {
		return "", errors.New("HEAD is detached")
	}
	return head.Target(), nil
}

func (p *Persistence) headTransaction() Transaction {
	head, err := p.repo.Head()
	if err != nil {
		return Transaction{}
	}
	commit, err := p.repo.CommitObject(head.Hash())
	if err != nil {
		return Transaction{}
	}
	return toTransaction(commit)
}

// Push publishes the record branch to remote (origin when empty).
func (p *Persistence) Push(remote string, auth *RemoteAuth) (SyncResult, error) {
	if remote == "" {
		remote = DefaultRemote
	}
	result := SyncResult{Remote: remote}
	if err := p.ensureInitialized(); err != nil {
		return result, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if _, err := p.repo.Head(); err != nil {
		return result, fmt.Errorf("no records to push: %w", err)
	}
	branch, err := p.recordBranch()
	if err != nil {
		return result, err
	}
	result.Branch = branch.Short()
	result.Head = p.headTransaction()

	method, err := auth.method()
	if err != nil {
		return result, fmt.Errorf("failed to configure auth: %w", err)
	}

	err = p.repo.Push(&git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{config.RefSpec(branch + ":" + branch)},
		Auth:       method,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		result.UpToDate = true
		log.Debug().Str("remote", remote).Msg("remote records already up to date")
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("failed to push to '%s': %w", remote, err)
	}

	log.Info().Str("remote", remote).Str("branch", result.Branch).Str("head", result.Head.Short()).Msg("records pushed")
	return result, nil
}

// Pull fetches the record branch from remote (origin when empty) and
// fast-forwards to it. A local branch that is ahead is left alone; one that
// has diverged fails with ErrDiverged.
func (p *Persistence) Pull(remote string, auth *RemoteAuth) (SyncResult, error) {
	if remote == "" {
		remote = DefaultRemote
	}
	result := SyncResult{Remote: remote}
	if err := p.ensureInitialized(); err != nil {
		return result, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	branch, err := p.recordBranch()
	if err != nil {
		return result, err
	}
	result.Branch = branch.Short()

	method, err := auth.method()
	if err != nil {
		return result, fmt.Errorf("failed to configure auth: %w", err)
	}

	tracking := plumbing.NewRemoteReferenceName(remote, result.Branch)
	err = p.repo.Fetch(&git.FetchOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{config.RefSpec("+" + branch + ":" + tracking)},
		Auth:       method,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return result, fmt.Errorf("failed to pull from '%s': %w", remote, err)
	}

	incomingRef, err := p.repo.Reference(tracking, true)
	if err != nil {
		return result, fmt.Errorf("remote '%s' has no branch %s: %w", remote, result.Branch, err)
	}
	incoming, err := p.repo.CommitObject(incomingRef.Hash())
	if err != nil {
		return result, fmt.Errorf("failed to read remote head: %w", err)
	}

	before, err := p.headCommitTree()
	if err != nil {
		return result, err
	}
	if head, err := p.repo.Head(); err == nil {
		local, err := p.repo.CommitObject(head.Hash())
		if err != nil {
			return result, fmt.Errorf("failed to read head commit: %w", err)
		}
		if local.Hash == incoming.Hash {
			result.UpToDate = true
			result.Head = toTransaction(local)
			return result, nil
		}
		if ahead, _ := incoming.IsAncestor(local); ahead {
			result.UpToDate = true
			result.Head = toTransaction(local)
			log.Debug().Str("remote", remote).Msg("local records ahead of remote")
			return result, nil
		}
		if canFF, err := local.IsAncestor(incoming); err != nil || !canFF {
			return result, fmt.Errorf("failed to pull from '%s': %w", remote, ErrDiverged)
		}
	}

	if err := p.repo.Storer.SetReference(plumbing.NewHashReference(branch, incoming.Hash)); err != nil {
		return result, fmt.Errorf("failed to update %s: %w", result.Branch, err)
	}
	if err := p.syncWorktree(); err != nil {
		return result, fmt.Errorf("failed to update worktree: %w", err)
	}

	after, err := incoming.Tree()
	if err != nil {
		return result, fmt.Errorf("failed to read remote tree: %w", err)
	}
	if result.Changed, err = changedRecords(before, after); err != nil {
		return result, err
	}
	result.Head = toTransaction(incoming)

	log.Info().Str("remote", remote).Str("head", result.Head.Short()).Int("changed", len(result.Changed)).Msg("records pulled")
	return result, nil
}

// changedRecords lists, sorted, the record paths whose content differs
// between two trees. A nil tree is empty.
func changedRecords(before, after *object.Tree) ([]string, error) {
	old, err := recordHashes(before)
	if err != nil {
		return nil, err
	}
	current, err := recordHashes(after)
	if err != nil {
		return nil, err
	}

	var changed []string
	for path, hash := range current {
		if old[path] != hash {
			changed = append(changed, path)
		}
	}
	for path := range old {
		if _, ok := current[path]; !ok {
			changed = append(changed, path)
		}
	}
	sort.Strings(changed)
	return changed, nil
}

func recordHashes(tree *object.Tree) (map[string]plumbing.Hash, error) {
	hashes := make(map[string]plumbing.Hash)
	if tree == nil {
		return hashes, nil
	}
	err := tree.Files().ForEach(func(file *object.File) error {
		hashes[file.Name] = file.Hash
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk tree: %w", err)
	}
	return hashes, nil
}
