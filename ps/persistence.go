package ps

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/storage/filesystem"
	"github.com/go-git/go-git/v6/storage/memory"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotInitialized = errors.New("persistence layer not initialized")
	ErrRecordNotFound = errors.New("record not found")
)

// Persistence stores generated records in a Git repository. Every write is a
// commit on the current branch.
type Persistence struct {
	repo         *git.Repository
	mu           sync.RWMutex
	isMemoryMode bool
}

func (p *Persistence) IsInitialized() bool {
	return p != nil && p.repo != nil
}

func (p *Persistence) ensureInitialized() error {
	if !p.IsInitialized() {
		return ErrNotInitialized
	}
	return nil
}

func NewMemoryPersistence() (*Persistence, error) {
	repo, err := git.Init(memory.NewStorage(), git.WithWorkTree(memfs.New()))
	if err != nil {
		return nil, fmt.Errorf("failed to init memory repository: %w", err)
	}

	return &Persistence{
		repo:         repo,
		isMemoryMode: true,
	}, nil
}

// NewFilePersistence opens the repository in baseDir. A missing repository is
// cloned from gitURL when it is set and initialized empty otherwise.
func NewFilePersistence(baseDir string, gitURL *string) (*Persistence, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	wt := osfs.New(baseDir)
	dotGit, err := wt.Chroot(".git")
	if err != nil {
		return nil, err
	}

	storer := filesystem.NewStorageWithOptions(
		dotGit,
		cache.NewObjectLRUDefault(),
		filesystem.Options{ExclusiveAccess: true})

	var repo *git.Repository
	switch {
	case exists(dotGit.Root()):
		repo, err = git.Open(storer, wt)
	case gitURL != nil:
		log.Info().Str("remote", *gitURL).Str("dir", baseDir).Msg("cloning record repository")
		repo, err = git.Clone(storer, wt, &git.CloneOptions{URL: *gitURL})
	default:
		log.Debug().Str("dir", baseDir).Msg("initializing record repository")
		repo, err = git.Init(storer, git.WithWorkTree(wt))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open repository in %s: %w", baseDir, err)
	}

	return &Persistence{repo: repo}, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
