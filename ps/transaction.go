package ps

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/plumbing/storer"
)

// Transaction describes one commit in the record repository.
type Transaction struct {
	Id      string
	When    time.Time
	Author  string // "Name <email>"
	Message string
}

func (transaction Transaction) String() string {
	return fmt.Sprintf("Transaction{Id: %s, When: %s, Author: %s}", transaction.Id, transaction.When, transaction.Author)
}

// Short returns the abbreviated commit id.
func (transaction Transaction) Short() string {
	if len(transaction.Id) > 7 {
		return transaction.Id[:7]
	}
	return transaction.Id
}

// LatestTransaction returns the HEAD commit, or the zero Transaction when
// nothing has been committed.
func (p *Persistence) LatestTransaction() Transaction {
	if !p.IsInitialized() {
		return Transaction{}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

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

// History lists commits from HEAD backwards. A limit of zero or less means
// no limit.
func (p *Persistence) History(limit int) ([]Transaction, error) {
	if err := p.ensureInitialized(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	if _, err := p.repo.Head(); err != nil {
		return nil, nil
	}

	commits, err := p.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	defer commits.Close()

	var transactions []Transaction
	err = commits.ForEach(func(commit *object.Commit) error {
		if limit > 0 && len(transactions) == limit {
			return storer.ErrStop
		}
		transactions = append(transactions, toTransaction(commit))
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, fmt.Errorf("failed to walk log: %w", err)
	}
	return transactions, nil
}

func toTransaction(commit *object.Commit) Transaction {
	author := ""
	if commit.Author.Name != "" || commit.Author.Email != "" {
		author = fmt.Sprintf("%s <%s>", commit.Author.Name, commit.Author.Email)
	}
	return Transaction{
		Id:      commit.Hash.String(),
		When:    commit.Committer.When,
		Author:  author,
		Message: strings.TrimSpace(commit.Message),
	}
}
