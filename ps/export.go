package ps

import (
	"fmt"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/util"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/rs/zerolog/log"
)

// Export copies every record at HEAD into fs, keeping relative paths, and
// returns the number of records written.
func (p *Persistence) Export(fs billy.Filesystem) (int, error) {
	if err := p.ensureInitialized(); err != nil {
		return 0, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	tree, err := p.headCommitTree()
	if err != nil || tree == nil {
		return 0, err
	}

	count := 0
	err = tree.Files().ForEach(func(file *object.File) error {
		content, err := file.Contents()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file.Name, err)
		}
		if err := util.WriteFile(fs, file.Name, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Name, err)
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}

	log.Info().Int("records", count).Str("target", fs.Root()).Msg("records exported")
	return count, nil
}
