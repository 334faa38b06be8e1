package searcher

import (
	"strings"

	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

// ToCommitInfo denormalizes a repo.Commit into the model.CommitInfo every
// searcher attaches to its results.
func ToCommitInfo(c *repo.Commit) *model.CommitInfo {
	if c == nil {
		return nil
	}
	info := model.NewCommitInfo(c.Hexsha)
	info.AuthorName = c.Author.Name
	info.AuthorEmail = c.Author.Email
	info.CommitterName = c.Committer.Name
	info.CommitterEmail = c.Committer.Email
	info.Message = strings.TrimSpace(c.Message)
	info.Date = c.CommittedTime.UTC()
	info.FilesChanged = len(c.Stats.Files)
	info.Insertions = c.Stats.Insertions
	info.Deletions = c.Stats.Deletions
	info.Parents = append([]string(nil), c.Parents...)
	return &info
}
