// Package ps stores generated records in a Git repository.
//
// Storage is backed by go-git. Every write is a commit, so the history of a
// record is the history of its file.
//
// # Memory Persistence
//
// For tests and one-off runs:
//
//	persistence, err := ps.NewMemoryPersistence()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # File Persistence
//
// For a repository on disk, optionally cloned from a remote:
//
//	persistence, err := ps.NewFilePersistence("/path/to/records", nil)
//
// # Sharing
//
// Records can be pushed to and pulled from Git remotes:
//
//	persistence.AddRemote("origin", "https://github.com/acme/records.git")
//	result, err := persistence.Push("origin", &ps.RemoteAuth{Type: ps.AuthTypeToken, Token: token})
//
// Pull only fast-forwards. SyncResult.Changed lists the records a pull
// brought in.
//
// Statement input and record output locations (local paths, http(s):// and
// s3://) are opened with OpenReader and OpenWriter.
package ps
