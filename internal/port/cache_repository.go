package port

import "context"

type LockRepository interface {
	// AcquireCommitLock atomically claims key and returns the holder's token,
	// ok is false if another commit holds it
	AcquireCommitLock(ctx context.Context, key string) (token string, ok bool, err error)

	// ReleaseCommitLock frees key only while it is still held under token
	ReleaseCommitLock(ctx context.Context, key, token string) error
}
