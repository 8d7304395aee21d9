package utils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"github.com/bsm/redislock"
)

var mutex sync.Mutex

// GetDailySequence hands out the next per-day sequence number for a document
// family (order no, member no). Redis holds the hot counter; when Redis is
// cold the max is re-seeded from the database via countExisting. A redis lock
// guards the re-seed across processes; the local mutex serializes within one.
func GetDailySequence(ctx context.Context, family string, day time.Time,
	countExisting func(context.Context) (int64, error)) (int64, error) {

	mutex.Lock()
	defer mutex.Unlock()

	cacheKey := fmt.Sprintf("%s_seq:%s", family, day.Format("20060102"))

	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, cacheKey+":lock", 5*time.Second, &redislock.Options{
			RetryStrategy: redislock.LinearBackoff(50 * time.Millisecond),
		})
		if err == nil {
			defer lock.Release(ctx)
		}
		// Lock failure is tolerated; the unique constraint on the document
		// number is the backstop.
	}

	seqNo, err := config.GetRedisCounter(ctx, cacheKey)
	if err != nil {
		return 0, err
	}
	// A counter of 1 means redis had no state for this day yet (or redis is
	// absent and returned 0); re-seed from the database.
	if seqNo <= 1 {
		dbCount, err := countExisting(ctx)
		if err != nil {
			return 0, err
		}
		seqNo = dbCount + 1
		if err := config.SetRedisValue(cacheKey, fmt.Sprint(seqNo), 48*time.Hour); err != nil {
			return 0, err
		}
	}
	return seqNo, nil
}
