package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	JobKeyPrefix  = "job:%d"
	CategoriesKey = "categories:all"
)

const (
	JobTTL        = 5 * time.Minute
	CategoriesTTL = 30 * time.Minute
)

func JobKey(jobID uint) string {
	return fmt.Sprintf(JobKeyPrefix, jobID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateJob(ctx context.Context, jobID uint) {
	Invalidate(ctx, JobKey(jobID))
}

func InvalidateCategories(ctx context.Context) {
	Invalidate(ctx, CategoriesKey)
}
