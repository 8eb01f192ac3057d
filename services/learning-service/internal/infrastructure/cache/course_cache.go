package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"learningcenter/pkg/logger"
	"learningcenter/services/learning-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

const DefaultCourseTTL = time.Hour

type cachedPathItem struct {
	ID       uint  `json:"id"`
	Tutorial int64 `json:"tutorial"`
	Next     int   `json:"next"`
}

type cachedCourse struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Items       []cachedPathItem `json:"items"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CourseCache keeps course snapshots, path included, in redis.
type CourseCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

func NewCourseCache(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *CourseCache {
	if ttl <= 0 {
		ttl = DefaultCourseTTL
	}
	return &CourseCache{rdb: rdb, ttl: ttl, log: log.With("cache", "courses")}
}

func courseKey(id uint) string {
	return fmt.Sprintf("course:detail:%d", id)
}

func (c *CourseCache) Get(ctx context.Context, id uint) (*domain.Course, bool) {
	val, err := c.rdb.Get(ctx, courseKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("course cache read failed", "course_id", id, "error", err)
		}
		return nil, false
	}
	var cc cachedCourse
	if err := json.Unmarshal(val, &cc); err != nil {
		return nil, false
	}
	items := make([]domain.PathItem, len(cc.Items))
	for i, it := range cc.Items {
		items[i] = domain.PathItem{ID: it.ID, Tutorial: domain.TutorialID(it.Tutorial), Next: it.Next}
	}
	return &domain.Course{
		ID:          cc.ID,
		Title:       cc.Title,
		Description: cc.Description,
		Path:        domain.RestoreLearningPath(items),
		CreatedAt:   cc.CreatedAt,
		UpdatedAt:   cc.UpdatedAt,
	}, true
}

func (c *CourseCache) Set(ctx context.Context, course *domain.Course) {
	items := course.Path.Items()
	cc := cachedCourse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Items:       make([]cachedPathItem, len(items)),
		CreatedAt:   course.CreatedAt,
		UpdatedAt:   course.UpdatedAt,
	}
	for i, it := range items {
		cc.Items[i] = cachedPathItem{ID: it.ID, Tutorial: it.Tutorial.Int64(), Next: it.Next}
	}
	data, err := json.Marshal(cc)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, courseKey(course.ID), data, c.ttl).Err(); err != nil {
		c.log.Warn("course cache write failed", "course_id", course.ID, "error", err)
	}
}

func (c *CourseCache) Invalidate(ctx context.Context, id uint) {
	if err := c.rdb.Del(ctx, courseKey(id)).Err(); err != nil {
		c.log.Warn("course cache invalidate failed", "course_id", id, "error", err)
	}
}
