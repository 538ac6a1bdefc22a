package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/mejova/bloggy/internal/domain/entity"
	"github.com/mejova/bloggy/internal/domain/repository"
)

// PostService owns post records. Elasticsearch is optional: when configured,
// posts are mirrored into an index and Search is served from it, falling
// back to the repository otherwise.
type PostService struct {
	Repo         repository.PostRepository
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESPostsIndex string
}

func NewPostService(repo repository.PostRepository, logger *logrus.Logger, es *elasticsearch.Client, esPostsIndex string) *PostService {
	return &PostService{Repo: repo, Logger: logger, ES: es, ESPostsIndex: esPostsIndex}
}

type PostInput struct {
	Title   string
	Content string
	Tags    string // raw comma-separated form value
}

// NormalizeTags splits a comma-separated tag string into trimmed, lowercase,
// deduplicated tags, preserving first-seen order.
func NormalizeTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		t := strings.ToLower(strings.TrimSpace(p))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}

// Create stores a new post owned by createdBy.
func (s *PostService) Create(ctx context.Context, createdBy string, in PostInput) (*entity.Post, error) {
	p := &entity.Post{
		Title:     strings.TrimSpace(in.Title),
		Content:   strings.TrimSpace(in.Content),
		Tags:      NormalizeTags(in.Tags),
		CreatedBy: createdBy,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.indexPost(ctx, p)
	return p, nil
}

// Update rewrites a post's mutable fields. CreatedBy is never touched.
func (s *PostService) Update(ctx context.Context, p *entity.Post, in PostInput) error {
	p.Title = strings.TrimSpace(in.Title)
	p.Content = strings.TrimSpace(in.Content)
	p.Tags = NormalizeTags(in.Tags)
	if err := s.Repo.Update(ctx, p); err != nil {
		return err
	}
	s.indexPost(ctx, p)
	return nil
}

func (s *PostService) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.deindexPost(ctx, id)
	return nil
}

func (s *PostService) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *PostService) List(ctx context.Context) ([]entity.Post, error) {
	return s.Repo.List(ctx)
}

func (s *PostService) Latest(ctx context.Context, limit int) ([]entity.Post, error) {
	return s.Repo.Latest(ctx, limit)
}

// Search matches posts by title or tag. An empty query returns the full
// listing. Elasticsearch errors degrade to the repository search.
func (s *PostService) Search(ctx context.Context, query string) ([]entity.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Repo.List(ctx)
	}
	if s.ES != nil && s.ESPostsIndex != "" {
		posts, err := s.searchES(ctx, query)
		if err == nil {
			return posts, nil
		}
		s.Logger.WithError(err).Warn("es search failed, falling back to store")
	}
	return s.Repo.Search(ctx, query)
}

func (s *PostService) indexPost(ctx context.Context, p *entity.Post) {
	if s.ES == nil || s.ESPostsIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         p.ID,
		"title":      p.Title,
		"content":    p.Content,
		"tags":       p.Tags,
		"created_by": p.CreatedBy,
		"author":     p.Author,
		"created_at": p.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESPostsIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("post_id", p.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("post_id", p.ID).Warn("es index response error")
	}
}

func (s *PostService) deindexPost(ctx context.Context, id string) {
	if s.ES == nil || s.ESPostsIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESPostsIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("post_id", id).Warn("es delete failed")
		return
	}
	_ = res.Body.Close()
}

func (s *PostService) searchES(ctx context.Context, query string) ([]entity.Post, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"title^2", "tags"},
			},
		},
		"size": 50,
	}
	b, _ := json.Marshal(body)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESPostsIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	// An error body decodes into the hits struct as zero hits, which would
	// read as a clean empty result and skip the store fallback.
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	// Hydrate from the store so results carry the same shape as every other
	// listing; a hit deleted since indexing is skipped.
	posts := make([]entity.Post, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		p, err := s.Repo.GetByID(ctx, h.ID)
		if err != nil {
			continue
		}
		posts = append(posts, *p)
	}
	return posts, nil
}
