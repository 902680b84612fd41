// Package search keeps published courses in an Elasticsearch index.
package search

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	courseModels "learnhub/models/course"

	"github.com/elastic/go-elasticsearch/v8"
	"gorm.io/gorm"
)

const CoursesIndex = "courses"

type courseDoc struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	About       string     `json:"about"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	Level       string     `json:"level,omitempty"`
	Language    string     `json:"language,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

func NewClient(url, username, password string) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	})
}

type CourseIndex struct {
	es    *elasticsearch.Client
	index string
}

func New(es *elasticsearch.Client) *CourseIndex {
	return &CourseIndex{es: es, index: CoursesIndex}
}

func toDoc(c courseModels.Course) courseDoc {
	doc := courseDoc{
		ID:          c.ID,
		Title:       c.Title,
		Description: deref(c.Description),
		About:       deref(c.AboutCourse),
		Category:    deref(c.Category),
		Tags:        []string(c.CourseTags),
		PublishedAt: c.PublishedAt,
	}
	if len(c.Settings) > 0 {
		doc.Level = deref(c.Settings[0].Level)
		doc.Language = deref(c.Settings[0].Language)
	}
	return doc
}

func (i *CourseIndex) IndexCourse(ctx context.Context, c courseModels.Course) error {
	data, err := json.Marshal(toDoc(c))
	if err != nil {
		return err
	}
	res, err := i.es.Index(
		i.index,
		bytes.NewReader(data),
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(strconv.FormatUint(uint64(c.ID), 10)),
		i.es.Index.WithRefresh("true"),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}
	return nil
}

// RemoveCourse deletes a course document. A missing document is not an error.
func (i *CourseIndex) RemoveCourse(ctx context.Context, courseID uint) error {
	res, err := i.es.Delete(
		i.index,
		strconv.FormatUint(uint64(courseID), 10),
		i.es.Delete.WithContext(ctx),
		i.es.Delete.WithRefresh("true"),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}
	return nil
}

// SearchCourses returns matching course ids, best match first
func (i *CourseIndex) SearchCourses(ctx context.Context, query string, limit int) ([]uint, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchBody(query, limit)); err != nil {
		return nil, err
	}
	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(&buf),
		i.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}
	return parseHits(res.Body)
}

// Reindex loads every published course into the index
func (i *CourseIndex) Reindex(ctx context.Context, db *gorm.DB) (int, error) {
	var courses []courseModels.Course
	err := db.WithContext(ctx).Preload("Settings").
		Where("status = ? AND is_deleted = ?", courseModels.StatusPublished, false).
		Find(&courses).Error
	if err != nil {
		return 0, err
	}
	indexed := 0
	for _, c := range courses {
		if err := i.IndexCourse(ctx, c); err != nil {
			log.Printf("[SEARCH] failed to index course %d: %v", c.ID, err)
			continue
		}
		indexed++
	}
	return indexed, nil
}

func searchBody(query string, limit int) map[string]interface{} {
	return map[string]interface{}{
		"size":    limit,
		"_source": false,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"multi_match": map[string]interface{}{
							"query":     query,
							"fields":    []string{"title^3", "tags^2", "description", "about", "category"},
							"fuzziness": "AUTO",
						},
					},
					map[string]interface{}{
						"wildcard": map[string]interface{}{
							"title": map[string]interface{}{
								"value":            "*" + query + "*",
								"case_insensitive": true,
							},
						},
					},
				},
				"minimum_should_match": 1,
			},
		},
	}
}

func parseHits(body io.Reader) ([]uint, error) {
	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&r); err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		id, err := strconv.ParseUint(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
