package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vermapushpendra/FullBackend/internal/db"
	"github.com/vermapushpendra/FullBackend/internal/views"
)

// collectionSpec maps a view collection onto its backing table: the SELECT
// list, the document field each selected column feeds, and a scanner that
// turns one row into a Document. Credential columns (password digests,
// refresh tokens) are never selected, so no pipeline can leak them.
type collectionSpec struct {
	table   string
	columns []string
	fields  map[string]string
	scan    func(rows pgx.Rows) (views.Document, error)
}

var collectionSpecs = map[string]collectionSpec{
	"users": {
		table:   "users",
		columns: []string{"id", "username", "email", "full_name", "avatar", "cover_image", "watch_history", "created_at"},
		fields: map[string]string{
			"id":           "id",
			"username":     "username",
			"email":        "email",
			"fullName":     "full_name",
			"avatar":       "avatar",
			"coverImage":   "cover_image",
			"watchHistory": "watch_history",
			"createdAt":    "created_at",
		},
		scan: func(rows pgx.Rows) (views.Document, error) {
			var (
				id, username, email, fullName, avatar, coverImage string
				watchHistory                                      []string
				createdAt                                         time.Time
			)
			if err := rows.Scan(&id, &username, &email, &fullName, &avatar, &coverImage, &watchHistory, &createdAt); err != nil {
				return nil, err
			}
			return views.Document{
				"id":           id,
				"username":     username,
				"email":        email,
				"fullName":     fullName,
				"avatar":       avatar,
				"coverImage":   coverImage,
				"watchHistory": watchHistory,
				"createdAt":    createdAt,
			}, nil
		},
	},
	"videos": {
		table:   "videos",
		columns: []string{"id", "video_file", "thumbnail", "title", "description", "duration", "views", "is_published", "owner_id", "created_at"},
		fields: map[string]string{
			"id":          "id",
			"videoFile":   "video_file",
			"thumbnail":   "thumbnail",
			"title":       "title",
			"description": "description",
			"duration":    "duration",
			"views":       "views",
			"isPublished": "is_published",
			"owner":       "owner_id",
			"createdAt":   "created_at",
		},
		scan: func(rows pgx.Rows) (views.Document, error) {
			var (
				id, videoFile, thumbnail, title, description, owner string
				duration                                            float64
				viewCount                                           int64
				isPublished                                         bool
				createdAt                                           time.Time
			)
			if err := rows.Scan(&id, &videoFile, &thumbnail, &title, &description, &duration, &viewCount, &isPublished, &owner, &createdAt); err != nil {
				return nil, err
			}
			return views.Document{
				"id":          id,
				"videoFile":   videoFile,
				"thumbnail":   thumbnail,
				"title":       title,
				"description": description,
				"duration":    duration,
				"views":       viewCount,
				"isPublished": isPublished,
				"owner":       owner,
				"createdAt":   createdAt,
			}, nil
		},
	},
	"subscriptions": {
		table:   "subscriptions",
		columns: []string{"id", "subscriber_id", "channel_id", "created_at"},
		fields: map[string]string{
			"id":         "id",
			"subscriber": "subscriber_id",
			"channel":    "channel_id",
			"createdAt":  "created_at",
		},
		scan: func(rows pgx.Rows) (views.Document, error) {
			var (
				id, subscriber, channel string
				createdAt               time.Time
			)
			if err := rows.Scan(&id, &subscriber, &channel, &createdAt); err != nil {
				return nil, err
			}
			return views.Document{
				"id":         id,
				"subscriber": subscriber,
				"channel":    channel,
				"createdAt":  createdAt,
			}, nil
		},
	},
	"likes": {
		table:   "likes",
		columns: []string{"id", "liked_by", "COALESCE(video_id, '')", "COALESCE(comment_id, '')", "created_at"},
		fields: map[string]string{
			"id":        "id",
			"likedBy":   "liked_by",
			"video":     "video_id",
			"comment":   "comment_id",
			"createdAt": "created_at",
		},
		scan: func(rows pgx.Rows) (views.Document, error) {
			var (
				id, likedBy, video, comment string
				createdAt                   time.Time
			)
			if err := rows.Scan(&id, &likedBy, &video, &comment, &createdAt); err != nil {
				return nil, err
			}
			return views.Document{
				"id":        id,
				"likedBy":   likedBy,
				"video":     video,
				"comment":   comment,
				"createdAt": createdAt,
			}, nil
		},
	},
	"comments": {
		table:   "comments",
		columns: []string{"id", "content", "owner_id", "video_id", "created_at"},
		fields: map[string]string{
			"id":        "id",
			"content":   "content",
			"owner":     "owner_id",
			"video":     "video_id",
			"createdAt": "created_at",
		},
		scan: func(rows pgx.Rows) (views.Document, error) {
			var (
				id, content, owner, video string
				createdAt                 time.Time
			)
			if err := rows.Scan(&id, &content, &owner, &video, &createdAt); err != nil {
				return nil, err
			}
			return views.Document{
				"id":        id,
				"content":   content,
				"owner":     owner,
				"video":     video,
				"createdAt": createdAt,
			}, nil
		},
	},
	"playlists": {
		table:   "playlists",
		columns: []string{"id", "name", "description", "owner_id", "videos", "created_at"},
		fields: map[string]string{
			"id":          "id",
			"name":        "name",
			"description": "description",
			"owner":       "owner_id",
			"videos":      "videos",
			"createdAt":   "created_at",
		},
		scan: func(rows pgx.Rows) (views.Document, error) {
			var (
				id, name, description, owner string
				videoIDs                     []string
				createdAt                    time.Time
			)
			if err := rows.Scan(&id, &name, &description, &owner, &videoIDs, &createdAt); err != nil {
				return nil, err
			}
			return views.Document{
				"id":          id,
				"name":        name,
				"description": description,
				"owner":       owner,
				"videos":      videoIDs,
				"createdAt":   createdAt,
			}, nil
		},
	},
}

// PostgresDocumentSource feeds view pipelines from the relational store. Scan
// reads a whole collection; Find pushes field-equality matches and join key
// lookups down to the database as an IN query.
type PostgresDocumentSource struct {
	pool db.Pool
}

// NewPostgresDocumentSource constructs a document source backed by PostgreSQL.
func NewPostgresDocumentSource(pool db.Pool) *PostgresDocumentSource {
	return &PostgresDocumentSource{pool: pool}
}

// Scan returns every document of a collection.
func (s *PostgresDocumentSource) Scan(ctx context.Context, collection string) ([]views.Document, error) {
	spec, ok := collectionSpecs[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(spec.columns, ", "), spec.table)
	return s.query(ctx, spec, query, nil)
}

// Find returns the documents whose field equals any of the given values.
func (s *PostgresDocumentSource) Find(ctx context.Context, collection, field string, values []any) ([]views.Document, error) {
	spec, ok := collectionSpecs[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	column, ok := spec.fields[field]
	if !ok {
		return nil, fmt.Errorf("collection %q has no field %q", collection, field)
	}
	if len(values) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (%s)",
		strings.Join(spec.columns, ", "), spec.table, column, strings.Join(placeholders, ", "))
	return s.query(ctx, spec, query, values)
}

func (s *PostgresDocumentSource) query(ctx context.Context, spec collectionSpec, query string, args []any) ([]views.Document, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", spec.table, err)
	}
	defer rows.Close()

	var docs []views.Document
	for rows.Next() {
		doc, err := spec.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", spec.table, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", spec.table, err)
	}

	return docs, nil
}

var _ views.Source = (*PostgresDocumentSource)(nil)
