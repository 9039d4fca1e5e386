package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/couchbase/gocb/v2"
	"go.uber.org/zap"

	"planning-bee/internal/config"
)

// Couchbase keeps each session as one document keyed "session::<id>". The
// cluster connection is opened on first use.
type Couchbase struct {
	cfg    config.Couchbase
	logger *zap.Logger

	mu         sync.Mutex
	cluster    *gocb.Cluster
	collection *gocb.Collection
}

type couchbaseSession struct {
	Sections  Sections  `json:"sections"`
	UpdatedAt time.Time `json:"updatedAt"`
	Type      string    `json:"type"`
}

func NewCouchbase(cfg config.Couchbase, logger *zap.Logger) *Couchbase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Couchbase{cfg: cfg, logger: logger}
}

func sessionKey(id string) string {
	return "session::" + id
}

func (c *Couchbase) ensureConnection() (*gocb.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.collection != nil {
		return c.collection, nil
	}

	cluster, err := gocb.Connect("couchbase://"+c.cfg.URL, gocb.ClusterOptions{
		Authenticator: gocb.PasswordAuthenticator{
			Username: c.cfg.User,
			Password: c.cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to couchbase: %w", err)
	}

	bucket := cluster.Bucket(c.cfg.Bucket)
	if err := bucket.WaitUntilReady(5*time.Second, nil); err != nil {
		cluster.Close(nil)
		return nil, fmt.Errorf("waiting for bucket %s: %w", c.cfg.Bucket, err)
	}

	c.logger.Info("connected to couchbase", zap.String("bucket", c.cfg.Bucket))
	c.cluster = cluster
	c.collection = bucket.DefaultCollection()
	return c.collection, nil
}

func (c *Couchbase) Load(ctx context.Context, sessionID string) (Sections, error) {
	col, err := c.ensureConnection()
	if err != nil {
		return nil, err
	}
	res, err := col.Get(sessionKey(sessionID), &gocb.GetOptions{Context: ctx})
	if errors.Is(err, gocb.ErrDocumentNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	var doc couchbaseSession
	if err := res.Content(&doc); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", sessionID, err)
	}
	if doc.Sections == nil {
		doc.Sections = Sections{}
	}
	return doc.Sections, nil
}

func (c *Couchbase) Save(ctx context.Context, sessionID string, sections Sections) error {
	col, err := c.ensureConnection()
	if err != nil {
		return err
	}
	doc := couchbaseSession{Sections: sections, UpdatedAt: time.Now().UTC(), Type: "session"}
	if _, err := col.Upsert(sessionKey(sessionID), doc, &gocb.UpsertOptions{Context: ctx}); err != nil {
		return fmt.Errorf("saving session %s: %w", sessionID, err)
	}
	return nil
}

func (c *Couchbase) Delete(ctx context.Context, sessionID string) error {
	col, err := c.ensureConnection()
	if err != nil {
		return err
	}
	_, err = col.Remove(sessionKey(sessionID), &gocb.RemoveOptions{Context: ctx})
	if err != nil && !errors.Is(err, gocb.ErrDocumentNotFound) {
		return fmt.Errorf("deleting session %s: %w", sessionID, err)
	}
	return nil
}

func (c *Couchbase) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cluster == nil {
		return nil
	}
	err := c.cluster.Close(nil)
	c.cluster, c.collection = nil, nil
	return err
}
