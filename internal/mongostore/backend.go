// Package mongostore implements the MongoDB storage backend for landing pages.
// Pages and versions live in two collections; a unique index on
// (community_id, version) keeps version numbers gap free under concurrent
// publishers.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mesh-intelligence/landing/pkg/denorm"
	"github.com/mesh-intelligence/landing/pkg/types"
)

// Collection names.
const (
	pagesCollection    = "landing_pages"
	versionsCollection = "landing_page_versions"
)

// DefaultDatabase is used when Config.MongoDatabase is empty.
const DefaultDatabase = "landing"

const (
	opTimeout      = 10 * time.Second
	publishRetries = 5
)

var _ types.Store = (*Backend)(nil)

// Backend implements the Store interface on MongoDB.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	client   *mongo.Client
	pages    *mongo.Collection
	versions *mongo.Collection
}

// NewBackend creates a new, unattached MongoDB backend.
func NewBackend() *Backend {
	return &Backend{}
}

type pageDoc struct {
	CommunityID     int64     `bson:"_id"`
	Enabled         bool      `bson:"enabled"`
	ReleasedVersion *int64    `bson:"released_version"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func (d pageDoc) toEntity() *types.LandingPage {
	return &types.LandingPage{
		CommunityID:     d.CommunityID,
		Enabled:         d.Enabled,
		ReleasedVersion: d.ReleasedVersion,
		UpdatedAt:       d.UpdatedAt,
	}
}

type versionDoc struct {
	VersionID   string    `bson:"_id"`
	CommunityID int64     `bson:"community_id"`
	Version     int64     `bson:"version"`
	Content     string    `bson:"content"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (d versionDoc) toEntity() *types.LandingPageVersion {
	return &types.LandingPageVersion{
		VersionID:   d.VersionID,
		CommunityID: d.CommunityID,
		Version:     d.Version,
		Content:     d.Content,
		CreatedAt:   d.CreatedAt,
	}
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// Attach connects to the server in config, pings it and makes sure the
// version index exists.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendMongo {
		return fmt.Errorf("%w: %q", types.ErrBackendUnknown, config.Backend)
	}

	ctx, cancel := opContext()
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.MongoURI))
	if err != nil {
		return fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("pinging mongo: %w", err)
	}

	dbName := config.MongoDatabase
	if dbName == "" {
		dbName = DefaultDatabase
	}
	db := client.Database(dbName)
	versions := db.Collection(versionsCollection)

	_, err = versions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "community_id", Value: 1}, {Key: "version", Value: -1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("creating version index: %w", err)
	}

	b.client = client
	b.pages = db.Collection(pagesCollection)
	b.versions = versions
	b.attached = true
	return nil
}

// Detach disconnects from the server. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	ctx, cancel := opContext()
	defer cancel()
	err := b.client.Disconnect(ctx)

	b.client, b.pages, b.versions = nil, nil, nil
	b.attached = false
	return err
}

// collections returns the attached collections or ErrStoreDetached.
func (b *Backend) collections() (pages, versions *mongo.Collection, err error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, nil, types.ErrStoreDetached
	}
	return b.pages, b.versions, nil
}

// GetLandingPage returns the landing page of a community.
func (b *Backend) GetLandingPage(communityID int64) (*types.LandingPage, error) {
	if communityID <= 0 {
		return nil, types.ErrInvalidCommunity
	}
	pages, _, err := b.collections()
	if err != nil {
		return nil, err
	}

	ctx, cancel := opContext()
	defer cancel()
	return getPage(ctx, pages, communityID)
}

func getPage(ctx context.Context, pages *mongo.Collection, communityID int64) (*types.LandingPage, error) {
	var doc pageDoc
	err := pages.FindOne(ctx, bson.M{"_id": communityID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, types.ErrLandingPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting landing page %d: %w", communityID, err)
	}
	return doc.toEntity(), nil
}

// SetLandingPage creates or replaces a landing page.
func (b *Backend) SetLandingPage(page *types.LandingPage) error {
	if page == nil || page.CommunityID <= 0 {
		return types.ErrInvalidCommunity
	}
	pages, _, err := b.collections()
	if err != nil {
		return err
	}

	ctx, cancel := opContext()
	defer cancel()
	return setPage(ctx, pages, page)
}

func setPage(ctx context.Context, pages *mongo.Collection, page *types.LandingPage) error {
	if page.UpdatedAt.IsZero() {
		page.UpdatedAt = time.Now().UTC()
	}
	doc := pageDoc{
		CommunityID:     page.CommunityID,
		Enabled:         page.Enabled,
		ReleasedVersion: page.ReleasedVersion,
		UpdatedAt:       page.UpdatedAt,
	}
	_, err := pages.ReplaceOne(ctx, bson.M{"_id": page.CommunityID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("persisting landing page: %w", err)
	}
	return nil
}

// ReleasedVersion returns the version visitors should see.
func (b *Backend) ReleasedVersion(communityID int64) (int64, error) {
	page, err := b.GetLandingPage(communityID)
	if errors.Is(err, types.ErrLandingPageNotFound) {
		return 0, fmt.Errorf("%w. community_id: %d", types.ErrNotEnabled, communityID)
	}
	if err != nil {
		return 0, err
	}
	if !page.Enabled {
		return 0, fmt.Errorf("%w. community_id: %d", types.ErrNotEnabled, communityID)
	}
	if page.ReleasedVersion == nil {
		return 0, fmt.Errorf("%w. community_id: %d", types.ErrVersionUnset, communityID)
	}
	return *page.ReleasedVersion, nil
}

// Publish stores content as the next version of the community's page. A
// concurrent publisher that takes the same number makes the insert fail on
// the unique index; Publish then retries with a fresh number.
func (b *Backend) Publish(communityID int64, content string) (*types.LandingPageVersion, error) {
	if communityID <= 0 {
		return nil, types.ErrInvalidCommunity
	}
	if strings.TrimSpace(content) == "" {
		return nil, types.ErrInvalidContent
	}
	if _, err := denorm.ParseDocument([]byte(content)); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidContent, err)
	}
	_, versions, err := b.collections()
	if err != nil {
		return nil, err
	}

	ctx, cancel := opContext()
	defer cancel()

	for range publishRetries {
		latest, err := latestVersion(ctx, versions, communityID)
		if err != nil {
			return nil, err
		}
		doc := versionDoc{
			VersionID:   generateUUID(),
			CommunityID: communityID,
			Version:     latest + 1,
			Content:     content,
			CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
		}
		_, err = versions.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("inserting version: %w", err)
		}
		return doc.toEntity(), nil
	}
	return nil, fmt.Errorf("inserting version: too many concurrent publishes for community %d", communityID)
}

func latestVersion(ctx context.Context, versions *mongo.Collection, communityID int64) (int64, error) {
	var doc versionDoc
	err := versions.FindOne(ctx,
		bson.M{"community_id": communityID},
		options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}}).SetProjection(bson.M{"version": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading latest version: %w", err)
	}
	return doc.Version, nil
}

// Release makes version the released version and enables the page.
func (b *Backend) Release(communityID int64, version int64) error {
	if communityID <= 0 {
		return types.ErrInvalidCommunity
	}
	if version <= 0 {
		return types.ErrInvalidVersion
	}
	pages, versions, err := b.collections()
	if err != nil {
		return err
	}

	ctx, cancel := opContext()
	defer cancel()

	if _, err := getVersion(ctx, versions, communityID, version); err != nil {
		return err
	}
	page, err := getPage(ctx, pages, communityID)
	if errors.Is(err, types.ErrLandingPageNotFound) {
		page = &types.LandingPage{CommunityID: communityID}
	} else if err != nil {
		return err
	}

	page.Release(version)
	return setPage(ctx, pages, page)
}

// LoadContent returns the content of a version.
func (b *Backend) LoadContent(communityID int64, version int64) (string, error) {
	if communityID <= 0 {
		return "", types.ErrInvalidCommunity
	}
	_, versions, err := b.collections()
	if err != nil {
		return "", err
	}

	ctx, cancel := opContext()
	defer cancel()

	v, err := getVersion(ctx, versions, communityID, version)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(v.Content) == "" {
		return "", fmt.Errorf("%w. community_id: %d, version: %d", types.ErrContentNotFound, communityID, version)
	}
	return v.Content, nil
}

func getVersion(ctx context.Context, versions *mongo.Collection, communityID, version int64) (*types.LandingPageVersion, error) {
	var doc versionDoc
	err := versions.FindOne(ctx, bson.M{"community_id": communityID, "version": version}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w. community_id: %d, version: %d", types.ErrContentNotFound, communityID, version)
	}
	if err != nil {
		return nil, fmt.Errorf("getting version %d: %w", version, err)
	}
	return doc.toEntity(), nil
}

// ListVersions returns all versions of a community, newest first.
func (b *Backend) ListVersions(communityID int64) ([]*types.LandingPageVersion, error) {
	if communityID <= 0 {
		return nil, types.ErrInvalidCommunity
	}
	_, versions, err := b.collections()
	if err != nil {
		return nil, err
	}

	ctx, cancel := opContext()
	defer cancel()

	cur, err := versions.Find(ctx,
		bson.M{"community_id": communityID},
		options.Find().SetSort(bson.D{{Key: "version", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	var docs []versionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding versions: %w", err)
	}

	out := make([]*types.LandingPageVersion, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

// generateUUID generates a new UUID v7 for version IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
