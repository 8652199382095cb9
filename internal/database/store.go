// Package database persists the per-guild default tool flag in a MongoDB
// collection. Each document holds one scalar field naming the currently
// enabled tool; absent documents mean the feature is disabled.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/brokechubb/jakeybot-degen-sub001/internal/config"
)

// DisabledSentinel is the explicit "no default tool" marker. Stored
// verbatim so an admin can distinguish "cleared" from "never set".
const DisabledSentinel = "disabled"

// connectTimeout bounds the initial connection and ping.
const connectTimeout = 10 * time.Second

// Store wraps the default-tool collection. One Store is shared for the
// process lifetime.
type Store struct {
	client *mongo.Client
	col    *mongo.Collection
	log    *zap.Logger
}

// Connect opens the Mongo client and verifies the connection.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("MONGO_DB_URL is not set")
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	log.Info("connected to database",
		zap.String("database", cfg.Name),
		zap.String("collection", cfg.Collection))

	return &Store{
		client: client,
		col:    client.Database(cfg.Name).Collection(cfg.Collection),
		log:    log,
	}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// SetTool overwrites the tool flag for one guild, inserting the document
// if it does not exist.
func (s *Store) SetTool(ctx context.Context, guildID, tool string) error {
	if guildID == "" {
		return fmt.Errorf("guild id must not be empty")
	}
	if tool == "" {
		tool = DisabledSentinel
	}

	_, err := s.col.UpdateOne(ctx,
		guildFilter(guildID),
		setToolUpdate(tool),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to set tool for guild %s: %w", guildID, err)
	}

	s.log.Debug("set default tool",
		zap.String("guild_id", guildID),
		zap.String("tool", tool))
	return nil
}

// GetTool returns the enabled tool for a guild. enabled is false when no
// document exists or the stored value is the disable sentinel.
func (s *Store) GetTool(ctx context.Context, guildID string) (tool string, enabled bool, err error) {
	var doc record
	findErr := s.col.FindOne(ctx, guildFilter(guildID)).Decode(&doc)
	if findErr == mongo.ErrNoDocuments {
		return "", false, nil
	}
	if findErr != nil {
		return "", false, fmt.Errorf("failed to read tool for guild %s: %w", guildID, findErr)
	}
	if doc.Tool == "" || doc.Tool == DisabledSentinel {
		return "", false, nil
	}
	return doc.Tool, true, nil
}

// SetDefaultToolAll overwrites the tool field on every record, including
// setting the disable sentinel to clear the flag fleet-wide. Returns the
// number of records modified.
func (s *Store) SetDefaultToolAll(ctx context.Context, tool string) (int64, error) {
	if tool == "" {
		return 0, fmt.Errorf("tool name must not be empty (use %q to clear)", DisabledSentinel)
	}

	res, err := s.col.UpdateMany(ctx, bson.M{}, setToolUpdate(tool))
	if err != nil {
		return 0, fmt.Errorf("failed to set default tool for all records: %w", err)
	}

	s.log.Info("set default tool for all records",
		zap.String("tool", tool),
		zap.Int64("modified", res.ModifiedCount))
	return res.ModifiedCount, nil
}

// Flush deletes every record in the collection. Returns the number of
// records removed.
func (s *Store) Flush(ctx context.Context) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to flush collection: %w", err)
	}

	s.log.Info("flushed collection", zap.Int64("deleted", res.DeletedCount))
	return res.DeletedCount, nil
}

// ToolDistribution counts records per tool name.
func (s *Store) ToolDistribution(ctx context.Context) (map[string]int64, error) {
	cursor, err := s.col.Aggregate(ctx, distributionPipeline())
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tool distribution: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Tool  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode tool distribution: %w", err)
	}

	dist := make(map[string]int64, len(rows))
	for _, row := range rows {
		name := row.Tool
		if name == "" {
			name = DisabledSentinel
		}
		dist[name] = row.Count
	}
	return dist, nil
}

// record is the stored document shape.
type record struct {
	GuildID string `bson:"guild_id"`
	Tool    string `bson:"tool"`
}

// guildFilter selects one guild's record.
func guildFilter(guildID string) bson.M {
	return bson.M{"guild_id": guildID}
}

// setToolUpdate overwrites the tool field in place.
func setToolUpdate(tool string) bson.M {
	return bson.M{"$set": bson.M{"tool": tool}}
}

// distributionPipeline groups records by tool name with a count each.
func distributionPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$tool",
			"count": bson.M{"$sum": 1},
		}}},
	}
}
