package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kaavalcircle/pkg/logger"
)

type Migration struct {
	Version     int
	Description string
	Collection  string
	Indexes     []mongo.IndexModel
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
	logger     *logger.Logger
}

func NewMigrator(db *mongo.Database, log *logger.Logger) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
		logger:     log,
	}
}

// Up applies every migration newer than the recorded version.
func (m *Migrator) Up(ctx context.Context) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}

		m.logger.WithFields(map[string]interface{}{
			"version":    migration.Version,
			"collection": migration.Collection,
		}).Info("Running migration: " + migration.Description)

		if _, err := m.db.Collection(migration.Collection).Indexes().CreateMany(ctx, migration.Indexes); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if err := m.updateVersion(ctx, migration.Version); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

// Down drops the indexes of every migration above targetVersion.
func (m *Migrator) Down(ctx context.Context, targetVersion int) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version > currentVersion || migration.Version <= targetVersion {
			continue
		}

		m.logger.WithField("version", migration.Version).Info("Reverting migration: " + migration.Description)

		indexes := m.db.Collection(migration.Collection).Indexes()
		for _, model := range migration.Indexes {
			if model.Options == nil || model.Options.Name == nil {
				continue
			}
			if _, err := indexes.DropOne(ctx, *model.Options.Name); err != nil {
				return fmt.Errorf("migration %d rollback failed: %w", migration.Version, err)
			}
		}

		previousVersion := targetVersion
		if i > 0 && m.migrations[i-1].Version > targetVersion {
			previousVersion = m.migrations[i-1].Version
		}
		if err := m.updateVersion(ctx, previousVersion); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) getCurrentVersion(ctx context.Context) (int, error) {
	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection(MigrationsCollection).FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(ctx context.Context, version int) error {
	_, err := m.db.Collection(MigrationsCollection).ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updatedAt", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)
	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users indexes",
			Collection:  UsersCollection,
			Indexes: []mongo.IndexModel{
				{
					Keys: bson.D{{Key: "phone", Value: 1}},
					Options: options.Index().SetName("citizen_phone_unique").SetUnique(true).
						SetPartialFilterExpression(bson.M{"userType": "citizen"}),
				},
				{
					Keys: bson.D{{Key: "batchNo", Value: 1}},
					Options: options.Index().SetName("police_batch_unique").SetUnique(true).
						SetPartialFilterExpression(bson.M{"userType": "police"}),
				},
				{
					Keys:    bson.D{{Key: "userType", Value: 1}},
					Options: options.Index().SetName("user_type"),
				},
			},
		},
		{
			Version:     2,
			Description: "Create complaints indexes",
			Collection:  ComplaintsCollection,
			Indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
					Options: options.Index().SetName("location_2dsphere"),
				},
				{
					Keys:    bson.D{{Key: "citizenId", Value: 1}, {Key: "createdAt", Value: -1}},
					Options: options.Index().SetName("citizen_created"),
				},
				{
					Keys:    bson.D{{Key: "status", Value: 1}},
					Options: options.Index().SetName("status"),
				},
				{
					Keys:    bson.D{{Key: "createdAt", Value: -1}},
					Options: options.Index().SetName("created_desc"),
				},
			},
		},
		{
			Version:     3,
			Description: "Create SOS alert indexes",
			Collection:  SOSAlertsCollection,
			Indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
					Options: options.Index().SetName("location_2dsphere"),
				},
				{
					Keys:    bson.D{{Key: "citizenId", Value: 1}, {Key: "createdAt", Value: -1}},
					Options: options.Index().SetName("citizen_created"),
				},
				{
					Keys:    bson.D{{Key: "status", Value: 1}},
					Options: options.Index().SetName("status"),
				},
			},
		},
	}
}
