package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/model"
)

const passwordResetTokenCollection = "password_reset_tokens"

type passwordResetTokenDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Token     string        `bson:"token"`
	UserID    bson.ObjectID `bson:"user_id"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
}

func (d *passwordResetTokenDocument) toModel() *model.PasswordResetToken {
	return &model.PasswordResetToken{
		Token:     d.Token,
		UserID:    d.UserID.Hex(),
		ExpiresAt: d.ExpiresAt,
		CreatedAt: d.CreatedAt,
	}
}

type passwordResetTokenMongoRepository struct {
	db     *mongo.Database
	logger *zerolog.Logger
}

// NewPasswordResetTokenMongoRepository creates a new MongoDB repository for password reset tokens.
// Expired tokens are kept so that late reset attempts report expiry instead of an unknown token.
func NewPasswordResetTokenMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) PasswordResetTokenRepository {
	collection := db.Collection(passwordResetTokenCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create password reset token indexes")
	}

	return &passwordResetTokenMongoRepository{
		db:     db,
		logger: logger,
	}
}

func (r *passwordResetTokenMongoRepository) CreateToken(
	ctx context.Context,
	token *model.PasswordResetToken,
) (*model.PasswordResetToken, error) {
	userID, err := bson.ObjectIDFromHex(token.UserID)
	if err != nil {
		return nil, err
	}

	doc := &passwordResetTokenDocument{
		Token:     token.Token,
		UserID:    userID,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: time.Now(),
	}

	if _, err := r.db.Collection(passwordResetTokenCollection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}

	return doc.toModel(), nil
}

func (r *passwordResetTokenMongoRepository) GetToken(
	ctx context.Context,
	token string,
) (*model.PasswordResetToken, error) {
	var doc passwordResetTokenDocument
	err := r.db.Collection(passwordResetTokenCollection).FindOne(ctx, bson.M{"token": token}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return doc.toModel(), nil
}

// ConsumeToken claims the token with FindOneAndDelete, which is atomic on a single document,
// so concurrent callers cannot both observe it. The filter only matches a token that is still
// valid at now. If the password update then fails the token is restored.
func (r *passwordResetTokenMongoRepository) ConsumeToken(
	ctx context.Context,
	token, passwordHash string,
	now time.Time,
) error {
	tokens := r.db.Collection(passwordResetTokenCollection)

	var doc passwordResetTokenDocument
	filter := bson.M{"token": token, "expires_at": bson.M{"$gte": now}}
	if err := tokens.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}

		count, countErr := tokens.CountDocuments(ctx, bson.M{"token": token})
		if countErr != nil {
			return countErr
		}
		if count > 0 {
			return ErrExpired
		}
		return ErrNotFound
	}

	result, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": doc.UserID},
		bson.M{"$set": bson.M{"password_hash": passwordHash, "updated_at": time.Now()}},
	)
	if err == nil && result.MatchedCount == 0 {
		err = errors.New("password reset token owner not found")
	}
	if err != nil {
		if _, restoreErr := tokens.InsertOne(ctx, doc); restoreErr != nil {
			r.logger.Error().Err(restoreErr).Str("user_id", doc.UserID.Hex()).Msg("failed to restore password reset token")
		}
		return err
	}

	return nil
}
