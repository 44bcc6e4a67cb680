package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/identity-hub/identity-service/internal/core/domain"
	"github.com/identity-hub/identity-service/internal/core/ports"
)

const (
	collectionUsers = "users"

	indexNormalizedUsername = "uniq_normalized_username"
	indexNormalizedEmail    = "uniq_normalized_email"
)

// UserRepository implements ports.UserRepository using MongoDB. Role
// assignments are stored on the user document.
type UserRepository struct {
	col   *mongo.Collection
	roles *mongo.Collection
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		col:   db.Collection(collectionUsers),
		roles: db.Collection(collectionRoles),
	}
}

type mongoUser struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Username           string             `bson:"username"`
	NormalizedUsername string             `bson:"normalized_username"`
	Email              string             `bson:"email"`
	NormalizedEmail    string             `bson:"normalized_email"`
	PasswordHash       string             `bson:"password_hash"`
	FirstName          string             `bson:"first_name"`
	LastName           string             `bson:"last_name"`
	PhoneNumber        string             `bson:"phone_number,omitempty"`
	ProfilePictureURL  string             `bson:"profile_picture_url,omitempty"`
	Roles              []string           `bson:"roles"`
	AccessFailedCount  int                `bson:"access_failed_count"`
	CreatedAt          int64              `bson:"created_at"`
	UpdatedAt          int64              `bson:"updated_at"`
}

func fromDomainUser(u *domain.User) mongoUser {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r.Normalized())
	}
	return mongoUser{
		Username:           u.Username,
		NormalizedUsername: u.NormalizedUsername,
		Email:              u.Email,
		NormalizedEmail:    u.NormalizedEmail,
		PasswordHash:       u.PasswordHash,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		PhoneNumber:        u.PhoneNumber,
		ProfilePictureURL:  u.ProfilePictureURL,
		Roles:              roles,
		AccessFailedCount:  u.AccessFailedCount,
		CreatedAt:          u.CreatedAt.Unix(),
		UpdatedAt:          u.UpdatedAt.Unix(),
	}
}

func (m mongoUser) toDomain() *domain.User {
	roles := make([]domain.Role, 0, len(m.Roles))
	for _, name := range m.Roles {
		if r, ok := domain.ParseRole(name); ok {
			roles = append(roles, r)
		}
	}
	return &domain.User{
		ID:                 m.ID.Hex(),
		Username:           m.Username,
		NormalizedUsername: m.NormalizedUsername,
		Email:              m.Email,
		NormalizedEmail:    m.NormalizedEmail,
		PasswordHash:       m.PasswordHash,
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		PhoneNumber:        m.PhoneNumber,
		ProfilePictureURL:  m.ProfilePictureURL,
		Roles:              roles,
		AccessFailedCount:  m.AccessFailedCount,
		CreatedAt:          unixToTime(m.CreatedAt),
		UpdatedAt:          unixToTime(m.UpdatedAt),
	}
}

// Create inserts a user. Unique index violations come back as a
// *domain.ValidationError naming the duplicated field.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := fromDomainUser(user)
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if verr := duplicateValidationError(err); verr != nil {
			return nil, verr
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert user: unexpected id type %T", res.InsertedID)
	}
	doc.ID = id
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByNormalizedEmail(ctx context.Context, normalizedEmail string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"normalized_email": normalizedEmail})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"normalized_username": domain.Normalize(username)})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.col.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// List returns every user ordered by creation time.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoUser
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, nil
}

// Update writes the mutable profile fields in a single document update so
// email, username and their normalized forms always change together.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"username":            user.Username,
		"normalized_username": user.NormalizedUsername,
		"email":               user.Email,
		"normalized_email":    user.NormalizedEmail,
		"first_name":          user.FirstName,
		"last_name":           user.LastName,
		"phone_number":        user.PhoneNumber,
		"profile_picture_url": user.ProfilePictureURL,
		"updated_at":          user.UpdatedAt.Unix(),
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if dup := duplicateConflict(err); dup != nil {
			return dup
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC().Unix(),
	}})
}

// AddToRole assigns an already seeded role. Assigning a role twice is a no-op.
func (r *UserRepository) AddToRole(ctx context.Context, id string, role domain.Role) error {
	exists, err := roleExists(ctx, r.roles, role)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrRoleNotFound, role)
	}
	return r.updateByID(ctx, id, bson.M{"$addToSet": bson.M{"roles": role.Normalized()}})
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique indexes on the normalized username and
// the normalized email.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "normalized_username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(indexNormalizedUsername),
		},
		{
			Keys:    bson.D{{Key: "normalized_email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(indexNormalizedEmail),
		},
	}

	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

// duplicateFields reports which unique indexes err violated.
func duplicateFields(err error) (email, username bool) {
	if !mongo.IsDuplicateKeyError(err) {
		return false, false
	}
	msg := err.Error()
	return strings.Contains(msg, indexNormalizedEmail), strings.Contains(msg, indexNormalizedUsername)
}

func duplicateValidationError(err error) *domain.ValidationError {
	email, username := duplicateFields(err)
	if !email && !username {
		return nil
	}
	verr := &domain.ValidationError{}
	if username {
		verr.Add(domain.CodeDuplicateUserName, "username is already taken")
	}
	if email {
		verr.Add(domain.CodeDuplicateEmail, "email is already taken")
	}
	return verr
}

func duplicateConflict(err error) error {
	email, username := duplicateFields(err)
	switch {
	case email:
		return domain.ErrDuplicateEmail
	case username:
		return domain.ErrDuplicateUsername
	default:
		return nil
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
