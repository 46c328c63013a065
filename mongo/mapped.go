package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/circleci/setupwiz/o11y"
)

// User is the mapped model of a document in the users collection. Fields without a
// struct field are kept in Extra so nothing is dropped on decode.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	Extra     bson.M             `bson:",inline" json:"-"`
}

// Users returns every document in the users collection through the mapped handle,
// decoded into User. It returns ErrNotConnected when the handle is not connected.
// Users and AddUser are the model layer's entry points for typed access; the HTTP
// routes serve raw documents from the native handle and call neither.
func (m *Manager) Users(ctx context.Context) (users []User, err error) {
	ctx, span := span(ctx, mappedHandle, usersCollection, "find_all")
	defer o11y.End(span, &err)

	db, err := m.mapped.database()
	if err != nil {
		return nil, err
	}

	cur, err := db.Collection(usersCollection).Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	if err = cur.All(ctx, &users); err != nil {
		return nil, err
	}
	span.AddField("count", len(users))
	span.RecordMetric(o11y.Gauge("db.rows", "count", "db.handle", "db.entity"))
	return users, nil
}

// AddUser inserts u through the mapped handle and returns it with its generated ID.
// Like Users, it is for model-layer callers; no route writes users.
func (m *Manager) AddUser(ctx context.Context, u User) (_ User, err error) {
	ctx, span := span(ctx, mappedHandle, usersCollection, "insert")
	defer o11y.End(span, &err)

	db, err := m.mapped.database()
	if err != nil {
		return User{}, err
	}

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	_, err = db.Collection(usersCollection).InsertOne(ctx, u)
	if err != nil {
		return User{}, err
	}
	return u, nil
}
