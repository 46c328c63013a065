package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/circleci/setupwiz/o11y"
)

const usersCollection = "users"

// ListUsers returns every document in the users collection through the native handle,
// as raw documents. It returns ErrNotConnected, without querying, when the handle is
// not connected.
func (m *Manager) ListUsers(ctx context.Context) (users []bson.M, err error) {
	ctx, span := span(ctx, nativeHandle, usersCollection, "find_all")
	defer o11y.End(span, &err)

	db, err := m.native.database()
	if err != nil {
		return nil, err
	}

	cur, err := db.Collection(usersCollection).Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	users = []bson.M{}
	if err = cur.All(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []bson.M{}
	}
	span.AddField("count", len(users))
	span.RecordMetric(o11y.Gauge("db.rows", "count", "db.handle", "db.entity"))
	return users, nil
}
