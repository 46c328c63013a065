/*
Package mongofixture sets up an isolated Mongo database for each test, so tests don't interfere.
*/
package mongofixture

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gotest.tools/v3/assert"

	"github.com/circleci/setupwiz/o11y"
)

type Fixture struct {
	DB   *mongo.Database
	Name string
	URI  string
}

type Connection struct {
	URI string
}

// StartContainer runs a disposable mongo server for the test and returns how to reach it.
// The container is terminated when the test ends.
func StartContainer(ctx context.Context, t testing.TB) Connection {
	t.Helper()

	container, err := tcmongo.Run(ctx, "mongo:6",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Waiting for connections").WithStartupTimeout(60*time.Second),
		),
	)
	assert.Assert(t, err)
	t.Cleanup(func() {
		assert.Check(t, container.Terminate(context.Background()))
	})

	uri, err := container.ConnectionString(ctx)
	assert.Assert(t, err)
	return Connection{URI: uri}
}

// Setup creates a uniquely named database for the test, dropped when the test ends.
func Setup(ctx context.Context, t testing.TB, con Connection) *Fixture {
	t.Helper()
	ctx, span := o11y.StartSpan(ctx, "mongofixture: setup")
	defer span.End()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(con.URI).SetAppName("test"))
	assert.Assert(t, err)
	t.Cleanup(func() {
		assert.Check(t, client.Disconnect(ctx))
	})

	name := truncate(fmt.Sprintf("%s-%s", randomSuffix(), strings.ReplaceAll(t.Name(), "/", "_")))
	span.AddField("name", name)

	db := client.Database(name)
	t.Cleanup(func() {
		assert.Check(t, db.Drop(ctx))
	})

	return &Fixture{
		DB:   db,
		Name: name,
		URI:  con.URI,
	}
}

func randomSuffix() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "not-random"
	}
	return hex.EncodeToString(b)
}

// truncate keeps names inside mongo's database name limit.
func truncate(s string) string {
	if len(s) >= 64 {
		return s[:63]
	}
	return s
}
