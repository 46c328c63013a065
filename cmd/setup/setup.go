// Package setup contains the wiring shared by the service binaries.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gwatts/rootcerts"
	"github.com/joho/godotenv"

	"github.com/circleci/setupwiz/config"
	"github.com/circleci/setupwiz/config/o11y"
	"github.com/circleci/setupwiz/config/secret"
	"github.com/circleci/setupwiz/mongo"
	"github.com/circleci/setupwiz/system"
)

// DefaultEnvFile is read at start up when ENV_FILE is not set.
const DefaultEnvFile = ".env"

type CLI struct {
	AdminAddr string `env:"ADMIN_ADDR" default:":3001" help:"The address for the admin api to listen on"`

	O11yStatsd       string        `name:"o11y-statsd" env:"O11Y_STATSD" help:"Address to send statsd metrics, none are sent if empty"`
	O11yFormat       string        `name:"o11y-format" env:"O11Y_FORMAT" enum:"json,color,text" default:"json" help:"Format used for stderr logging"`
	O11yRollbarToken secret.String `name:"o11y-rollbar-token" env:"O11Y_ROLLBAR_TOKEN"`
	O11yRollbarEnv   string        `name:"o11y-rollbar-env" env:"O11Y_ROLLBAR_ENV" help:"Defaults to NODE_ENV"`

	MongoTLS bool `name:"mongo-tls" env:"MONGO_TLS" help:"Connect to mongo over TLS, trusting the embedded root certificates"`

	MemRatio float64 `name:"mem-ratio" env:"MEM_RATIO" default:"0.9" help:"Share of the container memory limit given to GOMEMLIMIT"`
}

func init() {
	err := rootcerts.UpdateDefaultTransport()
	if err != nil {
		panic(fmt.Errorf("failed to inject rootcerts: %w", err))
	}
}

// LoadEnvFile loads variables from the dotenv file named by ENV_FILE, or .env, without
// overriding anything already set. A missing default file is not an error.
func LoadEnvFile() error {
	path, explicit := os.LookupEnv("ENV_FILE")
	if !explicit || path == "" {
		path = DefaultEnvFile
	}

	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("failed to load env file %q: %w", path, err)
}

func LoadO11y(version, mode string, cli CLI, cfg config.Config) (context.Context, func(context.Context), error) {
	rollbarEnv := cli.O11yRollbarEnv
	if rollbarEnv == "" {
		rollbarEnv = cfg.Environment
	}

	o := o11y.Config{
		Statsd:            cli.O11yStatsd,
		RollbarToken:      cli.O11yRollbarToken,
		RollbarEnv:        rollbarEnv,
		RollbarServerRoot: "github.com/circleci/setupwiz",
		Format:            cli.O11yFormat,
		Level:             cfg.LogLevel,
		Version:           version,
		Service:           cfg.AppName,
		StatsNamespace:    "circleci.setupwiz.",
		Mode:              mode,
	}
	ctx, cleanup, err := o11y.Setup(context.Background(), o)
	if err != nil {
		return nil, nil, err
	}
	return ctx, cleanup, nil
}

// LoadMongo connects both database handles, failing if either cannot be reached.
func LoadMongo(ctx context.Context, cli CLI, cfg config.Config, sys *system.System) (*mongo.Manager, error) {
	return mongo.Load(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  cfg.AppName,
		UseTLS:   cli.MongoTLS,
	}, sys)
}
